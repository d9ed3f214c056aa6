package model

import (
	"encoding/json"
	"time"
)

// EventType identifies the type of event on the wire
type EventType string

// Inbound events (client -> server)
const (
	EventSetOnline        EventType = "user:setOnline"
	EventGetOnlineFriends EventType = "friends:getOnline"
	EventInvite           EventType = "game:invite"
	EventAcceptInvite     EventType = "game:acceptInvite"
	EventRejectInvite     EventType = "game:rejectInvite"
	EventReady            EventType = "game:ready"
	EventGuess            EventType = "game:guess"
	EventLeave            EventType = "game:leave"
)

// Outbound events (server -> client)
const (
	EventOnlineStatus        EventType = "user:onlineStatus"
	EventUserOnline          EventType = "user:online"
	EventUserOffline         EventType = "user:offline"
	EventOnlineFriends       EventType = "friends:onlineList"
	EventInviteReceived      EventType = "game:inviteReceived"
	EventInviteSent          EventType = "game:inviteSent"
	EventInviteAccepted      EventType = "game:inviteAccepted"
	EventInviteRejected      EventType = "game:inviteRejected"
	EventInviteExpired       EventType = "game:inviteExpired"
	EventOpponentReady       EventType = "game:opponentReady"
	EventRoundStarted        EventType = "game:start"
	EventGuessResult         EventType = "game:guessResult"
	EventOpponentGuessResult EventType = "game:opponentGuessResult"
	EventNewKeyword          EventType = "game:newKeyword"
	EventOpponentLeft        EventType = "game:opponentLeft"
	EventLeft                EventType = "game:left"
	EventError               EventType = "game:error"
)

// Frame is the wire envelope for every event in both directions
type Frame struct {
	Event EventType       `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewFrame builds a frame with the payload marshalled into Data
func NewFrame(event EventType, payload any) (Frame, error) {
	f := Frame{Event: event}
	if payload == nil {
		return f, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Frame{}, err
	}
	f.Data = data
	return f, nil
}

// Inbound payloads

// InviteRequest asks to invite another user to a match
type InviteRequest struct {
	ToID UserID `json:"toId"`
}

// InviteActionRequest accepts or rejects a pending invite
type InviteActionRequest struct {
	InviteID InviteID `json:"inviteId"`
}

// RoomRequest addresses an event at a specific room
type RoomRequest struct {
	RoomID RoomID `json:"roomId"`
}

// GuessRequest submits a guess for the current keyword
type GuessRequest struct {
	RoomID RoomID `json:"roomId"`
	Guess  string `json:"guess"`
}

// Outbound payloads

// OnlineStatusPayload confirms the caller's own presence state
type OnlineStatusPayload struct {
	Online bool `json:"online"`
}

// UserOnlinePayload announces a user coming online, with enough profile
// data for a friend list to update without a refetch
type UserOnlinePayload struct {
	UserID   UserID `json:"userId"`
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar,omitempty"`
}

// UserOfflinePayload announces a user going offline
type UserOfflinePayload struct {
	UserID UserID `json:"userId"`
}

// OnlineFriend is one entry of the online-friends list
type OnlineFriend struct {
	ID       UserID `json:"id"`
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar,omitempty"`
	Online   bool   `json:"online"`
}

// OnlineFriendsPayload lists the caller's currently online friends
type OnlineFriendsPayload struct {
	Friends []OnlineFriend `json:"friends"`
}

// InviteReceivedPayload notifies the recipient of a new invite
type InviteReceivedPayload struct {
	Invite ReceivedInvite `json:"invite"`
}

// ReceivedInvite is the recipient's view of an invite
type ReceivedInvite struct {
	ID           InviteID  `json:"id"`
	FromID       UserID    `json:"fromId"`
	FromNickname string    `json:"fromNickname"`
	FromAvatar   string    `json:"fromAvatar,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// InviteSentPayload confirms to the sender that their invite was delivered
type InviteSentPayload struct {
	Invite SentInvite `json:"invite"`
}

// SentInvite is the sender's view of an invite
type SentInvite struct {
	ID         InviteID  `json:"id"`
	ToID       UserID    `json:"toId"`
	ToNickname string    `json:"toNickname"`
	CreatedAt  time.Time `json:"createdAt"`
}

// OpponentProfile is the minimal profile shown to a match opponent
type OpponentProfile struct {
	ID       UserID `json:"id"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar,omitempty"`
}

// InviteAcceptedPayload tells both parties a match room was created
type InviteAcceptedPayload struct {
	RoomID   RoomID          `json:"roomId"`
	Opponent OpponentProfile `json:"opponent"`
}

// InviteRejectedPayload notifies about a rejected invite. FromID carries
// the rejecting user on the sender's copy and is empty on the rejecter's.
type InviteRejectedPayload struct {
	InviteID InviteID `json:"inviteId"`
	FromID   UserID   `json:"fromId,omitempty"`
}

// InviteExpiredPayload notifies both parties an invite timed out
type InviteExpiredPayload struct {
	InviteID InviteID `json:"inviteId"`
}

// OpponentReadyPayload tells a player their opponent is ready
type OpponentReadyPayload struct {
	RoomID RoomID `json:"roomId"`
}

// RoundStartedPayload starts a round with the keyword to guess
type RoundStartedPayload struct {
	RoomID    RoomID    `json:"roomId"`
	Keyword   string    `json:"keyword"`
	KeywordID KeywordID `json:"keywordId"`
}

// GuessCorrectPayload is sent to a player who guessed correctly
type GuessCorrectPayload struct {
	Correct       bool `json:"correct"`
	Score         int  `json:"score"`
	OpponentScore int  `json:"opponentScore"`
}

// GuessIncorrectPayload is sent to a player who guessed wrong; the
// opponent is not informed of wrong guesses
type GuessIncorrectPayload struct {
	Correct bool   `json:"correct"`
	Guess   string `json:"guess"`
}

// OpponentGuessResultPayload mirrors a correct guess to the opponent
type OpponentGuessResultPayload struct {
	OpponentScore int `json:"opponentScore"`
	YourScore     int `json:"yourScore"`
}

// NewKeywordPayload rotates the keyword after a correct guess
type NewKeywordPayload struct {
	Keyword   string    `json:"keyword"`
	KeywordID KeywordID `json:"keywordId"`
}

// LeftPayload confirms to the caller that they left a room
type LeftPayload struct {
	RoomID RoomID `json:"roomId"`
}

// ErrorPayload carries a caller-scoped error message
type ErrorPayload struct {
	Message string `json:"message"`
}
