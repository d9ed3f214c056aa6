package coordinator

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/wordduel/wordduel/internal/dependencies/clock"
	"github.com/wordduel/wordduel/internal/directory"
	"github.com/wordduel/wordduel/internal/keywords"
	"github.com/wordduel/wordduel/internal/model"
)

// Dispatch-level errors
var (
	ErrMissingTarget    = errors.New("no user id provided")
	ErrMalformedPayload = errors.New("malformed payload")
	ErrUnknownEvent     = errors.New("unknown event")
	errLookupFailed     = errors.New("user lookup failed")
	errFriendsFailed    = errors.New("could not load friends")
	errStartFailed      = errors.New("could not start the game")
)

// Config holds timing policy for the coordinator
type Config struct {
	// InviteTTL is how long an invite stays pending before expiring
	InviteTTL time.Duration
	// StartDelay is the pause between both players readying up and the
	// first keyword being dealt
	StartDelay time.Duration
	// RotateDelay is the pause between a correct guess and the next
	// keyword being dealt
	RotateDelay time.Duration
}

// DefaultConfig returns the standard game timings
func DefaultConfig() Config {
	return Config{
		InviteTTL:   60 * time.Second,
		StartDelay:  time.Second,
		RotateDelay: time.Second,
	}
}

// Coordinator is the event-driven state machine at the heart of the
// game server. It owns the volatile presence, invite and room
// registries and applies transitions consistently despite interleaving
// from concurrent connections.
type Coordinator struct {
	cfg         Config
	directory   directory.Directory
	keywords    keywords.Source
	clock       clock.Clock
	broadcaster Broadcaster
	logger      *slog.Logger

	presence *presenceRegistry
	invites  *inviteRegistry
	rooms    *roomRegistry
}

// New creates a Coordinator with empty registries
func New(
	cfg Config,
	dir directory.Directory,
	kw keywords.Source,
	clk clock.Clock,
	broadcaster Broadcaster,
	logger *slog.Logger,
) *Coordinator {
	if cfg.InviteTTL == 0 {
		cfg = DefaultConfig()
	}
	return &Coordinator{
		cfg:         cfg,
		directory:   dir,
		keywords:    kw,
		clock:       clk,
		broadcaster: broadcaster,
		logger:      logger.With(slog.String("component", "coordinator")),

		presence: newPresenceRegistry(),
		invites:  newInviteRegistry(),
		rooms:    newRoomRegistry(),
	}
}

// Dispatch resolves one inbound event against the registries and applies
// its transition. Validation and state errors surface as a game:error
// event to the caller only; they never mutate state.
func (c *Coordinator) Dispatch(ctx context.Context, sess *Session, frame model.Frame) {
	var err error
	switch frame.Event {
	case model.EventSetOnline:
		err = c.SetOnline(ctx, sess)
	case model.EventGetOnlineFriends:
		err = c.GetOnlineFriends(ctx, sess)
	case model.EventInvite:
		var req model.InviteRequest
		if err = decodePayload(frame.Data, &req); err == nil {
			err = c.Invite(ctx, sess, req.ToID)
		}
	case model.EventAcceptInvite:
		var req model.InviteActionRequest
		if err = decodePayload(frame.Data, &req); err == nil {
			err = c.AcceptInvite(ctx, sess, req.InviteID)
		}
	case model.EventRejectInvite:
		var req model.InviteActionRequest
		if err = decodePayload(frame.Data, &req); err == nil {
			err = c.RejectInvite(ctx, sess, req.InviteID)
		}
	case model.EventReady:
		var req model.RoomRequest
		if err = decodePayload(frame.Data, &req); err == nil {
			err = c.Ready(ctx, sess, req.RoomID)
		}
	case model.EventGuess:
		var req model.GuessRequest
		if err = decodePayload(frame.Data, &req); err == nil {
			err = c.Guess(ctx, sess, req.RoomID, req.Guess)
		}
	case model.EventLeave:
		var req model.RoomRequest
		if err = decodePayload(frame.Data, &req); err == nil {
			err = c.Leave(ctx, sess, req.RoomID)
		}
	default:
		err = ErrUnknownEvent
	}

	if err != nil {
		c.logger.Debug("event rejected",
			slog.String("event", string(frame.Event)),
			slog.String("user_id", string(sess.UserID)),
			slog.String("error", err.Error()))
		sess.Conn.Send(model.EventError, model.ErrorPayload{Message: err.Error()})
	}
}

// Connect registers a freshly authenticated connection. A user that
// resolves in the directory is implicitly marked online; an unknown
// identity gets a live but presence-less connection.
func (c *Coordinator) Connect(ctx context.Context, sess *Session) {
	profile, err := c.directory.FindUserByID(ctx, sess.UserID)
	if err != nil {
		if !errors.Is(err, model.ErrUserNotFound) {
			c.logger.Error("directory lookup failed on connect",
				slog.String("user_id", string(sess.UserID)),
				slog.String("error", err.Error()))
		}
		return
	}
	c.markOnline(sess, *profile)
	c.logger.Info("user connected", slog.String("user_id", string(sess.UserID)))
}

// Disconnect is the transport-triggered cleanup path: remove presence,
// broadcast offline, leave any active room, and discard the user's
// invites in either direction without notification.
func (c *Coordinator) Disconnect(ctx context.Context, sess *Session) {
	if !c.presence.remove(sess.UserID, sess.Conn) {
		// Never online, or already replaced by a newer connection
		return
	}

	c.broadcaster.BroadcastExcept(sess.Conn, model.EventUserOffline, model.UserOfflinePayload{
		UserID: sess.UserID,
	})

	c.leaveCurrentRoom(sess.UserID)
	c.invites.discardFor(sess.UserID)

	c.logger.Info("user disconnected", slog.String("user_id", string(sess.UserID)))
}

// SetOnline is the explicit presence signal. It is idempotent; the
// caller always gets an onlineStatus confirmation.
func (c *Coordinator) SetOnline(ctx context.Context, sess *Session) error {
	profile, err := c.directory.FindUserByID(ctx, sess.UserID)
	if err == nil {
		c.markOnline(sess, *profile)
	} else if !errors.Is(err, model.ErrUserNotFound) {
		c.logger.Error("directory lookup failed",
			slog.String("user_id", string(sess.UserID)),
			slog.String("error", err.Error()))
		return errLookupFailed
	}

	sess.Conn.Send(model.EventOnlineStatus, model.OnlineStatusPayload{Online: true})
	return nil
}

// markOnline updates presence and broadcasts the transition exactly once
func (c *Coordinator) markOnline(sess *Session, profile model.Profile) {
	if !c.presence.setOnline(sess.UserID, sess.Conn, profile) {
		return
	}
	c.broadcaster.BroadcastExcept(sess.Conn, model.EventUserOnline, model.UserOnlinePayload{
		UserID:   profile.ID,
		Nickname: profile.Nickname,
		Email:    profile.Email,
		Avatar:   profile.Avatar,
	})
}

// GetOnlineFriends returns the online subset of the caller's friends
func (c *Coordinator) GetOnlineFriends(ctx context.Context, sess *Session) error {
	friends, err := c.directory.GetFriends(ctx, sess.UserID)
	if err != nil {
		c.logger.Error("friend lookup failed",
			slog.String("user_id", string(sess.UserID)),
			slog.String("error", err.Error()))
		return errFriendsFailed
	}

	online := []model.OnlineFriend{}
	for _, friend := range friends {
		if !c.presence.isOnline(friend.ID) {
			continue
		}
		online = append(online, model.OnlineFriend{
			ID:       friend.ID,
			Nickname: friend.Nickname,
			Email:    friend.Email,
			Avatar:   friend.Avatar,
			Online:   true,
		})
	}

	sess.Conn.Send(model.EventOnlineFriends, model.OnlineFriendsPayload{Friends: online})
	return nil
}

// Invite proposes a match to another user. Preconditions are checked in
// order and the first failure wins; nothing is created on failure.
func (c *Coordinator) Invite(ctx context.Context, sess *Session, toID model.UserID) error {
	if toID == "" {
		return ErrMissingTarget
	}
	if toID == sess.UserID {
		return model.ErrSelfInvite
	}

	target, err := c.directory.FindUserByID(ctx, toID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return model.ErrUserNotFound
		}
		c.logger.Error("directory lookup failed",
			slog.String("user_id", string(toID)),
			slog.String("error", err.Error()))
		return errLookupFailed
	}

	friends, err := c.directory.AreFriends(ctx, sess.UserID, toID)
	if err != nil {
		c.logger.Error("friendship check failed", slog.String("error", err.Error()))
		return errLookupFailed
	}
	if !friends {
		return model.ErrNotFriends
	}

	blocked, err := c.directory.IsBlocked(ctx, sess.UserID, toID)
	if err != nil {
		c.logger.Error("block check failed", slog.String("error", err.Error()))
		return errLookupFailed
	}
	if blocked {
		return model.ErrBlocked
	}

	toConn, online := c.presence.lookup(toID)
	if !online {
		return model.ErrUserOffline
	}

	sender := c.profileOf(ctx, sess.UserID)
	now := c.clock.Now()
	invite := model.Invite{
		ID:           model.NewInviteID(sess.UserID, toID, now),
		FromID:       sess.UserID,
		ToID:         toID,
		FromNickname: sender.Nickname,
		FromAvatar:   sender.Avatar,
		CreatedAt:    now,
		ExpiresAt:    now.Add(c.cfg.InviteTTL),
	}

	timer := c.clock.AfterFunc(c.cfg.InviteTTL, func() {
		c.expireInvite(invite.ID)
	})
	c.invites.add(invite, timer)

	toConn.Send(model.EventInviteReceived, model.InviteReceivedPayload{
		Invite: model.ReceivedInvite{
			ID:           invite.ID,
			FromID:       invite.FromID,
			FromNickname: invite.FromNickname,
			FromAvatar:   invite.FromAvatar,
			CreatedAt:    invite.CreatedAt,
		},
	})
	sess.Conn.Send(model.EventInviteSent, model.InviteSentPayload{
		Invite: model.SentInvite{
			ID:         invite.ID,
			ToID:       toID,
			ToNickname: target.Nickname,
			CreatedAt:  invite.CreatedAt,
		},
	})

	c.logger.Info("invite created",
		slog.String("invite_id", string(invite.ID)),
		slog.String("from", string(invite.FromID)),
		slog.String("to", string(invite.ToID)))
	return nil
}

// expireInvite fires at the invite deadline. An invite that already
// reached a terminal outcome makes this a no-op.
func (c *Coordinator) expireInvite(id model.InviteID) {
	invite, ok := c.invites.expire(id)
	if !ok {
		return
	}

	payload := model.InviteExpiredPayload{InviteID: id}
	c.sendTo(invite.FromID, model.EventInviteExpired, payload)
	c.sendTo(invite.ToID, model.EventInviteExpired, payload)

	c.logger.Info("invite expired", slog.String("invite_id", string(id)))
}

// AcceptInvite consumes a pending invite and creates the match room
func (c *Coordinator) AcceptInvite(ctx context.Context, sess *Session, inviteID model.InviteID) error {
	invite, ok := c.invites.get(inviteID)
	if !ok {
		return model.ErrInviteNotFound
	}
	if invite.ToID != sess.UserID {
		return model.ErrNotYourInvite
	}

	fromConn, online := c.presence.lookup(invite.FromID)
	if !online {
		return model.ErrSenderOffline
	}

	// Consume atomically; a concurrent accept/reject/expiry takes
	// priority and this accept fails as not-found
	invite, ok = c.invites.take(inviteID)
	if !ok {
		return model.ErrInviteNotFound
	}

	now := c.clock.Now()
	room := &roomState{
		Room: model.Room{
			ID:        model.NewRoomID(invite.FromID, invite.ToID, now),
			Player1ID: invite.FromID,
			Player2ID: invite.ToID,
			CreatedAt: now,
		},
	}
	if err := c.rooms.create(room); err != nil {
		return err
	}

	accepter := c.profileOf(ctx, sess.UserID)
	sess.Conn.Send(model.EventInviteAccepted, model.InviteAcceptedPayload{
		RoomID: room.ID,
		Opponent: model.OpponentProfile{
			ID:       invite.FromID,
			Nickname: invite.FromNickname,
			Avatar:   invite.FromAvatar,
		},
	})
	fromConn.Send(model.EventInviteAccepted, model.InviteAcceptedPayload{
		RoomID: room.ID,
		Opponent: model.OpponentProfile{
			ID:       accepter.ID,
			Nickname: accepter.Nickname,
			Avatar:   accepter.Avatar,
		},
	})

	c.logger.Info("room created",
		slog.String("room_id", string(room.ID)),
		slog.String("player1", string(invite.FromID)),
		slog.String("player2", string(invite.ToID)))
	return nil
}

// RejectInvite declines a pending invite and notifies the sender
func (c *Coordinator) RejectInvite(ctx context.Context, sess *Session, inviteID model.InviteID) error {
	invite, ok := c.invites.get(inviteID)
	if !ok {
		return model.ErrInviteNotFound
	}
	if invite.ToID != sess.UserID {
		return model.ErrNotYourInvite
	}

	invite, ok = c.invites.take(inviteID)
	if !ok {
		return model.ErrInviteNotFound
	}

	c.sendTo(invite.FromID, model.EventInviteRejected, model.InviteRejectedPayload{
		InviteID: inviteID,
		FromID:   sess.UserID,
	})
	sess.Conn.Send(model.EventInviteRejected, model.InviteRejectedPayload{InviteID: inviteID})

	c.logger.Info("invite rejected", slog.String("invite_id", string(inviteID)))
	return nil
}

// Ready marks the caller as ready. When both sides are ready the first
// keyword is dealt after a short delay. Re-sending ready before both
// are ready is a no-op; after a failed deal it re-triggers the draw.
func (c *Coordinator) Ready(ctx context.Context, sess *Session, roomID model.RoomID) error {
	room, ok := c.rooms.byUserID(sess.UserID)
	if !ok || room.ID != roomID {
		return model.ErrRoomNotFound
	}

	room.mu.Lock()
	alreadyReady := room.Ready(sess.UserID)
	room.SetReady(sess.UserID)
	opponentID, _ := room.Opponent(sess.UserID)
	schedule := room.BothReady() && !room.Started && !room.startPending
	if schedule {
		room.startPending = true
	}
	room.mu.Unlock()

	if !alreadyReady {
		c.sendTo(opponentID, model.EventOpponentReady, model.OpponentReadyPayload{RoomID: roomID})
	}

	if schedule {
		trigger := sess
		c.clock.AfterFunc(c.cfg.StartDelay, func() {
			c.startRound(context.Background(), roomID, trigger)
		})
	}
	return nil
}

// startRound is the delayed continuation of the readiness handshake.
// The room is re-checked after the delay and after the keyword draw; a
// torn-down room makes this a no-op.
func (c *Coordinator) startRound(ctx context.Context, roomID model.RoomID, trigger *Session) {
	if _, ok := c.rooms.byID(roomID); !ok {
		return
	}

	keyword, err := c.keywords.DrawRandom(ctx)

	room, ok := c.rooms.byID(roomID)
	if !ok {
		return
	}

	room.mu.Lock()
	room.startPending = false
	if err != nil || room.Started {
		started := room.Started
		room.mu.Unlock()
		if err != nil && !started {
			// Room stays unstarted; another ready signal retries the draw
			c.logger.Warn("keyword draw failed on round start",
				slog.String("room_id", string(roomID)),
				slog.String("error", err.Error()))
			trigger.Conn.Send(model.EventError, model.ErrorPayload{Message: errStartFailed.Error()})
		}
		return
	}
	room.Keyword = strings.ToUpper(keyword.Text)
	room.KeywordID = keyword.ID
	room.Started = true
	payload := model.RoundStartedPayload{
		RoomID:    roomID,
		Keyword:   room.Keyword,
		KeywordID: room.KeywordID,
	}
	player1, player2 := room.Player1ID, room.Player2ID
	room.mu.Unlock()

	c.sendTo(player1, model.EventRoundStarted, payload)
	c.sendTo(player2, model.EventRoundStarted, payload)

	c.logger.Info("round started",
		slog.String("room_id", string(roomID)),
		slog.String("keyword_id", string(payload.KeywordID)))
}

// Guess scores a submitted guess against the current keyword. Wrong
// guesses are visible only to the guesser.
func (c *Coordinator) Guess(ctx context.Context, sess *Session, roomID model.RoomID, guess string) error {
	room, ok := c.rooms.byUserID(sess.UserID)
	if !ok || room.ID != roomID {
		return model.ErrRoomNotStarted
	}

	room.mu.Lock()
	if !room.Started {
		room.mu.Unlock()
		return model.ErrRoomNotStarted
	}

	if !strings.EqualFold(guess, room.Keyword) {
		room.mu.Unlock()
		sess.Conn.Send(model.EventGuessResult, model.GuessIncorrectPayload{
			Correct: false,
			Guess:   guess,
		})
		return nil
	}

	score := room.AddScore(sess.UserID)
	opponentID, _ := room.Opponent(sess.UserID)
	opponentScore := room.Score(opponentID)
	scheduleRotate := !room.rotatePending
	if scheduleRotate {
		room.rotatePending = true
	}
	room.mu.Unlock()

	sess.Conn.Send(model.EventGuessResult, model.GuessCorrectPayload{
		Correct:       true,
		Score:         score,
		OpponentScore: opponentScore,
	})
	c.sendTo(opponentID, model.EventOpponentGuessResult, model.OpponentGuessResultPayload{
		OpponentScore: score,
		YourScore:     opponentScore,
	})

	if scheduleRotate {
		c.clock.AfterFunc(c.cfg.RotateDelay, func() {
			c.rotateKeyword(context.Background(), roomID)
		})
	}
	return nil
}

// rotateKeyword is the delayed continuation after a correct guess. On a
// failed draw the room keeps the old keyword and play continues.
func (c *Coordinator) rotateKeyword(ctx context.Context, roomID model.RoomID) {
	if _, ok := c.rooms.byID(roomID); !ok {
		return
	}

	keyword, err := c.keywords.DrawRandom(ctx)

	room, ok := c.rooms.byID(roomID)
	if !ok {
		return
	}

	room.mu.Lock()
	room.rotatePending = false
	if err != nil || !room.Started {
		room.mu.Unlock()
		if err != nil {
			c.logger.Warn("keyword draw failed on rotation",
				slog.String("room_id", string(roomID)),
				slog.String("error", err.Error()))
		}
		return
	}
	room.Keyword = strings.ToUpper(keyword.Text)
	room.KeywordID = keyword.ID
	payload := model.NewKeywordPayload{
		Keyword:   room.Keyword,
		KeywordID: room.KeywordID,
	}
	player1, player2 := room.Player1ID, room.Player2ID
	room.mu.Unlock()

	c.sendTo(player1, model.EventNewKeyword, payload)
	c.sendTo(player2, model.EventNewKeyword, payload)
}

// Leave tears down the caller's current room, if any. It is best-effort
// cleanup: a stale or mismatched roomId still resolves successfully.
func (c *Coordinator) Leave(ctx context.Context, sess *Session, roomID model.RoomID) error {
	c.leaveCurrentRoom(sess.UserID)
	sess.Conn.Send(model.EventLeft, model.LeftPayload{RoomID: roomID})
	return nil
}

// leaveCurrentRoom removes the user's room from both participants'
// indices and notifies the opponent if reachable
func (c *Coordinator) leaveCurrentRoom(userID model.UserID) {
	room, ok := c.rooms.byUserID(userID)
	if !ok {
		return
	}
	if _, ok := c.rooms.remove(room.ID); !ok {
		return
	}

	if opponentID, ok := room.Opponent(userID); ok {
		c.sendTo(opponentID, model.EventOpponentLeft, nil)
	}

	c.logger.Info("room torn down",
		slog.String("room_id", string(room.ID)),
		slog.String("left_by", string(userID)))
}

// profileOf prefers the presence snapshot and falls back to the
// directory; a user acting on a session was looked up at connect time
// so the fallback rarely runs.
func (c *Coordinator) profileOf(ctx context.Context, id model.UserID) model.Profile {
	if profile, ok := c.presence.profile(id); ok {
		return profile
	}
	if profile, err := c.directory.FindUserByID(ctx, id); err == nil {
		return *profile
	}
	return model.Profile{ID: id}
}

// sendTo delivers an event to a user if they are currently reachable
func (c *Coordinator) sendTo(id model.UserID, event model.EventType, payload any) {
	if conn, ok := c.presence.lookup(id); ok {
		conn.Send(event, payload)
	}
}

// decodePayload unmarshals an inbound frame payload
func decodePayload(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return ErrMalformedPayload
	}
	if err := json.Unmarshal(data, v); err != nil {
		return ErrMalformedPayload
	}
	return nil
}
