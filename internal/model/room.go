package model

import (
	"fmt"
	"time"
)

// RoomID uniquely identifies an active match session
type RoomID string

// NewRoomID derives a room id from the participant pair and creation time
func NewRoomID(player1, player2 UserID, at time.Time) RoomID {
	return RoomID(fmt.Sprintf("room-%s-%s-%d", player1, player2, at.UnixMilli()))
}

// Room is the live state of a two-player match. It is indexed by both
// participants' identities but both entries denote the same instance.
// Keyword and KeywordID are defined only while Started is true.
type Room struct {
	ID           RoomID
	Player1ID    UserID
	Player2ID    UserID
	Player1Ready bool
	Player2Ready bool
	Player1Score int
	Player2Score int
	Keyword      string
	KeywordID    KeywordID
	Started      bool
	Ended        bool
	CreatedAt    time.Time
}

// HasPlayer returns true if the given user is a participant
func (r *Room) HasPlayer(id UserID) bool {
	return r.Player1ID == id || r.Player2ID == id
}

// Opponent returns the other participant's id
func (r *Room) Opponent(id UserID) (UserID, bool) {
	switch id {
	case r.Player1ID:
		return r.Player2ID, true
	case r.Player2ID:
		return r.Player1ID, true
	}
	return "", false
}

// Ready returns whether the given participant has signalled readiness
func (r *Room) Ready(id UserID) bool {
	if id == r.Player1ID {
		return r.Player1Ready
	}
	return r.Player2Ready
}

// SetReady marks the given participant as ready
func (r *Room) SetReady(id UserID) {
	if id == r.Player1ID {
		r.Player1Ready = true
	} else if id == r.Player2ID {
		r.Player2Ready = true
	}
}

// BothReady returns true once both participants have signalled readiness
func (r *Room) BothReady() bool {
	return r.Player1Ready && r.Player2Ready
}

// Score returns the given participant's score
func (r *Room) Score(id UserID) int {
	if id == r.Player1ID {
		return r.Player1Score
	}
	return r.Player2Score
}

// AddScore increments the given participant's score and returns the new value
func (r *Room) AddScore(id UserID) int {
	if id == r.Player1ID {
		r.Player1Score++
		return r.Player1Score
	}
	r.Player2Score++
	return r.Player2Score
}
