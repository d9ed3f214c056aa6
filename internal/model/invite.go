package model

import (
	"fmt"
	"time"
)

// InviteID uniquely identifies a game invite for its lifetime
type InviteID string

// NewInviteID derives an invite id from the ordered pair and creation time
func NewInviteID(from, to UserID, at time.Time) InviteID {
	return InviteID(fmt.Sprintf("%s-%s-%d", from, to, at.UnixMilli()))
}

// Invite is a time-bounded proposal from one user to another to start a match.
// Exactly one terminal outcome applies: accepted, rejected, expired, or
// discarded when either party disconnects.
type Invite struct {
	ID           InviteID
	FromID       UserID
	ToID         UserID
	FromNickname string
	FromAvatar   string
	CreatedAt    time.Time
	ExpiresAt    time.Time
}
