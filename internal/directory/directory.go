package directory

import (
	"context"

	"github.com/wordduel/wordduel/internal/model"
)

// Directory resolves user identities and relationships. The coordinator
// treats these as synchronous lookups that may fail; it owns none of the
// backing data.
type Directory interface {
	// FindUserByID returns a user's profile, or model.ErrUserNotFound
	FindUserByID(ctx context.Context, id model.UserID) (*model.Profile, error)

	// AreFriends reports whether a and b have a confirmed friendship
	AreFriends(ctx context.Context, a, b model.UserID) (bool, error)

	// IsBlocked reports whether target has blocked actor
	IsBlocked(ctx context.Context, actor, target model.UserID) (bool, error)

	// GetFriends returns the profiles of all of the user's friends
	GetFriends(ctx context.Context, id model.UserID) ([]model.Profile, error)
}

// Writer is the seeding side of a directory backend, used by ops tooling
// and tests. The coordinator itself never writes.
type Writer interface {
	SaveUser(ctx context.Context, profile *model.Profile) error
	AddFriendship(ctx context.Context, a, b model.UserID) error
	Block(ctx context.Context, blocker, blocked model.UserID) error
}
