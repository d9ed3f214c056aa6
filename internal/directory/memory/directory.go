package memory

import (
	"context"
	"sync"

	"github.com/wordduel/wordduel/internal/directory"
	"github.com/wordduel/wordduel/internal/model"
)

// Directory is an in-memory implementation of the user directory
type Directory struct {
	mu sync.RWMutex

	users       map[model.UserID]*model.Profile
	friendships map[pair]bool
	blocks      map[pair]bool
}

// pair is an unordered user pair for friendships, ordered for blocks
type pair struct {
	a, b model.UserID
}

// New creates a new in-memory directory
func New() *Directory {
	return &Directory{
		users:       make(map[model.UserID]*model.Profile),
		friendships: make(map[pair]bool),
		blocks:      make(map[pair]bool),
	}
}

// Ensure Directory implements the interfaces
var (
	_ directory.Directory = (*Directory)(nil)
	_ directory.Writer    = (*Directory)(nil)
)

func (d *Directory) FindUserByID(ctx context.Context, id model.UserID) (*model.Profile, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	profile, ok := d.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	p := *profile
	return &p, nil
}

func (d *Directory) AreFriends(ctx context.Context, a, b model.UserID) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.friendships[friendPair(a, b)], nil
}

func (d *Directory) IsBlocked(ctx context.Context, actor, target model.UserID) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.blocks[pair{a: target, b: actor}], nil
}

func (d *Directory) GetFriends(ctx context.Context, id model.UserID) ([]model.Profile, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var friends []model.Profile
	for p := range d.friendships {
		var friendID model.UserID
		switch id {
		case p.a:
			friendID = p.b
		case p.b:
			friendID = p.a
		default:
			continue
		}
		if profile, ok := d.users[friendID]; ok {
			friends = append(friends, *profile)
		}
	}
	return friends, nil
}

func (d *Directory) SaveUser(ctx context.Context, profile *model.Profile) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	p := *profile
	d.users[profile.ID] = &p
	return nil
}

func (d *Directory) AddFriendship(ctx context.Context, a, b model.UserID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.friendships[friendPair(a, b)] = true
	return nil
}

func (d *Directory) Block(ctx context.Context, blocker, blocked model.UserID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.blocks[pair{a: blocker, b: blocked}] = true
	return nil
}

// friendPair normalizes the pair so friendship is symmetric
func friendPair(a, b model.UserID) pair {
	if b < a {
		a, b = b, a
	}
	return pair{a: a, b: b}
}
