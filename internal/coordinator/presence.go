package coordinator

import (
	"sync"

	"github.com/wordduel/wordduel/internal/model"
)

// presenceEntry records one online user and the connection to reach them
type presenceEntry struct {
	conn    Conn
	profile model.Profile
}

// presenceRegistry is the set of currently connected users. One entry
// per user: a second connection for the same user replaces the entry.
type presenceRegistry struct {
	mu      sync.RWMutex
	entries map[model.UserID]*presenceEntry
}

func newPresenceRegistry() *presenceRegistry {
	return &presenceRegistry{
		entries: make(map[model.UserID]*presenceEntry),
	}
}

// setOnline records the user as reachable via conn. It returns true if
// the user was not already online, i.e. whether a "came online"
// broadcast is due; repeated calls are idempotent.
func (p *presenceRegistry) setOnline(id model.UserID, conn Conn, profile model.Profile) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, existed := p.entries[id]
	p.entries[id] = &presenceEntry{conn: conn, profile: profile}
	return !existed
}

// remove drops the user's entry if it is still bound to conn. A stale
// connection's teardown must not evict a newer replacement entry.
func (p *presenceRegistry) remove(id model.UserID, conn Conn) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	entry, ok := p.entries[id]
	if !ok || entry.conn != conn {
		return false
	}
	delete(p.entries, id)
	return true
}

func (p *presenceRegistry) isOnline(id model.UserID) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.entries[id]
	return ok
}

// lookup returns the connection for an online user
func (p *presenceRegistry) lookup(id model.UserID) (Conn, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	entry, ok := p.entries[id]
	if !ok {
		return nil, false
	}
	return entry.conn, true
}

// profile returns the profile captured when the user came online
func (p *presenceRegistry) profile(id model.UserID) (model.Profile, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	entry, ok := p.entries[id]
	if !ok {
		return model.Profile{}, false
	}
	return entry.profile, true
}
