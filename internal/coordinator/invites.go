package coordinator

import (
	"sync"

	"github.com/wordduel/wordduel/internal/dependencies/clock"
	"github.com/wordduel/wordduel/internal/model"
)

// inviteState couples a pending invite with its expiry timer so a
// terminal outcome can cancel the pending expiry.
type inviteState struct {
	model.Invite
	timer clock.Timer
}

// inviteRegistry holds pending invitations. Multiple simultaneous
// invites between the same pair are allowed; each expires independently.
type inviteRegistry struct {
	mu      sync.Mutex
	invites map[model.InviteID]*inviteState
}

func newInviteRegistry() *inviteRegistry {
	return &inviteRegistry{
		invites: make(map[model.InviteID]*inviteState),
	}
}

func (r *inviteRegistry) add(inv model.Invite, timer clock.Timer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invites[inv.ID] = &inviteState{Invite: inv, timer: timer}
}

// get returns a pending invite without consuming it
func (r *inviteRegistry) get(id model.InviteID) (model.Invite, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.invites[id]
	if !ok {
		return model.Invite{}, false
	}
	return st.Invite, true
}

// take atomically consumes an invite, cancelling its expiry timer
func (r *inviteRegistry) take(id model.InviteID) (model.Invite, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.invites[id]
	if !ok {
		return model.Invite{}, false
	}
	delete(r.invites, id)
	if st.timer != nil {
		st.timer.Stop()
	}
	return st.Invite, true
}

// expire removes an invite from a fired timer. It returns false when
// the invite already reached a terminal outcome, in which case the
// expiry must have no effect.
func (r *inviteRegistry) expire(id model.InviteID) (model.Invite, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.invites[id]
	if !ok {
		return model.Invite{}, false
	}
	delete(r.invites, id)
	return st.Invite, true
}

// discardFor drops every invite where the user is sender or recipient,
// cancelling their timers. Used on disconnect; no notifications are due.
func (r *inviteRegistry) discardFor(id model.UserID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for inviteID, st := range r.invites {
		if st.FromID == id || st.ToID == id {
			delete(r.invites, inviteID)
			if st.timer != nil {
				st.timer.Stop()
			}
		}
	}
}

func (r *inviteRegistry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.invites)
}
