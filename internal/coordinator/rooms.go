package coordinator

import (
	"sync"

	"github.com/wordduel/wordduel/internal/model"
)

// roomState is the single source of truth for one live match. Round
// state is guarded by the room's own mutex so unrelated rooms progress
// independently. The pending flags ensure a scheduled round start or
// keyword rotation is in flight at most once.
type roomState struct {
	mu sync.Mutex
	model.Room

	startPending  bool
	rotatePending bool
}

// roomRegistry is the central room table keyed by roomId, with a
// secondary userId index. Both participants' index entries resolve to
// the same roomState instance.
type roomRegistry struct {
	mu     sync.RWMutex
	rooms  map[model.RoomID]*roomState
	byUser map[model.UserID]model.RoomID
}

func newRoomRegistry() *roomRegistry {
	return &roomRegistry{
		rooms:  make(map[model.RoomID]*roomState),
		byUser: make(map[model.UserID]model.RoomID),
	}
}

// create inserts a room, enforcing that a user appears in at most one
// room at a time
func (r *roomRegistry) create(room *roomState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.byUser[room.Player1ID]; busy {
		return model.ErrAlreadyInRoom
	}
	if _, busy := r.byUser[room.Player2ID]; busy {
		return model.ErrAlreadyInRoom
	}
	r.rooms[room.ID] = room
	r.byUser[room.Player1ID] = room.ID
	r.byUser[room.Player2ID] = room.ID
	return nil
}

func (r *roomRegistry) byID(id model.RoomID) (*roomState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[id]
	return room, ok
}

func (r *roomRegistry) byUserID(id model.UserID) (*roomState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	roomID, ok := r.byUser[id]
	if !ok {
		return nil, false
	}
	room, ok := r.rooms[roomID]
	return room, ok
}

// remove tears a room down, clearing only index entries that still
// point at it
func (r *roomRegistry) remove(id model.RoomID) (*roomState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[id]
	if !ok {
		return nil, false
	}
	delete(r.rooms, id)
	if r.byUser[room.Player1ID] == id {
		delete(r.byUser, room.Player1ID)
	}
	if r.byUser[room.Player2ID] == id {
		delete(r.byUser, room.Player2ID)
	}
	return room, true
}

func (r *roomRegistry) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
