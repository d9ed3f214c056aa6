package coordinator

import (
	"github.com/wordduel/wordduel/internal/model"
)

// Conn is a live transport-level handle. The coordinator references
// connections but never owns them; after the transport invalidates one,
// sends become no-ops rather than failures.
type Conn interface {
	// Send queues an event for delivery to this connection. It must not
	// block the caller; slow or dead connections drop the event.
	Send(event model.EventType, payload any)
}

// Broadcaster fans an event out to every live connection except one,
// typically the connection that triggered the event.
type Broadcaster interface {
	BroadcastExcept(except Conn, event model.EventType, payload any)
}

// Session binds an authenticated identity to a connection for the
// remainder of its life. It is created once per connection, after the
// credential check, and before any event is accepted.
type Session struct {
	Conn   Conn
	UserID model.UserID
	Email  string
}
