package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/wordduel/wordduel/internal/coordinator"
	"github.com/wordduel/wordduel/internal/model"
)

// Hub maintains the set of live connections and fans events out to them.
// All clients share one hub; presence transitions reach every connection
// regardless of room membership.
type Hub struct {
	clients map[*Client]time.Time
	mu      sync.RWMutex
	logger  *slog.Logger

	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcastMsg
	done       chan struct{}
}

type broadcastMsg struct {
	except *Client
	data   []byte
}

// Ensure Hub satisfies the coordinator's fan-out interface
var _ coordinator.Broadcaster = (*Hub)(nil)

// NewHub creates a hub. Call Run on its own goroutine before serving
// connections.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]time.Time),
		logger:     logger.With(slog.String("component", "hub")),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcastMsg, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	h.logger.Info("hub started")
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = time.Now()
			clientCount := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("client registered", slog.Int("total_clients", clientCount))

		case client := <-h.unregister:
			h.mu.Lock()
			connectedAt, ok := h.clients[client]
			if ok {
				delete(h.clients, client)
				close(client.send)
			}
			clientCount := len(h.clients)
			h.mu.Unlock()
			if ok {
				h.logger.Info("client unregistered",
					slog.Duration("connection_duration", time.Since(connectedAt)),
					slog.Int("total_clients", clientCount))
			}

		case msg := <-h.broadcast:
			h.mu.RLock()
			dropped := 0
			for client := range h.clients {
				if client == msg.except {
					continue
				}
				select {
				case client.send <- msg.data:
				default:
					dropped++
				}
			}
			h.mu.RUnlock()
			if dropped > 0 {
				h.logger.Warn("broadcast partially dropped", slog.Int("dropped", dropped))
			}

		case <-h.done:
			h.mu.Lock()
			clientCount := len(h.clients)
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.logger.Info("hub stopped", slog.Int("disconnected_clients", clientCount))
			return
		}
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Unregister removes a client and closes its send channel
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// BroadcastExcept delivers an event to every client but the excluded
// connection. Delivery is best-effort; the hub never blocks the caller.
func (h *Hub) BroadcastExcept(except coordinator.Conn, event model.EventType, payload any) {
	frame, err := model.NewFrame(event, payload)
	if err != nil {
		h.logger.Error("could not encode broadcast frame",
			slog.String("event", string(event)),
			slog.String("error", err.Error()))
		return
	}
	data, err := json.Marshal(frame)
	if err != nil {
		h.logger.Error("could not encode broadcast frame",
			slog.String("event", string(event)),
			slog.String("error", err.Error()))
		return
	}

	exceptClient, _ := except.(*Client)
	select {
	case h.broadcast <- broadcastMsg{except: exceptClient, data: data}:
	default:
		h.logger.Warn("broadcast dropped, hub buffer full", slog.String("event", string(event)))
	}
}

// Close shuts down the hub and disconnects all clients
func (h *Hub) Close() {
	close(h.done)
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
