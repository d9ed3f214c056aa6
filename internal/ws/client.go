package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wordduel/wordduel/internal/coordinator"
	"github.com/wordduel/wordduel/internal/model"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Ping period; must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound message size in bytes
	maxMessageSize = 4096

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

// Client is one live websocket connection. It serializes all writes
// through its send channel so the coordinator and the hub can deliver
// events from any goroutine.
type Client struct {
	ws     *websocket.Conn
	send   chan []byte
	logger *slog.Logger

	closeOnce sync.Once
}

// Ensure Client satisfies the coordinator's connection handle
var _ coordinator.Conn = (*Client)(nil)

func newClient(ws *websocket.Conn, logger *slog.Logger) *Client {
	return &Client{
		ws:     ws,
		send:   make(chan []byte, sendBufferSize),
		logger: logger,
	}
}

// Send queues an event frame for delivery. It never blocks; a client
// whose buffer is full drops the event.
func (c *Client) Send(event model.EventType, payload any) {
	frame, err := model.NewFrame(event, payload)
	if err != nil {
		c.logger.Error("could not encode frame",
			slog.String("event", string(event)),
			slog.String("error", err.Error()))
		return
	}
	data, err := json.Marshal(frame)
	if err != nil {
		c.logger.Error("could not encode frame",
			slog.String("event", string(event)),
			slog.String("error", err.Error()))
		return
	}
	c.enqueue(data)
}

func (c *Client) enqueue(data []byte) {
	defer func() {
		// The send channel closes when the client unregisters; a late
		// delivery from a broadcast is dropped rather than propagated
		_ = recover()
	}()
	select {
	case c.send <- data:
	default:
		c.logger.Warn("event dropped, client buffer full")
	}
}

// close tears down the underlying connection once
func (c *Client) close() {
	c.closeOnce.Do(func() {
		_ = c.ws.Close()
	})
}

// readPump reads frames off the wire and hands them to onFrame until the
// connection dies. It runs on the connection's handler goroutine.
func (c *Client) readPump(onFrame func(model.Frame)) {
	defer c.close()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("read error", slog.String("error", err.Error()))
			}
			return
		}

		var frame model.Frame
		if err := json.Unmarshal(data, &frame); err != nil || frame.Event == "" {
			c.Send(model.EventError, model.ErrorPayload{Message: coordinator.ErrMalformedPayload.Error()})
			continue
		}
		onFrame(frame)
	}
}

// writePump drains the send channel onto the wire and keeps the
// connection alive with pings. It exits when the send channel closes or
// a write fails.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
