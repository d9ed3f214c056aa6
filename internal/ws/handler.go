package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/wordduel/wordduel/internal/auth"
	"github.com/wordduel/wordduel/internal/coordinator"
	"github.com/wordduel/wordduel/internal/model"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handler upgrades authenticated HTTP requests to websocket sessions and
// bridges them to the coordinator.
type Handler struct {
	coordinator *coordinator.Coordinator
	hub         *Hub
	verifier    auth.Verifier
	logger      *slog.Logger
}

// NewHandler creates a websocket handler
func NewHandler(coord *coordinator.Coordinator, hub *Hub, verifier auth.Verifier, logger *slog.Logger) *Handler {
	return &Handler{
		coordinator: coord,
		hub:         hub,
		verifier:    verifier,
		logger:      logger.With(slog.String("component", "ws")),
	}
}

// Serve is the /ws endpoint. The credential is checked before the
// upgrade; a request that fails verification never reaches the
// coordinator.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	identity, err := h.verifier.Verify(tokenFromRequest(r))
	if err != nil {
		status := http.StatusUnauthorized
		if !errors.Is(err, auth.ErrMissingToken) && !errors.Is(err, auth.ErrInvalidToken) {
			status = http.StatusInternalServerError
		}
		h.logger.Info("connection refused", slog.String("error", err.Error()))
		writeJSONError(w, status, err.Error())
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response
		h.logger.Warn("upgrade failed", slog.String("error", err.Error()))
		return
	}

	client := newClient(ws, h.logger.With(slog.String("user_id", string(identity.UserID))))
	sess := &coordinator.Session{
		Conn:   client,
		UserID: identity.UserID,
		Email:  identity.Email,
	}

	h.hub.Register(client)
	h.coordinator.Connect(r.Context(), sess)

	go client.writePump()
	client.readPump(func(frame model.Frame) {
		h.coordinator.Dispatch(context.Background(), sess, frame)
	})

	// readPump returned, the connection is gone
	h.coordinator.Disconnect(context.Background(), sess)
	h.hub.Unregister(client)
}

// tokenFromRequest pulls the credential from the Authorization header or
// the token query parameter. Browser websocket clients cannot set
// headers, so the query form is the common path.
func tokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return token
		}
	}
	return r.URL.Query().Get("token")
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
