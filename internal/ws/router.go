package ws

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wordduel/wordduel/internal/auth"
	"github.com/wordduel/wordduel/internal/coordinator"
	"github.com/wordduel/wordduel/internal/middleware"
)

// RouterConfig holds configuration for the game server router
type RouterConfig struct {
	Logger      *slog.Logger
	Coordinator *coordinator.Coordinator
	Hub         *Hub
	Verifier    auth.Verifier
}

// NewRouter creates the HTTP router for the game server
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger, middleware.DefaultPanicHandler))
	r.Use(middleware.Logging(cfg.Logger))

	handler := NewHandler(cfg.Coordinator, cfg.Hub, cfg.Verifier, cfg.Logger)

	r.HandleFunc("/ws", handler.Serve).Methods(http.MethodGet)
	r.HandleFunc("/healthz", healthz).Methods(http.MethodGet)

	return r
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
