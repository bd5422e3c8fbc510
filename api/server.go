// Package api exposes the engine over HTTP: one authenticated SSE stream
// per client, plus unauthenticated health and stats endpoints.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"notify-lab/auth"
	"notify-lab/contract"
	"notify-lab/observability"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Server struct {
	log      *slog.Logger
	registry contract.IRegistry
	tokens   *auth.TokenManager
	stats    *observability.MonitoringManager

	shutdown     chan struct{}
	shutdownOnce sync.Once
}

func NewServer(log *slog.Logger, registry contract.IRegistry,
	tokens *auth.TokenManager, stats *observability.MonitoringManager) *Server {
	return &Server{
		log:      log,
		registry: registry,
		tokens:   tokens,
		stats:    stats,
		shutdown: make(chan struct{}),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/statsz", s.handleStats)

	r.Group(func(r chi.Router) {
		r.Use(s.Authenticate)
		r.Get("/events", s.handleEvents)
	})

	return r
}

// Shutdown tells every open stream loop to terminate. http.Server.Shutdown
// alone would wait forever on streams that never end by themselves.
func (s *Server) Shutdown() {
	s.shutdownOnce.Do(func() { close(s.shutdown) })
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.stats.Snapshot())
}
