package api

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ironsight/internal/game"
)

// Server is the public HTTP and WebSocket front of one game server.
type Server struct {
	engine      *game.Engine
	router      *chi.Mux
	wsHub       *WebSocketHub
	rateLimiter *IPRateLimiter
}

// ServerOptions configures the public server.
type ServerOptions struct {
	MaxPlayers      int
	InputsPerSecond int
	Stats           StatsInterface
}

// NewServer wires the router and hub. No goroutines or listeners start until
// Start; tests can construct a Server and use Router with httptest.
func NewServer(engine *game.Engine, opts ServerOptions) *Server {
	if opts.MaxPlayers <= 0 {
		opts.MaxPlayers = 64
	}
	if opts.InputsPerSecond <= 0 {
		opts.InputsPerSecond = 120
	}

	s := &Server{
		engine:      engine,
		wsHub:       NewWebSocketHub(engine, opts.MaxPlayers, opts.InputsPerSecond),
		rateLimiter: NewIPRateLimiter(DefaultRateLimitConfig),
	}

	s.router = NewRouter(RouterConfig{
		Engine:      engine,
		Stats:       opts.Stats,
		RateLimiter: s.rateLimiter,
	})
	s.router.Get("/ws", s.handleWS)

	// The hub is the snapshot sink: every tick's result fans out to clients.
	engine.SetSnapshotFunc(s.wsHub.BroadcastSnapshot)

	return s
}

// Hub exposes the WebSocket hub, mainly for metrics polling.
func (s *Server) Hub() *WebSocketHub {
	return s.wsHub
}

// Start launches the hub and serves HTTP on addr. Blocks.
func (s *Server) Start(addr string) error {
	go s.wsHub.Run()

	log.Printf("🌐 Game server listening on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

// Router returns the handler for httptest use.
func (s *Server) Router() http.Handler {
	return s.router
}

// Stop shuts down background workers.
func (s *Server) Stop() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	s.wsHub.HandleWebSocket(w, r)
}
