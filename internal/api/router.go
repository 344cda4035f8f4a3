package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"ironsight/internal/game"
	"ironsight/internal/stats"
)

// EngineInterface is the slice of the engine the HTTP layer needs. Tests mock
// this instead of running the tick loop.
type EngineInterface interface {
	SnapshotNow() game.Snapshot
	Counts() (players, projectiles, kills int)
	TickCount() uint64
	TickRate() int
	Arena() *game.Arena
	JournalStats() map[string]interface{}
}

// StatsInterface is the slice of the persistent stats store the HTTP layer
// needs. Nil disables the stats endpoints.
type StatsInterface interface {
	TopPlayers(limit int) ([]stats.PlayerRecord, error)
}

// RouterConfig carries the router's dependencies.
type RouterConfig struct {
	Engine EngineInterface

	// Stats is optional; nil hides /api/stats/top.
	Stats StatsInterface

	// RateLimiter is optional; nil builds one from RateLimitConfig or
	// defaults.
	RateLimiter     *IPRateLimiter
	RateLimitConfig *RateLimitConfig

	// CORSOrigins overrides the default localhost-only origins.
	CORSOrigins []string

	// DisableLogging drops the request logger, for benchmarks.
	DisableLogging bool
}

type routerHandlers struct {
	engine EngineInterface
	stats  StatsInterface
}

// NewRouter constructs the HTTP router. It is pure: no goroutines, no
// listeners, safe for httptest.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	// Rate limiting before CORS so floods are rejected cheaply.
	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = []string{
			"http://localhost:*",
			"http://127.0.0.1:*",
		}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	h := &routerHandlers{engine: cfg.Engine, stats: cfg.Stats}

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", h.handleGetState)
		r.Get("/stats", h.handleGetStats)
		r.Get("/leaderboard", h.handleGetLeaderboard)

		r.Get("/arena", h.handleGetArena)
		r.Get("/arena/view.png", h.handleArenaView)

		r.Get("/weapons", h.handleGetWeapons)
		r.Get("/journal", h.handleJournalStats)

		if cfg.Stats != nil {
			r.Get("/stats/top", h.handleTopPlayers)
		}
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
