package api

import (
	"fmt"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics with bounded cardinality (no per-player labels).
var (
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sim_tick_duration_seconds",
		Help:    "Time spent advancing one simulation tick",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05},
	})

	playerCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sim_player_count",
		Help: "Current number of players in the arena",
	})

	projectileCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sim_projectile_count",
		Help: "Current number of live projectiles",
	})

	killsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sim_kills_total",
		Help: "Kills since server start",
	})

	connectionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connection_rejected_total",
		Help: "Connections rejected by rate limiter or origin check",
	}, []string{"reason"}) // bounded: "rate_limit", "origin", "ws_total_limit", "ws_ip_limit"

	inputsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inputs_dropped_total",
		Help: "Client inputs discarded before reaching the simulation",
	}, []string{"reason"}) // bounded: "malformed", "rate_limit", "stale_seq", "no_player", "bad_name", "unknown_type"

	snapshotsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snapshots_dropped_total",
		Help: "Snapshot frames skipped for slow consumers",
	})

	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "websocket_connections_active",
		Help: "Currently active WebSocket connections",
	})

	wsMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "websocket_messages_total",
		Help: "Total WebSocket broadcasts sent",
	})
)

// StartDebugServer starts the localhost-only observability server with
// Prometheus metrics and pprof. Binding anywhere but localhost requires an
// explicit env override.
func StartDebugServer(enabled bool, port int) error {
	if !enabled {
		log.Println("📊 Debug server disabled")
		return nil
	}

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	if os.Getenv("ALLOW_DEBUG_EXTERNAL") == "true" {
		addr = fmt.Sprintf(":%d", port)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	go func() {
		log.Printf("📊 Debug server starting on %s", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Printf("⚠️ Debug server error: %v", err)
		}
	}()

	return nil
}

// RecordTick records one tick's duration.
func RecordTick(duration time.Duration) {
	tickDuration.Observe(duration.Seconds())
}

// UpdateSimGauges refreshes the world-size gauges.
func UpdateSimGauges(players, projectiles, kills int) {
	playerCount.Set(float64(players))
	projectileCount.Set(float64(projectiles))
	killsTotal.Set(float64(kills))
}

// RecordConnectionRejected increments the rejection counter for a bounded
// reason label.
func RecordConnectionRejected(reason string) {
	connectionRejected.WithLabelValues(reason).Inc()
}

// RecordInputDropped counts an input discarded before the simulation saw it.
func RecordInputDropped(reason string) {
	inputsDropped.WithLabelValues(reason).Inc()
}

// RecordSnapshotDropped counts a snapshot frame skipped for a slow consumer.
func RecordSnapshotDropped() {
	snapshotsDropped.Inc()
}

// UpdateWSConnections updates the WebSocket connection gauge.
func UpdateWSConnections(count int) {
	wsConnectionsActive.Set(float64(count))
}

// IncrementWSMessages increments the broadcast counter.
func IncrementWSMessages() {
	wsMessagesTotal.Inc()
}
