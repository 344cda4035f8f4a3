package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ironsight/internal/game"
	"ironsight/internal/stats"
)

type fakeStats struct {
	rows []stats.PlayerRecord
	err  error
}

func (f *fakeStats) TopPlayers(limit int) ([]stats.PlayerRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.rows) {
		return f.rows[:limit], nil
	}
	return f.rows, nil
}

func testRouter(t *testing.T, statsIface StatsInterface) (http.Handler, *game.Engine) {
	t.Helper()
	engine := game.NewEngine(game.DefaultArena(), 30)
	cfg := RateLimitConfig{RequestsPerSecond: 10000, Burst: 10000, CleanupInterval: DefaultRateLimitConfig.CleanupInterval}
	r := NewRouter(RouterConfig{
		Engine:          engine,
		Stats:           statsIface,
		RateLimitConfig: &cfg,
		DisableLogging:  true,
	})
	return r, engine
}

func get(t *testing.T, r http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	req.RemoteAddr = "192.168.1.10:12345"
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// TestHealthEndpoint tests the liveness probe
func TestHealthEndpoint(t *testing.T) {
	r, _ := testRouter(t, nil)
	rec := get(t, r, "/healthz")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "OK" {
		t.Errorf("expected OK, got %q", rec.Body.String())
	}
}

// TestStateEndpoint tests the snapshot shape over HTTP
func TestStateEndpoint(t *testing.T) {
	r, engine := testRouter(t, nil)
	engine.AddPlayer("alice")

	rec := get(t, r, "/api/state")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var snap game.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if len(snap.Players) != 1 || snap.Players[0].Name != "alice" {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
}

// TestStatsEndpoint tests the counters payload
func TestStatsEndpoint(t *testing.T) {
	r, engine := testRouter(t, nil)
	engine.AddPlayer("alice")
	engine.AddPlayer("bob")

	rec := get(t, r, "/api/stats")
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if body["playerCount"].(float64) != 2 {
		t.Errorf("expected 2 players, got %v", body["playerCount"])
	}
	if body["tickRate"].(float64) != 30 {
		t.Errorf("expected tick rate 30, got %v", body["tickRate"])
	}
}

// TestLeaderboardEndpoint tests kill-sorted ordering
func TestLeaderboardEndpoint(t *testing.T) {
	r, engine := testRouter(t, nil)
	a := engine.AddPlayer("alice")
	b := engine.AddPlayer("bob")
	a.Kills = 1
	b.Kills = 5

	rec := get(t, r, "/api/leaderboard")
	var board []game.PlayerState
	if err := json.Unmarshal(rec.Body.Bytes(), &board); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if len(board) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(board))
	}
	if board[0].Name != "bob" || board[1].Name != "alice" {
		t.Errorf("wrong order: %s, %s", board[0].Name, board[1].Name)
	}
}

// TestWeaponsEndpoint tests the catalog listing
func TestWeaponsEndpoint(t *testing.T) {
	r, _ := testRouter(t, nil)

	rec := get(t, r, "/api/weapons")
	var weapons []game.WeaponStats
	if err := json.Unmarshal(rec.Body.Bytes(), &weapons); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if len(weapons) != len(game.WeaponCatalog) {
		t.Fatalf("expected %d weapons, got %d", len(game.WeaponCatalog), len(weapons))
	}
	for i := 1; i < len(weapons); i++ {
		if weapons[i-1].ID >= weapons[i].ID {
			t.Errorf("catalog not sorted: %s before %s", weapons[i-1].ID, weapons[i].ID)
		}
	}
}

// TestArenaEndpoint tests the map payload
func TestArenaEndpoint(t *testing.T) {
	r, _ := testRouter(t, nil)

	rec := get(t, r, "/api/arena")
	var arena game.Arena
	if err := json.Unmarshal(rec.Body.Bytes(), &arena); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if arena.Name != "quarry" {
		t.Errorf("expected the default arena, got %q", arena.Name)
	}
}

// TestArenaViewEndpoint tests the rendered minimap
func TestArenaViewEndpoint(t *testing.T) {
	r, engine := testRouter(t, nil)
	engine.AddPlayer("alice")

	rec := get(t, r, "/api/arena/view.png")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("expected image/png, got %q", ct)
	}
	if rec.Body.Len() == 0 {
		t.Error("empty image body")
	}
}

// TestTopPlayersEndpoint tests the persisted leaderboard wiring
func TestTopPlayersEndpoint(t *testing.T) {
	fake := &fakeStats{rows: []stats.PlayerRecord{
		{Name: "alice", Kills: 9, Deaths: 2},
		{Name: "bob", Kills: 3, Deaths: 7},
	}}
	r, _ := testRouter(t, fake)

	rec := get(t, r, "/api/stats/top?limit=1")
	var rows []stats.PlayerRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "alice" {
		t.Errorf("unexpected rows: %+v", rows)
	}
}

// TestTopPlayersHiddenWithoutStore tests that the route vanishes with no store
func TestTopPlayersHiddenWithoutStore(t *testing.T) {
	r, _ := testRouter(t, nil)
	rec := get(t, r, "/api/stats/top")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 without a stats store, got %d", rec.Code)
	}
}

// TestRateLimitRejects tests the 429 path
func TestRateLimitRejects(t *testing.T) {
	engine := game.NewEngine(game.DefaultArena(), 30)
	cfg := RateLimitConfig{RequestsPerSecond: 1, Burst: 2, CleanupInterval: DefaultRateLimitConfig.CleanupInterval}
	r := NewRouter(RouterConfig{Engine: engine, RateLimitConfig: &cfg, DisableLogging: true})

	var last int
	for i := 0; i < 5; i++ {
		last = get(t, r, "/healthz").Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("expected 429 after the burst, got %d", last)
	}
}
