package api

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"

	"ironsight/internal/game"
)

func (h *routerHandlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.engine.SnapshotNow())
}

func (h *routerHandlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	players, projectiles, kills := h.engine.Counts()
	writeJSON(w, map[string]interface{}{
		"playerCount":     players,
		"projectileCount": projectiles,
		"totalKills":      kills,
		"tick":            h.engine.TickCount(),
		"tickRate":        h.engine.TickRate(),
	})
}

func (h *routerHandlers) handleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.SnapshotNow()

	players := snap.Players
	sort.SliceStable(players, func(i, j int) bool {
		if players[i].Kills != players[j].Kills {
			return players[i].Kills > players[j].Kills
		}
		return players[i].Name < players[j].Name
	})

	limit := 10
	if len(players) < limit {
		limit = len(players)
	}
	writeJSON(w, players[:limit])
}

func (h *routerHandlers) handleGetArena(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.engine.Arena())
}

func (h *routerHandlers) handleGetWeapons(w http.ResponseWriter, r *http.Request) {
	weapons := make([]game.WeaponStats, 0, len(game.WeaponCatalog))
	for _, ws := range game.WeaponCatalog {
		weapons = append(weapons, ws)
	}
	sort.Slice(weapons, func(i, j int) bool { return weapons[i].ID < weapons[j].ID })
	writeJSON(w, weapons)
}

func (h *routerHandlers) handleJournalStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.engine.JournalStats())
}

func (h *routerHandlers) handleTopPlayers(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if q := r.URL.Query().Get("limit"); q != "" {
		if n, err := strconv.Atoi(q); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	rows, err := h.stats.TopPlayers(limit)
	if err != nil {
		writeError(w, "stats unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, rows)
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
