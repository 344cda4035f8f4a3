package api

import (
	"net/http"

	"github.com/fogleman/gg"
)

const (
	viewWidth  = 800
	viewHeight = 800
	viewMargin = 20
)

// handleArenaView renders a top-down PNG of the arena and the current world
// state. Debug aid for watching a headless server; the X axis runs right and
// the Z axis runs up.
func (h *routerHandlers) handleArenaView(w http.ResponseWriter, r *http.Request) {
	arena := h.engine.Arena()
	snap := h.engine.SnapshotNow()

	spanX := arena.Bounds.Max.X - arena.Bounds.Min.X
	spanZ := arena.Bounds.Max.Z - arena.Bounds.Min.Z
	scaleX := float64(viewWidth-2*viewMargin) / spanX
	scaleZ := float64(viewHeight-2*viewMargin) / spanZ

	toPx := func(x, z float64) (float64, float64) {
		px := viewMargin + (x-arena.Bounds.Min.X)*scaleX
		py := float64(viewHeight) - viewMargin - (z-arena.Bounds.Min.Z)*scaleZ
		return px, py
	}

	dc := gg.NewContext(viewWidth, viewHeight)

	dc.SetHexColor("#1a1a2e")
	dc.Clear()

	// Arena floor
	x0, y0 := toPx(arena.Bounds.Min.X, arena.Bounds.Max.Z)
	x1, y1 := toPx(arena.Bounds.Max.X, arena.Bounds.Min.Z)
	dc.SetHexColor("#16213e")
	dc.DrawRectangle(x0, y0, x1-x0, y1-y0)
	dc.Fill()

	// Obstacles
	for i := range arena.Obstacles {
		b := arena.Obstacles[i].Bounds()
		ox0, oy0 := toPx(b.Min.X, b.Max.Z)
		ox1, oy1 := toPx(b.Max.X, b.Min.Z)
		dc.SetHexColor("#533483")
		dc.DrawRectangle(ox0, oy0, ox1-ox0, oy1-oy0)
		dc.Fill()
	}

	// Projectiles
	dc.SetHexColor("#ffd700")
	for _, proj := range snap.Projectiles {
		px, py := toPx(proj.Position.X, proj.Position.Z)
		dc.DrawCircle(px, py, 2)
		dc.Fill()
	}

	// Players
	for _, p := range snap.Players {
		px, py := toPx(p.Position.X, p.Position.Z)
		if p.Alive {
			dc.SetHexColor("#4ecdc4")
		} else {
			dc.SetHexColor("#555555")
		}
		dc.DrawCircle(px, py, 6)
		dc.Fill()

		dc.SetHexColor("#ffffff")
		dc.DrawStringAnchored(p.Name, px, py-12, 0.5, 0.5)
	}

	w.Header().Set("Content-Type", "image/png")
	if err := dc.EncodePNG(w); err != nil {
		// Headers are already written; nothing left to report to the client.
		return
	}
}
