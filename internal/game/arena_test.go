package game

import (
	"os"
	"path/filepath"
	"testing"

	"ironsight/internal/game/geom"
)

// TestDefaultArena tests that the built-in map passes its own validation
func TestDefaultArena(t *testing.T) {
	a := DefaultArena()
	if err := a.Validate(); err != nil {
		t.Fatalf("default arena invalid: %v", err)
	}
	if len(a.SpawnPoints) == 0 || len(a.Obstacles) == 0 {
		t.Error("default arena should have spawns and obstacles")
	}
}

// TestLoadArena tests the YAML load path
func TestLoadArena(t *testing.T) {
	doc := `
name: testmap
bounds:
  min: {x: -10, y: 0, z: -10}
  max: {x: 10, y: 5, z: 10}
obstacles:
  - position: {x: 0, y: 1, z: 0}
    size: {x: 2, y: 2, z: 2}
    type: crate
spawnPoints:
  - {x: -5, y: 0, z: -5}
  - {x: 5, y: 0, z: 5}
`
	path := filepath.Join(t.TempDir(), "arena.yaml")
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	a, err := LoadArena(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if a.Name != "testmap" {
		t.Errorf("expected name testmap, got %q", a.Name)
	}
	if len(a.Obstacles) != 1 || a.Obstacles[0].Type != "crate" {
		t.Errorf("unexpected obstacles: %+v", a.Obstacles)
	}
	if len(a.SpawnPoints) != 2 {
		t.Errorf("expected 2 spawn points, got %d", len(a.SpawnPoints))
	}
}

// TestLoadArenaRejectsBadMaps tests the validation failures
func TestLoadArenaRejectsBadMaps(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			"degenerate bounds",
			`
name: bad
bounds:
  min: {x: 10, y: 0, z: 0}
  max: {x: -10, y: 5, z: 10}
spawnPoints:
  - {x: 0, y: 0, z: 0}
`,
		},
		{
			"no spawn points",
			`
name: bad
bounds:
  min: {x: -10, y: 0, z: -10}
  max: {x: 10, y: 5, z: 10}
`,
		},
		{
			"spawn outside bounds",
			`
name: bad
bounds:
  min: {x: -10, y: 0, z: -10}
  max: {x: 10, y: 5, z: 10}
spawnPoints:
  - {x: 100, y: 0, z: 0}
`,
		},
		{
			"zero-size obstacle",
			`
name: bad
bounds:
  min: {x: -10, y: 0, z: -10}
  max: {x: 10, y: 5, z: 10}
obstacles:
  - position: {x: 0, y: 0, z: 0}
    size: {x: 0, y: 0, z: 0}
spawnPoints:
  - {x: 0, y: 0, z: 0}
`,
		},
		{
			"not yaml",
			`{{{{`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "arena.yaml")
			if err := os.WriteFile(path, []byte(tt.doc), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadArena(path); err == nil {
				t.Error("expected a load error")
			}
		})
	}
}

// TestLoadArenaMissingFile tests the read error path
func TestLoadArenaMissingFile(t *testing.T) {
	if _, err := LoadArena("/nonexistent/arena.yaml"); err == nil {
		t.Error("expected an error for a missing file")
	}
}

// TestSpawnPointWraps tests deterministic wrap-around selection
func TestSpawnPointWraps(t *testing.T) {
	a := DefaultArena()
	n := len(a.SpawnPoints)

	if a.SpawnPoint(0) != a.SpawnPoints[0] {
		t.Error("index 0 should be the first spawn")
	}
	if a.SpawnPoint(n) != a.SpawnPoints[0] {
		t.Error("index n should wrap to the first spawn")
	}
	if a.SpawnPoint(n+2) != a.SpawnPoints[2] {
		t.Error("index n+2 should wrap to the third spawn")
	}
	if a.SpawnPoint(-1) != a.SpawnPoints[1%n] {
		t.Error("negative indexes should still resolve")
	}
}

// TestObstacleBounds tests the center+size box construction
func TestObstacleBounds(t *testing.T) {
	o := Obstacle{Position: geom.Vector3{X: 1, Y: 2, Z: 3}, Size: geom.Vector3{X: 2, Y: 4, Z: 6}}
	box := o.Bounds()
	wantMin := geom.Vector3{X: 0, Y: 0, Z: 0}
	wantMax := geom.Vector3{X: 2, Y: 4, Z: 6}
	if !box.Min.ApproxEqual(wantMin) || !box.Max.ApproxEqual(wantMax) {
		t.Errorf("expected %+v..%+v, got %+v..%+v", wantMin, wantMax, box.Min, box.Max)
	}
}
