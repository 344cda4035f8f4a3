package game

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"ironsight/internal/game/geom"
)

// Obstacle is a static axis-aligned block in the arena. Obstacles never move;
// their boxes are rebuilt from center+size on every query so the collision
// engine and the debug renderer share one source of truth.
type Obstacle struct {
	Position geom.Vector3 `yaml:"position" json:"position"` // center
	Size     geom.Vector3 `yaml:"size" json:"size"`
	Type     string       `yaml:"type" json:"type"` // "crate", "wall", ... opaque to the core
}

// Bounds returns the obstacle's AABB.
func (o *Obstacle) Bounds() geom.AABB {
	return geom.NewAABBFromCenter(o.Position, o.Size)
}

// Arena is the read-only world contract consumed by the simulation: the
// playable bounds, the static obstacle set and the spawn points. The core
// never mutates an Arena after load.
type Arena struct {
	Name        string         `yaml:"name" json:"name"`
	Bounds      geom.AABB      `yaml:"bounds" json:"bounds"`
	Obstacles   []Obstacle     `yaml:"obstacles" json:"obstacles"`
	SpawnPoints []geom.Vector3 `yaml:"spawnPoints" json:"spawnPoints"`
}

// DefaultArena returns a small symmetric arena used when no map file is
// configured and by most tests.
func DefaultArena() *Arena {
	return &Arena{
		Name: "quarry",
		Bounds: geom.AABB{
			Min: geom.Vector3{X: -40, Y: 0, Z: -40},
			Max: geom.Vector3{X: 40, Y: 20, Z: 40},
		},
		Obstacles: []Obstacle{
			{Position: geom.Vector3{X: 0, Y: 1.5, Z: 0}, Size: geom.Vector3{X: 4, Y: 3, Z: 4}, Type: "crate"},
			{Position: geom.Vector3{X: -15, Y: 2, Z: 10}, Size: geom.Vector3{X: 8, Y: 4, Z: 2}, Type: "wall"},
			{Position: geom.Vector3{X: 15, Y: 2, Z: -10}, Size: geom.Vector3{X: 8, Y: 4, Z: 2}, Type: "wall"},
			{Position: geom.Vector3{X: 20, Y: 1, Z: 20}, Size: geom.Vector3{X: 2, Y: 2, Z: 2}, Type: "crate"},
			{Position: geom.Vector3{X: -20, Y: 1, Z: -20}, Size: geom.Vector3{X: 2, Y: 2, Z: 2}, Type: "crate"},
		},
		SpawnPoints: []geom.Vector3{
			{X: -30, Y: 0, Z: -30},
			{X: 30, Y: 0, Z: 30},
			{X: -30, Y: 0, Z: 30},
			{X: 30, Y: 0, Z: -30},
			{X: 0, Y: 0, Z: -30},
			{X: 0, Y: 0, Z: 30},
		},
	}
}

// LoadArena reads an arena definition from a YAML file.
func LoadArena(path string) (*Arena, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read arena file: %w", err)
	}

	var a Arena
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parse arena file %s: %w", path, err)
	}
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("arena %s: %w", path, err)
	}
	return &a, nil
}

// Validate checks the invariants the simulation relies on.
func (a *Arena) Validate() error {
	if a.Bounds.Max.X <= a.Bounds.Min.X ||
		a.Bounds.Max.Y <= a.Bounds.Min.Y ||
		a.Bounds.Max.Z <= a.Bounds.Min.Z {
		return fmt.Errorf("degenerate bounds %+v", a.Bounds)
	}
	if len(a.SpawnPoints) == 0 {
		return fmt.Errorf("no spawn points")
	}
	for i, o := range a.Obstacles {
		if o.Size.X <= 0 || o.Size.Y <= 0 || o.Size.Z <= 0 {
			return fmt.Errorf("obstacle %d has non-positive size %+v", i, o.Size)
		}
	}
	for i, sp := range a.SpawnPoints {
		if !a.Bounds.Contains(sp) {
			return fmt.Errorf("spawn point %d outside bounds: %+v", i, sp)
		}
	}
	return nil
}

// GroundY is the elevation of the ground plane.
func (a *Arena) GroundY() float64 {
	return a.Bounds.Min.Y
}

// SpawnPoint picks a spawn point by index, wrapping around. Spawn selection is
// deterministic so both replays and tests can rely on it.
func (a *Arena) SpawnPoint(n int) geom.Vector3 {
	if n < 0 {
		n = -n
	}
	return a.SpawnPoints[n%len(a.SpawnPoints)]
}
