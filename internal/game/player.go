package game

import (
	"fmt"
	"math"
	"time"

	"ironsight/internal/game/geom"
)

// RespawnDelay is how long a dead player waits before the engine respawns them.
const RespawnDelay = 3.0

// Player is the authoritative server-side player entity. Position is the
// feet-center point; the body box extends upward from it. All mutation happens
// on the engine tick goroutine under the engine lock, so fields carry no
// per-entity synchronization.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	Position geom.Vector3 `json:"position"`
	Vel      geom.Vector3 `json:"velocity"`
	Yaw      float64      `json:"yaw"`
	Pitch    float64      `json:"pitch"`

	Health    int  `json:"health"`
	MaxHealth int  `json:"maxHealth"`
	Alive     bool `json:"alive"`
	Grounded  bool `json:"grounded"`

	Kills  int `json:"kills"`
	Deaths int `json:"deaths"`

	Weapon *Weapon `json:"weapon"`

	// Seq of the newest input applied this tick, echoed in snapshots so the
	// client can discard acknowledged inputs.
	LastInputSeq uint32 `json:"lastInputSeq"`

	// Counts down while dead; the engine respawns at zero.
	RespawnTimer float64 `json:"-"`

	// spawnCount picks successive spawn points deterministically.
	spawnCount int
}

// NewPlayer creates a live player at the given spawn point carrying the
// default weapon.
func NewPlayer(name string, spawn geom.Vector3) *Player {
	return &Player{
		ID:        fmt.Sprintf("player_%d_%s", time.Now().UnixNano(), name),
		Name:      name,
		Position:  spawn,
		Health:    MaxHealth,
		MaxHealth: MaxHealth,
		Alive:     true,
		Weapon:    NewWeapon(DefaultWeaponID),
	}
}

// MaxHealth is the spawn health of every player.
const MaxHealth = 100

// BoundsAt returns the body box for an arbitrary candidate position.
func (p *Player) BoundsAt(pos geom.Vector3) geom.AABB {
	return BodyBounds(pos)
}

// Bounds returns the body box at the current position.
func (p *Player) Bounds() geom.AABB {
	return BodyBounds(p.Position)
}

// Velocity and SetVelocity satisfy the collision resolver's Collider
// interface.
func (p *Player) Velocity() geom.Vector3     { return p.Vel }
func (p *Player) SetVelocity(v geom.Vector3) { p.Vel = v }

// Hitboxes returns the per-region boxes at the current position.
func (p *Player) Hitboxes() [3]Hitbox {
	return RegionBoxes(p.Position)
}

// EyePosition is where this player's shots originate.
func (p *Player) EyePosition() geom.Vector3 {
	return geom.Vector3{X: p.Position.X, Y: p.Position.Y + EyeHeight, Z: p.Position.Z}
}

// AimDirection converts yaw/pitch to a unit view vector. Yaw 0 looks down +Z,
// positive pitch looks up.
func (p *Player) AimDirection() geom.Vector3 {
	cp := math.Cos(p.Pitch)
	return geom.Vector3{
		X: math.Sin(p.Yaw) * cp,
		Y: math.Sin(p.Pitch),
		Z: math.Cos(p.Yaw) * cp,
	}.Normalize()
}

// TakeDamage applies region-scaled damage and reports whether this hit killed
// the player. Damage on a dead player is ignored, so the death transition runs
// exactly once no matter how many projectiles land on the same tick.
func (p *Player) TakeDamage(base int, region HitRegion) (died bool) {
	if !p.Alive || base <= 0 {
		return false
	}

	dmg := int(math.Round(float64(base) * RegionMultiplier(region)))
	p.Health -= dmg
	if p.Health <= 0 {
		p.Health = 0
		p.die()
		return true
	}
	return false
}

// Heal restores health, clamped to MaxHealth. Dead players cannot be healed.
func (p *Player) Heal(amount int) {
	if !p.Alive || amount <= 0 {
		return
	}
	p.Health += amount
	if p.Health > p.MaxHealth {
		p.Health = p.MaxHealth
	}
}

func (p *Player) die() {
	p.Alive = false
	p.Health = 0
	p.Deaths++
	p.Vel = geom.Zero
	p.RespawnTimer = RespawnDelay
	if p.Weapon != nil {
		p.Weapon.CancelReload()
	}
}

// Respawn returns the player to play at the given spawn point with full
// health and a fresh weapon state.
func (p *Player) Respawn(spawn geom.Vector3) {
	p.Alive = true
	p.Health = p.MaxHealth
	p.Position = spawn
	p.Vel = geom.Zero
	p.Grounded = false
	p.RespawnTimer = 0
	p.spawnCount++
	if p.Weapon != nil {
		p.Weapon.Reset()
	}
}

// NextSpawnIndex returns a deterministic counter used to rotate through arena
// spawn points.
func (p *Player) NextSpawnIndex() int {
	return p.spawnCount
}
