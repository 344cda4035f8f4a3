package game

import (
	"fmt"

	"ironsight/internal/game/geom"
)

// Projectile is a server-side bullet. It moves in a straight line at constant
// speed; gravity does not apply. Collision is swept over the segment each tick
// travels, so fast projectiles cannot tunnel through walls or players.
type Projectile struct {
	ID        string `json:"id"`
	OwnerID   string `json:"ownerId"`
	OwnerName string `json:"-"`
	WeaponID  string `json:"weaponId"`

	Position geom.Vector3 `json:"position"`
	Vel      geom.Vector3 `json:"velocity"`

	Damage   int     `json:"-"`
	MaxRange float64 `json:"-"`

	traveled float64
}

// NewProjectile materializes a spawn request into an entity. tick seeds the ID
// so projectiles spawned on the same tick by different owners stay distinct.
func NewProjectile(req ProjectileSpawnRequest, tick uint64) *Projectile {
	return &Projectile{
		ID:        fmt.Sprintf("proj_%d_%s", tick, req.OwnerID),
		OwnerID:   req.OwnerID,
		OwnerName: req.OwnerName,
		WeaponID:  req.WeaponID,
		Position:  req.Origin,
		Vel:       req.Direction.Scale(req.Speed),
		Damage:    req.Damage,
		MaxRange:  req.Range,
	}
}

// Step advances the projectile by dt and returns the segment it swept through
// plus whether its range is exhausted after the move. The engine runs hit
// tests over (prev, delta) before honoring expired.
func (p *Projectile) Step(dt float64) (prev, delta geom.Vector3, expired bool) {
	prev = p.Position
	delta = p.Vel.Scale(dt)
	p.Position = prev.Add(delta)
	p.traveled += delta.Length()
	return prev, delta, p.traveled >= p.MaxRange
}

// Traveled reports the total distance covered so far.
func (p *Projectile) Traveled() float64 {
	return p.traveled
}
