package game

import (
	"math"

	"ironsight/internal/game/geom"
)

// pushEpsilon is added to every obstacle push-out so a resolved entity does not
// re-register as overlapping on the next pass.
const pushEpsilon = 1e-3

// degenerateRaySq: below this squared length a sweep segment is treated as a
// point and tested by plain overlap.
const degenerateRaySq = geom.Epsilon * geom.Epsilon

// Collider is the capability interface for entities that participate in
// collision resolution. Boxes are computed at an arbitrary candidate position
// because the resolvers evaluate desired positions before committing them.
type Collider interface {
	BoundsAt(pos geom.Vector3) geom.AABB
	Velocity() geom.Vector3
	SetVelocity(v geom.Vector3)
}

// RayAABB runs a slab test of the segment origin + t*dir, t in [0,1], against
// box. It returns the entry fraction of the last entering axis, or ok=false
// when the interval is empty or lies outside [0,1]. Axis-parallel rays check
// origin-inside-slab per axis. A near-zero-length dir degrades to a point
// overlap test returning t=0.
func RayAABB(origin, dir geom.Vector3, box geom.AABB) (float64, bool) {
	if dir.LengthSq() < degenerateRaySq {
		if box.Contains(origin) {
			return 0, true
		}
		return 0, false
	}

	tMin := 0.0
	tMax := 1.0

	axes := [3]struct {
		o, d, lo, hi float64
	}{
		{origin.X, dir.X, box.Min.X, box.Max.X},
		{origin.Y, dir.Y, box.Min.Y, box.Max.Y},
		{origin.Z, dir.Z, box.Min.Z, box.Max.Z},
	}

	for _, ax := range axes {
		if math.Abs(ax.d) < geom.Epsilon {
			// Parallel to this slab: origin must already be inside it.
			if ax.o < ax.lo || ax.o > ax.hi {
				return 0, false
			}
			continue
		}
		t1 := (ax.lo - ax.o) / ax.d
		t2 := (ax.hi - ax.o) / ax.d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tMin {
			tMin = t1
		}
		if t2 < tMax {
			tMax = t2
		}
		if tMin > tMax {
			return 0, false
		}
	}

	return tMin, true
}

// ResolveWorldBounds clamps the collider's box, evaluated at desired, into
// bounds per axis. The velocity component that drove each clamped axis is
// zeroed so the entity stops pressing into the boundary.
func ResolveWorldBounds(c Collider, desired geom.Vector3, bounds geom.AABB) geom.Vector3 {
	box := c.BoundsAt(desired)
	vel := c.Velocity()
	pos := desired

	if box.Min.X < bounds.Min.X {
		pos.X += bounds.Min.X - box.Min.X
		vel.X = 0
	} else if box.Max.X > bounds.Max.X {
		pos.X -= box.Max.X - bounds.Max.X
		vel.X = 0
	}

	if box.Min.Y < bounds.Min.Y {
		pos.Y += bounds.Min.Y - box.Min.Y
		vel.Y = 0
	} else if box.Max.Y > bounds.Max.Y {
		pos.Y -= box.Max.Y - bounds.Max.Y
		vel.Y = 0
	}

	if box.Min.Z < bounds.Min.Z {
		pos.Z += bounds.Min.Z - box.Min.Z
		vel.Z = 0
	} else if box.Max.Z > bounds.Max.Z {
		pos.Z -= box.Max.Z - bounds.Max.Z
		vel.Z = 0
	}

	c.SetVelocity(vel)
	return pos
}

// ResolveStaticObstacles pushes the collider out of every overlapping obstacle
// along the axis of least overlap, away from the obstacle center, with up to
// three passes to settle multi-obstacle contact. Resolution order follows the
// obstacle slice, which makes dense multi-contact outcomes order-dependent;
// the client and server iterate in the same order so results match.
func ResolveStaticObstacles(c Collider, desired geom.Vector3, obstacles []Obstacle) geom.Vector3 {
	pos := desired

	for pass := 0; pass < 3; pass++ {
		moved := false

		for i := range obstacles {
			ob := obstacles[i].Bounds()
			box := c.BoundsAt(pos)
			if !box.Overlaps(ob) {
				continue
			}

			overlapX := math.Min(box.Max.X, ob.Max.X) - math.Max(box.Min.X, ob.Min.X)
			overlapY := math.Min(box.Max.Y, ob.Max.Y) - math.Max(box.Min.Y, ob.Min.Y)
			overlapZ := math.Min(box.Max.Z, ob.Max.Z) - math.Max(box.Min.Z, ob.Min.Z)

			center := box.Center()
			obCenter := ob.Center()
			vel := c.Velocity()

			switch {
			case overlapX <= overlapY && overlapX <= overlapZ:
				push := overlapX + pushEpsilon
				if center.X < obCenter.X {
					pos.X -= push
					if vel.X > 0 {
						vel.X = 0
					}
				} else {
					pos.X += push
					if vel.X < 0 {
						vel.X = 0
					}
				}
			case overlapY <= overlapX && overlapY <= overlapZ:
				push := overlapY + pushEpsilon
				if center.Y < obCenter.Y {
					pos.Y -= push
					if vel.Y > 0 {
						vel.Y = 0
					}
				} else {
					pos.Y += push
					if vel.Y < 0 {
						vel.Y = 0
					}
				}
			default:
				push := overlapZ + pushEpsilon
				if center.Z < obCenter.Z {
					pos.Z -= push
					if vel.Z > 0 {
						vel.Z = 0
					}
				} else {
					pos.Z += push
					if vel.Z < 0 {
						vel.Z = 0
					}
				}
			}

			c.SetVelocity(vel)
			moved = true
		}

		if !moved {
			break
		}
	}

	return pos
}

// SweptHitObstacles sweeps the segment prev -> prev+delta against every
// obstacle box and returns the obstacle with the globally smallest entry
// fraction.
func SweptHitObstacles(prev, delta geom.Vector3, obstacles []Obstacle) (*Obstacle, float64, bool) {
	var best *Obstacle
	bestT := math.MaxFloat64

	for i := range obstacles {
		if t, ok := RayAABB(prev, delta, obstacles[i].Bounds()); ok && t < bestT {
			bestT = t
			best = &obstacles[i]
		}
	}

	if best == nil {
		return nil, 0, false
	}
	return best, bestT, true
}

// SweptHitPlayers sweeps a projectile's motion segment against the per-region
// hitboxes of every target, skipping the firing owner and dead players. The
// smallest entry fraction wins; the struck region decides the damage
// multiplier.
func SweptHitPlayers(proj *Projectile, prev, delta geom.Vector3, targets []*Player) (*Player, HitRegion, float64, bool) {
	var bestPlayer *Player
	var bestRegion HitRegion
	bestT := math.MaxFloat64

	for _, target := range targets {
		if target.ID == proj.OwnerID || !target.Alive {
			continue
		}
		for _, hb := range target.Hitboxes() {
			if t, ok := RayAABB(prev, delta, hb.Box); ok && t < bestT {
				bestT = t
				bestPlayer = target
				bestRegion = hb.Region
			}
		}
	}

	if bestPlayer == nil {
		return nil, "", 0, false
	}
	return bestPlayer, bestRegion, bestT, true
}
