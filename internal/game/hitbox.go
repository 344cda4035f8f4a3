package game

import "ironsight/internal/game/geom"

// HitRegion names a body region for damage scaling.
type HitRegion string

const (
	RegionHead  HitRegion = "head"
	RegionTorso HitRegion = "torso"
	RegionArms  HitRegion = "arms"
	RegionLegs  HitRegion = "legs"
)

// Hitbox pairs a region with its world-space box for the current position.
type Hitbox struct {
	Region HitRegion
	Box    geom.AABB
}

// Body dimensions. Position is the feet-center point; the body box extends
// upward from it. Region splits are fractions of body height: legs up to 0.45,
// torso up to 0.8, head above that with a narrower box.
const (
	BodyHeight = 1.8
	BodyWidth  = 0.6
	BodyDepth  = 0.6

	HeadWidth = 0.3

	legsTopFrac  = 0.45
	torsoTopFrac = 0.8
)

// EyeHeight is where view rays and shots originate, relative to the feet.
const EyeHeight = 1.6

// regionMultipliers scales weapon base damage by struck region. Unlisted
// regions use 1.0.
var regionMultipliers = map[HitRegion]float64{
	RegionHead:  3.0,
	RegionTorso: 1.2,
	RegionArms:  0.8,
	RegionLegs:  0.7,
}

// RegionMultiplier returns the damage multiplier for a region, 1.0 when the
// region is unknown.
func RegionMultiplier(region HitRegion) float64 {
	if m, ok := regionMultipliers[region]; ok {
		return m
	}
	return 1.0
}

// BodyBounds is the full collision box for a player standing at pos.
func BodyBounds(pos geom.Vector3) geom.AABB {
	return geom.AABB{
		Min: geom.Vector3{X: pos.X - BodyWidth/2, Y: pos.Y, Z: pos.Z - BodyDepth/2},
		Max: geom.Vector3{X: pos.X + BodyWidth/2, Y: pos.Y + BodyHeight, Z: pos.Z + BodyDepth/2},
	}
}

// RegionBoxes computes the three per-region hitboxes for a player standing at
// pos. Boxes are pure functions of position, recomputed per query, never
// cached on the entity.
func RegionBoxes(pos geom.Vector3) [3]Hitbox {
	legsTop := pos.Y + BodyHeight*legsTopFrac
	torsoTop := pos.Y + BodyHeight*torsoTopFrac

	return [3]Hitbox{
		{
			Region: RegionLegs,
			Box: geom.AABB{
				Min: geom.Vector3{X: pos.X - BodyWidth/2, Y: pos.Y, Z: pos.Z - BodyDepth/2},
				Max: geom.Vector3{X: pos.X + BodyWidth/2, Y: legsTop, Z: pos.Z + BodyDepth/2},
			},
		},
		{
			Region: RegionTorso,
			Box: geom.AABB{
				Min: geom.Vector3{X: pos.X - BodyWidth/2, Y: legsTop, Z: pos.Z - BodyDepth/2},
				Max: geom.Vector3{X: pos.X + BodyWidth/2, Y: torsoTop, Z: pos.Z + BodyDepth/2},
			},
		},
		{
			Region: RegionHead,
			Box: geom.AABB{
				Min: geom.Vector3{X: pos.X - HeadWidth/2, Y: torsoTop, Z: pos.Z - HeadWidth/2},
				Max: geom.Vector3{X: pos.X + HeadWidth/2, Y: pos.Y + BodyHeight, Z: pos.Z + HeadWidth/2},
			},
		},
	}
}
