package geom

// AABB is an axis-aligned bounding box. Boxes are derived on demand from an
// entity's position and fixed dimensions; they are never stored on entities.
type AABB struct {
	Min Vector3 `json:"min" yaml:"min"`
	Max Vector3 `json:"max" yaml:"max"`
}

// NewAABBFromCenter builds a box from a center point and full size.
func NewAABBFromCenter(center, size Vector3) AABB {
	half := size.Scale(0.5)
	return AABB{Min: center.Sub(half), Max: center.Add(half)}
}

// Center returns the box midpoint.
func (b AABB) Center() Vector3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the box extent per axis.
func (b AABB) Size() Vector3 {
	return b.Max.Sub(b.Min)
}

// Contains reports whether p lies inside or on the boundary of b.
func (b AABB) Contains(p Vector3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Overlaps reports whether the two boxes intersect. Touching faces count as
// separated, consistent with <=/>= comparisons on each axis.
func (b AABB) Overlaps(o AABB) bool {
	if b.Max.X <= o.Min.X || b.Min.X >= o.Max.X {
		return false
	}
	if b.Max.Y <= o.Min.Y || b.Min.Y >= o.Max.Y {
		return false
	}
	if b.Max.Z <= o.Min.Z || b.Min.Z >= o.Max.Z {
		return false
	}
	return true
}
