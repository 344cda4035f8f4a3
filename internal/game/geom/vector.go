// Package geom provides the 3D vector and bounding-box primitives shared by
// the server simulation and the client mirror. Both sides must use these exact
// operations (and epsilons) so that predicted and authoritative positions agree
// bit-for-bit under identical inputs.
package geom

import "math"

// Epsilon is the tolerance used for approximate vector equality. Positions
// accumulate floating drift over many ticks; comparisons tighter than this are
// meaningless.
const Epsilon = 1e-5

// Vector3 is a plain value type. Methods return new vectors; nothing here
// mutates the receiver.
type Vector3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// Zero is the zero vector.
var Zero = Vector3{}

func (v Vector3) Add(o Vector3) Vector3 {
	return Vector3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vector3) Sub(o Vector3) Vector3 {
	return Vector3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vector3) Scale(s float64) Vector3 {
	return Vector3{v.X * s, v.Y * s, v.Z * s}
}

func (v Vector3) Dot(o Vector3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Vector3) Cross(o Vector3) Vector3 {
	return Vector3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

func (v Vector3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// LengthSq avoids the sqrt for threshold comparisons.
func (v Vector3) LengthSq() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Normalize returns the unit vector. A near-zero vector normalizes to the zero
// vector rather than producing NaN components.
func (v Vector3) Normalize() Vector3 {
	l := v.Length()
	if l < Epsilon {
		return Vector3{}
	}
	return Vector3{v.X / l, v.Y / l, v.Z / l}
}

// Lerp interpolates between v and o. t is not clamped; callers that need a
// clamped alpha (snapshot interpolation) clamp before calling.
func (v Vector3) Lerp(o Vector3, t float64) Vector3 {
	return Vector3{
		X: v.X + (o.X-v.X)*t,
		Y: v.Y + (o.Y-v.Y)*t,
		Z: v.Z + (o.Z-v.Z)*t,
	}
}

// ApproxEqual reports whether the two vectors are equal within Epsilon on
// every axis.
func (v Vector3) ApproxEqual(o Vector3) bool {
	return math.Abs(v.X-o.X) < Epsilon &&
		math.Abs(v.Y-o.Y) < Epsilon &&
		math.Abs(v.Z-o.Z) < Epsilon
}

// DistSq is the squared distance between two points.
func (v Vector3) DistSq(o Vector3) float64 {
	return v.Sub(o).LengthSq()
}
