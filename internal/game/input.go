package game

import "math"

// maxPitch keeps the view just short of straight up/down so the aim vector
// never degenerates.
const maxPitch = 1.55

// Input is one tick's worth of player intent. The client sends one Input per
// predicted tick; the server applies them in sequence order. MoveX/MoveZ are
// local-space axes (strafe, forward) that get rotated by Yaw before
// integration.
type Input struct {
	Seq   uint32  `json:"seq"`
	MoveX float64 `json:"moveX"`
	MoveZ float64 `json:"moveZ"`
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`

	Jump   bool `json:"jump"`
	Sprint bool `json:"sprint"`
	Fire   bool `json:"fire"`
	Reload bool `json:"reload"`
}

// Sanitize clamps the analog fields into their legal ranges. The server runs
// this on every received input so a hacked client cannot exceed normal
// movement speed or flip its view.
func (in *Input) Sanitize() {
	in.MoveX = clamp(in.MoveX, -1, 1)
	in.MoveZ = clamp(in.MoveZ, -1, 1)
	in.Pitch = clamp(in.Pitch, -maxPitch, maxPitch)
	if math.IsNaN(in.Yaw) || math.IsInf(in.Yaw, 0) {
		in.Yaw = 0
	}
	if math.IsNaN(in.MoveX) {
		in.MoveX = 0
	}
	if math.IsNaN(in.MoveZ) {
		in.MoveZ = 0
	}
	if math.IsNaN(in.Pitch) {
		in.Pitch = 0
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
