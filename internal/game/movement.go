package game

import (
	"math"

	"ironsight/internal/game/geom"
)

// Movement tuning. These constants are shared verbatim by the client mirror;
// changing one changes prediction on both sides together.
const (
	BaseSpeed   = 6.0 // m/s walking
	SprintSpeed = 9.0 // m/s sprinting

	// Exponential smoothing rates. Deceleration is stiffer than acceleration
	// so releasing a key stops faster than pressing one reaches full speed.
	AccelRate = 10.0
	DecelRate = 14.0

	// Horizontal speed below this with no movement input snaps to zero,
	// ending the asymptotic decay in finite ticks.
	StopThreshold = 0.01

	JumpSpeed = 8.0  // m/s upward on jump
	Gravity   = 24.0 // m/s^2 downward

	groundEpsilon = 1e-3
)

// MoveStep advances one player by one tick of movement under the given input.
// This is the authoritative form: candidate positions clamp to the world
// bounds and then resolve against static obstacles.
//
// Order per tick: view update, horizontal velocity smoothing, jump and
// gravity, candidate position, world-bounds clamp, obstacle push-out,
// grounding.
func MoveStep(p *Player, in Input, arena *Arena, dt float64) {
	moveStep(p, in, arena, dt, true)
}

// PredictStep is the client-side prediction form of MoveStep. It runs the
// identical input application, smoothing and gravity, but skips static
// obstacle resolution: predicting through an obstacle produces a position
// error the next snapshot corrects, and skipping the pass keeps per-frame
// prediction cheap. See Mirror for the correction side.
func PredictStep(p *Player, in Input, arena *Arena, dt float64) {
	moveStep(p, in, arena, dt, false)
}

func moveStep(p *Player, in Input, arena *Arena, dt float64, resolveObstacles bool) {
	p.Yaw = in.Yaw
	p.Pitch = in.Pitch
	p.LastInputSeq = in.Seq

	// Local move axes rotated by yaw into the world XZ plane.
	wish := geom.Vector3{
		X: in.MoveX*math.Cos(p.Yaw) + in.MoveZ*math.Sin(p.Yaw),
		Z: -in.MoveX*math.Sin(p.Yaw) + in.MoveZ*math.Cos(p.Yaw),
	}
	moving := wish.LengthSq() > geom.Epsilon
	if moving {
		speed := BaseSpeed
		if in.Sprint {
			speed = SprintSpeed
		}
		wish = wish.Normalize().Scale(speed)
	}

	// Exponential approach toward the target horizontal velocity. The frame
	// independent form 1-exp(-k*dt) keeps the curve identical at any tick
	// rate.
	rate := AccelRate
	if !moving {
		rate = DecelRate
	}
	alpha := 1 - math.Exp(-rate*dt)
	p.Vel.X += (wish.X - p.Vel.X) * alpha
	p.Vel.Z += (wish.Z - p.Vel.Z) * alpha

	if !moving {
		if hsq := p.Vel.X*p.Vel.X + p.Vel.Z*p.Vel.Z; hsq < StopThreshold*StopThreshold {
			p.Vel.X = 0
			p.Vel.Z = 0
		}
	}

	if in.Jump && p.Grounded {
		p.Vel.Y = JumpSpeed
		p.Grounded = false
	}
	p.Vel.Y -= Gravity * dt

	falling := p.Vel.Y < 0

	// Bounds before obstacles: the entity must be inside the arena before
	// obstacle push-out means anything.
	desired := p.Position.Add(p.Vel.Scale(dt))
	desired = ResolveWorldBounds(p, desired, arena.Bounds)
	if resolveObstacles {
		desired = ResolveStaticObstacles(p, desired, arena.Obstacles)
	}
	p.Position = desired

	// Grounded on the floor plane, or when a downward velocity was zeroed by
	// landing on top of an obstacle.
	p.Grounded = p.Position.Y <= arena.GroundY()+groundEpsilon ||
		(falling && p.Vel.Y == 0)
	if p.Grounded && p.Vel.Y < 0 {
		p.Vel.Y = 0
	}
}
