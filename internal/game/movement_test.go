package game

import (
	"math"
	"testing"

	"ironsight/internal/game/geom"
)

const testDt = 1.0 / 30.0

// open ground in the default arena, away from every obstacle
var openSpot = geom.Vector3{X: -30, Y: 0, Z: -30}

// TestMoveStepWalk tests acceleration toward walking speed
func TestMoveStepWalk(t *testing.T) {
	arena := DefaultArena()
	p := NewPlayer("walker", openSpot)

	for i := 0; i < 120; i++ {
		MoveStep(p, Input{Seq: uint32(i + 1), MoveZ: 1}, arena, testDt)
	}

	hspeed := math.Hypot(p.Vel.X, p.Vel.Z)
	if math.Abs(hspeed-BaseSpeed) > 0.05 {
		t.Errorf("expected ~%v m/s after 4s of walking, got %v", BaseSpeed, hspeed)
	}
	if p.Position.Z <= openSpot.Z {
		t.Errorf("walking +Z should move +Z, got %v", p.Position.Z)
	}
	if p.LastInputSeq != 120 {
		t.Errorf("expected last input seq 120, got %d", p.LastInputSeq)
	}
}

// TestMoveStepSprint tests the sprint speed cap
func TestMoveStepSprint(t *testing.T) {
	arena := DefaultArena()
	p := NewPlayer("sprinter", openSpot)

	for i := 0; i < 120; i++ {
		MoveStep(p, Input{Seq: uint32(i + 1), MoveZ: 1, Sprint: true}, arena, testDt)
	}

	hspeed := math.Hypot(p.Vel.X, p.Vel.Z)
	if math.Abs(hspeed-SprintSpeed) > 0.05 {
		t.Errorf("expected ~%v m/s sprinting, got %v", SprintSpeed, hspeed)
	}
}

// TestMoveStepStops tests that releasing input decays to an exact stop
func TestMoveStepStops(t *testing.T) {
	arena := DefaultArena()
	p := NewPlayer("stopper", openSpot)
	p.Vel = geom.Vector3{X: 4, Z: 4}

	for i := 0; i < 90; i++ {
		MoveStep(p, Input{Seq: uint32(i + 1)}, arena, testDt)
	}

	if p.Vel.X != 0 || p.Vel.Z != 0 {
		t.Errorf("horizontal velocity should snap to exactly zero, got %+v", p.Vel)
	}
}

// TestMoveStepYawRotatesMovement tests that movement is camera-relative
func TestMoveStepYawRotatesMovement(t *testing.T) {
	arena := DefaultArena()
	p := NewPlayer("strafe", openSpot)

	// Facing +X (yaw pi/2), pressing forward should move along +X.
	for i := 0; i < 60; i++ {
		MoveStep(p, Input{Seq: uint32(i + 1), MoveZ: 1, Yaw: math.Pi / 2}, arena, testDt)
	}

	if p.Position.X <= openSpot.X {
		t.Errorf("forward at yaw pi/2 should move +X, got %v", p.Position.X)
	}
	if math.Abs(p.Position.Z-openSpot.Z) > 0.5 {
		t.Errorf("forward at yaw pi/2 should barely move Z, got %v", p.Position.Z)
	}
}

// TestMoveStepJump tests the jump arc and the grounded guard
func TestMoveStepJump(t *testing.T) {
	arena := DefaultArena()
	p := NewPlayer("jumper", openSpot)

	// Settle onto the floor first.
	MoveStep(p, Input{Seq: 1}, arena, testDt)
	if !p.Grounded {
		t.Fatal("player should be grounded after settling")
	}

	MoveStep(p, Input{Seq: 2, Jump: true}, arena, testDt)
	if p.Grounded {
		t.Error("player should leave the ground on jump")
	}
	if p.Position.Y <= arena.GroundY() {
		t.Errorf("jump should gain height, got %v", p.Position.Y)
	}

	// Jumping again mid-air must not add velocity.
	velY := p.Vel.Y
	MoveStep(p, Input{Seq: 3, Jump: true}, arena, testDt)
	if p.Vel.Y > velY {
		t.Errorf("air jump should not boost, %v -> %v", velY, p.Vel.Y)
	}

	// Gravity brings the player back down within a couple of seconds.
	for i := 0; i < 90 && !p.Grounded; i++ {
		MoveStep(p, Input{Seq: uint32(4 + i)}, arena, testDt)
	}
	if !p.Grounded {
		t.Error("player never landed")
	}
	if math.Abs(p.Position.Y-arena.GroundY()) > groundEpsilon {
		t.Errorf("expected to rest on the floor, got Y=%v", p.Position.Y)
	}
}

// TestMoveStepDeterminism tests that identical inputs integrate identically
func TestMoveStepDeterminism(t *testing.T) {
	arena := DefaultArena()
	a := NewPlayer("a", openSpot)
	b := NewPlayer("b", openSpot)

	inputs := []Input{
		{Seq: 1, MoveZ: 1, Yaw: 0.3},
		{Seq: 2, MoveZ: 1, MoveX: 1, Yaw: 0.5, Sprint: true},
		{Seq: 3, Jump: true, Yaw: 0.5},
		{Seq: 4, MoveX: -1, Yaw: 0.7},
		{Seq: 5},
	}
	for _, in := range inputs {
		MoveStep(a, in, arena, testDt)
		MoveStep(b, in, arena, testDt)
	}

	if a.Position != b.Position {
		t.Errorf("positions diverged: %+v vs %+v", a.Position, b.Position)
	}
	if a.Vel != b.Vel {
		t.Errorf("velocities diverged: %+v vs %+v", a.Vel, b.Vel)
	}
}

// TestMoveStepStaysInBounds tests the wall clamp while running at a border
func TestMoveStepStaysInBounds(t *testing.T) {
	arena := DefaultArena()
	p := NewPlayer("runner", openSpot)

	// Sprint straight at the -X wall for ten seconds.
	for i := 0; i < 300; i++ {
		MoveStep(p, Input{Seq: uint32(i + 1), MoveZ: 1, Yaw: -math.Pi / 2, Sprint: true}, arena, testDt)
	}

	box := p.Bounds()
	if box.Min.X < arena.Bounds.Min.X-geom.Epsilon {
		t.Errorf("body escaped the arena: %+v", box)
	}
	if p.Vel.X != 0 {
		t.Errorf("velocity into the wall should be zero, got %v", p.Vel.X)
	}
}
