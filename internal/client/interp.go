package client

import (
	"time"

	"ironsight/internal/game"
)

// interpBufferCap bounds per-entity history. At 30 TPS this holds about a
// second of states, far more than the render delay needs.
const interpBufferCap = 32

type timedState struct {
	at    time.Time
	state game.PlayerState
}

// InterpBuffer holds a short history of authoritative states for one remote
// entity and samples a smooth pose between them.
type InterpBuffer struct {
	states []timedState
}

// NewInterpBuffer creates an empty buffer.
func NewInterpBuffer() *InterpBuffer {
	return &InterpBuffer{states: make([]timedState, 0, interpBufferCap)}
}

// Push appends a state received at the given time, discarding the oldest
// entry when full. Out-of-order arrivals older than the newest entry are
// dropped.
func (b *InterpBuffer) Push(at time.Time, state game.PlayerState) {
	if n := len(b.states); n > 0 && !at.After(b.states[n-1].at) {
		return
	}
	if len(b.states) >= interpBufferCap {
		copy(b.states, b.states[1:])
		b.states = b.states[:len(b.states)-1]
	}
	b.states = append(b.states, timedState{at: at, state: state})
}

// Sample returns the pose at renderTime, interpolating between the two
// bracketing states. Before the oldest entry it returns the oldest; past the
// newest it returns the newest rather than extrapolating.
func (b *InterpBuffer) Sample(renderTime time.Time) (game.PlayerState, bool) {
	if len(b.states) == 0 {
		return game.PlayerState{}, false
	}

	first := b.states[0]
	if !renderTime.After(first.at) {
		return first.state, true
	}

	last := b.states[len(b.states)-1]
	if renderTime.After(last.at) {
		return last.state, true
	}

	for i := 1; i < len(b.states); i++ {
		if renderTime.After(b.states[i].at) {
			continue
		}
		a, c := b.states[i-1], b.states[i]
		span := c.at.Sub(a.at).Seconds()
		if span <= 0 {
			return c.state, true
		}
		alpha := renderTime.Sub(a.at).Seconds() / span
		if alpha < 0 {
			alpha = 0
		} else if alpha > 1 {
			alpha = 1
		}

		out := c.state
		out.Position = a.state.Position.Lerp(c.state.Position, alpha)
		out.Velocity = a.state.Velocity.Lerp(c.state.Velocity, alpha)
		out.Yaw = a.state.Yaw + (c.state.Yaw-a.state.Yaw)*alpha
		out.Pitch = a.state.Pitch + (c.state.Pitch-a.state.Pitch)*alpha
		return out, true
	}

	return last.state, true
}

// Len reports buffered state count.
func (b *InterpBuffer) Len() int {
	return len(b.states)
}
