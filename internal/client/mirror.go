// Package client implements the predictive mirror a game client runs: local
// input prediction with snapshot reconciliation for the owned player, and
// delayed interpolation for everything else. Prediction runs the server's
// integrator minus static-obstacle resolution; the resulting error near
// obstacles is corrected by the snapshot snap, not resimulated.
package client

import (
	"sync"
	"time"

	"ironsight/internal/game"
	"ironsight/internal/game/geom"
)

// ReconcileToleranceSq is the squared position error above which the mirror
// snaps to the server state. Error exactly at the tolerance is accepted;
// only strictly greater errors snap.
const ReconcileToleranceSq = 0.0625 // 0.25m

// maxPendingInputs bounds the unacknowledged input buffer. Exceeding it means
// the server stopped acknowledging; prediction resets rather than growing
// without bound.
const maxPendingInputs = 128

type pendingInput struct {
	input     game.Input
	predicted geom.Vector3 // position after applying this input locally
}

// Mirror is the client-side world model. One goroutine feeds it local inputs
// (PredictInput), another feeds it server snapshots (ApplySnapshot); a render
// loop reads poses. The mutex keeps those three honest.
type Mirror struct {
	mu sync.Mutex

	playerID string
	arena    *game.Arena
	tickRate int

	local   *game.Player
	pending []pendingInput
	nextSeq uint32

	remotes  map[string]*InterpBuffer
	lastSnap game.Snapshot
	haveSnap bool

	// clockOffset maps local wall time onto the server clock the snapshots
	// are stamped with. The smallest observed arrival-minus-stamp delta is
	// the delivery with the least queueing, so it is the best estimate.
	clockOffset time.Duration
	haveOffset  bool

	// Stats for debugging prediction quality.
	snapCount  uint64
	reconciles uint64
}

// NewMirror creates a mirror for the given player. The arena must be the same
// definition the server simulates.
func NewMirror(playerID string, arena *game.Arena, tickRate int) *Mirror {
	return &Mirror{
		playerID: playerID,
		arena:    arena,
		tickRate: tickRate,
		remotes:  make(map[string]*InterpBuffer),
	}
}

// RenderDelay is how far behind real time remote entities are displayed:
// 1.5 tick intervals, enough to have two snapshots bracketing the render
// time under steady delivery.
func (m *Mirror) RenderDelay() time.Duration {
	return time.Duration(1.5 * float64(time.Second) / float64(m.tickRate))
}

// PredictInput assigns the next sequence number, applies the input to the
// local model immediately, and remembers the predicted outcome for
// reconciliation. Returns the stamped input for sending to the server.
func (m *Mirror) PredictInput(in game.Input) (game.Input, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.local == nil || !m.local.Alive {
		return in, false
	}

	m.nextSeq++
	in.Seq = m.nextSeq
	in.Sanitize()

	game.PredictStep(m.local, in, m.arena, 1.0/float64(m.tickRate))

	if len(m.pending) >= maxPendingInputs {
		m.pending = m.pending[:0]
	}
	m.pending = append(m.pending, pendingInput{input: in, predicted: m.local.Position})

	return in, true
}

// ApplySnapshot folds an authoritative snapshot into the mirror: remote
// buffers are extended, acknowledged inputs dropped, and the local model
// reconciled against the server's position for the acknowledged input.
// Remote states are keyed on the snapshot's server timestamp, not on at,
// so delivery jitter never skews the interpolation alpha; at only feeds
// the server clock offset estimate.
func (m *Mirror) ApplySnapshot(snap game.Snapshot, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastSnap = snap
	m.haveSnap = true
	m.snapCount++

	serverTime := time.UnixMilli(snap.ServerTime)
	if offset := at.Sub(serverTime); !m.haveOffset || offset < m.clockOffset {
		m.clockOffset = offset
		m.haveOffset = true
	}

	seen := make(map[string]bool, len(snap.Players))
	for _, ps := range snap.Players {
		if ps.ID == m.playerID {
			m.reconcile(ps)
			continue
		}
		seen[ps.ID] = true
		buf, ok := m.remotes[ps.ID]
		if !ok {
			buf = NewInterpBuffer()
			m.remotes[ps.ID] = buf
		}
		buf.Push(serverTime, ps)
	}
	for id := range m.remotes {
		if !seen[id] {
			delete(m.remotes, id)
		}
	}
}

// reconcile drops acknowledged inputs, then checks the server position
// against what was predicted for that same input. Within tolerance the local
// state stands untouched; beyond it the mirror snaps hard to the server
// position with zeroed velocity. Buffered inputs are not resimulated; the
// next predicted frames run from the corrected pose.
func (m *Mirror) reconcile(auth game.PlayerState) {
	if m.local == nil {
		m.local = &game.Player{ID: auth.ID, Name: auth.Name}
	}

	// Authoritative non-positional state always wins.
	m.local.Health = auth.Health
	m.local.Kills = auth.Kills
	m.local.Deaths = auth.Deaths

	if m.local.Alive && !auth.Alive {
		// Death is never predicted; adopt it wholesale.
		m.local.Alive = false
		m.local.Position = auth.Position
		m.local.Vel = auth.Velocity
		m.pending = m.pending[:0]
		return
	}
	if !m.local.Alive && auth.Alive {
		// Respawn: adopt the server pose and start predicting fresh.
		m.local.Alive = true
		m.local.Position = auth.Position
		m.local.Vel = auth.Velocity
		m.local.Grounded = auth.Grounded
		m.pending = m.pending[:0]
		return
	}
	m.local.Alive = auth.Alive

	// Drop everything the server has already applied.
	var predicted geom.Vector3
	havePrediction := false
	n := 0
	for _, pi := range m.pending {
		if pi.input.Seq <= auth.LastInputSeq {
			if pi.input.Seq == auth.LastInputSeq {
				predicted = pi.predicted
				havePrediction = true
			}
			continue
		}
		m.pending[n] = pi
		n++
	}
	m.pending = m.pending[:n]

	if !havePrediction {
		// The server has not applied any input we remember (startup, or a
		// long ack gap). Trust it entirely.
		if len(m.pending) == 0 {
			m.local.Position = auth.Position
			m.local.Vel = auth.Velocity
			m.local.Grounded = auth.Grounded
		}
		return
	}

	if auth.Position.DistSq(predicted) <= ReconcileToleranceSq {
		return
	}

	// Misprediction: hard correction. Predictions made before the snap are
	// stale, so the pending buffer restarts empty.
	m.reconciles++
	m.local.Position = auth.Position
	m.local.Vel = geom.Zero
	m.local.Grounded = auth.Grounded
	m.pending = m.pending[:0]
}

// SetLocal seeds the local model from a join response.
func (m *Mirror) SetLocal(state game.PlayerState) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := &game.Player{
		ID:        state.ID,
		Name:      state.Name,
		Position:  state.Position,
		Vel:       state.Velocity,
		Yaw:       state.Yaw,
		Pitch:     state.Pitch,
		Health:    state.Health,
		MaxHealth: game.MaxHealth,
		Alive:     state.Alive,
		Grounded:  state.Grounded,
	}
	m.local = p
	m.nextSeq = state.LastInputSeq
	m.pending = m.pending[:0]
}

// LocalPose returns the predicted position and view of the owned player.
func (m *Mirror) LocalPose() (pos geom.Vector3, yaw, pitch float64, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.local == nil {
		return geom.Zero, 0, 0, false
	}
	return m.local.Position, m.local.Yaw, m.local.Pitch, true
}

// LocalHealth returns the authoritative health of the owned player.
func (m *Mirror) LocalHealth() (health int, alive bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.local == nil {
		return 0, false
	}
	return m.local.Health, m.local.Alive
}

// RemotePoses samples every remote entity at the server-clock instant that
// corresponds to now minus the render delay. Entities without enough
// buffered history yet are skipped.
func (m *Mirror) RemotePoses(now time.Time) []game.PlayerState {
	m.mu.Lock()
	defer m.mu.Unlock()

	renderTime := now.Add(-m.clockOffset).Add(-m.RenderDelay())
	out := make([]game.PlayerState, 0, len(m.remotes))
	for _, buf := range m.remotes {
		if ps, ok := buf.Sample(renderTime); ok {
			out = append(out, ps)
		}
	}
	return out
}

// LatestSnapshot returns the newest raw snapshot, for HUD display.
func (m *Mirror) LatestSnapshot() (game.Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastSnap, m.haveSnap
}

// Stats reports snapshot and reconciliation counters.
func (m *Mirror) Stats() (snapshots, reconciles uint64, pending int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapCount, m.reconciles, len(m.pending)
}
