package game

import (
	"log"
	"math"
	"sync"
	"time"

	"ironsight/internal/game/geom"
)

// MaxProjectiles caps live projectiles so a fire-spamming client cannot grow
// the world unboundedly.
const MaxProjectiles = 256

// Engine owns the authoritative world and advances it at a fixed tick rate on
// a single goroutine. All world state lives behind e.mu; the connection layer
// only queues inputs and receives published snapshots.
type Engine struct {
	mu          sync.Mutex
	arena       *Arena
	players     map[string]*Player // keyed by player ID
	projectiles []*Projectile

	// inputs holds at most one pending input per player: the newest by
	// sequence. Older buffered packets are discarded, never replayed.
	inputs map[string]Input

	tickRate  int
	tickCount uint64
	running   bool
	stopChan  chan struct{}
	stopOnce  sync.Once

	totalKills   int
	spawnCounter int

	journal *Journal

	// onSnapshot receives the result of every tick, called off-lock from the
	// loop goroutine. The connection layer fans it out to clients.
	onSnapshot func(Snapshot)

	// onTick observes tick durations for metrics.
	onTick func(d time.Duration)

	// onFatal fires once if a tick panics and the loop halts.
	onFatal func(recovered interface{})
}

// NewEngine creates a stopped engine simulating the given arena.
func NewEngine(arena *Arena, tickRate int) *Engine {
	if tickRate <= 0 {
		tickRate = 30
	}
	return &Engine{
		arena:       arena,
		players:     make(map[string]*Player),
		projectiles: make([]*Projectile, 0, MaxProjectiles),
		inputs:      make(map[string]Input),
		tickRate:    tickRate,
		stopChan:    make(chan struct{}),
		journal:     NewJournal(),
	}
}

// SetSnapshotFunc registers the per-tick snapshot consumer. Must be called
// before Start.
func (e *Engine) SetSnapshotFunc(fn func(Snapshot)) { e.onSnapshot = fn }

// SetTickObserver registers a tick duration observer. Must be called before
// Start.
func (e *Engine) SetTickObserver(fn func(time.Duration)) { e.onTick = fn }

// SetFatalFunc registers the tick panic handler. Must be called before Start.
func (e *Engine) SetFatalFunc(fn func(recovered interface{})) { e.onFatal = fn }

// TickRate returns the configured simulation rate in ticks per second.
func (e *Engine) TickRate() int { return e.tickRate }

// Interval returns the tick interval.
func (e *Engine) Interval() time.Duration {
	return time.Second / time.Duration(e.tickRate)
}

// Arena returns the world the engine simulates.
func (e *Engine) Arena() *Arena { return e.arena }

// Start launches the tick loop.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.mu.Unlock()

	go e.loop()
	log.Printf("🎮 Simulation started at %d TPS on arena %q", e.tickRate, e.arena.Name)
}

// Stop halts the tick loop. Safe to call more than once.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
		close(e.stopChan)
		log.Println("🛑 Simulation stopped")
	})
}

// loop schedules ticks against absolute target times instead of a free
// running ticker. Each next fire is lastTarget+interval-now clamped at zero,
// so a slow tick is followed by a shorter wait and the long-run rate stays
// exact without drift.
func (e *Engine) loop() {
	interval := e.Interval()
	target := time.Now().Add(interval)
	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-e.stopChan:
			return
		case <-timer.C:
			if !e.safeTick() {
				return
			}
			target = target.Add(interval)
			delay := time.Until(target)
			if delay < 0 {
				delay = 0
			}
			timer.Reset(delay)
		}
	}
}

// safeTick runs one tick with panic containment. A panic inside the
// simulation is not survivable: the world may be half-mutated, so the loop
// stops rather than serving corrupt state.
func (e *Engine) safeTick() (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("💥 tick %d panicked, halting simulation: %v", e.tickCount, r)
			e.mu.Lock()
			e.running = false
			e.mu.Unlock()
			if e.onFatal != nil {
				e.onFatal(r)
			}
			ok = false
		}
	}()

	start := time.Now()
	snap := e.Tick(1.0 / float64(e.tickRate))
	if e.onTick != nil {
		e.onTick(time.Since(start))
	}
	if e.onSnapshot != nil {
		e.onSnapshot(snap)
	}
	return true
}

// Tick advances the world by dt seconds and returns the resulting snapshot,
// impacts included. Exported so tests and headless tools can drive the
// simulation without the timer loop.
//
// Phase order: queued inputs and movement, weapon timers, respawns,
// projectile sweeps, snapshot.
func (e *Engine) Tick(dt float64) Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.tickCount++

	var spawns []ProjectileSpawnRequest
	for _, p := range e.players {
		spawns = append(spawns, e.applyInputs(p, dt)...)
	}

	for _, p := range e.players {
		if p.Weapon != nil {
			p.Weapon.Update(dt)
		}
		if !p.Alive {
			p.RespawnTimer -= dt
			if p.RespawnTimer <= 0 {
				e.respawn(p)
			}
		}
	}

	impacts := e.stepProjectiles(dt)

	for _, req := range spawns {
		if len(e.projectiles) >= MaxProjectiles {
			break
		}
		e.projectiles = append(e.projectiles, NewProjectile(req, e.tickCount))
	}

	e.journal.Record(EventTypeTick, e.tickCount, "", TickPayload{
		PlayerCount:     len(e.players),
		ProjectileCount: len(e.projectiles),
		DurationNs:      int64(dt * 1e9),
	})

	return e.buildSnapshot(impacts)
}

// applyInputs consumes the player's pending input, if any. Only the newest
// buffered input is ever applied; movement for dead players is skipped but
// their pending sequence still acknowledges so stale intent does not apply on
// respawn.
func (e *Engine) applyInputs(p *Player, dt float64) []ProjectileSpawnRequest {
	in, ok := e.inputs[p.ID]
	if !ok {
		if p.Alive {
			// No input this tick: integrate with empty intent so gravity
			// and deceleration still run.
			MoveStep(p, Input{Seq: p.LastInputSeq, Yaw: p.Yaw, Pitch: p.Pitch}, e.arena, dt)
		}
		return nil
	}
	delete(e.inputs, p.ID)

	if !p.Alive {
		if in.Seq > p.LastInputSeq {
			p.LastInputSeq = in.Seq
		}
		return nil
	}

	in.Sanitize()
	MoveStep(p, in, e.arena, dt)

	if in.Reload && p.Weapon != nil {
		p.Weapon.StartReload()
	}

	var spawns []ProjectileSpawnRequest
	if in.Fire && p.Weapon != nil {
		if req, fired := p.Weapon.Fire(p.ID, p.Name, p.EyePosition(), p.AimDirection()); fired {
			spawns = append(spawns, req)
			e.journal.Record(EventTypeFire, e.tickCount, p.ID, FirePayload{
				WeaponID:  req.WeaponID,
				Origin:    req.Origin,
				Direction: req.Direction,
				AmmoLeft:  p.Weapon.Ammo,
			})
		}
	}
	return spawns
}

// stepProjectiles sweeps every projectile over the segment this tick covers
// and resolves the earliest hit per projectile. Survivors are compacted in
// place.
func (e *Engine) stepProjectiles(dt float64) []ImpactEvent {
	var impacts []ImpactEvent

	targets := make([]*Player, 0, len(e.players))
	for _, p := range e.players {
		targets = append(targets, p)
	}

	groundY := e.arena.GroundY()

	n := 0
	for _, proj := range e.projectiles {
		prev, delta, expired := proj.Step(dt)

		_, obT, obHit := SweptHitObstacles(prev, delta, e.arena.Obstacles)
		victim, region, plT, plHit := SweptHitPlayers(proj, prev, delta, targets)

		switch {
		case plHit && (!obHit || plT <= obT):
			impacts = append(impacts, e.resolvePlayerHit(proj, victim, region, prev.Add(delta.Scale(plT))))
		case obHit:
			impacts = append(impacts, ImpactEvent{
				Tick:         e.tickCount,
				Kind:         ImpactObstacle,
				ProjectileID: proj.ID,
				AttackerID:   proj.OwnerID,
				Position:     prev.Add(delta.Scale(obT)),
			})
		case delta.Y < 0 && prev.Y >= groundY && prev.Y+delta.Y < groundY:
			// No raycast hit, but the segment crosses the floor plane: stop
			// at the crossing point, never below it.
			gT := (groundY - prev.Y) / delta.Y
			impacts = append(impacts, ImpactEvent{
				Tick:         e.tickCount,
				Kind:         ImpactGround,
				ProjectileID: proj.ID,
				AttackerID:   proj.OwnerID,
				Position:     prev.Add(delta.Scale(gT)),
			})
		case expired || !e.arena.Bounds.Contains(proj.Position):
			impacts = append(impacts, ImpactEvent{
				Tick:         e.tickCount,
				Kind:         ImpactExpired,
				ProjectileID: proj.ID,
				AttackerID:   proj.OwnerID,
				Position:     proj.Position,
			})
		default:
			e.projectiles[n] = proj
			n++
		}
	}
	e.projectiles = e.projectiles[:n]

	for _, imp := range impacts {
		eventType := EventTypeImpact
		if imp.Killed {
			eventType = EventTypeKill
		}
		e.journal.Record(eventType, e.tickCount, imp.AttackerID, imp)
	}
	return impacts
}

// resolvePlayerHit applies region-scaled damage and kill credit for one
// projectile landing on a player.
func (e *Engine) resolvePlayerHit(proj *Projectile, victim *Player, region HitRegion, at geom.Vector3) ImpactEvent {
	dmg := int(math.Round(float64(proj.Damage) * RegionMultiplier(region)))
	died := victim.TakeDamage(proj.Damage, region)

	if died {
		e.totalKills++
		if attacker, ok := e.players[proj.OwnerID]; ok {
			attacker.Kills++
		}
		log.Printf("💀 %s killed by %s (%s hit)", victim.Name, proj.OwnerName, region)
	}

	return ImpactEvent{
		Tick:         e.tickCount,
		Kind:         ImpactPlayer,
		ProjectileID: proj.ID,
		AttackerID:   proj.OwnerID,
		VictimID:     victim.ID,
		Region:       region,
		Damage:       dmg,
		VictimHealth: victim.Health,
		Killed:       died,
		Position:     at,
	}
}

func (e *Engine) respawn(p *Player) {
	spawn := e.arena.SpawnPoint(e.spawnCounter)
	e.spawnCounter++
	p.Respawn(spawn)
	e.journal.Record(EventTypeRespawn, e.tickCount, p.ID, RespawnPayload{
		PlayerID: p.ID,
		Spawn:    spawn,
	})
}

func (e *Engine) buildSnapshot(impacts []ImpactEvent) Snapshot {
	snap := Snapshot{
		Tick:        e.tickCount,
		ServerTime:  time.Now().UnixMilli(),
		Players:     make([]PlayerState, 0, len(e.players)),
		Projectiles: make([]ProjectileState, 0, len(e.projectiles)),
		Impacts:     impacts,
	}
	for _, p := range e.players {
		snap.Players = append(snap.Players, StateOf(p))
	}
	for _, proj := range e.projectiles {
		snap.Projectiles = append(snap.Projectiles, StateOfProjectile(proj))
	}
	return snap
}

// AddPlayer creates a player at the next spawn point and returns it.
func (e *Engine) AddPlayer(name string) *Player {
	e.mu.Lock()
	defer e.mu.Unlock()

	spawn := e.arena.SpawnPoint(e.spawnCounter)
	e.spawnCounter++

	p := NewPlayer(name, spawn)
	e.players[p.ID] = p

	e.journal.Record(EventTypePlayerJoin, e.tickCount, p.ID, PlayerJoinPayload{
		PlayerID: p.ID,
		Name:     p.Name,
		Spawn:    spawn,
	})
	log.Printf("👤 Player joined: %s (%s)", name, p.ID)
	return p
}

// RemovePlayer drops a player and their pending inputs.
func (e *Engine) RemovePlayer(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if p, ok := e.players[id]; ok {
		delete(e.players, id)
		delete(e.inputs, id)
		e.journal.Record(EventTypePlayerLeave, e.tickCount, id, nil)
		log.Printf("👋 Player left: %s", p.Name)
	}
}

// QueueInput buffers an input for the next tick. Inputs with a sequence at or
// below the newest applied one are discarded as duplicates or reorders; when
// several arrive between ticks, only the newest survives.
func (e *Engine) QueueInput(playerID string, in Input) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.players[playerID]
	if !ok {
		return false
	}
	if in.Seq <= p.LastInputSeq {
		return false
	}
	if pending, ok := e.inputs[playerID]; ok && in.Seq <= pending.Seq {
		return false
	}

	e.inputs[playerID] = in
	return true
}

// GetPlayer looks a player up by ID.
func (e *Engine) GetPlayer(id string) *Player {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.players[id]
}

// SnapshotNow builds a snapshot of the current state without advancing time.
// Used by the HTTP state endpoint and the debug renderer.
func (e *Engine) SnapshotNow() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buildSnapshot(nil)
}

// Counts returns player, projectile and total kill counts for metrics.
func (e *Engine) Counts() (players, projectiles, kills int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.players), len(e.projectiles), e.totalKills
}

// TickCount returns the number of completed ticks.
func (e *Engine) TickCount() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tickCount
}

// StartJournal begins writing the match journal to path.
func (e *Engine) StartJournal(path string) error {
	return e.journal.Start(path)
}

// StopJournal flushes and closes the journal.
func (e *Engine) StopJournal() {
	e.journal.Stop()
}

// JournalStats exposes journal counters for the debug endpoints.
func (e *Engine) JournalStats() map[string]interface{} {
	return e.journal.Stats()
}
