package game

import (
	"testing"

	"ironsight/internal/game/geom"
)

func findState(t *testing.T, snap Snapshot, id string) PlayerState {
	t.Helper()
	for _, s := range snap.Players {
		if s.ID == id {
			return s
		}
	}
	t.Fatalf("player %s not in snapshot", id)
	return PlayerState{}
}

// duel arena: shooter at the origin, victim 5m down the +Z aim line
func duelArena() *Arena {
	return &Arena{
		Name: "duel",
		Bounds: geom.AABB{
			Min: geom.Vector3{X: -50, Y: 0, Z: -50},
			Max: geom.Vector3{X: 50, Y: 20, Z: 50},
		},
		SpawnPoints: []geom.Vector3{
			{X: 0, Y: 0, Z: 0},
			{X: 0, Y: 0, Z: 5},
		},
	}
}

// TestEngineTickMovesPlayer tests input application end to end
func TestEngineTickMovesPlayer(t *testing.T) {
	e := NewEngine(DefaultArena(), 30)
	p := e.AddPlayer("alice")
	start := p.Position

	if !e.QueueInput(p.ID, Input{Seq: 1, MoveZ: 1}) {
		t.Fatal("queue rejected a fresh input")
	}
	snap := e.Tick(testDt)

	st := findState(t, snap, p.ID)
	if st.LastInputSeq != 1 {
		t.Errorf("expected input 1 acknowledged, got %d", st.LastInputSeq)
	}
	if st.Position.Z <= start.Z {
		t.Errorf("player did not move forward: %v -> %v", start.Z, st.Position.Z)
	}
	if snap.Tick != 1 {
		t.Errorf("expected tick 1, got %d", snap.Tick)
	}
}

// TestEngineIdlePlayerDecelerates tests that ticks without input still integrate
func TestEngineIdlePlayerDecelerates(t *testing.T) {
	e := NewEngine(DefaultArena(), 30)
	p := e.AddPlayer("idler")
	p.Vel = geom.Vector3{X: 5}

	for i := 0; i < 90; i++ {
		e.Tick(testDt)
	}
	if p.Vel.X != 0 {
		t.Errorf("idle player should coast to a stop, got %+v", p.Vel)
	}
	if !p.Grounded {
		t.Error("idle player should settle onto the ground")
	}
}

// TestQueueInputStaleSeq tests duplicate and reordered input rejection
func TestQueueInputStaleSeq(t *testing.T) {
	e := NewEngine(DefaultArena(), 30)
	p := e.AddPlayer("alice")
	p.LastInputSeq = 5

	if e.QueueInput(p.ID, Input{Seq: 5}) {
		t.Error("seq equal to last applied should be rejected")
	}
	if e.QueueInput(p.ID, Input{Seq: 3}) {
		t.Error("seq below last applied should be rejected")
	}
	if !e.QueueInput(p.ID, Input{Seq: 6}) {
		t.Error("next seq should be accepted")
	}
	if e.QueueInput("ghost", Input{Seq: 1}) {
		t.Error("unknown player should be rejected")
	}
}

// TestQueueInputNewestWins tests that a burst between ticks keeps only the
// newest input
func TestQueueInputNewestWins(t *testing.T) {
	e := NewEngine(DefaultArena(), 30)
	p := e.AddPlayer("burster")

	for seq := uint32(1); seq <= 5; seq++ {
		e.QueueInput(p.ID, Input{Seq: seq, MoveZ: 1})
	}
	if pending := e.inputs[p.ID]; pending.Seq != 5 {
		t.Errorf("expected only the newest input pending, got seq %d", pending.Seq)
	}

	// An older input arriving after a newer one is discarded.
	if e.QueueInput(p.ID, Input{Seq: 3}) {
		t.Error("input older than the pending one should be rejected")
	}

	e.Tick(testDt)
	if p.LastInputSeq != 5 {
		t.Errorf("expected seq 5 applied, got %d", p.LastInputSeq)
	}
}

// TestEngineFire tests the fire input producing a live projectile
func TestEngineFire(t *testing.T) {
	e := NewEngine(duelArena(), 30)
	p := e.AddPlayer("shooter")

	e.QueueInput(p.ID, Input{Seq: 1, Fire: true})
	snap := e.Tick(testDt)

	if len(snap.Projectiles) != 1 {
		t.Fatalf("expected 1 projectile, got %d", len(snap.Projectiles))
	}
	if snap.Projectiles[0].OwnerID != p.ID {
		t.Errorf("projectile owner mismatch: %s", snap.Projectiles[0].OwnerID)
	}
	if p.Weapon.Ammo != p.Weapon.Stats.MagazineSize-1 {
		t.Errorf("expected one round spent, got %d", p.Weapon.Ammo)
	}
}

// TestEngineProjectileHitsObstacle tests the wall sweep inside the tick
func TestEngineProjectileHitsObstacle(t *testing.T) {
	arena := duelArena()
	arena.Obstacles = []Obstacle{
		{Position: geom.Vector3{X: 0, Y: 2, Z: 10}, Size: geom.Vector3{X: 10, Y: 4, Z: 2}},
	}
	arena.SpawnPoints = arena.SpawnPoints[:1]

	e := NewEngine(arena, 30)
	p := e.AddPlayer("shooter")
	e.QueueInput(p.ID, Input{Seq: 1, Fire: true})

	var impact *ImpactEvent
	for i := 0; i < 10 && impact == nil; i++ {
		snap := e.Tick(testDt)
		for k := range snap.Impacts {
			impact = &snap.Impacts[k]
			break
		}
	}

	if impact == nil {
		t.Fatal("projectile never hit the wall")
	}
	if impact.Kind != ImpactObstacle {
		t.Errorf("expected an obstacle impact, got %s", impact.Kind)
	}
	if impact.Position.Z > 9.1 {
		t.Errorf("impact should be on the wall's near face, got %+v", impact.Position)
	}
	if _, projectiles, _ := e.Counts(); projectiles != 0 {
		t.Errorf("projectile should despawn on impact, %d left", projectiles)
	}
}

// TestEngineProjectileHitsGround tests that a downward shot stops on the
// floor plane instead of running out its range underground
func TestEngineProjectileHitsGround(t *testing.T) {
	e := NewEngine(duelArena(), 30)
	e.projectiles = append(e.projectiles, NewProjectile(ProjectileSpawnRequest{
		OwnerID:   "shooter",
		OwnerName: "shooter",
		WeaponID:  DefaultWeaponID,
		Origin:    geom.Vector3{X: 0, Y: 1.6, Z: 0},
		Direction: geom.Vector3{Y: -1},
		Speed:     90,
		Damage:    15,
		Range:     120,
	}, 0))

	snap := e.Tick(testDt)
	if len(snap.Impacts) != 1 {
		t.Fatalf("expected 1 impact, got %d", len(snap.Impacts))
	}
	imp := snap.Impacts[0]
	if imp.Kind != ImpactGround {
		t.Errorf("expected a ground impact, got %s", imp.Kind)
	}
	if imp.Position.Y < -1e-6 || imp.Position.Y > 1e-6 {
		t.Errorf("impact should sit on the floor plane, got Y=%v", imp.Position.Y)
	}
	if _, projectiles, _ := e.Counts(); projectiles != 0 {
		t.Errorf("projectile should despawn on the floor, %d left", projectiles)
	}
}

// TestEngineProjectileExpires tests range termination with nothing to hit
func TestEngineProjectileExpires(t *testing.T) {
	arena := &Arena{
		Name: "long-range",
		Bounds: geom.AABB{
			Min: geom.Vector3{X: -10, Y: 0, Z: -10},
			Max: geom.Vector3{X: 10, Y: 50, Z: 200},
		},
		SpawnPoints: []geom.Vector3{{X: 0, Y: 0, Z: 0}},
	}

	e := NewEngine(arena, 30)
	p := e.AddPlayer("shooter")
	e.QueueInput(p.ID, Input{Seq: 1, Fire: true})

	var impact *ImpactEvent
	ticks := 0
	for i := 0; i < 60 && impact == nil; i++ {
		ticks++
		snap := e.Tick(testDt)
		for k := range snap.Impacts {
			impact = &snap.Impacts[k]
			break
		}
	}

	if impact == nil {
		t.Fatal("projectile never expired")
	}
	if impact.Kind != ImpactExpired {
		t.Errorf("expected an expiry impact, got %s", impact.Kind)
	}
	// 120m of range at 90 m/s is 40 travel ticks after the spawn tick.
	if ticks < 40 || ticks > 43 {
		t.Errorf("expected expiry near tick 41, got %d", ticks)
	}
}

// TestEngineKillAndRespawn tests the full kill, credit and respawn cycle
func TestEngineKillAndRespawn(t *testing.T) {
	e := NewEngine(duelArena(), 30)
	shooter := e.AddPlayer("shooter")
	victim := e.AddPlayer("victim")
	victim.Health = 40

	e.QueueInput(shooter.ID, Input{Seq: 1, Fire: true})

	var impact *ImpactEvent
	for i := 0; i < 10 && impact == nil; i++ {
		snap := e.Tick(testDt)
		for k := range snap.Impacts {
			if snap.Impacts[k].Kind == ImpactPlayer {
				impact = &snap.Impacts[k]
				break
			}
		}
	}

	if impact == nil {
		t.Fatal("projectile never reached the victim")
	}
	if impact.VictimID != victim.ID || impact.AttackerID != shooter.ID {
		t.Errorf("impact credits wrong players: %+v", impact)
	}
	if impact.Region != RegionHead {
		t.Errorf("a flat shot at eye height should land on the head, got %s", impact.Region)
	}
	if !impact.Killed || impact.VictimHealth != 0 {
		t.Errorf("45 damage on 40 health should kill, got %+v", impact)
	}
	if victim.Alive {
		t.Error("victim should be dead")
	}
	if shooter.Kills != 1 || victim.Deaths != 1 {
		t.Errorf("expected 1 kill and 1 death, got %d/%d", shooter.Kills, victim.Deaths)
	}
	if _, _, kills := e.Counts(); kills != 1 {
		t.Errorf("expected 1 total kill, got %d", kills)
	}

	// Queued inputs for the corpse drain without moving it.
	e.QueueInput(victim.ID, Input{Seq: 50, MoveZ: 1})
	deadPos := victim.Position
	e.Tick(testDt)
	if victim.LastInputSeq != 50 {
		t.Errorf("corpse queue should still acknowledge, got seq %d", victim.LastInputSeq)
	}
	if !victim.Position.ApproxEqual(deadPos) {
		t.Error("corpse moved")
	}

	// Respawn after the delay.
	for i := 0; i < 95 && !victim.Alive; i++ {
		e.Tick(testDt)
	}
	if !victim.Alive {
		t.Fatal("victim never respawned")
	}
	if victim.Health != victim.MaxHealth {
		t.Errorf("respawn should restore full health, got %d", victim.Health)
	}
	if victim.Weapon.Ammo != victim.Weapon.Stats.MagazineSize {
		t.Errorf("respawn should refill the magazine, got %d", victim.Weapon.Ammo)
	}
}

// TestEngineAddRemovePlayer tests the roster bookkeeping
func TestEngineAddRemovePlayer(t *testing.T) {
	e := NewEngine(DefaultArena(), 30)

	a := e.AddPlayer("alice")
	b := e.AddPlayer("bob")
	if players, _, _ := e.Counts(); players != 2 {
		t.Fatalf("expected 2 players, got %d", players)
	}
	if a.Position.ApproxEqual(b.Position) {
		t.Error("players should spawn at different points")
	}

	e.RemovePlayer(a.ID)
	if players, _, _ := e.Counts(); players != 1 {
		t.Errorf("expected 1 player after removal, got %d", players)
	}
	if e.GetPlayer(a.ID) != nil {
		t.Error("removed player still reachable")
	}
	if e.QueueInput(a.ID, Input{Seq: 1}) {
		t.Error("removed player should not accept inputs")
	}
}

// TestSnapshotNow tests the read-only snapshot path
func TestSnapshotNow(t *testing.T) {
	e := NewEngine(DefaultArena(), 30)
	p := e.AddPlayer("alice")

	snap := e.SnapshotNow()
	if snap.Tick != 0 {
		t.Errorf("SnapshotNow should not advance the tick, got %d", snap.Tick)
	}
	st := findState(t, snap, p.ID)
	if st.Name != "alice" || st.Health != MaxHealth {
		t.Errorf("unexpected state: %+v", st)
	}
	if st.WeaponID != DefaultWeaponID {
		t.Errorf("expected default weapon, got %s", st.WeaponID)
	}
}
