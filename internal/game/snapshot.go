package game

import "ironsight/internal/game/geom"

// PlayerState is the wire form of one player inside a snapshot. Value types
// only; a snapshot never aliases live entities.
type PlayerState struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Position geom.Vector3 `json:"position"`
	Velocity geom.Vector3 `json:"velocity"`
	Yaw      float64      `json:"yaw"`
	Pitch    float64      `json:"pitch"`

	Health   int  `json:"health"`
	Alive    bool `json:"alive"`
	Grounded bool `json:"grounded"`

	Kills  int `json:"kills"`
	Deaths int `json:"deaths"`

	WeaponID    string      `json:"weaponId"`
	WeaponState WeaponState `json:"weaponState"`
	Ammo        int         `json:"ammo"`

	// Newest input sequence the server had applied when this snapshot was
	// taken. The owning client reconciles and replays from here.
	LastInputSeq uint32 `json:"lastInputSeq"`
}

// ProjectileState is the wire form of one in-flight projectile.
type ProjectileState struct {
	ID       string       `json:"id"`
	OwnerID  string       `json:"ownerId"`
	WeaponID string       `json:"weaponId"`
	Position geom.Vector3 `json:"position"`
	Velocity geom.Vector3 `json:"velocity"`
}

// Snapshot is the full authoritative state broadcast after each tick,
// bundled with the impact events that tick produced.
type Snapshot struct {
	Tick        uint64            `json:"tick"`
	ServerTime  int64             `json:"serverTime"` // unix millis
	Players     []PlayerState     `json:"players"`
	Projectiles []ProjectileState `json:"projectiles"`
	Impacts     []ImpactEvent     `json:"impacts,omitempty"`
}

// ImpactKind classifies what a projectile hit.
type ImpactKind string

const (
	ImpactObstacle ImpactKind = "obstacle"
	ImpactGround   ImpactKind = "ground"
	ImpactPlayer   ImpactKind = "player"
	ImpactExpired  ImpactKind = "expired"
)

// ImpactEvent records one projectile ending during a tick. The tick produces
// these as explicit return values; nothing else in the simulation observes
// them until the engine hands them to its sinks.
type ImpactEvent struct {
	Tick         uint64       `json:"tick"`
	Kind         ImpactKind   `json:"kind"`
	ProjectileID string       `json:"projectileId"`
	AttackerID   string       `json:"attackerId"`
	VictimID     string       `json:"victimId,omitempty"`
	Region       HitRegion    `json:"region,omitempty"`
	Damage       int          `json:"damage,omitempty"`
	VictimHealth int          `json:"victimHealth,omitempty"`
	Killed       bool         `json:"killed,omitempty"`
	Position     geom.Vector3 `json:"position"`
}

// StateOf copies a live player into its wire form.
func StateOf(p *Player) PlayerState {
	s := PlayerState{
		ID:           p.ID,
		Name:         p.Name,
		Position:     p.Position,
		Velocity:     p.Vel,
		Yaw:          p.Yaw,
		Pitch:        p.Pitch,
		Health:       p.Health,
		Alive:        p.Alive,
		Grounded:     p.Grounded,
		Kills:        p.Kills,
		Deaths:       p.Deaths,
		LastInputSeq: p.LastInputSeq,
	}
	if p.Weapon != nil {
		s.WeaponID = p.Weapon.Stats.ID
		s.WeaponState = p.Weapon.State
		s.Ammo = p.Weapon.Ammo
	}
	return s
}

// StateOfProjectile copies a live projectile into its wire form.
func StateOfProjectile(p *Projectile) ProjectileState {
	return ProjectileState{
		ID:       p.ID,
		OwnerID:  p.OwnerID,
		WeaponID: p.WeaponID,
		Position: p.Position,
		Velocity: p.Vel,
	}
}
