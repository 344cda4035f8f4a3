package game

import "ironsight/internal/game/geom"

// WeaponState is the firing state machine. Transitions:
// Ready -> OnCooldown -> Ready after the fire interval,
// Ready/OnCooldown -> Reloading -> Ready after the reload time.
type WeaponState string

const (
	WeaponReady     WeaponState = "ready"
	WeaponCooldown  WeaponState = "cooldown"
	WeaponReloading WeaponState = "reloading"
)

// WeaponStats is the immutable configuration of a weapon type.
type WeaponStats struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Damage          int     `json:"damage"`   // base damage before region multiplier
	Cooldown        float64 `json:"cooldown"` // seconds between shots
	MagazineSize    int     `json:"magazineSize"`
	ReloadTime      float64 `json:"reloadTime"` // seconds
	ProjectileSpeed float64 `json:"projectileSpeed"`
	Range           float64 `json:"range"` // meters of travel before despawn
}

// DefaultWeaponID is what new players spawn with.
const DefaultWeaponID = "rifle"

// WeaponCatalog is the set of available weapon types.
var WeaponCatalog = map[string]WeaponStats{
	"rifle": {
		ID:              "rifle",
		Name:            "Rifle",
		Damage:          15,
		Cooldown:        0.125,
		MagazineSize:    30,
		ReloadTime:      1.8,
		ProjectileSpeed: 90,
		Range:           120,
	},
	"pistol": {
		ID:              "pistol",
		Name:            "Pistol",
		Damage:          20,
		Cooldown:        0.3,
		MagazineSize:    12,
		ReloadTime:      1.2,
		ProjectileSpeed: 70,
		Range:           80,
	},
	"sniper": {
		ID:              "sniper",
		Name:            "Sniper",
		Damage:          60,
		Cooldown:        1.5,
		MagazineSize:    5,
		ReloadTime:      2.5,
		ProjectileSpeed: 150,
		Range:           200,
	},
}

// GetWeaponStats returns the stats for an ID, falling back to the default
// weapon for unknown IDs.
func GetWeaponStats(id string) WeaponStats {
	if s, ok := WeaponCatalog[id]; ok {
		return s
	}
	return WeaponCatalog[DefaultWeaponID]
}

// Weapon is the mutable per-player weapon instance.
type Weapon struct {
	Stats WeaponStats `json:"stats"`
	State WeaponState `json:"state"`
	Ammo  int         `json:"ammo"`

	cooldownLeft float64
	reloadLeft   float64
}

// NewWeapon creates a ready weapon with a full magazine.
func NewWeapon(id string) *Weapon {
	stats := GetWeaponStats(id)
	return &Weapon{
		Stats: stats,
		State: WeaponReady,
		Ammo:  stats.MagazineSize,
	}
}

// ProjectileSpawnRequest is what a successful Fire produces. The weapon never
// creates projectiles itself; the engine turns requests into entities so that
// spawning stays inside the tick.
type ProjectileSpawnRequest struct {
	OwnerID   string
	OwnerName string
	WeaponID  string
	Origin    geom.Vector3
	Direction geom.Vector3
	Speed     float64
	Damage    int
	Range     float64
}

// Fire attempts to discharge the weapon from origin along dir. It succeeds
// only in the Ready state with ammo in the magazine; an empty magazine starts
// a reload instead. dir is normalized here so callers can pass raw aim
// vectors.
func (w *Weapon) Fire(ownerID, ownerName string, origin, dir geom.Vector3) (ProjectileSpawnRequest, bool) {
	if w.State != WeaponReady {
		return ProjectileSpawnRequest{}, false
	}
	if w.Ammo <= 0 {
		w.StartReload()
		return ProjectileSpawnRequest{}, false
	}

	unit := dir.Normalize()
	if unit == geom.Zero {
		return ProjectileSpawnRequest{}, false
	}

	w.Ammo--
	w.State = WeaponCooldown
	w.cooldownLeft = w.Stats.Cooldown

	return ProjectileSpawnRequest{
		OwnerID:   ownerID,
		OwnerName: ownerName,
		WeaponID:  w.Stats.ID,
		Origin:    origin,
		Direction: unit,
		Speed:     w.Stats.ProjectileSpeed,
		Damage:    w.Stats.Damage,
		Range:     w.Stats.Range,
	}, true
}

// StartReload begins a reload unless one is already running or the magazine is
// full. Reloading from the cooldown state is allowed; the cooldown is
// abandoned.
func (w *Weapon) StartReload() bool {
	if w.State == WeaponReloading || w.Ammo >= w.Stats.MagazineSize {
		return false
	}
	w.State = WeaponReloading
	w.reloadLeft = w.Stats.ReloadTime
	w.cooldownLeft = 0
	return true
}

// CancelReload aborts an in-progress reload without restoring ammo. Called on
// death so a respawned weapon does not finish a stale reload.
func (w *Weapon) CancelReload() {
	if w.State == WeaponReloading {
		w.State = WeaponReady
		w.reloadLeft = 0
	}
}

// Update advances the state machine timers by dt seconds.
func (w *Weapon) Update(dt float64) {
	switch w.State {
	case WeaponCooldown:
		w.cooldownLeft -= dt
		if w.cooldownLeft <= 0 {
			w.cooldownLeft = 0
			w.State = WeaponReady
		}
	case WeaponReloading:
		w.reloadLeft -= dt
		if w.reloadLeft <= 0 {
			w.reloadLeft = 0
			w.Ammo = w.Stats.MagazineSize
			w.State = WeaponReady
		}
	}
}

// Reset restores a full magazine in the Ready state. Used on respawn.
func (w *Weapon) Reset() {
	w.State = WeaponReady
	w.Ammo = w.Stats.MagazineSize
	w.cooldownLeft = 0
	w.reloadLeft = 0
}
