package game

import (
	"encoding/json"
	"time"

	"ironsight/internal/game/geom"
)

// EventType classifies journal entries.
type EventType uint8

const (
	EventTypeUnknown EventType = iota
	EventTypeTick
	EventTypePlayerJoin
	EventTypePlayerLeave
	EventTypeFire
	EventTypeImpact
	EventTypeKill
	EventTypeRespawn
)

// EventVersion tags the journal schema so old journals remain readable.
const EventVersion uint8 = 1

// Event is one journal entry. Payload is the JSON-encoded typed payload for
// the event type.
type Event struct {
	Version   uint8     `json:"version"`
	Type      EventType `json:"type"`
	Timestamp int64     `json:"timestamp"` // unix nano
	Sequence  uint64    `json:"sequence"`
	Tick      uint64    `json:"tick"`
	PlayerID  string    `json:"playerId"`
	Payload   []byte    `json:"payload"`
}

func (t EventType) String() string {
	switch t {
	case EventTypeTick:
		return "tick"
	case EventTypePlayerJoin:
		return "player_join"
	case EventTypePlayerLeave:
		return "player_leave"
	case EventTypeFire:
		return "fire"
	case EventTypeImpact:
		return "impact"
	case EventTypeKill:
		return "kill"
	case EventTypeRespawn:
		return "respawn"
	default:
		return "unknown"
	}
}

// TickPayload marks a tick boundary.
type TickPayload struct {
	PlayerCount     int   `json:"playerCount"`
	ProjectileCount int   `json:"projectileCount"`
	DurationNs      int64 `json:"durationNs"`
}

// FirePayload records a successful weapon discharge.
type FirePayload struct {
	WeaponID  string       `json:"weaponId"`
	Origin    geom.Vector3 `json:"origin"`
	Direction geom.Vector3 `json:"direction"`
	AmmoLeft  int          `json:"ammoLeft"`
}

// PlayerJoinPayload records a player entering the match.
type PlayerJoinPayload struct {
	PlayerID string       `json:"playerId"`
	Name     string       `json:"name"`
	Spawn    geom.Vector3 `json:"spawn"`
}

// RespawnPayload records a respawn.
type RespawnPayload struct {
	PlayerID string       `json:"playerId"`
	Spawn    geom.Vector3 `json:"spawn"`
}

// EncodePayload marshals a payload to JSON, nil on failure.
func EncodePayload(payload interface{}) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return data
}

// NewEvent stamps an event with the current time.
func NewEvent(eventType EventType, tick uint64, playerID string, payload interface{}) Event {
	return Event{
		Version:   EventVersion,
		Type:      eventType,
		Timestamp: time.Now().UnixNano(),
		Tick:      tick,
		PlayerID:  playerID,
		Payload:   EncodePayload(payload),
	}
}
