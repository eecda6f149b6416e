package event

import (
	"github.com/google/uuid"

	"github.com/lixenwraith/arena-core/entity"
	"github.com/lixenwraith/arena-core/vmath"
)

// MatchStartPayload configures a new match
type MatchStartPayload struct {
	MatchID uuid.UUID `yaml:"match_id"`
	Mode    string    `yaml:"mode"`
	HeroID  string    `yaml:"hero_id"`
	Seed    int64     `yaml:"seed"` // Terrain and director seed shared by both peers
}

// ApplyUpgradePayload names an upgrade for one player
type ApplyUpgradePayload struct {
	Player entity.PlayerID `yaml:"player"`
	Type   string          `yaml:"type"`
}

// NetworkPacketPayload is a decoded wire message body
type NetworkPacketPayload struct {
	MsgType uint8
	Data    []byte
}

// PeerPayload identifies the remote side of a link
type PeerPayload struct {
	PeerID string
	Reason string
}

// WaveStartPayload announces wave number and elite flag
type WaveStartPayload struct {
	Wave    int  `yaml:"wave"`
	IsElite bool `yaml:"is_elite"`
	Count   int  `yaml:"count"`
}

// WaveCompletePayload announces a cleared wave
type WaveCompletePayload struct {
	Wave int `yaml:"wave"`
}

// EnemyKilledPayload is a kill snapshot; the entity itself is already released
type EnemyKilledPayload struct {
	ID     entity.ID
	Kind   entity.Kind
	Pos    vmath.Vec2
	Value  int
	Elite  bool
	Boss   bool
	Killer entity.Owner
	Cause  string // "shot", "tether" or "contact"; contact kills are not credited
	LootID string // Empty when nothing dropped
}

// StatsUpdatePayload is the HUD view of the match
type StatsUpdatePayload struct {
	HP           float64
	MaxHP        float64
	Level        int
	XP           int
	XPToNext     int
	Score        int
	Wave         int
	EnemiesAlive int
}

// MatchOverPayload closes a match
type MatchOverPayload struct {
	MatchID uuid.UUID
	Score   int
	Wave    int
	Level   int
	Reason  string
}

// ExtractionSuccessPayload lists the loot carried out
type ExtractionSuccessPayload struct {
	MatchID uuid.UUID
	LootIDs []string
}

// PowerupPayload reports powerup state for one player
type PowerupPayload struct {
	Player entity.PlayerID
	Name   string
	Active bool
}
