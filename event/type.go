package event

// EventType identifies an event flowing between the simulation and its collaborators
type EventType int

const (
	// === Inbound (consumed by the simulation) ===

	// EventMatchStart begins a match
	// Trigger: Lobby, host replication on guest
	// Consumer: Match | Payload: *MatchStartPayload
	EventMatchStart EventType = iota + 1

	// EventApplyUpgrade grants an upgrade or powerup to a player
	// Trigger: Upgrade screen, debug commands
	// Consumer: Combat | Payload: *ApplyUpgradePayload
	EventApplyUpgrade

	// EventNetworkPacket carries one decoded wire message
	// Trigger: Network service read loop
	// Consumer: Replicator | Payload: *NetworkPacketPayload
	EventNetworkPacket

	// EventPeerConnected signals an established peer link
	// Trigger: Network service
	// Consumer: Replicator | Payload: *PeerPayload
	EventPeerConnected

	// EventPeerDisconnected signals a lost peer link; always ends the match
	// Trigger: Network service on close or timeout
	// Consumer: Replicator, Match | Payload: *PeerPayload
	EventPeerDisconnected

	// === Outbound (produced by the simulation) ===

	// EventWaveStart announces a new wave
	// Trigger: Director
	// Consumer: Audio cue, HUD | Payload: *WaveStartPayload
	EventWaveStart EventType = iota + 100

	// EventWaveComplete announces a cleared wave
	// Trigger: Director
	// Consumer: Audio cue, HUD | Payload: *WaveCompletePayload
	EventWaveComplete

	// EventEnemyKilled reports a kill with its position and value
	// Trigger: Combat
	// Consumer: Audio cue, loot | Payload: *EnemyKilledPayload
	EventEnemyKilled

	// EventStatsUpdate publishes aggregate player stats
	// Trigger: Match, once per tick when changed
	// Consumer: HUD | Payload: *StatsUpdatePayload
	EventStatsUpdate

	// EventMatchOver ends a match; emitted exactly once
	// Trigger: Combat on player death, extraction, peer disconnect
	// Consumer: Ledger, audio cue, replication | Payload: *MatchOverPayload
	EventMatchOver

	// EventExtractionSuccess reports a completed extraction
	// Trigger: Extraction
	// Consumer: Ledger | Payload: *ExtractionSuccessPayload
	EventExtractionSuccess

	// EventPowerupChanged reports a powerup activation or expiry
	// Trigger: Combat
	// Consumer: Audio cue, HUD | Payload: *PowerupPayload
	EventPowerupChanged
)

// GameEvent is one queued or emitted event
type GameEvent struct {
	Type    EventType
	Payload any
	Tick    uint64
}

func (t EventType) String() string {
	if name := GetEventName(t); name != "" {
		return name
	}
	return "EventUnknown"
}
