package event

import (
	"strings"
	"sync"
)

// descriptor names an event type and builds its zero payload
type descriptor struct {
	name    string
	payload func() any
}

var descriptors = map[EventType]descriptor{
	// Inbound
	EventMatchStart:       {"MatchStart", func() any { return &MatchStartPayload{} }},
	EventApplyUpgrade:     {"ApplyUpgrade", func() any { return &ApplyUpgradePayload{} }},
	EventNetworkPacket:    {"NetworkPacket", func() any { return &NetworkPacketPayload{} }},
	EventPeerConnected:    {"PeerConnected", func() any { return &PeerPayload{} }},
	EventPeerDisconnected: {"PeerDisconnected", func() any { return &PeerPayload{} }},

	// Outbound
	EventWaveStart:         {"WaveStart", func() any { return &WaveStartPayload{} }},
	EventWaveComplete:      {"WaveComplete", func() any { return &WaveCompletePayload{} }},
	EventEnemyKilled:       {"EnemyKilled", func() any { return &EnemyKilledPayload{} }},
	EventStatsUpdate:       {"StatsUpdate", func() any { return &StatsUpdatePayload{} }},
	EventMatchOver:         {"MatchOver", func() any { return &MatchOverPayload{} }},
	EventExtractionSuccess: {"ExtractionSuccess", func() any { return &ExtractionSuccessPayload{} }},
	EventPowerupChanged:    {"PowerupChanged", func() any { return &PowerupPayload{} }},
}

// byName is the lowercase reverse index of descriptors
var byName = sync.OnceValue(func() map[string]EventType {
	m := make(map[string]EventType, len(descriptors))
	for et, d := range descriptors {
		m[strings.ToLower(d.name)] = et
	}
	return m
})

// InitRegistry builds the name index ahead of first lookup
func InitRegistry() { byName() }

// GetEventType resolves a case-insensitive name
func GetEventType(name string) (EventType, bool) {
	et, ok := byName()[strings.ToLower(name)]
	return et, ok
}

// GetEventName returns the registered name, empty when unknown
func GetEventName(et EventType) string {
	return descriptors[et].name
}

// NewPayloadStruct returns a pointer to a zero payload for et, nil when none is registered
func NewPayloadStruct(et EventType) any {
	d, ok := descriptors[et]
	if !ok || d.payload == nil {
		return nil
	}
	return d.payload()
}
