package entity

import "strings"

// Kind tags an enemy archetype and routes pool release
type Kind uint8

const (
	KindJelly Kind = iota
	KindTriDart
	KindCharger
	KindWisp
	KindCrab
	KindSplitter
	KindSentinel
	KindGolem
	KindLootBunny
	KindPhantom
	KindBoss

	kindCount
)

var kindNames = [kindCount]string{
	KindJelly:     "jelly",
	KindTriDart:   "tri_dart",
	KindCharger:   "charger",
	KindWisp:      "wisp",
	KindCrab:      "crab",
	KindSplitter:  "splitter",
	KindSentinel:  "sentinel",
	KindGolem:     "golem",
	KindLootBunny: "loot_bunny",
	KindPhantom:   "phantom",
	KindBoss:      "boss",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "unknown"
}

// ParseKind resolves a case-insensitive name; "TRI_DART" and "tri-dart" both match
func ParseKind(name string) (Kind, bool) {
	n := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	for k, s := range kindNames {
		if s == n {
			return Kind(k), true
		}
	}
	return KindJelly, false
}

// Kinds returns every defined kind in declaration order
func Kinds() []Kind {
	out := make([]Kind, kindCount)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

// Behavior selects the movement strategy of an enemy
type Behavior uint8

const (
	BehaviorChase Behavior = iota
	BehaviorSwarm
	BehaviorDash
	BehaviorStrafe
	BehaviorFlee
	BehaviorStationary
	BehaviorErratic

	BehaviorCount
)

var behaviorNames = [BehaviorCount]string{
	BehaviorChase:      "chase",
	BehaviorSwarm:      "swarm",
	BehaviorDash:       "dash",
	BehaviorStrafe:     "strafe",
	BehaviorFlee:       "flee",
	BehaviorStationary: "stationary",
	BehaviorErratic:    "erratic",
}

func (b Behavior) String() string {
	if b < BehaviorCount {
		return behaviorNames[b]
	}
	return "unknown"
}

// ParseBehavior resolves a case-insensitive behavior name
func ParseBehavior(name string) (Behavior, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	for b, s := range behaviorNames {
		if s == n {
			return Behavior(b), true
		}
	}
	return BehaviorChase, false
}

// DashPhase is the sub-state of a dashing enemy
type DashPhase uint8

const (
	DashReady   DashPhase = iota // Chasing, charging the interval
	DashWindup                   // Telegraph, velocity zero
	DashActive                   // Burst toward the locked direction
	DashRecover                  // Vulnerable, velocity damped
)

func (p DashPhase) String() string {
	switch p {
	case DashWindup:
		return "windup"
	case DashActive:
		return "dashing"
	case DashRecover:
		return "recovering"
	default:
		return "ready"
	}
}
