package entity

import (
	"time"
)

// Archetype is the data-driven configuration of an enemy kind
type Archetype struct {
	Kind     Kind
	HP       float64
	Speed    float64
	Damage   float64
	Value    int
	Radius   float64
	Behavior Behavior
	Interval time.Duration // Dash charge interval
	Range    float64       // Orbit, flee or turret range
}

// Modifiers scale an archetype at spawn time
type Modifiers struct {
	HP     float64
	Speed  float64
	Radius float64
	Elite  bool
	Boss   bool
}

// Unscaled is the identity modifier set
var Unscaled = Modifiers{HP: 1, Speed: 1, Radius: 1}

// Bestiary maps kinds to archetypes with a Jelly fallback
type Bestiary struct {
	table map[Kind]Archetype
}

var defaultArchetypes = []Archetype{
	{Kind: KindJelly, HP: 20, Speed: 80, Damage: 10, Value: 10, Radius: 12, Behavior: BehaviorChase},
	{Kind: KindTriDart, HP: 15, Speed: 180, Damage: 15, Value: 20, Radius: 10, Behavior: BehaviorSwarm},
	{Kind: KindCharger, HP: 40, Speed: 250, Damage: 25, Value: 30, Radius: 18, Behavior: BehaviorDash, Interval: 2000 * time.Millisecond},
	{Kind: KindWisp, HP: 5, Speed: 120, Damage: 5, Value: 5, Radius: 6, Behavior: BehaviorErratic},
	{Kind: KindCrab, HP: 60, Speed: 60, Damage: 20, Value: 40, Radius: 20, Behavior: BehaviorStrafe, Range: 200},
	{Kind: KindSplitter, HP: 30, Speed: 90, Damage: 15, Value: 25, Radius: 15, Behavior: BehaviorChase},
	{Kind: KindSentinel, HP: 100, Speed: 0, Damage: 30, Value: 50, Radius: 25, Behavior: BehaviorStationary, Range: 400},
	{Kind: KindGolem, HP: 150, Speed: 40, Damage: 35, Value: 80, Radius: 30, Behavior: BehaviorChase},
	{Kind: KindLootBunny, HP: 30, Speed: 200, Damage: 0, Value: 500, Radius: 14, Behavior: BehaviorFlee, Range: 300},
	{Kind: KindPhantom, HP: 25, Speed: 100, Damage: 20, Value: 35, Radius: 12, Behavior: BehaviorChase},
	// Boss stats are the golem's; boss multipliers are applied at spawn
	{Kind: KindBoss, HP: 150, Speed: 40, Damage: 35, Value: 80, Radius: 30, Behavior: BehaviorChase},
}

// DefaultBestiary returns the built-in archetype table
func DefaultBestiary() *Bestiary {
	b := &Bestiary{table: make(map[Kind]Archetype, len(defaultArchetypes))}
	for _, a := range defaultArchetypes {
		b.table[a.Kind] = a
	}
	return b
}

// Lookup returns k's archetype; unknown kinds resolve to the Jelly baseline
// Callers acquire from the pool of the returned archetype's Kind
func (b *Bestiary) Lookup(k Kind) Archetype {
	if a, ok := b.table[k]; ok {
		return a
	}
	return b.table[KindJelly]
}

// Has reports an explicit archetype for k
func (b *Bestiary) Has(k Kind) bool {
	_, ok := b.table[k]
	return ok
}

// Set installs or replaces an archetype
func (b *Bestiary) Set(a Archetype) {
	b.table[a.Kind] = a
}
