package parameter

import "time"

// Extraction Zones
const (
	// ExtractionRadius is the zone capture radius
	ExtractionRadius = 100.0

	// ExtractionDuration is the dwell time needed to extract
	ExtractionDuration = 3000 * time.Millisecond

	// ExtractionDecayRate multiplies progress loss while outside
	ExtractionDecayRate = 2.0

	// ExtractionZoneCount is the number of zones placed per match
	ExtractionZoneCount = 2

	// ExtractionMinSeparation keeps zones apart from each other and the spawn
	ExtractionMinSeparation = 1200.0

	// ExtractionPlacementAttempts bounds tile draws per zone
	ExtractionPlacementAttempts = 32
)

// Loot
const (
	// LootDropChance is the per-kill probability of a loot roll
	LootDropChance = 0.1
)
