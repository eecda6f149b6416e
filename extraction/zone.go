// Package extraction tracks extraction zone progress and the loot carried out
package extraction

import (
	"math"
	"time"

	"github.com/lixenwraith/arena-core/parameter"
	"github.com/lixenwraith/arena-core/vmath"
)

// Zone is a circular extraction point with its own progress timer
type Zone struct {
	Center   vmath.Vec2
	Radius   float64
	Progress time.Duration
}

// Contains reports strict containment of pos
func (z *Zone) Contains(pos vmath.Vec2) bool {
	return vmath.DistSq(z.Center, pos) < z.Radius*z.Radius
}

// Placer yields Ground tile centres; terrain.Map satisfies it
type Placer interface {
	RandomWalkableTile() (vmath.Vec2, error)
}

// PlaceZones draws count zone centres from walkable tiles, each at least minSep
// from the zones before it and from every avoid point. When no draw is far
// enough the farthest one is kept; a map without walkable tiles gets no zones.
func PlaceZones(p Placer, count int, minSep float64, avoid ...vmath.Vec2) []Zone {
	zones := make([]Zone, 0, count)
	taken := append([]vmath.Vec2(nil), avoid...)
	for range count {
		var best vmath.Vec2
		bestSq, found := -1.0, false
		for range parameter.ExtractionPlacementAttempts {
			pos, err := p.RandomWalkableTile()
			if err != nil {
				break
			}
			sq := nearestSq(pos, taken)
			if sq > bestSq {
				best, bestSq, found = pos, sq, true
			}
			if sq >= minSep*minSep {
				break
			}
		}
		if !found {
			continue
		}
		taken = append(taken, best)
		zones = append(zones, Zone{Center: best, Radius: parameter.ExtractionRadius})
	}
	return zones
}

func nearestSq(pos vmath.Vec2, others []vmath.Vec2) float64 {
	best := math.Inf(1)
	for _, o := range others {
		best = min(best, vmath.DistSq(pos, o))
	}
	return best
}

// Tracker accrues progress while the carrier stands in a zone and decays it outside
type Tracker struct {
	zones    []Zone
	duration time.Duration
	decay    float64
	done     bool
}

// NewTracker copies zones; duration 0 uses the default
func NewTracker(zones []Zone, duration time.Duration) *Tracker {
	if duration <= 0 {
		duration = parameter.ExtractionDuration
	}
	return &Tracker{
		zones:    append([]Zone(nil), zones...),
		duration: duration,
		decay:    parameter.ExtractionDecayRate,
	}
}

// Update advances every zone for a carrier at pos
// Returns true exactly once, on the tick a zone completes
func (t *Tracker) Update(pos vmath.Vec2, dt time.Duration) bool {
	if t.done {
		return false
	}
	for i := range t.zones {
		z := &t.zones[i]
		if z.Contains(pos) {
			z.Progress += dt
			if z.Progress >= t.duration {
				z.Progress = t.duration
				t.done = true
				return true
			}
			continue
		}
		if z.Progress > 0 {
			z.Progress -= time.Duration(float64(dt) * t.decay)
			if z.Progress < 0 {
				z.Progress = 0
			}
		}
	}
	return false
}

// Done reports a completed extraction
func (t *Tracker) Done() bool { return t.done }

// Zones returns a copy of the zone states
func (t *Tracker) Zones() []Zone {
	return append([]Zone(nil), t.zones...)
}

// Progress returns the highest zone completion in [0, 1]
func (t *Tracker) Progress() float64 {
	best := time.Duration(0)
	for _, z := range t.zones {
		if z.Progress > best {
			best = z.Progress
		}
	}
	return float64(best) / float64(t.duration)
}

// Reset clears progress for a new match
func (t *Tracker) Reset() {
	for i := range t.zones {
		t.zones[i].Progress = 0
	}
	t.done = false
}
