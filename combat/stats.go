package combat

import (
	"math"
	"math/rand"
	"time"

	"github.com/lixenwraith/arena-core/parameter"
)

// Stats are the team vitals and progression shared by host and guest
type Stats struct {
	HP       float64
	MaxHP    float64
	Level    int
	XP       int
	XPToNext int
	Score    int
	Wave     int
}

// NewStats returns level 1 vitals
func NewStats() Stats {
	return Stats{
		HP:       parameter.PlayerHP,
		MaxHP:    parameter.PlayerHP,
		Level:    1,
		XPToNext: parameter.XPFirstLevel,
	}
}

// Credit adds a kill's xp and score; returns true on level-up
// The xp bar resets on level-up and the requirement grows by XPGrowth
func (s *Stats) Credit(value int, double bool) bool {
	if double {
		value *= 2
	}
	s.Score += value
	s.XP += parameter.XPPerKill
	if s.XP < s.XPToNext {
		return false
	}
	s.Level++
	s.XP = 0
	s.XPToNext = int(math.Floor(float64(s.XPToNext) * parameter.XPGrowth))
	return true
}

// Damage lowers hp, clamped at zero; returns true when hp reaches zero
func (s *Stats) Damage(amount float64) bool {
	if amount <= 0 {
		return s.HP <= 0
	}
	s.HP -= amount
	if s.HP < 0 {
		s.HP = 0
	}
	return s.HP <= 0
}

// RollDamage applies a crit roll at the source; critPct is in [0, 100]
func RollDamage(base, critPct float64, rng *rand.Rand) (float64, bool) {
	if critPct > 0 && rng.Float64()*100 < critPct {
		return base * parameter.CritMultiplier, true
	}
	return base, false
}

// HitStop returns the simulation pause caused by a hit of the given damage
func HitStop(damage float64) time.Duration {
	if damage > parameter.HitStopHeavyThreshold {
		return parameter.HitStopHeavy
	}
	return parameter.HitStopLight
}
