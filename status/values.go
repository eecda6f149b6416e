package status

import (
	"math"
	"sync/atomic"
)

// LabelMaxLen caps label values so HUD rows stay bounded
const LabelMaxLen = 40

// Float is a gauge stored as float64 bits; the zero value reads 0
type Float struct {
	bits atomic.Uint64
}

func (f *Float) Store(v float64) { f.bits.Store(math.Float64bits(v)) }
func (f *Float) Load() float64   { return math.Float64frombits(f.bits.Load()) }

// Add applies delta with a CAS loop and returns the new value
func (f *Float) Add(delta float64) float64 {
	for {
		old := f.bits.Load()
		v := math.Float64frombits(old) + delta
		if f.bits.CompareAndSwap(old, math.Float64bits(v)) {
			return v
		}
	}
}

// Text is a short string metric such as a role or a state name
type Text struct {
	v atomic.Value
}

// Store truncates to LabelMaxLen
func (t *Text) Store(s string) {
	if len(s) > LabelMaxLen {
		s = s[:LabelMaxLen]
	}
	t.v.Store(s)
}

func (t *Text) Load() string {
	s, _ := t.v.Load().(string)
	return s
}
