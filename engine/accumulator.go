package engine

import "time"

// Accumulator converts variable frame time into fixed simulation steps
// Leftover time below one step is carried into the next frame
type Accumulator struct {
	step     time.Duration
	maxFrame time.Duration
	acc      time.Duration
	total    uint64
}

// NewAccumulator creates an accumulator; maxFrame <= 0 disables the clamp
func NewAccumulator(step, maxFrame time.Duration) *Accumulator {
	if step <= 0 {
		step = time.Millisecond
	}
	return &Accumulator{step: step, maxFrame: maxFrame}
}

// Add feeds one frame's elapsed time and returns the number of steps to run
func (a *Accumulator) Add(elapsed time.Duration) int {
	if elapsed <= 0 {
		return 0
	}
	if a.maxFrame > 0 && elapsed > a.maxFrame {
		elapsed = a.maxFrame
	}
	a.acc += elapsed
	n := int(a.acc / a.step)
	a.acc -= time.Duration(n) * a.step
	a.total += uint64(n)
	return n
}

// Step returns the fixed step
func (a *Accumulator) Step() time.Duration { return a.step }

// Leftover returns carried time below one step
func (a *Accumulator) Leftover() time.Duration { return a.acc }

// Alpha is the fraction of a step carried, for render interpolation
func (a *Accumulator) Alpha() float64 { return float64(a.acc) / float64(a.step) }

// Total returns steps produced since creation or Reset
func (a *Accumulator) Total() uint64 { return a.total }

// Reset drops carried time
func (a *Accumulator) Reset() {
	a.acc = 0
	a.total = 0
}
