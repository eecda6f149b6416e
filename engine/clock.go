package engine

import (
	"sync"
	"time"
)

// Clock provides wall time to the scheduler
type Clock interface {
	Now() time.Time
}

// SystemClock provides the real system time with monotonic clock readings
type SystemClock struct{}

// NewSystemClock creates a monotonic clock
func NewSystemClock() *SystemClock {
	return &SystemClock{}
}

// Now returns the current time with monotonic clock reading
func (SystemClock) Now() time.Time {
	return time.Now()
}

// ManualClock is a controllable clock for tests and replays
type ManualClock struct {
	mu  sync.RWMutex
	now time.Time
}

// NewManualClock creates a clock frozen at start
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the current frozen time
func (c *ManualClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

// Set moves the clock to t
func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the clock forward by d
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
