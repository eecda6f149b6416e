package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/arena-core/core"
	"github.com/lixenwraith/arena-core/parameter"
	"github.com/lixenwraith/arena-core/status"
)

// Stepper advances a simulation by one fixed step
type Stepper interface {
	Step(dt time.Duration)
}

// Scheduler drives a Stepper from wall time through an Accumulator
// All steps and View callbacks run under one mutex, so the stepper is single-owner
type Scheduler struct {
	target Stepper
	clock  Clock
	acc    *Accumulator

	frameInterval time.Duration
	last          time.Time
	started       bool

	mu sync.Mutex

	onFrame func()

	// Control channels
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	running  atomic.Bool

	tickCount  atomic.Uint64
	statTicks  *atomic.Int64
	statFrames *atomic.Int64
	statLag    *status.Float
}

// NewScheduler creates a scheduler at the standard tick and frame rates; reg may be nil
func NewScheduler(target Stepper, clock Clock, reg *status.Registry) *Scheduler {
	if clock == nil {
		clock = NewSystemClock()
	}
	return &Scheduler{
		target:        target,
		clock:         clock,
		acc:           NewAccumulator(parameter.TickInterval, parameter.MaxFrameElapsed),
		frameInterval: parameter.FrameInterval,
		stopChan:      make(chan struct{}),
		statTicks:     reg.Counter("engine.ticks"),
		statFrames:    reg.Counter("engine.frames"),
		statLag:       reg.Gauge("engine.leftover_ms"),
	}
}

// SetFrameHook installs fn to run after each frame's steps, outside the lock
func (s *Scheduler) SetFrameHook(fn func()) {
	s.onFrame = fn
}

// Frame pumps one frame: measures wall time since the previous frame and runs
// the resulting fixed steps; returns the step count
func (s *Scheduler) Frame() int {
	now := s.clock.Now()

	s.mu.Lock()
	if !s.started {
		s.started = true
		s.last = now
		s.mu.Unlock()
		return 0
	}
	elapsed := now.Sub(s.last)
	s.last = now

	n := s.acc.Add(elapsed)
	step := s.acc.Step()
	for i := 0; i < n; i++ {
		s.target.Step(step)
	}
	leftover := s.acc.Leftover()
	s.mu.Unlock()

	if n > 0 {
		s.statTicks.Store(int64(s.tickCount.Add(uint64(n))))
	}
	s.statFrames.Add(1)
	s.statLag.Store(float64(leftover) / float64(time.Millisecond))

	if s.onFrame != nil {
		s.onFrame()
	}
	return n
}

// View runs fn while no step is in progress
func (s *Scheduler) View(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// Ticks returns total steps run
func (s *Scheduler) Ticks() uint64 {
	return s.tickCount.Load()
}

// Start begins the frame loop
func (s *Scheduler) Start() {
	if s.running.CompareAndSwap(false, true) {
		s.wg.Add(1)
		core.Go(s.loop)
	}
}

// Stop halts the frame loop and waits for the in-flight frame
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		if s.running.CompareAndSwap(true, false) {
			close(s.stopChan)
			s.wg.Wait()
		}
	})
}

func (s *Scheduler) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.frameInterval)
	defer ticker.Stop()

	s.Frame()
	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.Frame()
		}
	}
}
