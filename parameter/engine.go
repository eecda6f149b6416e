package parameter

import "time"

// Simulation Clock
const (
	// TickInterval is the fixed simulation step (~60 Hz)
	TickInterval = 16600 * time.Microsecond

	// FrameInterval is the scheduler wake-up interval for driving the accumulator
	FrameInterval = 16 * time.Millisecond

	// MaxFrameElapsed clamps a single frame's real elapsed time fed to the accumulator
	// A stalled process resumes with at most this much simulation catch-up
	MaxFrameElapsed = 250 * time.Millisecond
)

// Event Queue
const (
	// EventQueueSize is the fixed capacity of the event ring buffer
	EventQueueSize = 1024

	// EventBufferMask is the bitmask for fast modulo operations (1024 - 1)
	EventBufferMask = 1023
)

// Ledger
const (
	// LedgerQueueSize bounds ledger writes waiting on the recorder worker
	LedgerQueueSize = 64
)
