package event

import (
	"sync/atomic"

	"github.com/lixenwraith/arena-core/parameter"
)

// cell is one ring slot; seq tells producers and the consumer whose turn it is
//   - seq == pos:     free for the producer claiming pos
//   - seq == pos + 1: written, ready for the consumer
type cell struct {
	seq atomic.Uint64
	ev  GameEvent
}

// Queue is a bounded lock-free MPSC ring carrying events from network and
// service goroutines to the tick owner
// A full ring rejects the newest event and counts it in Dropped
type Queue struct {
	cells   [parameter.EventQueueSize]cell
	tail    atomic.Uint64 // Next producer position
	head    atomic.Uint64 // Next consumer position
	dropped atomic.Uint64
}

func NewQueue() *Queue {
	q := &Queue{}
	for i := range q.cells {
		q.cells[i].seq.Store(uint64(i))
	}
	return q
}

// Push claims a slot and publishes ev; false when the ring is full
// Safe for any number of concurrent producers
func (q *Queue) Push(ev GameEvent) bool {
	for {
		pos := q.tail.Load()
		c := &q.cells[pos&parameter.EventBufferMask]
		seq := c.seq.Load()
		switch {
		case seq == pos:
			if q.tail.CompareAndSwap(pos, pos+1) {
				c.ev = ev
				c.seq.Store(pos + 1)
				return true
			}
		case seq < pos:
			// Slot still holds an unconsumed event from the previous lap
			q.dropped.Add(1)
			return false
		}
		// Another producer won the slot, reload
	}
}

// Drain returns every published event in FIFO order; single consumer only
// A slot claimed but not yet written stops the drain until the next call
func (q *Queue) Drain() []GameEvent {
	var out []GameEvent
	pos := q.head.Load()
	for {
		c := &q.cells[pos&parameter.EventBufferMask]
		if c.seq.Load() != pos+1 {
			break
		}
		out = append(out, c.ev)
		c.ev = GameEvent{}
		c.seq.Store(pos + parameter.EventQueueSize)
		pos++
	}
	q.head.Store(pos)
	return out
}

// Len is the approximate number of claimed, unconsumed slots
func (q *Queue) Len() int {
	head, tail := q.head.Load(), q.tail.Load()
	if tail <= head {
		return 0
	}
	return int(tail - head)
}

// Dropped counts events rejected by a full ring
func (q *Queue) Dropped() uint64 {
	return q.dropped.Load()
}
