// Package pool provides fixed-capacity stores of reusable slots
// Items are allocated once at construction and recycled through Acquire/Release
package pool

import "github.com/pkg/errors"

// ErrExhausted reports an Acquire against a pool at capacity
var ErrExhausted = errors.New("pool exhausted")

// Item is a pooled value: a pointer type that tracks its own slot and active flag
type Item interface {
	comparable
	Slot() int
	SetSlot(int)
	Active() bool
	// Activate resets the item to defaults and marks it active
	Activate()
	// Deactivate clears the active flag and disables physics
	Deactivate()
}

// Pool is a bounded allocator for one item archetype
// Not safe for concurrent use; owned by the simulation tick
type Pool[T Item] struct {
	items  []T
	free   []int // LIFO stack of inactive slot indices
	active int
}

// New preallocates capacity items using newFn
func New[T Item](capacity int, newFn func() T) *Pool[T] {
	if capacity < 0 {
		capacity = 0
	}
	p := &Pool[T]{
		items: make([]T, capacity),
		free:  make([]int, 0, capacity),
	}
	for i := 0; i < capacity; i++ {
		item := newFn()
		item.SetSlot(i)
		p.items[i] = item
	}
	// Lowest slot is handed out first
	for i := capacity - 1; i >= 0; i-- {
		p.free = append(p.free, i)
	}
	return p
}

// Acquire returns a reset, active item or false when the pool is full
func (p *Pool[T]) Acquire() (T, bool) {
	var zero T
	n := len(p.free)
	if n == 0 {
		return zero, false
	}
	slot := p.free[n-1]
	p.free = p.free[:n-1]

	item := p.items[slot]
	item.Activate()
	p.active++
	return item, true
}

// TryAcquire is Acquire with ErrExhausted, wrapped with the capacity, on a full pool
func (p *Pool[T]) TryAcquire() (T, error) {
	item, ok := p.Acquire()
	if !ok {
		return item, errors.Wrapf(ErrExhausted, "capacity %d", len(p.items))
	}
	return item, nil
}

// Release returns item to the pool; releasing an inactive or foreign item is a no-op
// Returns true if the item transitioned to inactive
func (p *Pool[T]) Release(item T) bool {
	slot := item.Slot()
	if slot < 0 || slot >= len(p.items) || p.items[slot] != item {
		return false
	}
	if !item.Active() {
		return false
	}
	item.Deactivate()
	p.free = append(p.free, slot)
	p.active--
	return true
}

// ReleaseAll deactivates every active item
func (p *Pool[T]) ReleaseAll() int {
	n := 0
	for _, item := range p.items {
		if p.Release(item) {
			n++
		}
	}
	return n
}

// Each visits active items in slot order until fn returns false
// fn may Release the visited item
func (p *Pool[T]) Each(fn func(T) bool) {
	for _, item := range p.items {
		if !item.Active() {
			continue
		}
		if !fn(item) {
			return
		}
	}
}

// ActiveCount returns the number of acquired items
func (p *Pool[T]) ActiveCount() int {
	return p.active
}

// Cap returns the hard capacity
func (p *Pool[T]) Cap() int {
	return len(p.items)
}
