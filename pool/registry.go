package pool

import (
	"cmp"
	"slices"
)

// Tagged is an item that carries the key of the pool that owns it
type Tagged[K cmp.Ordered] interface {
	Item
	Tag() K
}

// Registry routes acquire and release across per-tag pools
// Release uses the item's recorded tag, never its dynamic type
type Registry[K cmp.Ordered, T Tagged[K]] struct {
	pools map[K]*Pool[T]
	order []K // Sorted keys for deterministic iteration
}

// NewRegistry creates an empty registry
func NewRegistry[K cmp.Ordered, T Tagged[K]]() *Registry[K, T] {
	return &Registry[K, T]{
		pools: make(map[K]*Pool[T]),
	}
}

// Register installs a pool for key, replacing any previous one
func (r *Registry[K, T]) Register(key K, p *Pool[T]) {
	if _, ok := r.pools[key]; !ok {
		r.order = append(r.order, key)
		slices.Sort(r.order)
	}
	r.pools[key] = p
}

// Pool returns the pool registered for key
func (r *Registry[K, T]) Pool(key K) (*Pool[T], bool) {
	p, ok := r.pools[key]
	return p, ok
}

// Acquire takes an item from key's pool; false if no pool or pool exhausted
func (r *Registry[K, T]) Acquire(key K) (T, bool) {
	p, ok := r.pools[key]
	if !ok {
		var zero T
		return zero, false
	}
	return p.Acquire()
}

// Release routes item to the pool named by its tag
func (r *Registry[K, T]) Release(item T) bool {
	p, ok := r.pools[item.Tag()]
	if !ok {
		return false
	}
	return p.Release(item)
}

// Each visits active items of every pool in key order, slot order within a pool
func (r *Registry[K, T]) Each(fn func(T) bool) {
	for _, k := range r.order {
		stop := false
		r.pools[k].Each(func(item T) bool {
			if !fn(item) {
				stop = true
				return false
			}
			return true
		})
		if stop {
			return
		}
	}
}

// ActiveCount sums active items across pools
func (r *Registry[K, T]) ActiveCount() int {
	n := 0
	for _, p := range r.pools {
		n += p.ActiveCount()
	}
	return n
}

// ReleaseAll deactivates every active item in every pool
func (r *Registry[K, T]) ReleaseAll() int {
	n := 0
	for _, k := range r.order {
		n += r.pools[k].ReleaseAll()
	}
	return n
}

// Keys returns registered tags in iteration order
func (r *Registry[K, T]) Keys() []K {
	return slices.Clone(r.order)
}
