package status

import (
	"slices"
	"sync"
)

// Metrics holds one family of metrics keyed by dotted name
// Pointers handed out by Get stay valid for the registry's lifetime
type Metrics[T any] struct {
	m sync.Map // string -> *T
}

// Get returns the metric for key, allocating it on first use
func (m *Metrics[T]) Get(key string) *T {
	if v, ok := m.m.Load(key); ok {
		return v.(*T)
	}
	v, _ := m.m.LoadOrStore(key, new(T))
	return v.(*T)
}

// Keys returns the registered names sorted
func (m *Metrics[T]) Keys() []string {
	var keys []string
	m.m.Range(func(k, _ any) bool {
		keys = append(keys, k.(string))
		return true
	})
	slices.Sort(keys)
	return keys
}

// Each visits metrics in key order
func (m *Metrics[T]) Each(fn func(key string, v *T)) {
	for _, k := range m.Keys() {
		if v, ok := m.m.Load(k); ok {
			fn(k, v.(*T))
		}
	}
}

func (m *Metrics[T]) Len() int {
	n := 0
	m.m.Range(func(_, _ any) bool { n++; return true })
	return n
}
