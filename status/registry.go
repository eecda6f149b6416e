// Package status is the match-wide metrics registry
package status

import (
	"strconv"
	"sync/atomic"
)

// Registry groups metrics by value type under dotted names ("combat.kills")
// Components cache the pointers at construction and tick code writes the atomics directly
type Registry struct {
	Flags    Metrics[atomic.Bool]
	Counters Metrics[atomic.Int64]
	Gauges   Metrics[Float]
	Labels   Metrics[Text]
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Counter returns the int metric for key; a nil registry yields a detached counter
func (r *Registry) Counter(key string) *atomic.Int64 {
	if r == nil {
		return new(atomic.Int64)
	}
	return r.Counters.Get(key)
}

// Flag returns the bool metric for key; a nil registry yields a detached flag
func (r *Registry) Flag(key string) *atomic.Bool {
	if r == nil {
		return new(atomic.Bool)
	}
	return r.Flags.Get(key)
}

// Gauge returns the float metric for key; a nil registry yields a detached gauge
func (r *Registry) Gauge(key string) *Float {
	if r == nil {
		return new(Float)
	}
	return r.Gauges.Get(key)
}

// Label returns the string metric for key; a nil registry yields a detached label
func (r *Registry) Label(key string) *Text {
	if r == nil {
		return new(Text)
	}
	return r.Labels.Get(key)
}

// Len counts metrics of every family
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return r.Flags.Len() + r.Counters.Len() + r.Gauges.Len() + r.Labels.Len()
}

// Snapshot renders every metric as text for logs
func (r *Registry) Snapshot() map[string]string {
	out := make(map[string]string, r.Len())
	if r == nil {
		return out
	}
	r.Flags.Each(func(k string, v *atomic.Bool) { out[k] = strconv.FormatBool(v.Load()) })
	r.Counters.Each(func(k string, v *atomic.Int64) { out[k] = strconv.FormatInt(v.Load(), 10) })
	r.Gauges.Each(func(k string, v *Float) { out[k] = strconv.FormatFloat(v.Load(), 'f', 2, 64) })
	r.Labels.Each(func(k string, v *Text) { out[k] = v.Load() })
	return out
}
