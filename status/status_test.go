package status

import (
	"sync"
	"testing"
)

func TestCounterCachedPointer(t *testing.T) {
	r := NewRegistry()
	a := r.Counter("combat.kills")
	b := r.Counter("combat.kills")
	if a != b {
		t.Fatal("counter pointers differ for the same key")
	}
	a.Add(3)
	if got := r.Counters.Get("combat.kills").Load(); got != 3 {
		t.Errorf("kills = %d, want 3", got)
	}
}

func TestConcurrentRegistration(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Counter("engine.ticks").Add(1)
			}
		}()
	}
	wg.Wait()
	if got := r.Counter("engine.ticks").Load(); got != 1600 {
		t.Errorf("ticks = %d, want 1600", got)
	}
	if r.Len() != 1 {
		t.Errorf("len = %d, want 1", r.Len())
	}
}

func TestNilRegistryDetached(t *testing.T) {
	var r *Registry
	c := r.Counter("x")
	c.Add(1)
	if c.Load() != 1 {
		t.Error("detached counter not usable")
	}
	r.Flag("y").Store(true)
	r.Gauge("z").Store(1.5)
	r.Label("w").Store("ok")
	if len(r.Snapshot()) != 0 {
		t.Error("nil registry snapshot should be empty")
	}
}

func TestSnapshot(t *testing.T) {
	r := NewRegistry()
	r.Counter("director.wave").Store(5)
	r.Flag("net.connected").Store(true)
	r.Gauge("engine.alpha").Store(0.25)
	r.Label("net.role").Store("host")

	snap := r.Snapshot()
	want := map[string]string{
		"director.wave": "5",
		"net.connected": "true",
		"engine.alpha":  "0.25",
		"net.role":      "host",
	}
	for k, v := range want {
		if snap[k] != v {
			t.Errorf("%s = %q, want %q", k, snap[k], v)
		}
	}
	if keys := r.Counters.Keys(); len(keys) != 1 || keys[0] != "director.wave" {
		t.Errorf("keys = %v", keys)
	}
}

func TestFloatAdd(t *testing.T) {
	var f Float
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				f.Add(0.5)
			}
		}()
	}
	wg.Wait()
	if f.Load() != 400 {
		t.Errorf("sum = %f, want 400", f.Load())
	}
}

func TestLabelTruncates(t *testing.T) {
	var s Text
	if s.Load() != "" {
		t.Error("zero label should read empty")
	}
	s.Store("0123456789012345678901234567890123456789EXTRA")
	if got := s.Load(); len(got) != LabelMaxLen {
		t.Errorf("len = %d, want %d", len(got), LabelMaxLen)
	}
}
