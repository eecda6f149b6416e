// Package view renders a read-only terminal spectator of a running match
package view

import (
	"github.com/lixenwraith/arena-core/engine"
	"github.com/lixenwraith/arena-core/entity"
	"github.com/lixenwraith/arena-core/event"
	"github.com/lixenwraith/arena-core/terrain"
	"github.com/lixenwraith/arena-core/vmath"
)

// Mark is one drawable world object
type Mark struct {
	Pos   vmath.Vec2
	Kind  entity.Kind
	Boss  bool
	Elite bool
}

// Frame is a copy of everything the spectator draws, taken between ticks
type Frame struct {
	Tick     uint64
	World    *terrain.Map // Immutable after generation
	Host     vmath.Vec2
	Guest    vmath.Vec2
	HasGuest bool
	Enemies  []Mark
	Shots    []vmath.Vec2
	Hostile  []vmath.Vec2
	Zones    []vmath.Vec2
	Stats    event.StatsUpdatePayload
	Extract  float64
	State    string
	Paused   bool
	Over     bool
}

// Capture copies m into f, reusing f's slices; call it inside Scheduler.View
func Capture(m *engine.Match, f *Frame) {
	f.Tick = m.Tick()
	f.World = m.World()
	f.Host = m.Host().Body.Pos
	if g := m.Guest(); g != nil {
		f.Guest, f.HasGuest = g.Body.Pos, true
	} else {
		f.HasGuest = false
	}

	f.Enemies = f.Enemies[:0]
	m.Population().Each(func(e *entity.Entity) bool {
		f.Enemies = append(f.Enemies, Mark{Pos: e.Body.Pos, Kind: e.Kind, Boss: e.Boss, Elite: e.Elite})
		return true
	})

	f.Shots, f.Hostile = f.Shots[:0], f.Hostile[:0]
	m.Projectiles().Each(func(p *entity.Projectile) bool {
		if p.Hostile() {
			f.Hostile = append(f.Hostile, p.Body.Pos)
		} else {
			f.Shots = append(f.Shots, p.Body.Pos)
		}
		return true
	})

	f.Zones = f.Zones[:0]
	for _, z := range m.Extraction().Zones() {
		f.Zones = append(f.Zones, z.Center)
	}

	f.Stats = *m.Combat().Snapshot()
	f.Extract = m.Extraction().Progress()
	f.State = m.Director().State().String()
	f.Paused = m.Paused()
	f.Over = m.Over()
}
