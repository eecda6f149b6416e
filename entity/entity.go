package entity

import (
	"time"

	"github.com/lixenwraith/arena-core/parameter"
	"github.com/lixenwraith/arena-core/physics"
	"github.com/lixenwraith/arena-core/vmath"
)

// ID is stable for the lifetime of a pool slot
type ID uint32

// Entity is the single enemy representation; behavior is data, not type
type Entity struct {
	ID   ID
	Kind Kind

	slot       int
	active     bool
	generation uint32

	Body     physics.Body
	Rotation float64

	HP     float64
	MaxHP  float64
	Speed  float64
	Damage float64
	Value  int
	Elite  bool
	Boss   bool

	Behavior Behavior
	Phase    DashPhase
	Timer    time.Duration // Behavior timer: dash charge/phase, erratic re-pick
	Interval time.Duration
	Range    float64

	Heading    vmath.Vec2 // Erratic heading or locked dash direction
	SwarmPhase float64
	OrbitAngle float64
	Orbiting   bool
	FireTimer  time.Duration

	// Knock is decaying knockback velocity layered on top of steering
	Knock vmath.Vec2
	Flash time.Duration
}

// New creates an inactive entity tagged with kind
func New(id ID, kind Kind) *Entity {
	return &Entity{ID: id, Kind: kind, slot: -1}
}

func (e *Entity) Slot() int          { return e.slot }
func (e *Entity) SetSlot(s int)      { e.slot = s }
func (e *Entity) Active() bool       { return e.active }
func (e *Entity) Tag() Kind          { return e.Kind }
func (e *Entity) Generation() uint32 { return e.generation }

// Activate resets all simulation fields and marks the entity active
func (e *Entity) Activate() {
	id, kind, slot, gen := e.ID, e.Kind, e.slot, e.generation
	*e = Entity{ID: id, Kind: kind, slot: slot, generation: gen + 1}
	e.active = true
}

// Deactivate clears the active flag and disables the collider
func (e *Entity) Deactivate() {
	e.active = false
	e.Body.Enabled = false
	e.Body.Vel = vmath.Vec2{}
	e.Knock = vmath.Vec2{}
}

// Configure applies archetype stats scaled by mods and places the entity at pos
func (e *Entity) Configure(a Archetype, pos vmath.Vec2, mods Modifiers) {
	if mods.HP <= 0 {
		mods.HP = 1
	}
	if mods.Speed <= 0 {
		mods.Speed = 1
	}
	if mods.Radius <= 0 {
		mods.Radius = 1
	}

	e.Behavior = a.Behavior
	e.Interval = a.Interval
	e.Range = a.Range
	e.Damage = a.Damage
	e.Value = a.Value
	e.Elite = mods.Elite
	e.Boss = mods.Boss

	e.MaxHP = a.HP * mods.HP
	e.HP = e.MaxHP
	e.Speed = a.Speed * mods.Speed

	e.Body = physics.Body{
		Pos:     pos,
		Radius:  a.Radius * mods.Radius,
		Enabled: true,
	}
	e.Phase = DashReady
}

// Vulnerable reports the dash recovery window
func (e *Entity) Vulnerable() bool {
	return e.Behavior == BehaviorDash && e.Phase == DashRecover
}

// IncomingMultiplier scales damage received in the current state
func (e *Entity) IncomingMultiplier() float64 {
	if e.Vulnerable() {
		return parameter.DashRecoverDamageMultiplier
	}
	return 1
}

// TakeDamage is the damage intake hook: applies amount scaled by state, flashes,
// and adds knockback of magnitude force along dir
// Returns the damage dealt and whether hp reached zero; the caller releases the entity
func (e *Entity) TakeDamage(amount float64, dir vmath.Vec2, force float64) (dealt float64, killed bool) {
	if !e.active {
		return 0, false
	}
	dealt = amount * e.IncomingMultiplier()
	e.HP -= dealt
	e.Flash = parameter.FlashDuration
	if force > 0 {
		e.Knock = e.Knock.Add(dir.Normalize().Scale(force))
	}
	if e.HP <= 0 {
		e.HP = 0
		return dealt, true
	}
	return dealt, false
}

// Ref is a weak handle: it never keeps the entity alive and expires when the slot is recycled
type Ref struct {
	e   *Entity
	gen uint32
}

// RefOf returns a weak reference to e
func RefOf(e *Entity) Ref {
	if e == nil {
		return Ref{}
	}
	return Ref{e: e, gen: e.generation}
}

// Get resolves the reference; false once the target died or its slot was reused
func (r Ref) Get() (*Entity, bool) {
	if r.e == nil || !r.e.active || r.e.generation != r.gen {
		return nil, false
	}
	return r.e, true
}

// Valid reports whether Get would succeed
func (r Ref) Valid() bool {
	_, ok := r.Get()
	return ok
}
