// Package behavior moves active enemies; strategies are selected by the entity's behavior id
package behavior

import (
	"math"
	"math/rand"
	"time"

	"github.com/lixenwraith/arena-core/entity"
	"github.com/lixenwraith/arena-core/parameter"
	"github.com/lixenwraith/arena-core/physics"
	"github.com/lixenwraith/arena-core/vmath"
)

// FireFunc launches a hostile shot from e along dir
type FireFunc func(e *entity.Entity, dir vmath.Vec2)

// Strategy computes the steering velocity of e toward target for one tick
type Strategy func(c *Controller, e *entity.Entity, target vmath.Vec2, dt time.Duration) vmath.Vec2

// Controller owns the strategy table and per-match randomness
type Controller struct {
	table [entity.BehaviorCount]Strategy
	rng   *rand.Rand
	fire  FireFunc
}

// NewController builds the default table; fire may be nil
func NewController(rng *rand.Rand, fire FireFunc) *Controller {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	c := &Controller{rng: rng, fire: fire}
	c.table = [entity.BehaviorCount]Strategy{
		entity.BehaviorChase:      chase,
		entity.BehaviorSwarm:      swarm,
		entity.BehaviorDash:       dash,
		entity.BehaviorStrafe:     strafe,
		entity.BehaviorFlee:       flee,
		entity.BehaviorStationary: stationary,
		entity.BehaviorErratic:    erratic,
	}
	return c
}

// SetStrategy replaces the strategy of one behavior id
func (c *Controller) SetStrategy(b entity.Behavior, s Strategy) {
	if b < entity.BehaviorCount && s != nil {
		c.table[b] = s
	}
}

// Prime seeds per-entity randomness after spawn configuration
func (c *Controller) Prime(e *entity.Entity) {
	e.SwarmPhase = c.rng.Float64() * 2 * math.Pi
}

// Update steers e toward the nearest target and layers decaying knockback on top
// With no target the entity only drifts on knockback
func (c *Controller) Update(e *entity.Entity, targets []vmath.Vec2, dt time.Duration) {
	if !e.Active() {
		return
	}
	sec := dt.Seconds()

	var steer vmath.Vec2
	if target, _, ok := Nearest(e.Body.Pos, targets); ok {
		steer = c.strategy(e.Behavior)(c, e, target, dt)
	}

	e.Body.Vel = steer.Add(e.Knock)
	e.Knock = physics.Decay(e.Knock, parameter.KnockbackDecay, sec)
	if e.Flash > 0 {
		e.Flash -= dt
		if e.Flash < 0 {
			e.Flash = 0
		}
	}
}

func (c *Controller) strategy(b entity.Behavior) Strategy {
	if b < entity.BehaviorCount && c.table[b] != nil {
		return c.table[b]
	}
	return chase
}

// Nearest returns the closest target to pos; ties go to the earliest candidate
func Nearest(pos vmath.Vec2, targets []vmath.Vec2) (vmath.Vec2, int, bool) {
	best := -1
	bestDist := math.MaxFloat64
	for i, t := range targets {
		if d := vmath.DistSq(pos, t); d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return vmath.Vec2{}, -1, false
	}
	return targets[best], best, true
}

// face turns e toward the travel direction when moving
func face(e *entity.Entity, dir vmath.Vec2) {
	if !dir.IsZero() {
		e.Rotation = dir.Angle()
	}
}

// --- Strategies ---

func chase(_ *Controller, e *entity.Entity, target vmath.Vec2, _ time.Duration) vmath.Vec2 {
	dir := vmath.Direction(e.Body.Pos, target)
	face(e, dir)
	return dir.Scale(e.Speed)
}

func swarm(_ *Controller, e *entity.Entity, target vmath.Vec2, dt time.Duration) vmath.Vec2 {
	base := vmath.Direction(e.Body.Pos, target)
	if base.IsZero() {
		return vmath.Vec2{}
	}
	angle := base.Angle() + parameter.SwarmAmplitude*math.Sin(e.SwarmPhase)
	e.SwarmPhase = math.Mod(e.SwarmPhase+parameter.SwarmFrequency*dt.Seconds(), 2*math.Pi)

	dir := vmath.FromAngle(angle)
	face(e, dir)
	return dir.Scale(e.Speed)
}

func strafe(_ *Controller, e *entity.Entity, target vmath.Vec2, dt time.Duration) vmath.Vec2 {
	radius := e.Range
	if radius <= 0 {
		radius = parameter.StrafeDefaultRange
	}
	if !e.Orbiting {
		e.OrbitAngle = e.Body.Pos.Sub(target).Angle()
		e.Orbiting = true
	}
	sec := dt.Seconds()
	e.OrbitAngle = vmath.WrapAngle(e.OrbitAngle + e.Speed/radius*sec)

	e.Rotation = target.Sub(e.Body.Pos).Angle()

	slot := target.Add(vmath.FromAngle(e.OrbitAngle).Scale(radius))
	if sec <= 0 {
		return vmath.Vec2{}
	}
	return slot.Sub(e.Body.Pos).Scale(1 / sec).ClampLen(e.Speed)
}

func flee(_ *Controller, e *entity.Entity, target vmath.Vec2, _ time.Duration) vmath.Vec2 {
	dir := vmath.Direction(target, e.Body.Pos)
	face(e, dir)
	return dir.Scale(e.Speed)
}

// stationary holds position, tracks the target and fires when it is within range
func stationary(c *Controller, e *entity.Entity, target vmath.Vec2, dt time.Duration) vmath.Vec2 {
	dir := vmath.Direction(e.Body.Pos, target)
	face(e, dir)

	e.FireTimer += dt
	if e.FireTimer > parameter.TurretFireInterval {
		e.FireTimer = parameter.TurretFireInterval
	}
	if c.fire != nil && e.Range > 0 && !dir.IsZero() &&
		vmath.Dist(e.Body.Pos, target) <= e.Range && e.FireTimer >= parameter.TurretFireInterval {
		e.FireTimer = 0
		c.fire(e, dir)
	}
	return vmath.Vec2{}
}

// erratic holds a random heading, re-picked every interval with the remainder carried
func erratic(c *Controller, e *entity.Entity, _ vmath.Vec2, dt time.Duration) vmath.Vec2 {
	e.Timer += dt
	if e.Heading.IsZero() {
		e.Heading = vmath.FromAngle(c.rng.Float64() * 2 * math.Pi)
	}
	for e.Timer >= parameter.ErraticInterval {
		e.Timer -= parameter.ErraticInterval
		e.Heading = vmath.FromAngle(c.rng.Float64() * 2 * math.Pi)
	}
	face(e, e.Heading)
	return e.Heading.Scale(e.Speed)
}
