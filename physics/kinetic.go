package physics

import (
	"math"

	"github.com/lixenwraith/arena-core/vmath"
)

// Body is the kinematic state of one simulated object
// Mutated only by the tick owner through the functions in this package
type Body struct {
	Pos    vmath.Vec2
	Vel    vmath.Vec2
	Accel  vmath.Vec2
	Radius float64

	// Drag is linear deceleration (units/sec²) applied while Accel is zero
	Drag float64
	// MaxSpeed caps velocity magnitude, 0 = uncapped
	MaxSpeed float64

	// Enabled gates collision participation; pooled bodies are disabled
	Enabled bool
}

// Integrate performs one step: v = v + a*dt (or drag), cap, p = p + v*dt
func Integrate(b *Body, dt float64) {
	if b.Accel.IsZero() {
		applyDrag(b, dt)
	} else {
		b.Vel = b.Vel.Add(b.Accel.Scale(dt))
	}
	if b.MaxSpeed > 0 {
		b.Vel = b.Vel.ClampLen(b.MaxSpeed)
	}
	b.Pos = b.Pos.Add(b.Vel.Scale(dt))
}

// applyDrag removes up to Drag*dt of speed without reversing direction
func applyDrag(b *Body, dt float64) {
	if b.Drag <= 0 {
		return
	}
	speed := b.Vel.Len()
	if speed == 0 {
		return
	}
	next := speed - b.Drag*dt
	if next <= 0 {
		b.Vel = vmath.Vec2{}
		return
	}
	b.Vel = b.Vel.Scale(next / speed)
}

// ApplyImpulse adds a velocity delta (momentum transfer)
func ApplyImpulse(b *Body, dv vmath.Vec2) {
	b.Vel = b.Vel.Add(dv)
}

// SetImpulse overrides velocity (hard redirect or stop)
func SetImpulse(b *Body, v vmath.Vec2) {
	b.Vel = v
}

// Decay shrinks v exponentially at rate (1/sec)
func Decay(v vmath.Vec2, rate, dt float64) vmath.Vec2 {
	if v.IsZero() {
		return v
	}
	f := math.Exp(-rate * dt)
	out := v.Scale(f)
	if out.LenSq() < 1e-4 {
		return vmath.Vec2{}
	}
	return out
}

// Reset zeroes motion and disables the collider
func Reset(b *Body) {
	*b = Body{}
}
