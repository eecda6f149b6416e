package physics

import (
	"math"

	"github.com/lixenwraith/arena-core/vmath"
)

// HomingProfile defines heading-lerp steering for projectiles
type HomingProfile struct {
	Speed float64 // Cruise speed (units/sec)
	Lerp  float64 // Per-step fraction of the heading error removed, 0..1
}

// ApplyHoming turns b's velocity toward target by profile.Lerp of the angular error
// Speed is held at profile.Speed
func ApplyHoming(b *Body, target vmath.Vec2, profile *HomingProfile) {
	to := target.Sub(b.Pos)
	if to.IsZero() {
		return
	}
	current := b.Vel.Angle()
	if b.Vel.IsZero() {
		current = to.Angle()
	}
	next := vmath.LerpAngle(current, math.Atan2(to.Y, to.X), profile.Lerp)
	b.Vel = vmath.FromAngle(next).Scale(profile.Speed)
}
