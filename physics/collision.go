package physics

import "github.com/lixenwraith/arena-core/vmath"

// Overlap tests two enabled bodies for circle overlap
func Overlap(a, b *Body) bool {
	if !a.Enabled || !b.Enabled {
		return false
	}
	return vmath.CirclesOverlap(a.Pos, a.Radius, b.Pos, b.Radius)
}

// Within reports whether b's centre lies strictly closer than r to a's centre
func Within(a, b *Body, r float64) bool {
	if !a.Enabled || !b.Enabled {
		return false
	}
	return vmath.DistSq(a.Pos, b.Pos) < r*r
}

// Knockback returns the impulse along the source velocity scaled to force
func Knockback(sourceVel vmath.Vec2, force float64) vmath.Vec2 {
	return sourceVel.Normalize().Scale(force)
}
