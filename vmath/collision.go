package vmath

import "math"

// CirclesOverlap tests two circles for strict overlap
func CirclesOverlap(a Vec2, ra float64, b Vec2, rb float64) bool {
	r := ra + rb
	return DistSq(a, b) < r*r
}

// SegmentCircle reports whether segment ab passes within r of c
func SegmentCircle(a, b, c Vec2, r float64) bool {
	ab := b.Sub(a)
	lenSq := ab.LenSq()
	if lenSq == 0 {
		return DistSq(a, c) <= r*r
	}
	t := c.Sub(a).Dot(ab) / lenSq
	t = math.Max(0, math.Min(1, t))
	closest := a.Add(ab.Scale(t))
	return DistSq(closest, c) <= r*r
}

// CircleRect reports overlap between a circle and an axis-aligned rect
func CircleRect(c Vec2, r float64, min, max Vec2) bool {
	cx := math.Max(min.X, math.Min(c.X, max.X))
	cy := math.Max(min.Y, math.Min(c.Y, max.Y))
	dx, dy := c.X-cx, c.Y-cy
	return dx*dx+dy*dy < r*r
}
