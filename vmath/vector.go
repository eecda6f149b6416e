package vmath

import "math"

// Vec2 is a world-space vector in float64 units
type Vec2 struct {
	X, Y float64
}

// V is shorthand for Vec2{x, y}
func V(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// FromAngle returns the unit vector pointing at angle (radians)
func FromAngle(a float64) Vec2 {
	return Vec2{X: math.Cos(a), Y: math.Sin(a)}
}

func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

func (v Vec2) Dot(o Vec2) float64 {
	return v.X*o.X + v.Y*o.Y
}

// Len returns the euclidean magnitude
func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// LenSq returns squared magnitude without sqrt
func (v Vec2) LenSq() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Normalize returns the unit vector, zero-safe
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}

// ClampLen limits magnitude to max while preserving direction
func (v Vec2) ClampLen(max float64) Vec2 {
	l := v.Len()
	if l <= max || l == 0 {
		return v
	}
	return v.Scale(max / l)
}

// Angle returns atan2(y, x)
func (v Vec2) Angle() float64 {
	return math.Atan2(v.Y, v.X)
}

// IsZero reports an exact zero vector
func (v Vec2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// Round rounds both components to the nearest integer
func (v Vec2) Round() Vec2 {
	return Vec2{X: math.Round(v.X), Y: math.Round(v.Y)}
}

// Dist returns the distance between two points
func Dist(a, b Vec2) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// DistSq returns the squared distance between two points
func DistSq(a, b Vec2) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	return dx*dx + dy*dy
}

// Direction returns the unit vector from a toward b, zero when coincident
func Direction(a, b Vec2) Vec2 {
	return b.Sub(a).Normalize()
}
