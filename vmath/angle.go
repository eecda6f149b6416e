package vmath

import "math"

// WrapAngle maps a into (-π, π]
func WrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

// LerpAngle blends from toward to by t along the shortest arc
func LerpAngle(from, to, t float64) float64 {
	return WrapAngle(from + WrapAngle(to-from)*t)
}

// RotateTo turns from toward to by at most step radians
func RotateTo(from, to, step float64) float64 {
	diff := WrapAngle(to - from)
	if math.Abs(diff) <= step {
		return WrapAngle(to)
	}
	if diff > 0 {
		return WrapAngle(from + step)
	}
	return WrapAngle(from - step)
}
