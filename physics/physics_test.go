package physics

import (
	"math"
	"testing"

	"github.com/lixenwraith/arena-core/vmath"
)

func TestIntegrateAcceleration(t *testing.T) {
	b := &Body{Accel: vmath.V(100, 0)}
	Integrate(b, 0.5)
	if b.Vel.X != 50 {
		t.Errorf("vel = %f, want 50", b.Vel.X)
	}
	if b.Pos.X != 25 {
		t.Errorf("pos = %f, want 25", b.Pos.X)
	}
}

func TestIntegrateDragStopsWithoutReversal(t *testing.T) {
	b := &Body{Vel: vmath.V(100, 0), Drag: 1200}
	Integrate(b, 0.1)
	if !b.Vel.IsZero() {
		t.Errorf("drag should stop body, vel = %v", b.Vel)
	}
	if b.Pos.X != 0 {
		t.Errorf("stopped body moved to %f", b.Pos.X)
	}

	b = &Body{Vel: vmath.V(0, 1000), Drag: 1000}
	Integrate(b, 0.1)
	if math.Abs(b.Vel.Y-900) > 1e-9 {
		t.Errorf("partial drag vel = %f, want 900", b.Vel.Y)
	}
}

func TestIntegrateMaxSpeed(t *testing.T) {
	b := &Body{Accel: vmath.V(0, 10000), MaxSpeed: 550}
	Integrate(b, 1)
	if math.Abs(b.Vel.Len()-550) > 1e-9 {
		t.Errorf("speed = %f, want 550", b.Vel.Len())
	}
}

func TestOverlapRequiresEnabled(t *testing.T) {
	a := &Body{Pos: vmath.V(0, 0), Radius: 10, Enabled: true}
	b := &Body{Pos: vmath.V(5, 0), Radius: 10}
	if Overlap(a, b) {
		t.Error("disabled body must not collide")
	}
	b.Enabled = true
	if !Overlap(a, b) {
		t.Error("overlapping enabled bodies should collide")
	}
}

func TestKnockbackDirection(t *testing.T) {
	k := Knockback(vmath.V(0, -400), 300)
	if k.X != 0 || k.Y != -300 {
		t.Errorf("knockback = %v, want (0,-300)", k)
	}
}

func TestApplyHomingTurnsTowardTarget(t *testing.T) {
	b := &Body{Vel: vmath.V(400, 0)}
	target := vmath.V(0, 100)
	profile := &HomingProfile{Speed: 400, Lerp: 0.1}

	before := math.Abs(vmath.WrapAngle(b.Vel.Angle() - math.Pi/2))
	ApplyHoming(b, target, profile)
	after := math.Abs(vmath.WrapAngle(b.Vel.Angle() - math.Pi/2))

	if after >= before {
		t.Errorf("heading error did not shrink: %f -> %f", before, after)
	}
	if math.Abs(b.Vel.Len()-400) > 1e-9 {
		t.Errorf("speed = %f, want 400", b.Vel.Len())
	}
}

func TestDecay(t *testing.T) {
	v := Decay(vmath.V(100, 0), 8, 1)
	if v.X >= 1 {
		t.Errorf("decayed = %f, expected near zero", v.X)
	}
	if got := Decay(vmath.V(0.001, 0), 8, 1); !got.IsZero() {
		t.Errorf("tiny residual should snap to zero, got %v", got)
	}
}
