package behavior

import (
	"time"

	"github.com/lixenwraith/arena-core/entity"
	"github.com/lixenwraith/arena-core/parameter"
	"github.com/lixenwraith/arena-core/physics"
	"github.com/lixenwraith/arena-core/vmath"
)

// dash runs Ready -> Windup -> Active -> Recover -> Ready
// Phase time left over at a transition flows into the next phase so the
// windup/active/recover cycle is exact at any tick size
func dash(_ *Controller, e *entity.Entity, target vmath.Vec2, dt time.Duration) vmath.Vec2 {
	remaining := dt
	for {
		switch e.Phase {
		case entity.DashWindup:
			if !advance(e, &remaining, parameter.DashWindupDuration) {
				face(e, e.Heading)
				return vmath.Vec2{}
			}
			// Burst along the last known direction to the target
			if dir := vmath.Direction(e.Body.Pos, target); !dir.IsZero() {
				e.Heading = dir
			}
			e.Phase = entity.DashActive

		case entity.DashActive:
			if !advance(e, &remaining, parameter.DashActiveDuration) {
				face(e, e.Heading)
				return e.Heading.Scale(e.Speed * parameter.DashSpeedMultiplier)
			}
			// Residual burst velocity damps out during recovery
			e.Heading = e.Heading.Scale(e.Speed * parameter.DashSpeedMultiplier)
			e.Phase = entity.DashRecover

		case entity.DashRecover:
			done := advance(e, &remaining, parameter.DashRecoverDuration)
			if !done {
				e.Heading = physics.Decay(e.Heading, parameter.DashRecoverDamping, dt.Seconds())
				return e.Heading
			}
			e.Heading = vmath.Vec2{}
			e.Phase = entity.DashReady

		default:
			e.Timer += remaining
			dir := vmath.Direction(e.Body.Pos, target)
			if e.Timer > e.Interval && vmath.Dist(e.Body.Pos, target) < parameter.DashTriggerRange {
				e.Phase = entity.DashWindup
				e.Timer = 0
				e.Heading = dir
				face(e, dir)
				return vmath.Vec2{}
			}
			face(e, dir)
			return dir.Scale(e.Speed)
		}
	}
}

// advance spends remaining on the current phase of length d
// On completion it stores the overflow back in remaining, resets the timer and returns true
func advance(e *entity.Entity, remaining *time.Duration, d time.Duration) bool {
	need := d - e.Timer
	if *remaining < need {
		e.Timer += *remaining
		*remaining = 0
		return false
	}
	*remaining -= need
	e.Timer = 0
	return true
}
