package entity

import (
	"time"

	"github.com/lixenwraith/arena-core/parameter"
	"github.com/lixenwraith/arena-core/physics"
	"github.com/lixenwraith/arena-core/vmath"
)

// PlayerID indexes the two avatars of a match
type PlayerID uint8

const (
	PlayerHost PlayerID = iota
	PlayerGuest
)

func (id PlayerID) Owner() Owner {
	if id == PlayerGuest {
		return OwnerGuest
	}
	return OwnerHost
}

// Transform is the replicated pose of a player
type Transform struct {
	Pos      vmath.Vec2
	Rotation float64
}

// Player is one controllable avatar
type Player struct {
	ID       PlayerID
	Body     physics.Body
	Rotation float64

	Input vmath.Vec2 // Normalized movement intent

	Hero      string
	SpeedMul  float64
	FireMul   float64 // Fire interval multiplier
	DamageMul float64 // Projectile damage multiplier
	CritBonus float64 // Crit percent added to the team's
	heroSpeed float64

	Shield     time.Duration // Remaining shield powerup
	SpeedBoost time.Duration // Remaining speed powerup

	dashLeft     time.Duration
	dashCooldown time.Duration
	FireTimer    time.Duration
}

// NewPlayer creates an avatar at pos
func NewPlayer(id PlayerID, pos vmath.Vec2) *Player {
	return &Player{
		ID:        id,
		Hero:      HeroVanguard,
		SpeedMul:  1,
		heroSpeed: 1,
		FireMul:   1,
		DamageMul: 1,
		Body: physics.Body{
			Pos:      pos,
			Radius:   parameter.PlayerRadius,
			Drag:     parameter.PlayerDrag,
			MaxSpeed: parameter.PlayerMaxSpeed,
			Enabled:  true,
		},
	}
}

// ApplyHero replaces the loadout; speed upgrades taken so far are kept
func (p *Player) ApplyHero(h Hero) {
	base := p.heroSpeed
	if base <= 0 {
		base = 1
	}
	speed := h.Speed
	if speed <= 0 {
		speed = 1
	}
	p.SpeedMul = p.SpeedMul / base * speed
	p.heroSpeed = speed
	p.Hero = h.ID
	p.FireMul = h.FireRate
	p.DamageMul = h.Damage
	p.CritBonus = h.Crit
}

// Transform returns the current pose
func (p *Player) Transform() Transform {
	return Transform{Pos: p.Body.Pos, Rotation: p.Rotation}
}

// SetTransform overwrites pose as received, no smoothing
func (p *Player) SetTransform(t Transform) {
	p.Body.Pos = t.Pos
	p.Rotation = t.Rotation
}

// Shielded reports an active shield powerup
func (p *Player) Shielded() bool {
	return p.Shield > 0
}

// Invulnerable reports dash i-frames
func (p *Player) Invulnerable() bool {
	return p.dashLeft > 0
}

// Protected reports immunity from contact damage
func (p *Player) Protected() bool {
	return p.Shielded() || p.Invulnerable()
}

// Dash starts a burst along the input (or facing) direction with i-frames
// cdr is cooldown reduction in [0, CooldownReductionCap]
func (p *Player) Dash(cdr float64) bool {
	if p.dashCooldown > 0 || p.dashLeft > 0 {
		return false
	}
	if cdr > parameter.CooldownReductionCap {
		cdr = parameter.CooldownReductionCap
	}
	if cdr < 0 {
		cdr = 0
	}
	dir := p.Input
	if dir.IsZero() {
		dir = vmath.FromAngle(p.Rotation)
	}
	p.dashLeft = parameter.PlayerDashDuration
	p.dashCooldown = time.Duration(float64(parameter.PlayerDashCooldown) * (1 - cdr))
	physics.SetImpulse(&p.Body, dir.Normalize().Scale(parameter.PlayerDashSpeed))
	return true
}

// DashCooldown returns remaining cooldown
func (p *Player) DashCooldown() time.Duration {
	return p.dashCooldown
}

// Step advances timers, steers from Input and integrates the body
func (p *Player) Step(dt time.Duration) {
	p.dashLeft = decTimer(p.dashLeft, dt)
	p.dashCooldown = decTimer(p.dashCooldown, dt)
	p.Shield = decTimer(p.Shield, dt)
	p.SpeedBoost = decTimer(p.SpeedBoost, dt)

	mul := p.SpeedMul
	if mul <= 0 {
		mul = 1
	}
	if p.SpeedBoost > 0 {
		mul *= parameter.PowerupSpeedMultiplier
	}

	if !p.Input.IsZero() {
		p.Rotation = vmath.RotateTo(p.Rotation, p.Input.Angle(), parameter.PlayerRotationStep)
	}

	if p.dashLeft > 0 {
		// Burst keeps its speed for the whole i-frame window
		drag := p.Body.Drag
		p.Body.Drag = 0
		p.Body.MaxSpeed = 0
		p.Body.Accel = vmath.Vec2{}
		physics.Integrate(&p.Body, dt.Seconds())
		p.Body.Drag = drag
		return
	}

	p.Body.MaxSpeed = parameter.PlayerMaxSpeed * mul
	p.Body.Accel = p.Input.Normalize().Scale(parameter.PlayerAcceleration * mul)
	physics.Integrate(&p.Body, dt.Seconds())
}

func decTimer(t, dt time.Duration) time.Duration {
	t -= dt
	if t < 0 {
		return 0
	}
	return t
}
