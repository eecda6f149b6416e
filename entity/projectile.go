package entity

import (
	"time"

	"github.com/lixenwraith/arena-core/physics"
	"github.com/lixenwraith/arena-core/vmath"
)

// Owner identifies who fired a projectile
type Owner uint8

const (
	OwnerHost Owner = iota
	OwnerGuest
	OwnerHostile
)

// Projectile is a pooled shot
type Projectile struct {
	slot   int
	active bool

	Body    physics.Body
	Heading vmath.Vec2
	Speed   float64
	Damage  float64
	Crit    bool
	Owner   Owner
	TTL     time.Duration
	Homing  bool
	Target  Ref
}

// NewProjectile creates an inactive projectile
func NewProjectile() *Projectile {
	return &Projectile{slot: -1}
}

func (p *Projectile) Slot() int     { return p.slot }
func (p *Projectile) SetSlot(s int) { p.slot = s }
func (p *Projectile) Active() bool  { return p.active }

func (p *Projectile) Activate() {
	slot := p.slot
	*p = Projectile{slot: slot, active: true}
}

func (p *Projectile) Deactivate() {
	p.active = false
	p.Body.Enabled = false
	p.Target = Ref{}
}

// Launch aims the projectile along heading from pos
func (p *Projectile) Launch(pos, heading vmath.Vec2, speed, radius float64, ttl time.Duration) {
	p.Heading = heading.Normalize()
	p.Speed = speed
	p.TTL = ttl
	p.Body = physics.Body{
		Pos:     pos,
		Vel:     p.Heading.Scale(speed),
		Radius:  radius,
		Enabled: true,
	}
}

// Hostile reports an enemy-fired shot
func (p *Projectile) Hostile() bool {
	return p.Owner == OwnerHostile
}
