package combat

import (
	"math"
	"time"

	"github.com/lixenwraith/arena-core/entity"
	"github.com/lixenwraith/arena-core/parameter"
	"github.com/lixenwraith/arena-core/physics"
	"github.com/lixenwraith/arena-core/vmath"
)

var homing = physics.HomingProfile{Speed: parameter.ProjectileSpeed, Lerp: parameter.ProjectileHomingLerp}

// Fire advances a player's auto-fire timer and launches a homing shot at the
// nearest enemy within range; returns true when a shot left the pool
func (r *Resolver) Fire(p *entity.Player, dt time.Duration) bool {
	if r.over || p == nil {
		return false
	}
	interval := r.Mods.FireInterval()
	if p.FireMul > 0 {
		interval = time.Duration(float64(interval) * p.FireMul)
	}
	p.FireTimer += dt
	if p.FireTimer < interval {
		return false
	}

	target := r.nearestEnemy(p.Body.Pos, parameter.FireRange)
	if target == nil {
		// Stay primed so the next enemy in range is shot immediately
		p.FireTimer = interval
		return false
	}

	shot, ok := r.shots.Acquire()
	if !ok {
		p.FireTimer = interval
		return false
	}
	p.FireTimer -= interval

	base := parameter.ProjectileDamage * r.Mods.Damage
	if p.DamageMul > 0 {
		base *= p.DamageMul
	}
	dmg, crit := RollDamage(base, min(r.Mods.Crit+p.CritBonus, 100), r.rng)
	shot.Launch(p.Body.Pos, vmath.Direction(p.Body.Pos, target.Body.Pos), parameter.ProjectileSpeed, parameter.ProjectileRadius, parameter.ProjectileTTL)
	shot.Damage = dmg
	shot.Crit = crit
	shot.Owner = p.ID.Owner()
	shot.Homing = true
	shot.Target = entity.RefOf(target)
	r.fired.Add(1)
	return true
}

// FireAll runs Fire for every seated player
func (r *Resolver) FireAll(dt time.Duration) {
	for _, p := range r.players {
		if p != nil {
			r.Fire(p, dt)
		}
	}
}

// FireHostile launches an enemy shot along dir; used as the behavior fire hook
func (r *Resolver) FireHostile(e *entity.Entity, dir vmath.Vec2) {
	if r.over || dir.IsZero() {
		return
	}
	shot, err := r.shots.TryAcquire()
	if err != nil {
		r.log.Debugw("hostile shot dropped", "error", err)
		return
	}
	shot.Launch(e.Body.Pos, dir, parameter.TurretProjectileSpeed, parameter.ProjectileRadius, parameter.ProjectileTTL)
	shot.Damage = e.Damage
	shot.Owner = entity.OwnerHostile
}

// StepProjectiles ages, steers and moves every shot; expired shots and shots
// entering walls are released
func (r *Resolver) StepProjectiles(dt time.Duration) {
	sec := dt.Seconds()
	r.shots.Each(func(p *entity.Projectile) bool {
		p.TTL -= dt
		if p.TTL <= 0 {
			r.shots.Release(p)
			return true
		}
		if p.Homing {
			if target, ok := p.Target.Get(); ok {
				physics.ApplyHoming(&p.Body, target.Body.Pos, &homing)
			} else {
				p.Target = entity.Ref{}
				p.Homing = false
			}
		}
		physics.Integrate(&p.Body, sec)
		p.Heading = p.Body.Vel.Normalize()
		if r.world != nil && r.world.BlockedAt(p.Body.Pos) {
			r.shots.Release(p)
		}
		return true
	})
}

func (r *Resolver) nearestEnemy(pos vmath.Vec2, maxRange float64) *entity.Entity {
	var best *entity.Entity
	bestSq := maxRange * maxRange
	if maxRange <= 0 {
		bestSq = math.Inf(1)
	}
	r.pop.Each(func(e *entity.Entity) bool {
		if !e.Body.Enabled {
			return true
		}
		// Strict: ties keep the first candidate scanned
		if d := vmath.DistSq(pos, e.Body.Pos); d < bestSq || (best == nil && d == bestSq) {
			best, bestSq = e, d
		}
		return true
	})
	return best
}
