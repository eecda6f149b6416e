package parameter

import "time"

// Projectile
const (
	// ProjectileDamage is the base player shot damage
	ProjectileDamage = 10.0

	// ProjectileSpeed is the shot speed in units/sec
	ProjectileSpeed = 400.0

	// ProjectileTTL is the shot lifetime
	ProjectileTTL = 2000 * time.Millisecond

	// ProjectileRadius is the shot collision radius
	ProjectileRadius = 4.0

	// ProjectileHomingLerp is the per-tick heading blend toward the target
	ProjectileHomingLerp = 0.1

	// FireInterval is the base auto-fire period
	FireInterval = 500 * time.Millisecond

	// FireRange limits auto-targeting
	FireRange = 700.0
)

// Hit Resolution
const (
	// CritMultiplier scales critical damage
	CritMultiplier = 1.5

	// KnockbackForce is the impulse magnitude applied on projectile hit
	KnockbackForce = 300.0

	// HitStopHeavyThreshold is the damage above which the long hit-stop applies
	HitStopHeavyThreshold = 20.0

	// HitStopHeavy is the pause after heavy hits
	HitStopHeavy = 60 * time.Millisecond

	// HitStopLight is the pause after regular hits
	HitStopLight = 30 * time.Millisecond

	// ContactRange is the enemy-to-player melee distance
	ContactRange = 30.0

	// TetherBaseLength is the base tether reach multiplied by TetherReachFactor
	TetherBaseLength = 300.0

	// TetherReachFactor widens the tether kill segment
	TetherReachFactor = 2.2

	// TetherEnemyRadius is the enemy circle tested against the tether
	TetherEnemyRadius = 15.0
)
