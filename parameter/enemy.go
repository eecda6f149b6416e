package parameter

import "time"

// Pool Capacities
const (
	// PoolCapacityDefault is the per-kind active limit for regular enemies
	PoolCapacityDefault = 64

	// PoolCapacityBoss allows a single live boss
	PoolCapacityBoss = 1

	// PoolCapacityProjectile is the combined projectile limit
	PoolCapacityProjectile = 256
)

// Behavior Timing
const (
	// DashTriggerRange is the target distance under which a charged dash may start
	DashTriggerRange = 300.0

	// DashWindupDuration is the telegraph time with zero velocity
	DashWindupDuration = 500 * time.Millisecond

	// DashActiveDuration is the burst time at DashSpeedMultiplier
	DashActiveDuration = 300 * time.Millisecond

	// DashRecoverDuration is the vulnerable cool-down
	DashRecoverDuration = 1000 * time.Millisecond

	// DashSpeedMultiplier scales base speed during the burst
	DashSpeedMultiplier = 3.0

	// DashRecoverDamageMultiplier scales incoming damage while recovering
	DashRecoverDamageMultiplier = 2.0

	// DashRecoverDamping is the exponential decay of residual dash velocity (1/sec)
	DashRecoverDamping = 10.0

	// ErraticInterval is the heading re-pick period
	ErraticInterval = 500 * time.Millisecond

	// SwarmAmplitude is the peak angular offset in radians
	SwarmAmplitude = 0.6

	// SwarmFrequency is the offset oscillation in radians per second
	SwarmFrequency = 4.0

	// StrafeDefaultRange is used when an orbiting archetype has no range
	StrafeDefaultRange = 200.0

	// KnockbackDecay is the exponential decay rate of knockback velocity (1/sec)
	KnockbackDecay = 8.0

	// FlashDuration is the hit feedback window
	FlashDuration = 100 * time.Millisecond

	// TurretFireInterval is the shot period of stationary archetypes
	TurretFireInterval = 1500 * time.Millisecond

	// TurretProjectileSpeed is the speed of hostile shots
	TurretProjectileSpeed = 250.0
)

// Elite and Boss Modifiers
const (
	// EliteHPMultiplier scales hp of every enemy in an elite wave
	EliteHPMultiplier = 5.0

	// EliteSpeedMultiplier slows elite enemies
	EliteSpeedMultiplier = 0.8

	// EliteRadiusMultiplier enlarges elite enemies
	EliteRadiusMultiplier = 1.5

	// BossHPMultiplier scales the boss hp over its base archetype
	BossHPMultiplier = 5.0

	// BossRadiusMultiplier scales the boss radius over its base archetype
	BossRadiusMultiplier = 1.5

	// BossSpawnDistance is the fallback ring radius for the boss
	BossSpawnDistance = 400.0
)
