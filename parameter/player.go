package parameter

import "time"

// Player Kinematics
const (
	// PlayerHP is the starting and base max hp
	PlayerHP = 100.0

	// PlayerAcceleration is the thrust applied along the input vector
	PlayerAcceleration = 2200.0

	// PlayerDrag is the linear deceleration without input
	PlayerDrag = 1200.0

	// PlayerMaxSpeed caps player velocity
	PlayerMaxSpeed = 550.0

	// PlayerRotationStep is the max radians turned per tick toward travel
	PlayerRotationStep = 0.15

	// PlayerRadius is the player collision radius
	PlayerRadius = 16.0
)

// Player Dash
const (
	// PlayerDashDuration is the i-frame window
	PlayerDashDuration = 200 * time.Millisecond

	// PlayerDashCooldown is the base dash cooldown
	PlayerDashCooldown = 1500 * time.Millisecond

	// PlayerDashSpeed is the burst velocity
	PlayerDashSpeed = 900.0

	// CooldownReductionCap limits all cooldown reduction
	CooldownReductionCap = 0.5
)

// Progression
const (
	// XPFirstLevel is the xp required for level two
	XPFirstLevel = 10

	// XPGrowth multiplies the requirement each level
	XPGrowth = 1.5

	// XPPerKill is granted per enemy kill
	XPPerKill = 1
)

// Powerups
const (
	// PowerupDuration applies to every timed powerup
	PowerupDuration = 10 * time.Second

	// PowerupSpeedMultiplier is the speed boost factor
	PowerupSpeedMultiplier = 1.5
)

// Upgrades
const (
	UpgradeDamageStep   = 0.25
	UpgradeCritStep     = 10.0
	UpgradeSpeedStep    = 0.10
	UpgradeMaxHPStep    = 20.0
	UpgradeCooldownStep = 0.10
	UpgradeFireStep     = 0.10
	UpgradeTetherStep   = 0.20
)
