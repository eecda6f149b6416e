package combat

import (
	"strings"
	"time"

	"github.com/lixenwraith/arena-core/entity"
	"github.com/lixenwraith/arena-core/event"
	"github.com/lixenwraith/arena-core/parameter"
)

// Upgrade names accepted by ApplyUpgrade
const (
	UpgradeDamage   = "damage"
	UpgradeCrit     = "crit"
	UpgradeSpeed    = "speed"
	UpgradeMaxHP    = "maxhp"
	UpgradeCooldown = "cooldown"
	UpgradeFireRate = "firerate"
	UpgradeTether   = "tether"

	// PowerupPrefix routes an upgrade or loot id to a timed powerup
	PowerupPrefix = "powerup:"
)

// Powerup is a timed buff
type Powerup uint8

const (
	PowerupSpeed Powerup = iota
	PowerupShield
	PowerupDoubleScore

	powerupCount
)

func (p Powerup) String() string {
	switch p {
	case PowerupShield:
		return "shield"
	case PowerupDoubleScore:
		return "doublescore"
	default:
		return "speed"
	}
}

// ParsePowerup accepts "speed", "shield" or "doublescore", optionally prefixed
func ParsePowerup(name string) (Powerup, bool) {
	n := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), PowerupPrefix)
	switch n {
	case "speed":
		return PowerupSpeed, true
	case "shield":
		return PowerupShield, true
	case "doublescore", "double_score":
		return PowerupDoubleScore, true
	}
	return 0, false
}

// Modifiers are team-wide weapon and tether upgrades
type Modifiers struct {
	Damage   float64 // Projectile damage multiplier
	Crit     float64 // Crit chance percent
	Cooldown float64 // Cooldown reduction, capped
	FireRate float64 // Fire interval multiplier
	Tether   float64 // Tether length multiplier
}

// DefaultModifiers is the neutral set
func DefaultModifiers() Modifiers {
	return Modifiers{Damage: 1, FireRate: 1, Tether: 1}
}

// FireInterval returns the auto-fire period after fire-rate upgrades
func (m Modifiers) FireInterval() time.Duration {
	f := m.FireRate
	if f <= 0 {
		f = 1
	}
	return time.Duration(float64(parameter.FireInterval) * f)
}

// TetherLength returns the kill segment reach
func (m Modifiers) TetherLength() float64 {
	return parameter.TetherBaseLength * parameter.TetherReachFactor * m.Tether
}

// ApplyUpgrade applies a named upgrade for player; false for unknown names
func (r *Resolver) ApplyUpgrade(player entity.PlayerID, name string) bool {
	n := strings.ToLower(strings.TrimSpace(name))
	if strings.HasPrefix(n, PowerupPrefix) {
		pu, ok := ParsePowerup(n)
		if !ok {
			r.log.Warnw("unknown powerup", "name", name)
			return false
		}
		r.GrantPowerup(player, pu)
		return true
	}

	switch n {
	case UpgradeDamage:
		r.Mods.Damage += parameter.UpgradeDamageStep
	case UpgradeCrit:
		r.Mods.Crit += parameter.UpgradeCritStep
		if r.Mods.Crit > 100 {
			r.Mods.Crit = 100
		}
	case UpgradeSpeed:
		if p := r.player(player); p != nil {
			p.SpeedMul += parameter.UpgradeSpeedStep
		}
	case UpgradeMaxHP:
		r.Stats.MaxHP += parameter.UpgradeMaxHPStep
		r.Stats.HP += parameter.UpgradeMaxHPStep
		if r.Stats.HP > r.Stats.MaxHP {
			r.Stats.HP = r.Stats.MaxHP
		}
	case UpgradeCooldown:
		r.Mods.Cooldown += parameter.UpgradeCooldownStep
		if r.Mods.Cooldown > parameter.CooldownReductionCap {
			r.Mods.Cooldown = parameter.CooldownReductionCap
		}
	case UpgradeFireRate:
		r.Mods.FireRate *= 1 - parameter.UpgradeFireStep
	case UpgradeTether:
		r.Mods.Tether += parameter.UpgradeTetherStep
	default:
		r.log.Warnw("unknown upgrade ignored", "name", name)
		return false
	}
	r.log.Infow("upgrade applied", "name", n, "player", player)
	return true
}

// SeatHero applies a hero loadout to a seated player
// The hero's hp bonus replaces the bonus of the loadout it displaces
func (r *Resolver) SeatHero(player entity.PlayerID, h entity.Hero) {
	p := r.player(player)
	if p == nil {
		return
	}
	delta := h.HPBonus - r.heroHP[player]
	r.heroHP[player] = h.HPBonus
	r.Stats.MaxHP += delta
	r.Stats.HP = min(max(r.Stats.HP+delta, 1), r.Stats.MaxHP)
	p.ApplyHero(h)
	r.log.Infow("hero seated", "player", player, "hero", h.ID)
}

// GrantPowerup starts or refreshes a timed powerup
func (r *Resolver) GrantPowerup(player entity.PlayerID, pu Powerup) {
	switch pu {
	case PowerupSpeed:
		if p := r.player(player); p != nil {
			p.SpeedBoost = parameter.PowerupDuration
		}
	case PowerupShield:
		if p := r.player(player); p != nil {
			p.Shield = parameter.PowerupDuration
		}
	case PowerupDoubleScore:
		r.doubleScore = parameter.PowerupDuration
	}
	r.setPowerup(player, pu, true)
}

// setPowerup emits PowerupChanged on state transitions only
func (r *Resolver) setPowerup(player entity.PlayerID, pu Powerup, on bool) {
	idx := int(player)
	if pu == PowerupDoubleScore {
		idx = 0
	}
	if !on && !r.powerups[idx][pu] {
		return
	}
	r.powerups[idx][pu] = on
	r.emit(event.EventPowerupChanged, &event.PowerupPayload{Player: player, Name: pu.String(), Active: on})
}

// tickPowerups decays the team timer and reports expirations
func (r *Resolver) tickPowerups(dt time.Duration) {
	if r.doubleScore > 0 {
		r.doubleScore -= dt
		if r.doubleScore <= 0 {
			r.doubleScore = 0
			r.setPowerup(entity.PlayerHost, PowerupDoubleScore, false)
		}
	}
	for _, p := range r.players {
		if p == nil {
			continue
		}
		if r.powerups[p.ID][PowerupShield] && !p.Shielded() {
			r.setPowerup(p.ID, PowerupShield, false)
		}
		if r.powerups[p.ID][PowerupSpeed] && p.SpeedBoost <= 0 {
			r.setPowerup(p.ID, PowerupSpeed, false)
		}
	}
}

// DoubleScore reports an active score multiplier
func (r *Resolver) DoubleScore() bool {
	return r.doubleScore > 0
}
