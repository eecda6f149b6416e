package entity

import (
	"maps"
	"slices"
	"strings"
)

// Hero ids of the built-in roster
const (
	HeroVanguard = "vanguard"
	HeroWeaver   = "weaver"
	HeroSpectre  = "spectre"
	HeroBastion  = "bastion"
	HeroCatalyst = "catalyst"
)

// Hero is the data-driven loadout of a player avatar
type Hero struct {
	ID       string
	Speed    float64 // Move speed multiplier
	FireRate float64 // Fire interval multiplier, below 1 fires faster
	Damage   float64 // Projectile damage multiplier
	Crit     float64 // Crit chance percent added to the team's
	HPBonus  float64 // Added to the shared team hp pool
}

var defaultHeroes = []Hero{
	{ID: HeroVanguard, Speed: 1, FireRate: 1, Damage: 1},
	{ID: HeroWeaver, Speed: 1.2, FireRate: 0.8, Damage: 1},
	{ID: HeroSpectre, Speed: 1.1, FireRate: 1.4, Damage: 1.8, Crit: 10},
	{ID: HeroBastion, Speed: 0.8, FireRate: 1, Damage: 1, HPBonus: 40},
	{ID: HeroCatalyst, Speed: 1, FireRate: 1.1, Damage: 1.2, Crit: 15},
}

// Heroes maps lowercase ids to loadouts with a Vanguard fallback
type Heroes struct {
	table map[string]Hero
}

// DefaultHeroes returns the built-in roster
func DefaultHeroes() *Heroes {
	h := &Heroes{table: make(map[string]Hero, len(defaultHeroes))}
	for _, hero := range defaultHeroes {
		h.Set(hero)
	}
	return h
}

// Lookup resolves id case-insensitively; unknown ids get the Vanguard loadout
func (h *Heroes) Lookup(id string) Hero {
	if hero, ok := h.table[strings.ToLower(strings.TrimSpace(id))]; ok {
		return hero
	}
	return h.table[HeroVanguard]
}

// Has reports an explicit loadout for id
func (h *Heroes) Has(id string) bool {
	_, ok := h.table[strings.ToLower(strings.TrimSpace(id))]
	return ok
}

// Set installs or replaces a loadout; zero multipliers become 1
func (h *Heroes) Set(hero Hero) {
	hero.ID = strings.ToLower(strings.TrimSpace(hero.ID))
	if hero.Speed <= 0 {
		hero.Speed = 1
	}
	if hero.FireRate <= 0 {
		hero.FireRate = 1
	}
	if hero.Damage <= 0 {
		hero.Damage = 1
	}
	h.table[hero.ID] = hero
}

// IDs returns every registered id, sorted
func (h *Heroes) IDs() []string {
	return slices.Sorted(maps.Keys(h.table))
}
