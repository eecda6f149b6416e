package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/lixenwraith/arena-core/director"
	"github.com/lixenwraith/arena-core/entity"
	"github.com/lixenwraith/arena-core/extraction"
	"github.com/lixenwraith/arena-core/network"
)

// ArchetypeConfig overrides one bestiary row; zero fields keep the built-in value
type ArchetypeConfig struct {
	Kind     string        `yaml:"kind"`
	HP       float64       `yaml:"hp"`
	Speed    *float64      `yaml:"speed"` // Pointer so stationary kinds can be set to 0
	Damage   float64       `yaml:"damage"`
	Value    int           `yaml:"value"`
	Radius   float64       `yaml:"radius"`
	Behavior string        `yaml:"behavior"`
	Interval time.Duration `yaml:"interval"`
	Range    float64       `yaml:"range"`
}

// BucketConfig is one wave range with its weighted spawn entries
type BucketConfig struct {
	First   int           `yaml:"first"`
	Last    int           `yaml:"last"` // 0 is open-ended
	Entries []EntryConfig `yaml:"entries"`
}

// EntryConfig is a kind name with a weight
type EntryConfig struct {
	Kind   string `yaml:"kind"`
	Weight int    `yaml:"weight"`
}

// LootConfig replaces the loot table of a kind, or the fallback when Kind is "default"
type LootConfig struct {
	Kind    string                 `yaml:"kind"`
	Entries []extraction.LootEntry `yaml:"entries"`
}

// HeroConfig adds a hero or overrides one; zero fields keep the built-in value
type HeroConfig struct {
	ID       string   `yaml:"id"`
	Speed    float64  `yaml:"speed"`
	FireRate float64  `yaml:"fire_rate"`
	Damage   float64  `yaml:"damage"`
	Crit     *float64 `yaml:"crit"`
	HPBonus  *float64 `yaml:"hp_bonus"`
}

// BuildHeroes applies overrides to the default roster
func (c *Config) BuildHeroes() (*entity.Heroes, error) {
	h := entity.DefaultHeroes()
	for i, o := range c.Heroes {
		if strings.TrimSpace(o.ID) == "" {
			return nil, errors.Errorf("heroes[%d]: missing id", i)
		}
		if o.Speed < 0 || o.FireRate < 0 || o.Damage < 0 {
			return nil, errors.Errorf("heroes[%d]: negative multiplier", i)
		}
		hero := entity.Hero{ID: o.ID, Speed: 1, FireRate: 1, Damage: 1}
		if h.Has(o.ID) {
			hero = h.Lookup(o.ID)
		}
		if o.Speed > 0 {
			hero.Speed = o.Speed
		}
		if o.FireRate > 0 {
			hero.FireRate = o.FireRate
		}
		if o.Damage > 0 {
			hero.Damage = o.Damage
		}
		if o.Crit != nil {
			hero.Crit = *o.Crit
		}
		if o.HPBonus != nil {
			hero.HPBonus = *o.HPBonus
		}
		h.Set(hero)
	}
	return h, nil
}

// BuildBestiary applies overrides to the default bestiary
func (c *Config) BuildBestiary() (*entity.Bestiary, error) {
	b := entity.DefaultBestiary()
	for i, o := range c.Bestiary {
		kind, ok := entity.ParseKind(o.Kind)
		if !ok {
			return nil, errors.Errorf("bestiary[%d]: unknown kind %q", i, o.Kind)
		}
		a := b.Lookup(kind)
		a.Kind = kind
		if o.HP > 0 {
			a.HP = o.HP
		}
		if o.Speed != nil {
			if *o.Speed < 0 {
				return nil, errors.Errorf("bestiary[%d]: negative speed", i)
			}
			a.Speed = *o.Speed
		}
		if o.Damage > 0 {
			a.Damage = o.Damage
		}
		if o.Value > 0 {
			a.Value = o.Value
		}
		if o.Radius > 0 {
			a.Radius = o.Radius
		}
		if o.Behavior != "" {
			bh, ok := entity.ParseBehavior(o.Behavior)
			if !ok {
				return nil, errors.Errorf("bestiary[%d]: unknown behavior %q", i, o.Behavior)
			}
			a.Behavior = bh
		}
		if o.Interval > 0 {
			a.Interval = o.Interval
		}
		if o.Range > 0 {
			a.Range = o.Range
		}
		b.Set(a)
	}
	return b, nil
}

// BuildSchedule returns the configured schedule, or the default when none is set
func (c *Config) BuildSchedule() (*director.Schedule, error) {
	if len(c.Schedule) == 0 {
		return director.DefaultSchedule(), nil
	}
	buckets := make([]director.Bucket, 0, len(c.Schedule))
	for i, bc := range c.Schedule {
		entries := make([]director.Entry, 0, len(bc.Entries))
		for _, ec := range bc.Entries {
			kind, ok := entity.ParseKind(ec.Kind)
			if !ok {
				return nil, errors.Errorf("schedule[%d]: unknown kind %q", i, ec.Kind)
			}
			entries = append(entries, director.Entry{Kind: kind, Weight: ec.Weight})
		}
		table, err := director.NewTable(entries)
		if err != nil {
			return nil, errors.Wrapf(err, "schedule[%d]", i)
		}
		buckets = append(buckets, director.Bucket{First: bc.First, Last: bc.Last, Table: table})
	}
	s, err := director.NewSchedule(buckets)
	return s, errors.Wrap(err, "schedule")
}

// BuildLoot applies loot overrides to the default tables
func (c *Config) BuildLoot() (*extraction.LootTables, error) {
	tables := extraction.DefaultLootTables()
	for i, lc := range c.Loot {
		t, err := extraction.NewLootTable(lc.Entries)
		if err != nil {
			return nil, errors.Wrapf(err, "loot[%d]", i)
		}
		if lc.Kind == "default" {
			tables.SetFallback(t)
			continue
		}
		kind, ok := entity.ParseKind(lc.Kind)
		if !ok {
			return nil, errors.Errorf("loot[%d]: unknown kind %q", i, lc.Kind)
		}
		tables.Set(kind, t)
	}
	return tables, nil
}

// DirectorConfig maps wave settings onto the director
func (c *Config) DirectorConfig() director.Config {
	d := director.DefaultConfig()
	d.BaseCount = c.Waves.BaseCount
	d.PerWave = c.Waves.PerWave
	if c.Waves.EliteEvery > 0 {
		d.EliteEvery = c.Waves.EliteEvery
	}
	d.Cadence = c.Waves.Cadence
	d.EliteCadence = c.Waves.EliteCadence
	d.CompleteDelay = c.Waves.CompleteDelay
	return d
}

// PeerConfig maps role, transport and timing onto the network layer
func (c *Config) PeerConfig() (*network.Config, error) {
	role, ok := network.ParseRole(c.Role)
	if !ok {
		return nil, errors.Errorf("unknown role %q", c.Role)
	}
	nc := network.DefaultConfig()
	nc.Role = role
	nc.Transport = network.TransportKind(c.Transport)
	nc.Address = c.Address
	if c.Path != "" {
		nc.Path = c.Path
	}
	if c.Network.ConnectTimeout > 0 {
		nc.ConnectTimeout = c.Network.ConnectTimeout
	}
	if c.Network.HeartbeatInterval > 0 {
		nc.HeartbeatInterval = c.Network.HeartbeatInterval
	}
	if c.Network.DisconnectTimeout > 0 {
		nc.DisconnectTimeout = c.Network.DisconnectTimeout
	}
	return nc, nil
}
