package extraction

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/lixenwraith/arena-core/entity"
	"github.com/lixenwraith/arena-core/parameter"
)

// LootEntry is one weighted item id
type LootEntry struct {
	ID     string `yaml:"id"`
	Weight int    `yaml:"weight"`
}

// LootTable rolls item ids by weight
type LootTable struct {
	entries []LootEntry
	total   int
}

// NewLootTable validates weights; an empty table is allowed and never drops
func NewLootTable(entries []LootEntry) (*LootTable, error) {
	total := 0
	for _, e := range entries {
		if e.Weight < 0 {
			return nil, errors.Errorf("negative loot weight %d for %q", e.Weight, e.ID)
		}
		if e.ID == "" {
			return nil, errors.New("loot entry without id")
		}
		total += e.Weight
	}
	return &LootTable{entries: append([]LootEntry(nil), entries...), total: total}, nil
}

// Roll draws one id; the first entry is the fallback, an empty table yields false
func (t *LootTable) Roll(rng *rand.Rand) (string, bool) {
	if len(t.entries) == 0 {
		return "", false
	}
	if t.total <= 0 {
		return t.entries[0].ID, true
	}
	r := rng.Intn(t.total)
	cum := 0
	for _, e := range t.entries {
		cum += e.Weight
		if r < cum {
			return e.ID, true
		}
	}
	return t.entries[0].ID, true
}

func (t *LootTable) Len() int { return len(t.entries) }

// Loot ids in rarity order
const (
	LootScrapMetal = "scrap_metal"
	LootEnergyCell = "energy_cell"
	LootDataChip   = "data_chip"
	LootNeuroCore  = "neuro_core"

	// Powerup drops are applied on pickup and never enter the bag
	LootPowerupSpeed  = "powerup:speed"
	LootPowerupShield = "powerup:shield"
	LootPowerupDouble = "powerup:doublescore"
)

// LootTables maps enemy kinds to tables with a shared fallback
type LootTables struct {
	byKind     map[entity.Kind]*LootTable
	fallback   *LootTable
	dropChance float64
}

// DefaultLootTables uses rarity weights 600/300/90/10; bosses and bunnies skew rare
func DefaultLootTables() *LootTables {
	common, _ := NewLootTable([]LootEntry{
		{LootScrapMetal, 600},
		{LootEnergyCell, 300},
		{LootDataChip, 90},
		{LootNeuroCore, 10},
	})
	rich, _ := NewLootTable([]LootEntry{
		{LootEnergyCell, 40},
		{LootDataChip, 40},
		{LootNeuroCore, 20},
		{LootPowerupSpeed, 10},
		{LootPowerupShield, 10},
		{LootPowerupDouble, 10},
	})
	return &LootTables{
		byKind: map[entity.Kind]*LootTable{
			entity.KindLootBunny: rich,
			entity.KindBoss:      rich,
		},
		fallback:   common,
		dropChance: parameter.LootDropChance,
	}
}

// Set installs a table for kind
func (l *LootTables) Set(kind entity.Kind, t *LootTable) {
	l.byKind[kind] = t
}

// SetFallback replaces the table used by kinds without their own
func (l *LootTables) SetFallback(t *LootTable) {
	l.fallback = t
}

// For returns kind's table or the fallback
func (l *LootTables) For(kind entity.Kind) *LootTable {
	if t, ok := l.byKind[kind]; ok {
		return t
	}
	return l.fallback
}

// RollKill decides the drop of a killed enemy; loot bunnies and bosses always roll
func (l *LootTables) RollKill(kind entity.Kind, rng *rand.Rand) (string, bool) {
	if kind != entity.KindLootBunny && kind != entity.KindBoss && rng.Float64() >= l.dropChance {
		return "", false
	}
	return l.For(kind).Roll(rng)
}

// Bag accumulates loot carried during a match; lost on death, kept on extraction
type Bag struct {
	ids []string
}

func (b *Bag) Add(id string) { b.ids = append(b.ids, id) }
func (b *Bag) Len() int      { return len(b.ids) }
func (b *Bag) Clear()        { b.ids = b.ids[:0] }
func (b *Bag) IDs() []string { return append([]string(nil), b.ids...) }
