package extraction

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/arena-core/entity"
	"github.com/lixenwraith/arena-core/parameter"
	"github.com/lixenwraith/arena-core/terrain"
	"github.com/lixenwraith/arena-core/vmath"
)

// corners is a fixed two-zone layout for tracker tests
var corners = []Zone{
	{Center: vmath.V(2900, 300), Radius: 100},
	{Center: vmath.V(300, 2900), Radius: 100},
}

func TestPlaceZonesOnGround(t *testing.T) {
	for seed := int64(1); seed <= 60; seed++ {
		cfg := terrain.DefaultConfig()
		cfg.Seed = seed
		m := terrain.Generate(cfg)
		spawn, err := m.RandomWalkableTile()
		require.NoError(t, err)

		zones := PlaceZones(m, parameter.ExtractionZoneCount, parameter.ExtractionMinSeparation, spawn)
		require.Len(t, zones, parameter.ExtractionZoneCount, "seed %d", seed)
		for i, z := range zones {
			tile, ok := m.TileAt(z.Center)
			require.True(t, ok, "seed %d zone %d off map", seed, i)
			assert.Equal(t, terrain.Ground, tile.Type, "seed %d zone %d", seed, i)
			assert.Equal(t, parameter.ExtractionRadius, z.Radius)
			assert.NotEqual(t, spawn, z.Center, "seed %d zone %d on the spawn", seed, i)
		}
		assert.NotEqual(t, zones[0].Center, zones[1].Center, "seed %d", seed)
	}
}

// scripted yields fixed positions in order, then fails
type scripted struct {
	pos []vmath.Vec2
	n   int
}

func (s *scripted) RandomWalkableTile() (vmath.Vec2, error) {
	if s.n >= len(s.pos) {
		return vmath.Vec2{}, terrain.ErrNoWalkableTile
	}
	s.n++
	return s.pos[s.n-1], nil
}

func TestPlaceZonesKeepsApart(t *testing.T) {
	p := &scripted{pos: []vmath.Vec2{
		vmath.V(100, 100),  // zone 0
		vmath.V(200, 100),  // too close to zone 0
		vmath.V(2000, 100), // zone 1
	}}
	zones := PlaceZones(p, 2, 1000)
	require.Len(t, zones, 2)
	assert.Equal(t, vmath.V(100, 100), zones[0].Center)
	assert.Equal(t, vmath.V(2000, 100), zones[1].Center)
}

func TestPlaceZonesAvoidsSpawn(t *testing.T) {
	p := &scripted{pos: []vmath.Vec2{vmath.V(0, 10), vmath.V(0, 1500)}}
	zones := PlaceZones(p, 1, 1000, vmath.V(0, 0))
	require.Len(t, zones, 1)
	assert.Equal(t, vmath.V(0, 1500), zones[0].Center)
}

func TestPlaceZonesTakesFarthestWhenCrowded(t *testing.T) {
	p := &scripted{pos: []vmath.Vec2{vmath.V(0, 0), vmath.V(50, 0), vmath.V(300, 0), vmath.V(120, 0)}}
	zones := PlaceZones(p, 2, 1000)
	require.Len(t, zones, 2)
	assert.Equal(t, vmath.V(300, 0), zones[1].Center)
}

func TestPlaceZonesSkipsWithoutGround(t *testing.T) {
	zones := PlaceZones(&scripted{}, 2, 1000)
	assert.Empty(t, zones)

	tr := NewTracker(zones, 0)
	assert.False(t, tr.Update(vmath.V(0, 0), time.Hour), "no zone never extracts")
}

func TestExtractionCompletesOnce(t *testing.T) {
	tr := NewTracker(corners, 0)
	inside := vmath.V(2900, 320)
	step := 100 * time.Millisecond

	for i := 0; i < 29; i++ {
		require.False(t, tr.Update(inside, step), "completed early at %d", i)
	}
	assert.True(t, tr.Update(inside, step))
	assert.True(t, tr.Done())
	assert.InDelta(t, 1.0, tr.Progress(), 1e-9)

	assert.False(t, tr.Update(inside, step), "completion must fire once")
}

func TestExtractionDecaysOutside(t *testing.T) {
	tr := NewTracker(corners, 0)
	inside := vmath.V(2900, 300)
	outside := vmath.V(1600, 1600)

	tr.Update(inside, 1000*time.Millisecond)
	tr.Update(outside, 300*time.Millisecond)
	assert.Equal(t, 400*time.Millisecond, tr.Zones()[0].Progress)

	tr.Update(outside, time.Second)
	assert.Equal(t, time.Duration(0), tr.Zones()[0].Progress, "progress clamps at zero")

	tr.Update(inside, 2*time.Second)
	assert.False(t, tr.Done())
}

func TestZoneBoundaryIsExclusive(t *testing.T) {
	z := Zone{Center: vmath.V(0, 0), Radius: 100}
	assert.True(t, z.Contains(vmath.V(99.9, 0)))
	assert.False(t, z.Contains(vmath.V(100, 0)))
}

func TestTrackerReset(t *testing.T) {
	tr := NewTracker(corners, time.Second)
	tr.Update(vmath.V(300, 2900), time.Second)
	require.True(t, tr.Done())
	tr.Reset()
	assert.False(t, tr.Done())
	assert.Zero(t, tr.Progress())
}

func TestLootTableRoll(t *testing.T) {
	rng := rand.New(rand.NewSource(9))

	empty, err := NewLootTable(nil)
	require.NoError(t, err)
	_, ok := empty.Roll(rng)
	assert.False(t, ok)

	zero, err := NewLootTable([]LootEntry{{"a", 0}, {"b", 0}})
	require.NoError(t, err)
	id, ok := zero.Roll(rng)
	assert.True(t, ok)
	assert.Equal(t, "a", id, "zero weights fall back to the first entry")

	_, err = NewLootTable([]LootEntry{{"a", -1}})
	assert.Error(t, err)
	_, err = NewLootTable([]LootEntry{{"", 1}})
	assert.Error(t, err)
}

func TestLootWeights(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	tbl := DefaultLootTables().For(entity.KindJelly)

	counts := map[string]int{}
	const n = 100000
	for i := 0; i < n; i++ {
		id, _ := tbl.Roll(rng)
		counts[id]++
	}
	assert.InDelta(t, 0.6, float64(counts[LootScrapMetal])/n, 0.01)
	assert.InDelta(t, 0.3, float64(counts[LootEnergyCell])/n, 0.01)
	assert.InDelta(t, 0.09, float64(counts[LootDataChip])/n, 0.01)
	assert.InDelta(t, 0.01, float64(counts[LootNeuroCore])/n, 0.01)
}

func TestRollKillChance(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	tables := DefaultLootTables()

	drops := 0
	const n = 20000
	for i := 0; i < n; i++ {
		if _, ok := tables.RollKill(entity.KindJelly, rng); ok {
			drops++
		}
	}
	assert.InDelta(t, 0.1, float64(drops)/n, 0.01)

	for i := 0; i < 100; i++ {
		id, ok := tables.RollKill(entity.KindLootBunny, rng)
		require.True(t, ok, "bunny always drops")
		assert.NotEqual(t, LootScrapMetal, id)
	}
}

func TestBag(t *testing.T) {
	var b Bag
	b.Add(LootDataChip)
	b.Add(LootScrapMetal)
	ids := b.IDs()
	assert.Equal(t, []string{LootDataChip, LootScrapMetal}, ids)

	ids[0] = "mutated"
	assert.Equal(t, LootDataChip, b.IDs()[0], "IDs returns a copy")

	b.Clear()
	assert.Zero(t, b.Len())
}
