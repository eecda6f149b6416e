package director

import (
	"math/rand"
	"sort"

	"github.com/pkg/errors"

	"github.com/lixenwraith/arena-core/entity"
)

// Entry is one weighted spawn option
type Entry struct {
	Kind   entity.Kind
	Weight int
}

// Table is an ordered weighted list; the total weight is always positive
type Table struct {
	entries []Entry
	total   int
}

// NewTable validates entries and precomputes the total weight
func NewTable(entries []Entry) (*Table, error) {
	if len(entries) == 0 {
		return nil, errors.New("spawn table is empty")
	}
	total := 0
	for _, e := range entries {
		if e.Weight < 0 {
			return nil, errors.Errorf("negative weight %d for %s", e.Weight, e.Kind)
		}
		total += e.Weight
	}
	if total <= 0 {
		return nil, errors.New("spawn table weights sum to zero")
	}
	return &Table{entries: append([]Entry(nil), entries...), total: total}, nil
}

// MustTable is NewTable for static tables
func MustTable(entries ...Entry) *Table {
	t, err := NewTable(entries)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Table) Entries() []Entry { return t.entries }
func (t *Table) Total() int       { return t.total }

// Draw picks a kind with probability weight/total
func (t *Table) Draw(rng *rand.Rand) entity.Kind {
	return t.pick(rng.Intn(t.total))
}

// pick walks cumulative weights and returns the first entry whose cumulative
// weight exceeds r, falling back to the first entry
func (t *Table) pick(r int) entity.Kind {
	cum := 0
	for _, e := range t.entries {
		cum += e.Weight
		if r < cum {
			return e.Kind
		}
	}
	return t.entries[0].Kind
}

// Bucket applies a table to waves First..Last inclusive; Last 0 means open-ended
type Bucket struct {
	First int
	Last  int
	Table *Table
}

func (b Bucket) contains(wave int) bool {
	return wave >= b.First && (b.Last == 0 || wave <= b.Last)
}

// Schedule maps wave ranges to spawn tables
type Schedule struct {
	buckets []Bucket
}

// NewSchedule sorts buckets by first wave
func NewSchedule(buckets []Bucket) (*Schedule, error) {
	if len(buckets) == 0 {
		return nil, errors.New("spawn schedule has no buckets")
	}
	for i, b := range buckets {
		if b.Table == nil {
			return nil, errors.Errorf("bucket %d has no table", i)
		}
		if b.Last != 0 && b.Last < b.First {
			return nil, errors.Errorf("bucket %d range %d-%d is inverted", i, b.First, b.Last)
		}
	}
	sorted := append([]Bucket(nil), buckets...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].First < sorted[j].First })
	return &Schedule{buckets: sorted}, nil
}

// DefaultSchedule returns the built-in four-bucket progression
func DefaultSchedule() *Schedule {
	s, _ := NewSchedule([]Bucket{
		{First: 1, Last: 3, Table: MustTable(
			Entry{entity.KindJelly, 10},
			Entry{entity.KindWisp, 5},
			Entry{entity.KindCharger, 1},
		)},
		{First: 4, Last: 6, Table: MustTable(
			Entry{entity.KindJelly, 5},
			Entry{entity.KindTriDart, 5},
			Entry{entity.KindCharger, 3},
			Entry{entity.KindSentinel, 1},
		)},
		{First: 7, Last: 9, Table: MustTable(
			Entry{entity.KindTriDart, 8},
			Entry{entity.KindCrab, 5},
			Entry{entity.KindSplitter, 3},
			Entry{entity.KindGolem, 1},
		)},
		{First: 10, Table: MustTable(
			Entry{entity.KindPhantom, 5},
			Entry{entity.KindGolem, 4},
			Entry{entity.KindLootBunny, 1},
			Entry{entity.KindSplitter, 5},
		)},
	})
	return s
}

// TableFor returns the bucket table containing wave
// Waves outside every bucket use the nearest preceding bucket, or the first
func (s *Schedule) TableFor(wave int) *Table {
	best := s.buckets[0].Table
	for _, b := range s.buckets {
		if b.contains(wave) {
			return b.Table
		}
		if b.First <= wave {
			best = b.Table
		}
	}
	return best
}

func (s *Schedule) Buckets() []Bucket { return s.buckets }
