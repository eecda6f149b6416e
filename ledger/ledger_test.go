package ledger

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/arena-core/event"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}

func TestOpenFileReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	ctx := context.Background()
	id := uuid.New()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.RecordMatch(ctx, MatchRecord{MatchID: id, Score: 10}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	recent, err := s.Recent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, id, recent[0].MatchID)
}

func TestRecordMatchUpserts(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()
	id := uuid.New()
	ended := time.UnixMilli(1_700_000_000_000).UTC()

	require.NoError(t, s.RecordMatch(ctx, MatchRecord{MatchID: id, Mode: "coop", Seed: 9, Score: 50, Wave: 2, Level: 1, Reason: "extraction", Extracted: true, EndedAt: ended}))
	require.NoError(t, s.RecordMatch(ctx, MatchRecord{MatchID: id, Mode: "coop", Seed: 9, Score: 80, Wave: 3, Level: 2, Reason: "extraction", EndedAt: ended}))

	recent, err := s.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	r := recent[0]
	assert.Equal(t, 80, r.Score)
	assert.Equal(t, 3, r.Wave)
	assert.True(t, r.Extracted, "extraction flag is sticky")
	assert.Equal(t, ended, r.EndedAt)
	assert.Equal(t, int64(9), r.Seed)

	assert.Error(t, s.RecordMatch(ctx, MatchRecord{}))
}

func TestRecentOrderAndBest(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()
	base := time.UnixMilli(1_700_000_000_000)

	best, err := s.BestScore(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, best)

	for i, score := range []int{30, 90, 60} {
		require.NoError(t, s.RecordMatch(ctx, MatchRecord{
			MatchID: uuid.New(),
			Score:   score,
			EndedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	recent, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, 60, recent[0].Score)
	assert.Equal(t, 90, recent[1].Score)

	best, err = s.BestScore(ctx)
	require.NoError(t, err)
	assert.Equal(t, 90, best)
}

func TestRecordLootAggregates(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()
	a, b := uuid.New(), uuid.New()

	require.NoError(t, s.RecordLoot(ctx, a, []string{"scrap_metal", "scrap_metal", "data_chip"}))
	require.NoError(t, s.RecordLoot(ctx, a, []string{"scrap_metal"}))
	require.NoError(t, s.RecordLoot(ctx, b, []string{"neuro_core", "data_chip"}))
	require.NoError(t, s.RecordLoot(ctx, b, nil))

	stash, err := s.Stash(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"scrap_metal": 3, "data_chip": 2, "neuro_core": 1}, stash)
}

func TestRecorderHandlesEvents(t *testing.T) {
	s := openMemory(t)
	bus := event.NewBus(nil)
	rec := NewRecorder(s, "coop", 42, nil)
	bus.Register(rec)
	id := uuid.New()

	bus.Emit(event.GameEvent{Type: event.EventExtractionSuccess, Payload: &event.ExtractionSuccessPayload{MatchID: id, LootIDs: []string{"energy_cell"}}})
	bus.Emit(event.GameEvent{Type: event.EventMatchOver, Payload: &event.MatchOverPayload{MatchID: id, Score: 120, Wave: 4, Level: 3, Reason: "extraction"}})
	rec.Close()

	ctx := context.Background()
	recent, err := s.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, id, recent[0].MatchID)
	assert.Equal(t, "coop", recent[0].Mode)
	assert.Equal(t, int64(42), recent[0].Seed)
	assert.Equal(t, 120, recent[0].Score)
	assert.True(t, recent[0].Extracted)

	stash, err := s.Stash(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stash["energy_cell"])
}

// stallWriter blocks every write until release is closed
type stallWriter struct {
	release chan struct{}
	mu      sync.Mutex
	matches []MatchRecord
	loot    [][]string
}

func (w *stallWriter) RecordMatch(ctx context.Context, r MatchRecord) error {
	<-w.release
	w.mu.Lock()
	w.matches = append(w.matches, r)
	w.mu.Unlock()
	return nil
}

func (w *stallWriter) RecordLoot(ctx context.Context, id uuid.UUID, ids []string) error {
	<-w.release
	w.mu.Lock()
	w.loot = append(w.loot, ids)
	w.mu.Unlock()
	return nil
}

func TestRecorderDoesNotBlockDispatch(t *testing.T) {
	w := &stallWriter{release: make(chan struct{})}
	rec := newRecorder(w, "coop", 7, nil)
	bus := event.NewBus(nil)
	bus.Register(rec)
	id := uuid.New()

	emitted := make(chan struct{})
	go func() {
		bus.Emit(event.GameEvent{Type: event.EventExtractionSuccess, Payload: &event.ExtractionSuccessPayload{MatchID: id, LootIDs: []string{"scrap_metal"}}})
		bus.Emit(event.GameEvent{Type: event.EventMatchOver, Payload: &event.MatchOverPayload{MatchID: id, Score: 50, Reason: "extraction"}})
		close(emitted)
	}()

	select {
	case <-emitted:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked on a stalled ledger write")
	}

	close(w.release)
	rec.Close()

	w.mu.Lock()
	defer w.mu.Unlock()
	require.Len(t, w.matches, 1)
	assert.Equal(t, id, w.matches[0].MatchID)
	assert.True(t, w.matches[0].Extracted, "loot precedes the match record")
	assert.Equal(t, [][]string{{"scrap_metal"}}, w.loot)
}

func TestRecorderDropsAfterClose(t *testing.T) {
	w := &stallWriter{release: make(chan struct{})}
	close(w.release)
	rec := newRecorder(w, "solo", 1, nil)
	rec.Close()
	rec.Close()

	rec.HandleEvent(event.GameEvent{Type: event.EventMatchOver, Payload: &event.MatchOverPayload{MatchID: uuid.New()}})

	w.mu.Lock()
	defer w.mu.Unlock()
	assert.Empty(t, w.matches)
}
