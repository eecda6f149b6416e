package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lixenwraith/arena-core/core"
	"github.com/lixenwraith/arena-core/event"
	"github.com/lixenwraith/arena-core/parameter"
)

// writeTimeout bounds one ledger write on the worker
const writeTimeout = 2 * time.Second

// writer is the slice of Store the recorder persists through
type writer interface {
	RecordMatch(ctx context.Context, r MatchRecord) error
	RecordLoot(ctx context.Context, matchID uuid.UUID, ids []string) error
}

// Recorder queues match results and extracted loot off the dispatching
// goroutine; a single worker drains the queue in arrival order
type Recorder struct {
	store writer
	log   *zap.SugaredLogger
	mode  string
	seed  int64

	mu     sync.Mutex
	closed bool
	queue  chan event.GameEvent
	done   chan struct{}

	// Worker-owned
	extracted bool
}

// NewRecorder binds a store to one match's mode and seed and starts the write
// worker; log may be nil. Close drains pending writes.
func NewRecorder(store *Store, mode string, seed int64, log *zap.SugaredLogger) *Recorder {
	return newRecorder(store, mode, seed, log)
}

func newRecorder(w writer, mode string, seed int64, log *zap.SugaredLogger) *Recorder {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	r := &Recorder{
		store: w,
		log:   log,
		mode:  mode,
		seed:  seed,
		queue: make(chan event.GameEvent, parameter.LedgerQueueSize),
		done:  make(chan struct{}),
	}
	core.Go(r.run)
	return r
}

func (r *Recorder) EventTypes() []event.EventType {
	return []event.EventType{event.EventExtractionSuccess, event.EventMatchOver}
}

// HandleEvent never blocks; a full queue drops the write with an error log
func (r *Recorder) HandleEvent(ev event.GameEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		r.log.Warnw("ledger closed, write dropped", "type", ev.Type)
		return
	}
	select {
	case r.queue <- ev:
	default:
		r.log.Errorw("ledger queue full, write dropped", "type", ev.Type)
	}
}

// Close stops accepting events and waits for queued writes to finish
func (r *Recorder) Close() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()
	<-r.done
}

func (r *Recorder) run() {
	defer close(r.done)
	for ev := range r.queue {
		r.write(ev)
	}
}

func (r *Recorder) write(ev event.GameEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	switch p := ev.Payload.(type) {
	case *event.ExtractionSuccessPayload:
		r.extracted = true
		if err := r.store.RecordLoot(ctx, p.MatchID, p.LootIDs); err != nil {
			r.log.Errorw("ledger loot write failed", "match", p.MatchID, "error", err)
			return
		}
		r.log.Infow("loot recorded", "match", p.MatchID, "items", len(p.LootIDs))

	case *event.MatchOverPayload:
		err := r.store.RecordMatch(ctx, MatchRecord{
			MatchID:   p.MatchID,
			Mode:      r.mode,
			Seed:      r.seed,
			Score:     p.Score,
			Wave:      p.Wave,
			Level:     p.Level,
			Reason:    p.Reason,
			Extracted: r.extracted,
		})
		if err != nil {
			r.log.Errorw("ledger match write failed", "match", p.MatchID, "error", err)
		}
	}
}
