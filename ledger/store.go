// Package ledger persists match results and extracted loot in SQLite
package ledger

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS matches (
	match_id  TEXT PRIMARY KEY,
	mode      TEXT NOT NULL DEFAULT '',
	seed      INTEGER NOT NULL DEFAULT 0,
	score     INTEGER NOT NULL DEFAULT 0,
	wave      INTEGER NOT NULL DEFAULT 0,
	level     INTEGER NOT NULL DEFAULT 0,
	reason    TEXT NOT NULL DEFAULT '',
	extracted INTEGER NOT NULL DEFAULT 0,
	ended_at  INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS loot (
	match_id TEXT NOT NULL,
	item_id  TEXT NOT NULL,
	qty      INTEGER NOT NULL,
	PRIMARY KEY (match_id, item_id)
);
`

// MatchRecord is one finished match
type MatchRecord struct {
	MatchID   uuid.UUID
	Mode      string
	Seed      int64
	Score     int
	Wave      int
	Level     int
	Reason    string
	Extracted bool
	EndedAt   time.Time
}

// Store is the SQLite ledger
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the ledger at path
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("ledger path is required")
	}
	dsn := path
	if path != MemoryPath {
		dsn = filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite db")
	}
	// One connection: SQLite has a single writer and :memory: is per connection
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping sqlite db")
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "apply schema")
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database handle
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordMatch inserts or replaces a match result
func (s *Store) RecordMatch(ctx context.Context, r MatchRecord) error {
	if r.MatchID == uuid.Nil {
		return errors.New("match id is required")
	}
	if r.EndedAt.IsZero() {
		r.EndedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO matches (match_id, mode, seed, score, wave, level, reason, extracted, ended_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(match_id) DO UPDATE SET
			mode = excluded.mode,
			seed = excluded.seed,
			score = excluded.score,
			wave = excluded.wave,
			level = excluded.level,
			reason = excluded.reason,
			extracted = MAX(matches.extracted, excluded.extracted),
			ended_at = excluded.ended_at`,
		r.MatchID.String(), r.Mode, r.Seed, r.Score, r.Wave, r.Level, r.Reason, boolInt(r.Extracted), r.EndedAt.UTC().UnixMilli())
	return errors.Wrap(err, "record match")
}

// RecordLoot adds extracted item ids to a match, one row per distinct id
func (s *Store) RecordLoot(ctx context.Context, matchID uuid.UUID, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	counts := make(map[string]int, len(ids))
	for _, id := range ids {
		counts[id]++
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin loot")
	}
	defer func() { _ = tx.Rollback() }()

	for id, n := range counts {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO loot (match_id, item_id, qty) VALUES (?, ?, ?)
			ON CONFLICT(match_id, item_id) DO UPDATE SET qty = loot.qty + excluded.qty`,
			matchID.String(), id, n)
		if err != nil {
			return errors.Wrapf(err, "record loot %s", id)
		}
	}
	return errors.Wrap(tx.Commit(), "commit loot")
}

// Stash totals every extracted item across matches
func (s *Store) Stash(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT item_id, SUM(qty) FROM loot GROUP BY item_id`)
	if err != nil {
		return nil, errors.Wrap(err, "query stash")
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var id string
		var qty int
		if err := rows.Scan(&id, &qty); err != nil {
			return nil, errors.Wrap(err, "scan stash")
		}
		out[id] = qty
	}
	return out, errors.Wrap(rows.Err(), "iterate stash")
}

// Recent returns up to limit matches, newest first
func (s *Store) Recent(ctx context.Context, limit int) ([]MatchRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT match_id, mode, seed, score, wave, level, reason, extracted, ended_at
		FROM matches ORDER BY ended_at DESC, match_id LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "query matches")
	}
	defer rows.Close()

	var out []MatchRecord
	for rows.Next() {
		var (
			r         MatchRecord
			id        string
			extracted int
			endedAt   int64
		)
		if err := rows.Scan(&id, &r.Mode, &r.Seed, &r.Score, &r.Wave, &r.Level, &r.Reason, &extracted, &endedAt); err != nil {
			return nil, errors.Wrap(err, "scan match")
		}
		if r.MatchID, err = uuid.Parse(id); err != nil {
			return nil, errors.Wrapf(err, "match id %q", id)
		}
		r.Extracted = extracted != 0
		r.EndedAt = time.UnixMilli(endedAt).UTC()
		out = append(out, r)
	}
	return out, errors.Wrap(rows.Err(), "iterate matches")
}

// BestScore returns the highest recorded score, 0 when empty
func (s *Store) BestScore(ctx context.Context) (int, error) {
	var best sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(score) FROM matches`).Scan(&best); err != nil {
		return 0, errors.Wrap(err, "best score")
	}
	return int(best.Int64), nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
