// Package sqlite implements recordstore.Store on SQLite (modernc.org/sqlite).
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hupe1980/featsearch/internal/sqlitedb"
	"github.com/hupe1980/featsearch/recordstore"
)

const schema = `
CREATE TABLE IF NOT EXISTS specifications (
	sha256                TEXT PRIMARY KEY,
	active_limit_per_feed INTEGER NOT NULL,
	active_search_depth   INTEGER NOT NULL,
	active_search_width   INTEGER NOT NULL,
	feature_space         TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS input_feeds (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	sha256         TEXT NOT NULL UNIQUE,
	input_feed     TEXT NOT NULL,
	encoded_feed   TEXT NOT NULL,
	input_features TEXT NOT NULL,
	num_tokens     INTEGER NOT NULL,
	date_added     TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS active_feeds (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	sha256           TEXT NOT NULL UNIQUE,
	input_feed       TEXT NOT NULL,
	encoded_feed     TEXT NOT NULL,
	input_features   TEXT NOT NULL,
	sample           TEXT NOT NULL,
	encoded_sample   TEXT NOT NULL,
	num_tokens       INTEGER NOT NULL,
	output_features  TEXT NOT NULL,
	sample_quality   REAL NOT NULL,
	target_benchmark TEXT NOT NULL,
	target_features  TEXT NOT NULL,
	compile_status   BOOLEAN NOT NULL,
	generation_id    INTEGER NOT NULL,
	date_added       TIMESTAMP NOT NULL
);`

// Store is a recordstore.Store backed by a single SQLite file.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

var _ recordstore.Store = (*Store)(nil)

// Open opens or creates the database at path. Use sqlitedb.Memory for a
// private in-memory database.
func Open(path string) (*Store, error) {
	db, err := sqlitedb.Open(path, schema)
	if err != nil {
		return nil, fmt.Errorf("recordstore/sqlite: %w", err)
	}
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (bool, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("recordstore/sqlite: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("recordstore/sqlite: %w", err)
	}
	return n == 1, nil
}

// InsertSpec implements recordstore.Store.
func (s *Store) InsertSpec(ctx context.Context, r recordstore.SpecRecord) (bool, error) {
	return s.exec(ctx, `INSERT OR IGNORE INTO specifications
		(sha256, active_limit_per_feed, active_search_depth, active_search_width, feature_space)
		VALUES (?, ?, ?, ?, ?)`,
		r.SHA256(), r.LimitPerFeed, r.SearchDepth, r.SearchWidth, r.FeatureSpace)
}

// InsertInput implements recordstore.Store.
func (s *Store) InsertInput(ctx context.Context, r recordstore.InputRecord) (bool, error) {
	added := r.Added
	if added.IsZero() {
		added = s.now()
	}
	return s.exec(ctx, `INSERT OR IGNORE INTO input_feeds
		(sha256, input_feed, encoded_feed, input_features, num_tokens, date_added)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.SHA256(), r.Input, recordstore.FormatTokens(r.Tokens), recordstore.FormatFeatures(r.Features), r.NumTokens, added)
}

// InsertAccepted implements recordstore.Store.
func (s *Store) InsertAccepted(ctx context.Context, r recordstore.AcceptedRecord) (bool, error) {
	added := r.Added
	if added.IsZero() {
		added = s.now()
	}
	return s.exec(ctx, `INSERT OR IGNORE INTO active_feeds
		(sha256, input_feed, encoded_feed, input_features, sample, encoded_sample, num_tokens,
		 output_features, sample_quality, target_benchmark, target_features, compile_status,
		 generation_id, date_added)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.SHA256(), r.Input, recordstore.FormatTokens(r.InputTokens), recordstore.FormatFeatures(r.InputFeatures),
		r.Sample, recordstore.FormatTokens(r.SampleTokens), r.NumTokens,
		recordstore.FormatFeatures(r.SampleFeatures), r.Score, r.TargetBenchmark(),
		recordstore.FormatFeatures(r.TargetFeatures), r.CompileStatus, r.Generation, added)
}

// Count implements recordstore.Store.
func (s *Store) Count(ctx context.Context, t recordstore.Table) (int, error) {
	switch t {
	case recordstore.TableSpecs, recordstore.TableInputs, recordstore.TableAccepted:
	default:
		return 0, recordstore.ErrUnknownTable
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+string(t)).Scan(&n); err != nil {
		return 0, fmt.Errorf("recordstore/sqlite: count %s: %w", t, err)
	}
	return n, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
