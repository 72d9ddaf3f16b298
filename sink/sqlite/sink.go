// Package sqlite stores evaluated candidates in an SQLite samples table.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/hupe1980/featsearch/internal/sqlitedb"
	"github.com/hupe1980/featsearch/model"
	"github.com/hupe1980/featsearch/recordstore"
	"github.com/hupe1980/featsearch/sink"
)

const schema = `
CREATE TABLE IF NOT EXISTS samples (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	sha256          TEXT NOT NULL UNIQUE,
	sample_feed     TEXT NOT NULL,
	text            TEXT NOT NULL,
	encoded_text    TEXT NOT NULL,
	num_tokens      INTEGER NOT NULL,
	compile_status  BOOLEAN NOT NULL,
	feature_vector  TEXT NOT NULL,
	score           REAL NOT NULL,
	generation_id   INTEGER NOT NULL,
	date_added      TIMESTAMP NOT NULL
);`

// Sink is a sink.SampleSink writing to SQLite. Identical samples are stored once.
type Sink struct {
	db      *sql.DB
	decoder sink.Decoder
	now     func() time.Time
}

var _ sink.SampleSink = (*Sink)(nil)

// Open opens or creates the samples database at path.
func Open(path string, decoder sink.Decoder) (*Sink, error) {
	db, err := sqlitedb.Open(path, schema)
	if err != nil {
		return nil, fmt.Errorf("sink/sqlite: %w", err)
	}
	return &Sink{db: db, decoder: decoder, now: func() time.Time { return time.Now().UTC() }}, nil
}

// WriteSamples inserts all samples in one transaction.
func (s *Sink) WriteSamples(ctx context.Context, samples []model.Candidate) error {
	if len(samples) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sink/sqlite: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO samples
		(sha256, sample_feed, text, encoded_text, num_tokens, compile_status,
		 feature_vector, score, generation_id, date_added)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("sink/sqlite: prepare: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	now := s.now()
	for _, c := range samples {
		text, err := s.decoder.Decode(c.Tokens, true)
		if err != nil {
			return fmt.Errorf("sink/sqlite: decode sample: %w", err)
		}
		feed, err := s.decoder.Decode(c.Feed.InputTokens, true)
		if err != nil {
			return fmt.Errorf("sink/sqlite: decode feed: %w", err)
		}
		sum := c.Hash()
		if _, err := stmt.ExecContext(ctx,
			hex.EncodeToString(sum[:]), feed, text, recordstore.FormatTokens(c.Tokens), len(c.Tokens),
			true, recordstore.FormatFeatures(c.Features), float64(c.Score), c.Feed.Generation, now,
		); err != nil {
			return fmt.Errorf("sink/sqlite: insert: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sink/sqlite: commit: %w", err)
	}
	return nil
}

// Count returns the number of stored samples.
func (s *Sink) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM samples`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sink/sqlite: count: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (s *Sink) Close() error { return s.db.Close() }
