package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/featsearch/internal/sqlitedb"
	"github.com/hupe1980/featsearch/model"
	"github.com/hupe1980/featsearch/recordstore"
	"github.com/hupe1980/featsearch/recordstore/recordstoretest"
)

func TestStore(t *testing.T) {
	s, err := Open(sqlitedb.Memory)
	require.NoError(t, err)
	defer s.Close()

	recordstoretest.Run(t, s)
}

func TestStoreReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "active_feeds.db")

	s, err := Open(path)
	require.NoError(t, err)
	rec := recordstore.AcceptedRecord{
		Input: "in", Sample: "out", SampleFeatures: model.Features{"comp": 3},
		TargetName: "bench", TargetSource: "kernel void A() {}", Score: 0.25, Generation: 1,
	}
	ok, err := s.InsertAccepted(ctx, rec)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	ok, err = s.InsertAccepted(ctx, rec)
	require.NoError(t, err)
	assert.False(t, ok, "double insert leaves one row")

	n, err := s.Count(ctx, recordstore.TableAccepted)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var bench, feats string
	require.NoError(t, s.db.QueryRow(`SELECT target_benchmark, output_features FROM active_feeds`).Scan(&bench, &feats))
	assert.Equal(t, "// bench\nkernel void A() {}", bench)
	assert.Equal(t, "comp:3", feats)
}
