package featsearch

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/featsearch/blobstore"
	"github.com/hupe1980/featsearch/corpus"
	"github.com/hupe1980/featsearch/recordstore"
	"github.com/hupe1980/featsearch/target"
	"github.com/hupe1980/featsearch/testutil"
)

func testConfig() Config {
	return Config{
		ActiveLimitPerFeed:  3,
		ActiveSearchWidth:   2,
		FeatureSpace:        testutil.Space,
		SampleBatchSize:     3,
		WorkloadSize:        3,
		MaxEvaluatedPerFeed: 30,
		Workers:             2,
	}
}

func testTable() map[string][]string {
	return map[string][]string{
		"9": {"0.9", "0.4", "1.2"},
	}
}

func openSearcher(t *testing.T, store blobstore.BlobStore, records recordstore.Store, opts ...Option) *Searcher {
	t.Helper()
	loader := target.SliceLoader{
		{Name: "a.cl", Source: "0"},
		{Name: "b.cl", Source: "0"},
	}
	opts = append([]Option{WithBlobStore(store), WithRecordStore(records)}, opts...)
	s, err := Open(context.Background(), testConfig(),
		testutil.NewTableGenerator(testTable()),
		testutil.ByteTokenizer{},
		&testutil.ScoreExtractor{},
		loader,
		corpus.Slice{{Name: "seed", Tokens: testutil.Tokens("9")}},
		opts...,
	)
	require.NoError(t, err)
	return s
}

func TestRunAllSearchesEveryTarget(t *testing.T) {
	ctx := context.Background()
	records := recordstore.NewMemory()
	mc := &BasicMetricsCollector{}
	s := openSearcher(t, blobstore.NewMemoryStore(), records, WithMetricsCollector(mc))
	defer s.Close()

	assert.Equal(t, "a.cl", s.Target())

	results, err := s.RunAll(ctx)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a.cl", results[0].Target)
	assert.Equal(t, "b.cl", results[1].Target)
	for _, res := range results {
		assert.Len(t, res.Accepted, 2)
		assert.False(t, res.Interrupted)
	}
	assert.Empty(t, s.Target())

	_, err = s.Run(ctx)
	assert.ErrorIs(t, err, ErrTargetsExhausted)

	stats := mc.GetStats()
	assert.Equal(t, int64(4), stats.AcceptedCount)
	assert.Equal(t, int64(1), stats.TargetCount)
	// Both targets accept the same input and sample pairs.
	assert.Equal(t, int64(2), stats.InsertedCount)
	assert.Len(t, records.Accepted(), 2)
}

func TestReopenResumesTargets(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	s := openSearcher(t, store, recordstore.NewMemory())
	res, err := s.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a.cl", res.Target)
	require.NoError(t, s.Close())

	s = openSearcher(t, store, recordstore.NewMemory())
	defer s.Close()
	assert.Equal(t, "b.cl", s.Target())

	res, err = s.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b.cl", res.Target)
}

func TestRunAllStopsOnCancel(t *testing.T) {
	store := blobstore.NewMemoryStore()
	s := openSearcher(t, store, recordstore.NewMemory())
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := s.RunAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, results, 1)
	assert.True(t, results[0].Interrupted)

	_, err = s.Run(context.Background())
	assert.ErrorIs(t, err, ErrInterrupted)

	results, err = s.RunAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestOpenNoTargets(t *testing.T) {
	_, err := Open(context.Background(), testConfig(),
		testutil.NewTableGenerator(testTable()),
		testutil.ByteTokenizer{},
		&testutil.ScoreExtractor{},
		target.SliceLoader{{Name: "bad.cl", Source: "not a number"}},
		corpus.Slice{{Name: "seed", Tokens: testutil.Tokens("9")}},
	)
	assert.ErrorIs(t, err, ErrNoTargets)
}

func TestRunStoredFailure(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("model down")
	loader := target.SliceLoader{{Name: "a.cl", Source: "0"}}
	gen := testutil.GeneratorFunc(func(context.Context, [][]int) ([][]int, error) {
		return nil, boom
	})
	s, err := Open(ctx, testConfig(), gen, testutil.ByteTokenizer{}, &testutil.ScoreExtractor{}, loader,
		corpus.Slice{{Name: "seed", Tokens: testutil.Tokens("9")}})
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Run(ctx)
	require.Error(t, err)
	var sf *ErrSearchFailed
	require.ErrorAs(t, err, &sf)
	assert.Equal(t, "a.cl", sf.Target)
	assert.ErrorIs(t, err, boom)

	_, err = s.Run(ctx)
	assert.ErrorIs(t, err, boom)
}

func TestRunAfterClose(t *testing.T) {
	s := openSearcher(t, blobstore.NewMemoryStore(), recordstore.NewMemory())
	require.NoError(t, s.Close())

	_, err := s.Run(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestOpenLocksLocalStore(t *testing.T) {
	switch runtime.GOOS {
	case "aix", "js", "plan9", "wasip1", "zos":
		t.Skip("no file locking on " + runtime.GOOS)
	}
	dir := filepath.Join(t.TempDir(), "state")
	s := openSearcher(t, blobstore.NewLocalStore(dir), recordstore.NewMemory())

	_, err := Open(context.Background(), testConfig(),
		testutil.NewTableGenerator(testTable()),
		testutil.ByteTokenizer{},
		&testutil.ScoreExtractor{},
		target.SliceLoader{{Name: "a.cl", Source: "0"}},
		corpus.Slice{{Name: "seed", Tokens: testutil.Tokens("9")}},
		WithBlobStore(blobstore.NewLocalStore(dir)),
	)
	assert.ErrorIs(t, err, blobstore.ErrLocked)

	require.NoError(t, s.Close())
	s = openSearcher(t, blobstore.NewLocalStore(dir), recordstore.NewMemory())
	assert.Equal(t, "a.cl", s.Target())
	require.NoError(t, s.Close())
}
