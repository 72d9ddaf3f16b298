// Package recordstoretest provides a conformance test for recordstore.Store implementations.
package recordstoretest

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/featsearch/model"
	"github.com/hupe1980/featsearch/recordstore"
)

// Run checks the insert-if-absent contract of s. It expects an empty store.
func Run(t *testing.T, s recordstore.Store) {
	t.Helper()
	ctx := context.Background()

	spec := recordstore.SpecRecord{LimitPerFeed: 10, SearchDepth: 2, SearchWidth: 3, FeatureSpace: "GreweFeatures"}
	ok, err := s.InsertSpec(ctx, spec)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.InsertSpec(ctx, spec)
	require.NoError(t, err)
	assert.False(t, ok)

	in := recordstore.InputRecord{Input: "in", Tokens: []int{1, 2}, Features: model.Features{"comp": 1}, NumTokens: 2}
	ok, err = s.InsertInput(ctx, in)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.InsertInput(ctx, in)
	require.NoError(t, err)
	assert.False(t, ok)

	acc := recordstore.AcceptedRecord{
		Input: "in", InputTokens: []int{1, 2}, Sample: "out", SampleTokens: []int{3},
		SampleFeatures: model.Features{"comp": 2}, Score: 0.5, TargetName: "t", CompileStatus: true,
	}
	var wg sync.WaitGroup
	results := make([]bool, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.InsertAccepted(ctx, acc)
			assert.NoError(t, err)
			results[i] = ok
		}()
	}
	wg.Wait()

	inserted := 0
	for _, ok := range results {
		if ok {
			inserted++
		}
	}
	assert.Equal(t, 1, inserted, "exactly one concurrent insert wins")

	other := acc
	other.Sample = "out2"
	ok, err = s.InsertAccepted(ctx, other)
	require.NoError(t, err)
	assert.True(t, ok)

	for table, want := range map[recordstore.Table]int{recordstore.TableSpecs: 1, recordstore.TableInputs: 1, recordstore.TableAccepted: 2} {
		n, err := s.Count(ctx, table)
		require.NoError(t, err)
		assert.Equal(t, want, n, table)
	}

	_, err = s.Count(ctx, recordstore.Table("samples"))
	assert.ErrorIs(t, err, recordstore.ErrUnknownTable)
}
