package recordstore_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/featsearch/recordstore"
	"github.com/hupe1980/featsearch/recordstore/recordstoretest"
)

func TestMemory(t *testing.T) {
	m := recordstore.NewMemory()
	recordstoretest.Run(t, m)

	acc := m.Accepted()
	require.Len(t, acc, 2)
	assert.Equal(t, "out", acc[0].Sample)
	assert.Equal(t, "out2", acc[1].Sample)
	require.NoError(t, m.Close())
}

func TestMemoryConcurrentAccepted(t *testing.T) {
	m := recordstore.NewMemory()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := recordstore.AcceptedRecord{Input: "in", Sample: fmt.Sprintf("out%d", i%8)}
			_, err := m.InsertAccepted(ctx, r)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	n, err := m.Count(ctx, recordstore.TableAccepted)
	require.NoError(t, err)
	assert.Equal(t, 8, n)

	acc := m.Accepted()
	require.Len(t, acc, 8)
	seen := make(map[string]bool)
	for _, r := range acc {
		assert.False(t, seen[r.Sample], r.Sample)
		seen[r.Sample] = true
	}
}
