package engine

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPoolRun(t *testing.T) {
	wp := NewWorkerPool(4)
	defer wp.Close()
	assert.Equal(t, 4, wp.Size())

	results := make([]int, 100)
	require.NoError(t, wp.Run(context.Background(), len(results), func(i int) {
		results[i] = i * i
	}))
	for i, r := range results {
		assert.Equal(t, i*i, r)
	}
}

func TestWorkerPoolSubmitAfterClose(t *testing.T) {
	wp := NewWorkerPool(1)
	wp.Close()
	wp.Close()

	err := wp.Submit(context.Background(), func() {})
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, wp.Run(context.Background(), 1, func(int) {}), ErrClosed)
}

func TestWorkerPoolCloseDrains(t *testing.T) {
	wp := NewWorkerPool(2)
	var n atomic.Int64
	for i := 0; i < 10; i++ {
		require.NoError(t, wp.Submit(context.Background(), func() { n.Add(1) }))
	}
	wp.Close()
	assert.Equal(t, int64(10), n.Load())
}

func TestWorkerPoolCanceledContext(t *testing.T) {
	wp := NewWorkerPool(1)
	defer wp.Close()

	block := make(chan struct{})
	require.NoError(t, wp.Submit(context.Background(), func() { <-block }))
	// fill the buffer
	for i := 0; i < 2; i++ {
		require.NoError(t, wp.Submit(context.Background(), func() {}))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := wp.Submit(ctx, func() {})
	assert.ErrorIs(t, err, context.Canceled)
	close(block)
}

func TestNoopMetricsObserver(t *testing.T) {
	var o MetricsObserver = &NoopMetricsObserver{}
	o.OnRound(0, 1, 1, 0)
	o.OnQueueDepth(1)
	o.OnTarget("")
}
