package prometheus

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/featsearch/queue"
)

func TestObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	o := New(WithRegisterer(reg))

	o.OnRound(0, 10, 4, 200*time.Millisecond)
	o.OnRound(0, 10, 6, 100*time.Millisecond)
	o.OnRound(1, 5, 5, 100*time.Millisecond)
	o.OnFeed(0, queue.TerminalAccepted, 2, time.Second)
	o.OnFeed(1, queue.TerminalExhausted, 7, time.Second)
	o.OnAccepted(0, 0.4, true)
	o.OnAccepted(0, 0.9, false)
	o.OnCheckpoint(time.Millisecond, nil)
	o.OnCheckpoint(time.Millisecond, errors.New("disk full"))
	o.OnQueueDepth(3)

	assert.InDelta(t, 20, testutil.ToFloat64(o.evaluated.WithLabelValues("0")), 1e-9)
	assert.InDelta(t, 10, testutil.ToFloat64(o.compiled.WithLabelValues("0")), 1e-9)
	assert.InDelta(t, 5, testutil.ToFloat64(o.compiled.WithLabelValues("1")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(o.feeds.WithLabelValues("exhausted")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(o.accepted.WithLabelValues("true")), 1e-9)
	assert.InDelta(t, 0.9, testutil.ToFloat64(o.bestScore), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(o.checkpoints.WithLabelValues("error")), 1e-9)
	assert.InDelta(t, 3, testutil.ToFloat64(o.queueDepth), 1e-9)

	n, err := testutil.GatherAndCount(reg, "featsearch_round_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestObserverTarget(t *testing.T) {
	reg := prometheus.NewRegistry()
	o := New(WithRegisterer(reg))

	o.OnTarget("a.cl")
	o.OnTarget("b.cl")
	assert.Equal(t, 1, testutil.CollectAndCount(o.target))
	assert.InDelta(t, 1, testutil.ToFloat64(o.target.WithLabelValues("b.cl")), 1e-9)

	o.OnTarget("")
	assert.Equal(t, 0, testutil.CollectAndCount(o.target))
	assert.InDelta(t, 2, testutil.ToFloat64(o.targets), 1e-9)
}

func TestNewRegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(WithRegisterer(reg))
	assert.Panics(t, func() { New(WithRegisterer(reg)) })
}
