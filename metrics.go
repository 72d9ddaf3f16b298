package featsearch

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/featsearch/engine"
	"github.com/hupe1980/featsearch/queue"
)

// MetricsCollector receives engine events. Implement it to integrate with
// monitoring systems; metrics/prometheus provides a Prometheus collector.
type MetricsCollector = engine.MetricsObserver

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector = engine.NoopMetricsObserver

var _ MetricsCollector = (*BasicMetricsCollector)(nil)

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	RoundCount       atomic.Int64
	EvaluatedCount   atomic.Int64
	CompiledCount    atomic.Int64
	RoundTotalNanos  atomic.Int64
	FeedCount        atomic.Int64
	ExhaustedFeeds   atomic.Int64
	AcceptedCount    atomic.Int64
	InsertedCount    atomic.Int64
	CheckpointCount  atomic.Int64
	CheckpointErrors atomic.Int64
	QueueDepth       atomic.Int64
	TargetCount      atomic.Int64
}

// OnRound implements MetricsCollector.
func (b *BasicMetricsCollector) OnRound(_ int, evaluated, compiled int, duration time.Duration) {
	b.RoundCount.Add(1)
	b.EvaluatedCount.Add(int64(evaluated))
	b.CompiledCount.Add(int64(compiled))
	b.RoundTotalNanos.Add(duration.Nanoseconds())
}

// OnFeed implements MetricsCollector.
func (b *BasicMetricsCollector) OnFeed(_ int, state queue.State, _ int, _ time.Duration) {
	b.FeedCount.Add(1)
	if state == queue.TerminalExhausted {
		b.ExhaustedFeeds.Add(1)
	}
}

// OnAccepted implements MetricsCollector.
func (b *BasicMetricsCollector) OnAccepted(_ int, _ float64, inserted bool) {
	b.AcceptedCount.Add(1)
	if inserted {
		b.InsertedCount.Add(1)
	}
}

// OnCheckpoint implements MetricsCollector.
func (b *BasicMetricsCollector) OnCheckpoint(_ time.Duration, err error) {
	b.CheckpointCount.Add(1)
	if err != nil {
		b.CheckpointErrors.Add(1)
	}
}

// OnQueueDepth implements MetricsCollector.
func (b *BasicMetricsCollector) OnQueueDepth(depth int) {
	b.QueueDepth.Store(int64(depth))
}

// OnTarget implements MetricsCollector.
func (b *BasicMetricsCollector) OnTarget(name string) {
	if name != "" {
		b.TargetCount.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		RoundCount:       b.RoundCount.Load(),
		EvaluatedCount:   b.EvaluatedCount.Load(),
		CompiledCount:    b.CompiledCount.Load(),
		RoundAvgNanos:    b.getAvgRoundNanos(),
		CompileRate:      b.getCompileRate(),
		FeedCount:        b.FeedCount.Load(),
		ExhaustedFeeds:   b.ExhaustedFeeds.Load(),
		AcceptedCount:    b.AcceptedCount.Load(),
		InsertedCount:    b.InsertedCount.Load(),
		CheckpointCount:  b.CheckpointCount.Load(),
		CheckpointErrors: b.CheckpointErrors.Load(),
		QueueDepth:       b.QueueDepth.Load(),
		TargetCount:      b.TargetCount.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgRoundNanos() int64 {
	count := b.RoundCount.Load()
	if count == 0 {
		return 0
	}
	return b.RoundTotalNanos.Load() / count
}

func (b *BasicMetricsCollector) getCompileRate() float64 {
	total := b.EvaluatedCount.Load()
	if total == 0 {
		return 0
	}
	return float64(b.CompiledCount.Load()) / float64(total)
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	RoundCount       int64
	EvaluatedCount   int64
	CompiledCount    int64
	RoundAvgNanos    int64
	CompileRate      float64
	FeedCount        int64
	ExhaustedFeeds   int64
	AcceptedCount    int64
	InsertedCount    int64
	CheckpointCount  int64
	CheckpointErrors int64
	QueueDepth       int64
	TargetCount      int64
}
