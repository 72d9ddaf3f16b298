package engine

import (
	"time"

	"github.com/hupe1980/featsearch/queue"
)

// MetricsObserver defines the interface for observing engine events.
type MetricsObserver interface {
	// OnRound is called after a generation round was evaluated.
	OnRound(generation int, evaluated, compiled int, duration time.Duration)

	// OnFeed is called when a feed's expansion completes.
	OnFeed(generation int, state queue.State, rounds int, duration time.Duration)

	// OnAccepted is called for every selected, deduplicated candidate.
	OnAccepted(generation int, score float64, inserted bool)

	// OnCheckpoint is called after the search state was written.
	OnCheckpoint(duration time.Duration, err error)

	// OnQueueDepth reports the number of queued feeds.
	OnQueueDepth(depth int)

	// OnTarget is called when the target set advances. name is empty once exhausted.
	OnTarget(name string)
}

// NoopMetricsObserver is a no-op implementation of MetricsObserver.
type NoopMetricsObserver struct{}

func (o *NoopMetricsObserver) OnRound(generation int, evaluated, compiled int, duration time.Duration) {
}
func (o *NoopMetricsObserver) OnFeed(generation int, state queue.State, rounds int, duration time.Duration) {
}
func (o *NoopMetricsObserver) OnAccepted(generation int, score float64, inserted bool) {}
func (o *NoopMetricsObserver) OnCheckpoint(duration time.Duration, err error)          {}
func (o *NoopMetricsObserver) OnQueueDepth(depth int)                                 {}
func (o *NoopMetricsObserver) OnTarget(name string)                                   {}
