// Package prometheus exports search metrics to Prometheus.
package prometheus

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hupe1980/featsearch/engine"
	"github.com/hupe1980/featsearch/queue"
)

const namespace = "featsearch"

var _ engine.MetricsObserver = (*Observer)(nil)

// Observer implements engine.MetricsObserver with Prometheus collectors.
type Observer struct {
	roundLatency *prometheus.HistogramVec
	evaluated    *prometheus.CounterVec
	compiled     *prometheus.CounterVec
	feeds        *prometheus.CounterVec
	feedRounds   prometheus.Histogram
	feedLatency  prometheus.Histogram
	accepted     *prometheus.CounterVec
	bestScore    prometheus.Gauge
	checkpoints  *prometheus.CounterVec
	ckptLatency  prometheus.Histogram
	queueDepth   prometheus.Gauge
	targets      prometheus.Counter
	target       *prometheus.GaugeVec

	current string
}

// Option configures an Observer.
type Option func(*options)

type options struct {
	registerer prometheus.Registerer
}

// WithRegisterer registers the collectors with r instead of the default registry.
func WithRegisterer(r prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = r
	}
}

// New creates an Observer and registers its collectors.
func New(opts ...Option) *Observer {
	o := options{registerer: prometheus.DefaultRegisterer}
	for _, opt := range opts {
		opt(&o)
	}
	f := promauto.With(o.registerer)

	return &Observer{
		roundLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "round_duration_seconds",
			Help:      "Duration of one generate and evaluate round.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"generation"}),
		evaluated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluated_total",
			Help:      "Model outputs evaluated.",
		}, []string{"generation"}),
		compiled: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compiled_total",
			Help:      "Model outputs that produced features.",
		}, []string{"generation"}),
		feeds: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feeds_total",
			Help:      "Expanded feeds by terminal state.",
		}, []string{"state"}),
		feedRounds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "feed_rounds",
			Help:      "Rounds needed per feed.",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		}),
		feedLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "feed_duration_seconds",
			Help:      "Duration of one feed expansion.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 14),
		}),
		accepted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "accepted_total",
			Help:      "Selected candidates by whether the record store inserted them.",
		}, []string{"inserted"}),
		bestScore: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_accepted_score",
			Help:      "Score of the last selected candidate.",
		}),
		checkpoints: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkpoints_total",
			Help:      "Checkpoint writes by status.",
		}, []string{"status"}),
		ckptLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "checkpoint_duration_seconds",
			Help:      "Checkpoint write latency.",
			Buckets:   prometheus.DefBuckets,
		}),
		queueDepth: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_depth",
			Help:      "Feeds waiting in the queue.",
		}),
		targets: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "targets_started_total",
			Help:      "Targets the search advanced to.",
		}),
		target: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "current_target",
			Help:      "Set to 1 for the target being searched.",
		}, []string{"name"}),
	}
}

// OnRound implements engine.MetricsObserver.
func (o *Observer) OnRound(gen, evaluated, compiled int, d time.Duration) {
	g := strconv.Itoa(gen)
	o.roundLatency.WithLabelValues(g).Observe(d.Seconds())
	o.evaluated.WithLabelValues(g).Add(float64(evaluated))
	o.compiled.WithLabelValues(g).Add(float64(compiled))
}

// OnFeed implements engine.MetricsObserver.
func (o *Observer) OnFeed(_ int, state queue.State, rounds int, d time.Duration) {
	o.feeds.WithLabelValues(state.String()).Inc()
	o.feedRounds.Observe(float64(rounds))
	o.feedLatency.Observe(d.Seconds())
}

// OnAccepted implements engine.MetricsObserver.
func (o *Observer) OnAccepted(_ int, score float64, inserted bool) {
	o.accepted.WithLabelValues(strconv.FormatBool(inserted)).Inc()
	o.bestScore.Set(score)
}

// OnCheckpoint implements engine.MetricsObserver.
func (o *Observer) OnCheckpoint(d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	o.checkpoints.WithLabelValues(status).Inc()
	o.ckptLatency.Observe(d.Seconds())
}

// OnQueueDepth implements engine.MetricsObserver.
func (o *Observer) OnQueueDepth(depth int) {
	o.queueDepth.Set(float64(depth))
}

// OnTarget implements engine.MetricsObserver. Calls are serialized by the engine.
func (o *Observer) OnTarget(name string) {
	if o.current != "" {
		o.target.DeleteLabelValues(o.current)
	}
	o.current = name
	if name == "" {
		return
	}
	o.targets.Inc()
	o.target.WithLabelValues(name).Set(1)
}
