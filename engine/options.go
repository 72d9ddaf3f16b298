package engine

import (
	"context"
	"log/slog"
	"slices"

	"github.com/hupe1980/featsearch/evaluator"
	"github.com/hupe1980/featsearch/persistence"
	"github.com/hupe1980/featsearch/recordstore"
	"github.com/hupe1980/featsearch/resource"
	"github.com/hupe1980/featsearch/sink"
)

// Generator produces one output per input sequence.
type Generator interface {
	GenerateBatch(ctx context.Context, inputs [][]int) ([][]int, error)
}

// Masker turns a feed into one model input. The default returns the feed
// unchanged.
type Masker interface {
	Mask(tokens []int) ([]int, error)
}

// MaskerFunc adapts a function to Masker.
type MaskerFunc func(tokens []int) ([]int, error)

// Mask implements Masker.
func (f MaskerFunc) Mask(tokens []int) ([]int, error) { return f(tokens) }

type identityMasker struct{}

func (identityMasker) Mask(tokens []int) ([]int, error) { return slices.Clone(tokens), nil }

// Option defines a configuration option for the Engine.
type Option func(*Engine)

// WithLogger sets the logger for the engine.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithResourceController sets the controller bounding background sample writes.
func WithResourceController(rc *resource.Controller) Option {
	return func(e *Engine) {
		if rc != nil {
			e.rc = rc
		}
	}
}

// WithMetricsObserver sets the metrics observer for the engine.
func WithMetricsObserver(observer MetricsObserver) Option {
	return func(e *Engine) {
		if observer != nil {
			e.metrics = observer
		}
	}
}

// WithRecordStore sets the store for specs, inputs and accepted candidates.
// The engine closes it on Close.
func WithRecordStore(s recordstore.Store) Option {
	return func(e *Engine) {
		if s != nil {
			e.records = s
		}
	}
}

// WithSampleSink sets the cache receiving every evaluated candidate.
// A sink implementing io.Closer is closed on Close.
func WithSampleSink(s sink.SampleSink) Option {
	return func(e *Engine) {
		if s != nil {
			e.samples = s
		}
	}
}

// WithCheckpointer sets where the search state is written.
func WithCheckpointer(cp *persistence.Checkpointer) Option {
	return func(e *Engine) {
		if cp != nil {
			e.cp = cp
		}
	}
}

// WithMasker sets the feed transformation applied when building a workload.
func WithMasker(m Masker) Option {
	return func(e *Engine) {
		if m != nil {
			e.masker = m
		}
	}
}

// WithValidator rejects outputs before feature extraction.
func WithValidator(v evaluator.Validator) Option {
	return func(e *Engine) {
		e.validator = v
	}
}
