package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/hupe1980/featsearch/blobstore"
	"github.com/hupe1980/featsearch/corpus"
	"github.com/hupe1980/featsearch/evaluator"
	"github.com/hupe1980/featsearch/model"
	"github.com/hupe1980/featsearch/monitor"
	"github.com/hupe1980/featsearch/persistence"
	"github.com/hupe1980/featsearch/queue"
	"github.com/hupe1980/featsearch/recordstore"
	"github.com/hupe1980/featsearch/resource"
	"github.com/hupe1980/featsearch/sink"
	"github.com/hupe1980/featsearch/target"
)

// Engine runs the search. Run calls are serialized.
type Engine struct {
	mu sync.Mutex

	cfg    Config
	policy queue.Policy

	gen       Generator
	tokenizer evaluator.Tokenizer
	extractor evaluator.Extractor
	validator evaluator.Validator
	eval      *evaluator.Evaluator
	masker    Masker
	targets   *target.Set
	cursor    *corpus.Cursor

	records recordstore.Store
	samples sink.SampleSink
	cp      *persistence.Checkpointer
	rc      *resource.Controller
	pool    *WorkerPool

	queue    *queue.Queue
	monitors *monitor.Set
	stats    map[int]GenStats

	skipFirst   bool
	interrupted bool
	failure     error
	closed      bool

	metrics MetricsObserver
	logger  *slog.Logger
}

// New creates an engine and restores the search checkpoint, if one exists.
// The run parameters are recorded in the record store.
func New(ctx context.Context, cfg Config, gen Generator, tok evaluator.Tokenizer, ext evaluator.Extractor, targets *target.Set, src corpus.Source, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if gen == nil || tok == nil || ext == nil || targets == nil || src == nil {
		return nil, fmt.Errorf("%w: generator, tokenizer, extractor, targets and corpus are required", ErrInvalidConfig)
	}
	cfg = cfg.withDefaults()

	e := &Engine{
		cfg:       cfg,
		policy:    queue.Policy{MaxDepth: cfg.ActiveSearchDepth, Width: cfg.ActiveSearchWidth},
		gen:       gen,
		tokenizer: tok,
		extractor: ext,
		masker:    identityMasker{},
		targets:   targets,
		cursor:    corpus.NewCursor(src),
		records:   recordstore.NewMemory(),
		samples:   sink.Discard{},
		cp:        persistence.NewCheckpointer(blobstore.NewMemoryStore()),
		queue:     queue.New(),
		monitors:  monitor.NewSet(),
		stats:     make(map[int]GenStats),
		skipFirst: cfg.SkipFirstQueue,
		metrics:   &NoopMetricsObserver{},
		logger:    slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.rc == nil {
		e.rc = resource.NewController(resource.Config{
			MaxBackgroundWorkers: 1,
		})
	}

	evalOpts := []evaluator.Option{evaluator.WithLogger(e.logger)}
	if e.validator != nil {
		evalOpts = append(evalOpts, evaluator.WithValidator(e.validator))
	}
	e.eval = evaluator.New(tok, ext, cfg.FeatureSpace, evalOpts...)

	restored, err := e.loadCheckpoint(ctx)
	if err != nil {
		return nil, fmt.Errorf("engine: restore checkpoint: %w", err)
	}
	if restored {
		e.logger.Info("restored search state", "queue", e.queue.Len(), "corpus_consumed", e.cursor.Consumed())
	}

	if _, err := e.records.InsertSpec(ctx, recordstore.SpecRecord{
		LimitPerFeed: cfg.ActiveLimitPerFeed,
		SearchDepth:  cfg.ActiveSearchDepth,
		SearchWidth:  cfg.ActiveSearchWidth,
		FeatureSpace: cfg.FeatureSpace,
	}); err != nil {
		return nil, fmt.Errorf("engine: record spec: %w", err)
	}

	e.pool = NewWorkerPool(cfg.GenerateWorkers)
	return e, nil
}

// Config returns the effective configuration.
func (e *Engine) Config() Config { return e.cfg }

// Queue returns a copy of the queued feeds.
func (e *Engine) Queue() []model.Feed {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queue.Snapshot()
}

// Monitors returns the search monitors. They must not be modified while Run is active.
func (e *Engine) Monitors() *monitor.Set { return e.monitors }

// Stats returns a copy of the per-generation statistics.
func (e *Engine) Stats() map[int]GenStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[int]GenStats, len(e.stats))
	for g, s := range e.stats {
		out[g] = s
	}
	return out
}

// Targets returns the target set.
func (e *Engine) Targets() *target.Set { return e.targets }

// Err returns the stored failure, if any.
func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.failure
}

// Close stops the worker pool and closes the record store and the sample sink.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true

	e.pool.Close()

	var errs []error
	if err := e.records.Close(); err != nil {
		errs = append(errs, err)
	}
	if c, ok := e.samples.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
