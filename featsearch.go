package featsearch

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/featsearch/blobstore"
	"github.com/hupe1980/featsearch/codec"
	"github.com/hupe1980/featsearch/corpus"
	"github.com/hupe1980/featsearch/engine"
	"github.com/hupe1980/featsearch/evaluator"
	"github.com/hupe1980/featsearch/persistence"
	"github.com/hupe1980/featsearch/resource"
	"github.com/hupe1980/featsearch/target"
)

// Config holds the search parameters.
type Config = engine.Config

// Result is the outcome of one Run.
type Result = engine.Result

// Searcher runs a search over a list of targets.
type Searcher struct {
	engine *engine.Engine
	store  blobstore.BlobStore
	logger *Logger
}

// locker is implemented by stores that can be reserved for a single writer.
type locker interface {
	Lock() error
}

// Open restores or starts a search. The target list is loaded once through
// loader; later opens against the same BlobStore resume the persisted list.
func Open(ctx context.Context, cfg Config, gen engine.Generator, tok evaluator.Tokenizer, ext evaluator.Extractor, loader target.Loader, src corpus.Source, opts ...Option) (*Searcher, error) {
	o := options{
		store:            blobstore.NewMemoryStore(),
		codec:            codec.Default,
		compression:      codec.None{},
		metricsCollector: &NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	if l, ok := o.store.(locker); ok {
		if err := l.Lock(); err != nil {
			return nil, fmt.Errorf("featsearch: lock state: %w", err)
		}
	}
	s, err := open(ctx, cfg, gen, tok, ext, loader, src, o)
	if err != nil {
		_ = closeStore(o.store)
		return nil, err
	}
	return s, nil
}

func open(ctx context.Context, cfg Config, gen engine.Generator, tok evaluator.Tokenizer, ext evaluator.Extractor, loader target.Loader, src corpus.Source, o options) (*Searcher, error) {
	cp := persistence.NewCheckpointer(o.store,
		persistence.WithCodec(o.codec),
		persistence.WithCompression(o.compression),
	)

	targetOpts := []target.Option{target.WithLogger(o.logger.Logger)}
	if o.splitter != nil {
		targetOpts = append(targetOpts, target.WithSplitter(o.splitter))
	}
	targets, err := target.Open(ctx, cp, loader, ext, cfg.FeatureSpace, targetOpts...)
	if err != nil {
		o.logger.LogRecovery(ctx, 0, err)
		return nil, translateError(err, "")
	}

	engineOpts := []engine.Option{
		engine.WithLogger(o.logger.Logger),
		engine.WithCheckpointer(cp),
		engine.WithMetricsObserver(o.metricsCollector),
		engine.WithRecordStore(o.records),
		engine.WithSampleSink(o.samples),
		engine.WithMasker(o.masker),
	}
	if o.validator != nil {
		engineOpts = append(engineOpts, engine.WithValidator(o.validator))
	}
	if o.resources != nil {
		engineOpts = append(engineOpts, engine.WithResourceController(resource.NewController(*o.resources)))
	}

	e, err := engine.New(ctx, cfg, gen, tok, ext, targets, src, engineOpts...)
	if err != nil {
		o.logger.LogRecovery(ctx, 0, err)
		return nil, translateError(err, targets.Position().Current)
	}

	o.logger.LogRecovery(ctx, len(e.Queue()), nil)
	pos := targets.Position()
	o.logger.LogTarget(ctx, pos.Current, pos.Remaining)

	return &Searcher{engine: e, store: o.store, logger: o.logger}, nil
}

func closeStore(st blobstore.BlobStore) error {
	if c, ok := st.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Target returns the name of the current target, or "" once exhausted.
func (s *Searcher) Target() string {
	return s.engine.Targets().Position().Current
}

// Engine returns the underlying engine.
func (s *Searcher) Engine() *engine.Engine { return s.engine }

// Run searches the current target. See engine.Engine.Run.
func (s *Searcher) Run(ctx context.Context) (*Result, error) {
	name := s.Target()
	res, err := s.engine.Run(ctx)
	if res != nil {
		s.logger.LogFeed(ctx, res.Target, len(res.Accepted), res.Interrupted, err)
	}
	if err != nil {
		return res, translateError(err, name)
	}
	if !res.Interrupted {
		s.logger.LogCheckpoint(ctx, engine.StateBlob, nil)
		pos := s.engine.Targets().Position()
		s.logger.LogTarget(ctx, pos.Current, pos.Remaining)
	}
	return res, nil
}

// RunAll runs until every target was searched. It stops early when ctx is
// canceled and returns the results collected so far.
func (s *Searcher) RunAll(ctx context.Context) ([]*Result, error) {
	var results []*Result
	for {
		res, err := s.Run(ctx)
		if res != nil {
			results = append(results, res)
		}
		switch {
		case errors.Is(err, ErrTargetsExhausted):
			return results, nil
		case err != nil:
			return results, err
		case res.Interrupted:
			return results, ctx.Err()
		}
	}
}

// Close releases the engine and its stores.
func (s *Searcher) Close() error {
	return errors.Join(s.engine.Close(), closeStore(s.store))
}
