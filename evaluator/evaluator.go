package evaluator

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/featsearch/distance"
	"github.com/hupe1980/featsearch/model"
)

// Tokenizer converts between token ids and text.
type Tokenizer interface {
	Encode(text string) ([]int, error)
	// Decode renders tokens as text. Padding tokens are dropped when ignorePad is set.
	Decode(tokens []int, ignorePad bool) (string, error)
}

// Validator rejects decoded text before feature extraction, e.g. by compiling it.
type Validator interface {
	Validate(ctx context.Context, text string) error
}

// Extractor computes the feature vector of a program in a feature space.
type Extractor interface {
	Extract(ctx context.Context, text, space string) (model.Features, error)
}

// Evaluator scores raw outputs. It holds no per-call state and is safe for concurrent use.
type Evaluator struct {
	tokenizer Tokenizer
	extractor Extractor
	validator Validator
	space     string
	logger    *slog.Logger
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithValidator runs v on every decoded output before extraction.
func WithValidator(v Validator) Option {
	return func(e *Evaluator) { e.validator = v }
}

// WithLogger sets the logger used for discarded outputs.
func WithLogger(l *slog.Logger) Option {
	return func(e *Evaluator) { e.logger = l }
}

// New returns an evaluator scoring in the given feature space.
func New(tok Tokenizer, ext Extractor, space string, opts ...Option) *Evaluator {
	e := &Evaluator{
		tokenizer: tok,
		extractor: ext,
		space:     space,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Space returns the feature space candidates are scored in.
func (e *Evaluator) Space() string { return e.space }

// Evaluate scores one raw output of feed against target.
// It returns nil when the output cannot be decoded, validated, extracted or
// scored, or when a feature value or the score is not finite.
func (e *Evaluator) Evaluate(ctx context.Context, raw []int, feed model.Feed, target model.Target) (c *model.Candidate) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Debug("evaluation panicked", "panic", fmt.Sprint(r))
			c = nil
		}
	}()

	text, err := e.tokenizer.Decode(raw, true)
	if err != nil {
		e.logger.Debug("decode failed", "error", err)
		return nil
	}

	if e.validator != nil {
		if err := e.validator.Validate(ctx, text); err != nil {
			return nil
		}
	}

	feats, err := e.extractor.Extract(ctx, text, e.space)
	if err != nil || len(feats) == 0 {
		return nil
	}
	for name, v := range feats {
		if !finite(v) {
			e.logger.Debug("non-finite feature", "feature", name, "value", v)
			return nil
		}
	}

	score, err := distance.Features(feats, target.Features, e.space)
	if err != nil {
		e.logger.Debug("distance failed", "error", err)
		return nil
	}
	if !finite(score) {
		return nil
	}

	tokens := make([]int, len(raw))
	copy(tokens, raw)

	return &model.Candidate{
		Feed:     feed,
		Tokens:   tokens,
		Features: feats,
		Score:    model.Score(score),
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Batch is the outcome of evaluating one generation round.
type Batch struct {
	// Candidates holds the surviving outputs in generation order.
	Candidates []model.Candidate
	// Compiled is len(Candidates).
	Compiled int
	// Total is the number of raw outputs evaluated.
	Total int
}

// EvaluateAll evaluates raws with at most workers concurrent evaluations.
// A non-positive workers value uses GOMAXPROCS. The only error returned is the
// context error when ctx is canceled before every output was evaluated.
func (e *Evaluator) EvaluateAll(ctx context.Context, raws [][]int, feed model.Feed, target model.Target, workers int) (Batch, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]*model.Candidate, len(raws))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, raw := range raws {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.Evaluate(gctx, raw, feed, target)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Batch{}, err
	}
	if err := ctx.Err(); err != nil {
		return Batch{}, err
	}

	b := Batch{Total: len(raws)}
	for _, c := range results {
		if c != nil {
			b.Candidates = append(b.Candidates, *c)
		}
	}
	b.Compiled = len(b.Candidates)
	return b, nil
}
