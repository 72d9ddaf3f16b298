package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/hupe1980/featsearch/model"
	"github.com/hupe1980/featsearch/monitor"
	"github.com/hupe1980/featsearch/queue"
	"github.com/hupe1980/featsearch/recordstore"
	"github.com/hupe1980/featsearch/resource"
)

// Result is the outcome of one Run.
type Result struct {
	// Target is the name of the target searched for.
	Target string
	// Input is the root input of the queue when the Run started.
	Input []int
	// Accepted holds the selected candidates in selection order, each once.
	Accepted []model.Candidate
	// Interrupted is set when the context was canceled during the Run.
	Interrupted bool
	// Err is the failure that ended the Run, if any.
	Err error
}

// Run searches the current target until the feed queue drains. See the
// package documentation for the interruption and failure contract.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, ErrClosed
	}
	tgt := e.targets.Current()
	if tgt == nil {
		return nil, ErrTargetsExhausted
	}
	if e.interrupted {
		e.interrupted = false
		return nil, ErrInterrupted
	}
	if e.failure != nil {
		return nil, e.failure
	}

	if err := e.initQueue(ctx); err != nil {
		return nil, fmt.Errorf("engine: init queue: %w", err)
	}

	head, _ := e.queue.Peek()
	res := &Result{Target: tgt.Name, Input: slices.Clone(head.InputTokens)}
	dedup := queue.NewDedup()

	for e.queue.Len() > 0 {
		if ctx.Err() != nil {
			return e.interrupt(res, nil)
		}

		feed, _ := e.queue.Pop()
		if e.skipFirst {
			e.skipFirst = false
			if next, ok := e.queue.Pop(); ok {
				e.logger.Info("skipping first queued feed", "score", float64(feed.InputScore), "generation", feed.Generation)
				feed = next
			}
		}
		e.metrics.OnQueueDepth(e.queue.Len())

		exp, err := e.expand(ctx, feed, *tgt)
		if err != nil {
			if ctx.Err() != nil {
				return e.interrupt(res, &feed)
			}
			return e.fail(res, err)
		}
		if err := e.complete(ctx, feed, exp, *tgt, dedup, res); err != nil {
			return e.fail(res, err)
		}
	}

	if err := e.saveCheckpoint(ctx); err != nil {
		return e.fail(res, err)
	}
	next, err := e.targets.Advance(context.WithoutCancel(ctx))
	if err != nil {
		return e.fail(res, err)
	}
	name := ""
	if next != nil {
		name = next.Name
	}
	e.metrics.OnTarget(name)
	return res, nil
}

func (e *Engine) interrupt(res *Result, feed *model.Feed) (*Result, error) {
	if feed != nil {
		e.queue.PushFront(*feed)
	}
	e.interrupted = true
	res.Interrupted = true
	e.logger.Warn("search interrupted", "queue", e.queue.Len(), "accepted", len(res.Accepted))
	return res, nil
}

func (e *Engine) fail(res *Result, err error) (*Result, error) {
	e.failure = err
	res.Err = err
	e.logger.Error("search failed", "error", err, "accepted", len(res.Accepted))
	return res, err
}

// initQueue seeds an empty queue with the next corpus item as root feed.
func (e *Engine) initQueue(ctx context.Context) error {
	if e.queue.Len() == 0 {
		restarts := e.cursor.Restarts()
		item, err := e.cursor.Next()
		if err != nil {
			return err
		}
		if e.cursor.Restarts() > restarts {
			e.logger.Info("corpus exhausted, restarting", "restarts", e.cursor.Restarts())
		}

		text, err := e.tokenizer.Decode(item.Tokens, true)
		if err != nil {
			return fmt.Errorf("decode input %s: %w", item.Name, err)
		}
		feats, err := e.extractor.Extract(ctx, text, e.cfg.FeatureSpace)
		if err != nil {
			return fmt.Errorf("extract input %s: %w", item.Name, err)
		}

		e.queue.Push(model.NewRootFeed(item.Tokens, feats))
		if _, err := e.records.InsertInput(ctx, recordstore.InputRecord{
			Input:     text,
			Tokens:    item.Tokens,
			Features:  feats,
			NumTokens: len(item.Tokens),
			Added:     time.Now().UTC(),
		}); err != nil {
			return fmt.Errorf("record input: %w", err)
		}
		if err := e.saveCheckpoint(ctx); err != nil {
			return err
		}
	}
	e.logger.Info("feed queue input scores", "scores", e.queue.Scores())
	return nil
}

type expansion struct {
	lastRound []model.Candidate
	best      *model.Candidate
	stats     GenStats
	rounds    int
	started   time.Time
}

// expand runs generation rounds for feed until a candidate improves on it or
// MaxEvaluatedPerFeed outputs were evaluated. Cancellation of ctx is only
// observed between rounds; a started round always generates and evaluates
// all of its outputs. Sample writes of round N run in the background and are
// joined before round N+1 is written and before expand returns.
func (e *Engine) expand(ctx context.Context, feed model.Feed, tgt model.Target) (expansion, error) {
	exp := expansion{started: time.Now()}
	units := e.cfg.initialUnits()
	rctx := context.WithoutCancel(ctx)
	var job *resource.Job

	e.logger.Info("expanding feed", "score", float64(feed.InputScore), "generation", feed.Generation)

	for exp.best == nil && exp.stats.Total < e.cfg.MaxEvaluatedPerFeed {
		if err := ctx.Err(); err != nil {
			return exp, errors.Join(err, job.Wait())
		}

		start := time.Now()
		raws, err := e.generate(rctx, feed, units)
		elapsed := time.Since(start)
		if err != nil {
			return exp, errors.Join(err, job.Wait())
		}

		batch, err := e.eval.EvaluateAll(rctx, raws, feed, tgt, e.cfg.Workers)
		if err != nil {
			return exp, errors.Join(err, job.Wait())
		}

		unique := queue.Unique(batch.Candidates)
		exp.rounds++
		exp.lastRound = unique
		exp.best = e.policy.Best(feed, unique)
		exp.stats.Compiled += batch.Compiled
		exp.stats.Total += batch.Total
		exp.stats.ExecTime += elapsed
		e.registerRound(feed, batch.Candidates, exp.best)
		e.metrics.OnRound(feed.Generation, batch.Total, batch.Compiled, time.Since(start))

		if err := job.Wait(); err != nil {
			return exp, fmt.Errorf("engine: write samples: %w", err)
		}
		job, err = e.writeSamples(ctx, batch.Candidates)
		if err != nil {
			return exp, fmt.Errorf("engine: write samples: %w", err)
		}

		if exp.best != nil && !feed.IsRoot() {
			e.logger.Info("improved score",
				"from", float64(feed.InputScore),
				"to", float64(exp.best.Score),
				"iterations", exp.rounds-1)
		}
		units = nextUnits(units, e.cfg.ActiveLimitPerFeed, e.cfg.SampleBatchSize, batch.Compiled, exp.stats)
	}

	if err := job.Wait(); err != nil {
		return exp, fmt.Errorf("engine: write samples: %w", err)
	}
	return exp, nil
}

// nextUnits returns the number of generator calls for the next round: the
// candidates still needed, in batches, scaled up by the feed's compile rate.
// It keeps prev when the round or the feed has nothing compiled yet.
func nextUnits(prev, limit, batchSize, roundCompiled int, s GenStats) int {
	if roundCompiled == 0 || s.Compiled == 0 || s.Total == 0 {
		return prev
	}
	needed := (limit - roundCompiled) / batchSize
	return max(2, int(float64(needed)/s.CompileRate()))
}

// generate requests units batches built from feed on the worker pool.
func (e *Engine) generate(ctx context.Context, feed model.Feed, units int) ([][]int, error) {
	inputs, err := e.collate(feed.InputTokens, units)
	if err != nil {
		return nil, err
	}

	outs := make([][][]int, units)
	errs := make([]error, units)
	if err := e.pool.Run(ctx, units, func(i int) {
		defer func() {
			if r := recover(); r != nil {
				errs[i] = fmt.Errorf("engine: generator panicked: %v", r)
			}
		}()
		out, err := e.gen.GenerateBatch(ctx, inputs[i])
		if err == nil && len(out) != len(inputs[i]) {
			err = fmt.Errorf("%w: %d inputs, %d outputs", ErrBatchMismatch, len(inputs[i]), len(out))
		}
		outs[i], errs[i] = out, err
	}); err != nil {
		return nil, err
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("engine: generate: %w", err)
	}

	var raws [][]int
	for _, o := range outs {
		raws = append(raws, o...)
	}
	return raws, nil
}

// collate builds units batches of SampleBatchSize inputs. Each masked copy of
// the feed is repeated BatchSizePerFeed times.
func (e *Engine) collate(feed []int, units int) ([][][]int, error) {
	size := e.cfg.SampleBatchSize
	perFeed := min(e.cfg.BatchSizePerFeed, size)

	out := make([][][]int, units)
	for u := range out {
		batch := make([][]int, 0, size)
		for len(batch) < size {
			masked, err := e.masker.Mask(feed)
			if err != nil {
				return nil, fmt.Errorf("engine: mask feed: %w", err)
			}
			for j := 0; j < perFeed && len(batch) < size; j++ {
				batch = append(batch, slices.Clone(masked))
			}
		}
		out[u] = batch
	}
	return out, nil
}

// writeSamples hands the round's candidates to a background job. The job
// outlives cancellation of ctx so an interrupt never loses a written round.
func (e *Engine) writeSamples(ctx context.Context, cands []model.Candidate) (*resource.Job, error) {
	if len(cands) == 0 {
		return nil, nil
	}
	size := sampleBytes(cands)
	return e.rc.Go(context.WithoutCancel(ctx), size, func(ctx context.Context) error {
		if err := e.rc.AcquireIO(ctx, int(size)); err != nil {
			return err
		}
		return e.samples.WriteSamples(ctx, cands)
	})
}

func sampleBytes(cands []model.Candidate) int64 {
	var n int64
	for _, c := range cands {
		n += int64(8*len(c.Tokens)) + int64(16*len(c.Features))
	}
	return n
}

func (e *Engine) registerRound(feed model.Feed, cands []model.Candidate, best *model.Candidate) {
	group := monitor.GenerationGroup(feed.Generation, false)
	for _, c := range cands {
		e.monitors.Features.Register(c.Features, group, "")
	}
	if best != nil {
		e.monitors.Features.Register(best.Features,
			monitor.GenerationGroup(feed.Generation, true),
			strconv.FormatFloat(float64(best.Score), 'g', -1, 64))
	}
}

// complete applies the acceptance policy to a finished expansion, records the
// selected candidates, queues their branches and checkpoints. Cancellation of
// ctx is ignored from here on so a feed is either fully completed or retried.
func (e *Engine) complete(ctx context.Context, feed model.Feed, exp expansion, tgt model.Target, dedup *queue.Dedup, res *Result) error {
	ctx = context.WithoutCancel(ctx)
	gen := feed.Generation

	s := e.stats[gen]
	s.Compiled += exp.stats.Compiled
	s.Total += exp.stats.Total
	s.ExecTime += exp.stats.ExecTime
	e.stats[gen] = s
	if s.Total > 0 {
		e.monitors.CompRate.Register(gen, s.CompileRate())
		e.monitors.ExecTime.Register(gen, s.ExecTime.Seconds()/float64(s.Total))
	}

	selected := e.policy.Select(feed, exp.lastRound, exp.best)
	state := e.policy.Outcome(selected)

	scores := make([]float64, len(selected))
	for i, c := range selected {
		scores[i] = float64(c.Score)
	}
	switch {
	case feed.IsRoot():
		e.logger.Info("starting scores", "scores", scores)
	case len(selected) == 0:
		e.logger.Warn("no better candidate found", "generation", gen, "evaluated", exp.stats.Total)
	}
	if len(selected) > 0 {
		e.monitors.Candidates.Register(strconv.Itoa(gen), scores...)
		e.monitors.BestScore.Register(slices.Min(scores))
	}

	for _, c := range selected {
		if !dedup.Add(c.Tokens) {
			continue
		}
		res.Accepted = append(res.Accepted, c)
		if next, ok := e.policy.Branch(feed, c); ok {
			e.queue.Push(next)
		}
		inserted, err := e.recordAccepted(ctx, c, tgt)
		if err != nil {
			return err
		}
		e.metrics.OnAccepted(gen, float64(c.Score), inserted)
	}

	e.metrics.OnFeed(gen, state, exp.rounds, time.Since(exp.started))
	e.logger.Debug("feed complete", "generation", gen, "state", state.String(), "rounds", exp.rounds, "queue", e.queue.Len())
	return e.saveCheckpoint(ctx)
}

func (e *Engine) recordAccepted(ctx context.Context, c model.Candidate, tgt model.Target) (bool, error) {
	input, err := e.tokenizer.Decode(c.Feed.InputTokens, true)
	if err != nil {
		return false, fmt.Errorf("engine: decode feed: %w", err)
	}
	sample, err := e.tokenizer.Decode(c.Tokens, true)
	if err != nil {
		return false, fmt.Errorf("engine: decode sample: %w", err)
	}
	inserted, err := e.records.InsertAccepted(ctx, recordstore.AcceptedRecord{
		Input:          input,
		InputTokens:    c.Feed.InputTokens,
		InputFeatures:  c.Feed.InputFeatures,
		Sample:         sample,
		SampleTokens:   c.Tokens,
		NumTokens:      len(c.Tokens),
		SampleFeatures: c.Features,
		Score:          float64(c.Score),
		TargetName:     tgt.Name,
		TargetSource:   tgt.Source,
		TargetFeatures: tgt.Features,
		CompileStatus:  true,
		Generation:     c.Feed.Generation,
		Added:          time.Now().UTC(),
	})
	if err != nil {
		return false, fmt.Errorf("engine: record accepted: %w", err)
	}
	return inserted, nil
}
