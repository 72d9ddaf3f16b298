package engine

import (
	"context"
	"time"

	"github.com/hupe1980/featsearch/corpus"
	"github.com/hupe1980/featsearch/model"
	"github.com/hupe1980/featsearch/monitor"
	"github.com/hupe1980/featsearch/target"
)

// StateBlob is the blob name of the search checkpoint.
const StateBlob = "search_state"

// GenStats accumulates evaluation statistics of one generation.
type GenStats struct {
	Compiled int           `json:"compiled"`
	Total    int           `json:"total"`
	ExecTime time.Duration `json:"exec_time"`
}

// CompileRate returns Compiled/Total, or 0 before any evaluation.
func (s GenStats) CompileRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Compiled) / float64(s.Total)
}

// SearchState is the checkpoint written after every feed.
type SearchState struct {
	Queue    []model.Feed     `json:"queue"`
	Monitors monitor.Set      `json:"monitors"`
	Stats    map[int]GenStats `json:"stats"`
	Corpus   corpus.State     `json:"corpus"`
	Target   target.Position  `json:"target"`
	Saved    time.Time        `json:"saved"`
}

func (e *Engine) snapshot() (SearchState, error) {
	cs, err := e.cursor.State()
	if err != nil {
		return SearchState{}, err
	}
	stats := make(map[int]GenStats, len(e.stats))
	for g, s := range e.stats {
		stats[g] = s
	}
	return SearchState{
		Queue:    e.queue.Snapshot(),
		Monitors: e.monitors.State(),
		Stats:    stats,
		Corpus:   cs,
		Target:   e.targets.Position(),
		Saved:    time.Now().UTC(),
	}, nil
}

// saveCheckpoint writes the search state. It ignores cancellation so an
// interrupted Run never leaves a partially written state behind.
func (e *Engine) saveCheckpoint(ctx context.Context) error {
	start := time.Now()
	st, err := e.snapshot()
	if err == nil {
		err = e.cp.Save(context.WithoutCancel(ctx), StateBlob, st)
	}
	e.metrics.OnCheckpoint(time.Since(start), err)
	if err != nil {
		return err
	}
	e.logger.Debug("checkpoint saved", "queue", len(st.Queue), "target", st.Target.Current)
	return nil
}

func (e *Engine) loadCheckpoint(ctx context.Context) (bool, error) {
	var st SearchState
	ok, err := e.cp.Load(ctx, StateBlob, &st)
	if err != nil || !ok {
		return false, err
	}
	e.queue.Restore(st.Queue)
	e.monitors.Restore(st.Monitors)
	e.stats = st.Stats
	if e.stats == nil {
		e.stats = make(map[int]GenStats)
	}
	if err := e.cursor.Restore(st.Corpus); err != nil {
		return false, err
	}
	if cur := e.targets.Position().Current; st.Target.Current != "" && st.Target.Current != cur {
		e.logger.Warn("checkpoint target differs from target set", "checkpoint", st.Target.Current, "current", cur)
	}
	return true, nil
}
