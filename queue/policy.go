package queue

import (
	"container/heap"

	"github.com/hupe1980/featsearch/model"
)

// State is the lifecycle state of a feed.
type State int

const (
	// Queued feeds wait in the queue.
	Queued State = iota
	// Expanding is the state of the popped feed while rounds are generated for it.
	Expanding
	// TerminalAccepted means the expansion produced at least one selected candidate.
	TerminalAccepted
	// TerminalExhausted means the evaluation budget ran out without a selected candidate.
	TerminalExhausted
)

func (s State) String() string {
	switch s {
	case Queued:
		return "queued"
	case Expanding:
		return "expanding"
	case TerminalAccepted:
		return "accepted"
	case TerminalExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Policy decides which candidates are kept and which of them are expanded further.
type Policy struct {
	// MaxDepth is the highest generation a feed may have.
	MaxDepth int
	// Width is the number of candidates kept from the root feed.
	Width int
}

// Improves reports whether c is strictly closer to the target than its feed
// without being an exact match.
func (Policy) Improves(feed model.Feed, c model.Candidate) bool {
	return c.Score > 0 && c.Score < feed.InputScore
}

// Best returns the lowest scoring improving candidate, or nil.
func (p Policy) Best(feed model.Feed, cands []model.Candidate) *model.Candidate {
	var best *model.Candidate
	for i := range cands {
		if !p.Improves(feed, cands[i]) {
			continue
		}
		if best == nil || cands[i].Score < best.Score {
			best = &cands[i]
		}
	}
	return best
}

// Select returns the candidates kept at the end of a feed's expansion.
//
// For the root feed these are the Width lowest scores of the last round. For
// any later generation it is the improving candidate, if one was found.
func (p Policy) Select(feed model.Feed, lastRound []model.Candidate, best *model.Candidate) []model.Candidate {
	if feed.IsRoot() {
		return TopK(lastRound, p.Width)
	}
	if best == nil {
		return nil
	}
	return []model.Candidate{*best}
}

// Branch returns the feed derived from c, or false when c does not improve on
// feed or the derived generation would exceed MaxDepth.
func (p Policy) Branch(feed model.Feed, c model.Candidate) (model.Feed, bool) {
	if !p.Improves(feed, c) || feed.Generation+1 > p.MaxDepth {
		return model.Feed{}, false
	}
	return model.NewFeed(c.Tokens, c.Features, c.Score, feed.Generation+1), true
}

// Outcome returns the terminal state of an expansion that selected the given candidates.
func (Policy) Outcome(selected []model.Candidate) State {
	if len(selected) == 0 {
		return TerminalExhausted
	}
	return TerminalAccepted
}

// TopK returns the k lowest scoring candidates in ascending score order.
func TopK(cands []model.Candidate, k int) []model.Candidate {
	if k <= 0 || len(cands) == 0 {
		return nil
	}

	pq := &PriorityQueue{Items: make([]*PriorityQueueItem, 0, len(cands))}
	for i, c := range cands {
		pq.Items = append(pq.Items, &PriorityQueueItem{Pos: i, Score: float64(c.Score), Index: i})
	}
	heap.Init(pq)

	if k > len(cands) {
		k = len(cands)
	}
	out := make([]model.Candidate, 0, k)
	for len(out) < k {
		item, _ := heap.Pop(pq).(*PriorityQueueItem)
		out = append(out, cands[item.Pos])
	}
	return out
}
