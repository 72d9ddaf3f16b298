package queue

import (
	"container/heap"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/featsearch/model"
)

func cand(feed model.Feed, score float64, tokens ...int) model.Candidate {
	return model.Candidate{
		Feed:     feed,
		Tokens:   tokens,
		Features: model.Features{"F2": score},
		Score:    model.Score(score),
	}
}

func TestPriorityQueue(t *testing.T) {
	pq := &PriorityQueue{}
	heap.Push(pq, &PriorityQueueItem{Pos: 0, Score: 0.9})
	heap.Push(pq, &PriorityQueueItem{Pos: 1, Score: 0.4})
	heap.Push(pq, &PriorityQueueItem{Pos: 2, Score: 1.2})
	heap.Push(pq, &PriorityQueueItem{Pos: 3, Score: 0.4})

	var order []int
	for pq.Len() > 0 {
		order = append(order, heap.Pop(pq).(*PriorityQueueItem).Pos)
	}
	assert.Equal(t, []int{1, 3, 0, 2}, order)
}

func TestQueueFIFO(t *testing.T) {
	a := model.NewRootFeed([]int{1}, nil)
	b := model.NewFeed([]int{2}, nil, 0.5, 1)
	c := model.NewFeed([]int{3}, nil, 0.3, 2)

	q := New(a, b)
	q.Push(c)
	require.Equal(t, 3, q.Len())

	head, ok := q.Peek()
	require.True(t, ok)
	assert.True(t, head.Equal(a))

	got, ok := q.Pop()
	require.True(t, ok)
	assert.True(t, got.Equal(a))

	q.PushFront(got)
	assert.Equal(t, []model.Score{model.Inf, 0.5, 0.3}, q.Scores())

	for _, want := range []model.Feed{a, b, c} {
		got, ok := q.Pop()
		require.True(t, ok)
		assert.True(t, got.Equal(want))
	}
	_, ok = q.Pop()
	assert.False(t, ok)
}

func TestQueueSnapshotIsCopy(t *testing.T) {
	q := New(model.NewRootFeed([]int{1}, nil))
	snap := q.Snapshot()
	q.Push(model.NewFeed([]int{2}, nil, 1, 1))
	assert.Len(t, snap, 1)

	other := &Queue{}
	other.Restore(q.Snapshot())
	assert.Equal(t, q.Snapshot(), other.Snapshot())
}

func TestPolicyRootSelectsTopWidth(t *testing.T) {
	p := Policy{MaxDepth: 2, Width: 2}
	root := model.NewRootFeed([]int{7}, nil)
	round := []model.Candidate{cand(root, 0.9, 1), cand(root, 0.4, 2), cand(root, 1.2, 3)}

	best := p.Best(root, round)
	require.NotNil(t, best)
	assert.Equal(t, model.Score(0.4), best.Score)

	selected := p.Select(root, round, best)
	require.Len(t, selected, 2)
	assert.Equal(t, model.Score(0.4), selected[0].Score)
	assert.Equal(t, model.Score(0.9), selected[1].Score)

	for _, c := range selected {
		next, ok := p.Branch(root, c)
		require.True(t, ok)
		assert.Equal(t, 1, next.Generation)
		assert.Equal(t, c.Score, next.InputScore)
		assert.Equal(t, c.Tokens, next.InputTokens)
	}
	assert.Equal(t, TerminalAccepted, p.Outcome(selected))
}

func TestPolicyLaterGenerationKeepsBest(t *testing.T) {
	p := Policy{MaxDepth: 3, Width: 4}
	feed := model.NewFeed([]int{1}, nil, 0.5, 1)
	round := []model.Candidate{cand(feed, 0.7, 1), cand(feed, 0.3, 2), cand(feed, 0.2, 3)}

	best := p.Best(feed, round)
	require.NotNil(t, best)
	assert.Equal(t, model.Score(0.2), best.Score)
	assert.Equal(t, []model.Candidate{*best}, p.Select(feed, round, best))

	assert.Nil(t, p.Select(feed, round, nil))
	assert.Equal(t, TerminalExhausted, p.Outcome(nil))
}

func TestPolicyImproves(t *testing.T) {
	p := Policy{MaxDepth: 1}
	feed := model.NewFeed(nil, nil, 0.5, 0)

	assert.True(t, p.Improves(feed, cand(feed, 0.4)))
	assert.False(t, p.Improves(feed, cand(feed, 0.5)))
	assert.False(t, p.Improves(feed, cand(feed, 0)))
	assert.False(t, p.Improves(feed, cand(feed, 0.6)))
	assert.True(t, p.Improves(model.NewRootFeed(nil, nil), cand(feed, 1e9)))
}

func TestPolicyBranchDepth(t *testing.T) {
	p := Policy{MaxDepth: 2, Width: 1}

	below := model.NewFeed([]int{1}, nil, 0.5, 1)
	_, ok := p.Branch(below, cand(below, 0.25, 9))
	assert.True(t, ok, "g < maxDepth branches")

	at := model.NewFeed([]int{1}, nil, 0.5, 2)
	_, ok = p.Branch(at, cand(at, 0.25, 9))
	assert.False(t, ok, "g == maxDepth does not branch")

	_, ok = p.Branch(below, cand(below, 0.75, 9))
	assert.False(t, ok, "worse candidates never branch")
}

func TestTopK(t *testing.T) {
	root := model.NewRootFeed(nil, nil)
	round := []model.Candidate{cand(root, 0.5, 1), cand(root, 0.5, 2), cand(root, 0.1, 3)}

	got := TopK(round, 10)
	require.Len(t, got, 3)
	assert.Equal(t, []int{3}, got[0].Tokens)
	assert.Equal(t, []int{1}, got[1].Tokens)
	assert.Equal(t, []int{2}, got[2].Tokens)

	assert.Nil(t, TopK(round, 0))
	assert.Nil(t, TopK(nil, 3))
}

func TestDedup(t *testing.T) {
	d := NewDedup()
	assert.True(t, d.Add([]int{1, 2, 3}))
	assert.False(t, d.Add([]int{1, 2, 3}))
	assert.True(t, d.Add([]int{3, 2, 1}))
	assert.Equal(t, 2, d.Len())
}

func TestUnique(t *testing.T) {
	root := model.NewRootFeed([]int{9}, nil)
	round := []model.Candidate{
		cand(root, 0.4, 4),
		cand(root, 0.4, 4),
		cand(root, 0.9, 9),
		cand(root, 0.4, 4),
	}

	got := Unique(round)
	require.Len(t, got, 2)
	assert.Equal(t, []int{4}, got[0].Tokens)
	assert.Equal(t, []int{9}, got[1].Tokens)
	assert.Len(t, round, 4)

	p := Policy{Width: 2}
	sel := p.Select(root, got, nil)
	require.Len(t, sel, 2)
	assert.Equal(t, model.Score(0.4), sel[0].Score)
	assert.Equal(t, model.Score(0.9), sel[1].Score)

	assert.Empty(t, Unique(nil))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "queued", Queued.String())
	assert.Equal(t, "expanding", Expanding.String())
	assert.Equal(t, "accepted", TerminalAccepted.String())
	assert.Equal(t, "exhausted", TerminalExhausted.String())
	assert.Equal(t, "unknown", State(42).String())
}
