// Package queue holds the pending feeds of a search together with the
// acceptance policy that decides which candidates become new feeds.
package queue

import (
	"github.com/hupe1980/featsearch/model"
)

// Queue is a FIFO of feeds awaiting expansion.
//
// Queue is not safe for concurrent use; the engine is its only writer.
type Queue struct {
	feeds []model.Feed
}

// New returns a queue holding the given feeds in order.
func New(feeds ...model.Feed) *Queue {
	q := &Queue{}
	q.Restore(feeds)
	return q
}

// Push appends a feed to the back of the queue.
func (q *Queue) Push(f model.Feed) {
	q.feeds = append(q.feeds, f)
}

// PushFront returns a feed to the head of the queue.
func (q *Queue) PushFront(f model.Feed) {
	q.feeds = append(q.feeds, model.Feed{})
	copy(q.feeds[1:], q.feeds)
	q.feeds[0] = f
}

// Pop removes the head of the queue. The second result is false when the queue is empty.
func (q *Queue) Pop() (model.Feed, bool) {
	if len(q.feeds) == 0 {
		return model.Feed{}, false
	}
	f := q.feeds[0]
	q.feeds[0] = model.Feed{}
	q.feeds = q.feeds[1:]
	return f, true
}

// Peek returns the head without removing it.
func (q *Queue) Peek() (model.Feed, bool) {
	if len(q.feeds) == 0 {
		return model.Feed{}, false
	}
	return q.feeds[0], true
}

// Len returns the number of queued feeds.
func (q *Queue) Len() int { return len(q.feeds) }

// Snapshot returns a copy of the queued feeds in order.
func (q *Queue) Snapshot() []model.Feed {
	out := make([]model.Feed, len(q.feeds))
	copy(out, q.feeds)
	return out
}

// Restore replaces the queue contents with feeds.
func (q *Queue) Restore(feeds []model.Feed) {
	q.feeds = make([]model.Feed, len(feeds))
	copy(q.feeds, feeds)
}

// Scores returns the input score of every queued feed in order.
func (q *Queue) Scores() []model.Score {
	out := make([]model.Score, len(q.feeds))
	for i, f := range q.feeds {
		out[i] = f.InputScore
	}
	return out
}
