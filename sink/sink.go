// Package sink receives every evaluated candidate of a search.
//
// The sample cache is append-only and write-behind: the engine hands each
// round's candidates to a background job and joins it before the next
// round's write starts.
package sink

import (
	"context"
	"sync"

	"github.com/hupe1980/featsearch/model"
)

// SampleSink stores evaluated candidates.
type SampleSink interface {
	WriteSamples(ctx context.Context, samples []model.Candidate) error
}

// Decoder renders tokens as text.
type Decoder interface {
	Decode(tokens []int, ignorePad bool) (string, error)
}

// Discard drops all samples.
type Discard struct{}

// WriteSamples implements SampleSink.
func (Discard) WriteSamples(context.Context, []model.Candidate) error { return nil }

// Memory keeps samples in memory.
type Memory struct {
	mu      sync.Mutex
	samples []model.Candidate
	writes  int
}

// NewMemory returns an empty sink.
func NewMemory() *Memory { return &Memory{} }

// WriteSamples implements SampleSink.
func (m *Memory) WriteSamples(_ context.Context, samples []model.Candidate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples = append(m.samples, samples...)
	m.writes++
	return nil
}

// Samples returns a copy of everything written so far.
func (m *Memory) Samples() []model.Candidate {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Candidate, len(m.samples))
	copy(out, m.samples)
	return out
}

// Writes returns the number of WriteSamples calls.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
