package recordstore

import (
	"context"
	"sync"
)

// Memory is an in-memory Store for tests and dry runs.
type Memory struct {
	mu       sync.RWMutex
	specs    map[string]SpecRecord
	inputs   map[string]InputRecord
	accepted map[string]AcceptedRecord
	order    []string
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{
		specs:    make(map[string]SpecRecord),
		inputs:   make(map[string]InputRecord),
		accepted: make(map[string]AcceptedRecord),
	}
}

func insert[T any](mu *sync.RWMutex, m map[string]T, key string, v T) bool {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := m[key]; ok {
		return false
	}
	m[key] = v
	return true
}

// InsertSpec implements Store.
func (m *Memory) InsertSpec(_ context.Context, r SpecRecord) (bool, error) {
	return insert(&m.mu, m.specs, r.SHA256(), r), nil
}

// InsertInput implements Store.
func (m *Memory) InsertInput(_ context.Context, r InputRecord) (bool, error) {
	return insert(&m.mu, m.inputs, r.SHA256(), r), nil
}

// InsertAccepted implements Store.
func (m *Memory) InsertAccepted(_ context.Context, r AcceptedRecord) (bool, error) {
	key := r.SHA256()
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accepted[key]; ok {
		return false, nil
	}
	m.accepted[key] = r
	m.order = append(m.order, key)
	return true, nil
}

// Count implements Store.
func (m *Memory) Count(_ context.Context, t Table) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	switch t {
	case TableSpecs:
		return len(m.specs), nil
	case TableInputs:
		return len(m.inputs), nil
	case TableAccepted:
		return len(m.accepted), nil
	default:
		return 0, ErrUnknownTable
	}
}

// Accepted returns the accepted records in insertion order.
func (m *Memory) Accepted() []AcceptedRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]AcceptedRecord, 0, len(m.order))
	for _, k := range m.order {
		out = append(out, m.accepted[k])
	}
	return out
}

// Close implements Store.
func (m *Memory) Close() error { return nil }
