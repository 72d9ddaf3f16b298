package testutil

import (
	"math/rand/v2"
	"sync"
)

// RNG is a seeded random source safe for concurrent use. Equal seeds give
// equal sequences.
type RNG struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRNG returns a source seeded with seed.
func NewRNG(seed int64) *RNG {
	return &RNG{r: rand.New(rand.NewPCG(uint64(seed), 0x9e3779b97f4a7c15))}
}

// Float64 returns a number in [0, 1).
func (g *RNG) Float64() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.r.Float64()
}
