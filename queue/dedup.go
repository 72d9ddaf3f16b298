package queue

import "github.com/hupe1980/featsearch/model"

// Dedup is an exact content-hash set over token sequences.
type Dedup struct {
	seen map[[32]byte]struct{}
}

// NewDedup returns an empty set.
func NewDedup() *Dedup {
	return &Dedup{seen: make(map[[32]byte]struct{})}
}

// Add records tokens and reports whether they were not seen before.
func (d *Dedup) Add(tokens []int) bool {
	h := model.TokensHash(tokens)
	if _, ok := d.seen[h]; ok {
		return false
	}
	d.seen[h] = struct{}{}
	return true
}

// Len returns the number of distinct sequences seen.
func (d *Dedup) Len() int { return len(d.seen) }

// Unique returns cands with repeated token sequences removed. The first
// occurrence of each sequence is kept and the order is preserved.
func Unique(cands []model.Candidate) []model.Candidate {
	d := NewDedup()
	out := make([]model.Candidate, 0, len(cands))
	for _, c := range cands {
		if d.Add(c.Tokens) {
			out = append(out, c)
		}
	}
	return out
}
