package model

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"slices"
	"strconv"
)

// Score is a feature distance. It marshals +Inf as the string "inf" so the root
// feed survives a JSON checkpoint.
type Score float64

// Inf is the score of a root feed that was never compared to a target.
var Inf = Score(math.Inf(1))

// IsInf reports whether s is the root sentinel.
func (s Score) IsInf() bool { return math.IsInf(float64(s), 1) }

// MarshalJSON implements json.Marshaler.
func (s Score) MarshalJSON() ([]byte, error) {
	if s.IsInf() {
		return []byte(`"inf"`), nil
	}
	if math.IsNaN(float64(s)) || math.IsInf(float64(s), -1) {
		return nil, fmt.Errorf("model: score %v is not encodable", float64(s))
	}
	return strconv.AppendFloat(nil, float64(s), 'g', -1, 64), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Score) UnmarshalJSON(data []byte) error {
	if string(data) == `"inf"` {
		*s = Inf
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("model: invalid score %q: %w", data, err)
	}
	*s = Score(v)
	return nil
}

// Features is a named numeric feature vector.
type Features map[string]float64

// Clone returns a copy of f.
func (f Features) Clone() Features {
	if f == nil {
		return nil
	}
	out := make(Features, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Feed is a search state: an input token sequence plus its feature vector and
// its distance to the current target.
type Feed struct {
	InputTokens   []int    `json:"input_tokens"`
	InputFeatures Features `json:"input_features"`
	// InputScore is Inf for the root feed.
	InputScore Score `json:"input_score"`
	// Generation is the number of accepted hops from the root feed.
	Generation int `json:"generation"`
}

// NewFeed builds a feed from copies of tokens and features.
func NewFeed(tokens []int, features Features, score Score, generation int) Feed {
	return Feed{
		InputTokens:   slices.Clone(tokens),
		InputFeatures: features.Clone(),
		InputScore:    score,
		Generation:    generation,
	}
}

// NewRootFeed builds a generation zero feed with an infinite score.
func NewRootFeed(tokens []int, features Features) Feed {
	return NewFeed(tokens, features, Inf, 0)
}

// IsRoot reports whether the feed starts a lineage.
func (f Feed) IsRoot() bool { return f.Generation == 0 }

// Equal reports whether two feeds hold the same state.
func (f Feed) Equal(o Feed) bool {
	if f.Generation != o.Generation || !slices.Equal(f.InputTokens, o.InputTokens) {
		return false
	}
	if f.InputScore != o.InputScore && !(f.InputScore.IsInf() && o.InputScore.IsInf()) {
		return false
	}
	if len(f.InputFeatures) != len(o.InputFeatures) {
		return false
	}
	for k, v := range f.InputFeatures {
		if ov, ok := o.InputFeatures[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Candidate is one generated output of a feed, scored against the current target.
type Candidate struct {
	Feed     Feed     `json:"feed"`
	Tokens   []int    `json:"tokens"`
	Features Features `json:"features"`
	Score    Score    `json:"score"`
}

// Hash returns the content hash of the candidate tokens.
func (c Candidate) Hash() [32]byte { return TokensHash(c.Tokens) }

// Target is a benchmark the search steers towards.
type Target struct {
	Name     string   `json:"name"`
	Source   string   `json:"source"`
	Features Features `json:"features"`
}

// TokensHash returns the sha256 of the tokens encoded as little-endian int32.
func TokensHash(tokens []int) [32]byte {
	buf := make([]byte, 4*len(tokens))
	for i, t := range tokens {
		binary.LittleEndian.PutUint32(buf[4*i:], uint32(int32(t)))
	}
	return sha256.Sum256(buf)
}

// SHA256 returns the hex sha256 of s.
func SHA256(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
