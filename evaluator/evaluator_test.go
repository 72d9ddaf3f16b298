package evaluator

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/featsearch/distance"
	"github.com/hupe1980/featsearch/model"
)

const space = "evaluator-test"

func init() {
	distance.Register(space, distance.Normalizer{"F2": 1})
}

// byteTokenizer maps token i to the byte i; 0 is padding.
type byteTokenizer struct{}

func (byteTokenizer) Encode(text string) ([]int, error) {
	out := make([]int, len(text))
	for i := range text {
		out[i] = int(text[i])
	}
	return out, nil
}

func (byteTokenizer) Decode(tokens []int, ignorePad bool) (string, error) {
	var sb strings.Builder
	for _, t := range tokens {
		if t < 0 {
			return "", errors.New("negative token")
		}
		if t == 0 && ignorePad {
			continue
		}
		sb.WriteByte(byte(t))
	}
	return sb.String(), nil
}

// tableExtractor looks the text up in a map; "boom" panics.
type tableExtractor struct {
	table map[string]model.Features
	calls atomic.Int64
}

func (x *tableExtractor) Extract(_ context.Context, text, _ string) (model.Features, error) {
	x.calls.Add(1)
	if text == "boom" {
		panic("extractor crashed")
	}
	f, ok := x.table[text]
	if !ok {
		return nil, errors.New("does not compile")
	}
	return f, nil
}

type rejectValidator struct{ reject string }

func (v rejectValidator) Validate(_ context.Context, text string) error {
	if text == v.reject {
		return errors.New("rejected")
	}
	return nil
}

func tokens(s string) []int {
	out, _ := byteTokenizer{}.Encode(s)
	return out
}

func newEvaluator(opts ...Option) (*Evaluator, *tableExtractor) {
	ext := &tableExtractor{table: map[string]model.Features{
		"a":     {"F2": 0.6},
		"b":     {"F2": 0.8},
		"empty": {},
		"other": {"F9": 1},
		"nan":   {"F2": math.NaN()},
		"inf":   {"F2": math.Inf(1)},
	}}
	return New(byteTokenizer{}, ext, space, opts...), ext
}

var target = model.Target{Name: "t", Features: model.Features{"F2": 1.0}}

func TestEvaluate(t *testing.T) {
	ev, _ := newEvaluator()
	feed := model.NewRootFeed(tokens("seed"), nil)

	raw := append(tokens("a"), 0, 0)
	c := ev.Evaluate(context.Background(), raw, feed, target)
	require.NotNil(t, c)
	assert.InDelta(t, 0.8, float64(c.Score), 1e-12)
	assert.Equal(t, raw, c.Tokens)
	assert.True(t, c.Feed.Equal(feed))

	raw[0] = 'z'
	assert.Equal(t, int('a'), c.Tokens[0], "candidate owns its tokens")
}

func TestEvaluateDiscards(t *testing.T) {
	ev, _ := newEvaluator(WithValidator(rejectValidator{reject: "b"}))
	feed := model.NewRootFeed(nil, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		raw  []int
	}{
		{"decode error", []int{-1}},
		{"extract error", tokens("nope")},
		{"empty features", tokens("empty")},
		{"missing target key", tokens("other")},
		{"extractor panic", tokens("boom")},
		{"validator rejects", tokens("b")},
		{"nan feature", tokens("nan")},
		{"inf feature", tokens("inf")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, ev.Evaluate(ctx, tt.raw, feed, target))
		})
	}
}

func TestEvaluateAll(t *testing.T) {
	ev, ext := newEvaluator()
	feed := model.NewRootFeed(nil, nil)

	raws := [][]int{tokens("a"), tokens("nope"), tokens("b"), tokens("boom"), tokens("a")}
	b, err := ev.EvaluateAll(context.Background(), raws, feed, target, 2)
	require.NoError(t, err)

	assert.Equal(t, 5, b.Total)
	assert.Equal(t, 3, b.Compiled)
	require.Len(t, b.Candidates, 3)
	assert.Equal(t, tokens("a"), b.Candidates[0].Tokens)
	assert.Equal(t, tokens("b"), b.Candidates[1].Tokens)
	assert.Equal(t, tokens("a"), b.Candidates[2].Tokens)
	assert.Equal(t, int64(5), ext.calls.Load())
}

func TestEvaluateAllNonFiniteSiblings(t *testing.T) {
	ev, _ := newEvaluator()
	feed := model.NewRootFeed(nil, nil)

	raws := [][]int{tokens("nan"), tokens("a"), tokens("inf"), tokens("b")}
	b, err := ev.EvaluateAll(context.Background(), raws, feed, target, 2)
	require.NoError(t, err)

	assert.Equal(t, 4, b.Total)
	require.Len(t, b.Candidates, 2)
	for _, c := range b.Candidates {
		assert.False(t, math.IsNaN(float64(c.Score)))
	}
	assert.InDelta(t, 0.8, float64(b.Candidates[0].Score), 1e-12)
	assert.InDelta(t, 0.6, float64(b.Candidates[1].Score), 1e-12)
}

func TestEvaluateAllCanceled(t *testing.T) {
	ev, _ := newEvaluator()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ev.EvaluateAll(ctx, [][]int{tokens("a")}, model.NewRootFeed(nil, nil), target, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEvaluateAllEmpty(t *testing.T) {
	ev, _ := newEvaluator()
	b, err := ev.EvaluateAll(context.Background(), nil, model.NewRootFeed(nil, nil), target, 4)
	require.NoError(t, err)
	assert.Zero(t, b.Total)
	assert.Zero(t, b.Compiled)
	assert.Empty(t, b.Candidates)
}
