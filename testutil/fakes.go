package testutil

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/featsearch/distance"
	"github.com/hupe1980/featsearch/model"
)

// Space is the feature space of ScoreExtractor. Its only feature F2 has
// normalizer 1.
const Space = "testutil"

// Feature is the feature key produced by ScoreExtractor.
const Feature = "F2"

func init() {
	distance.Register(Space, distance.Normalizer{Feature: 1})
}

// PadToken is the token ByteTokenizer drops when decoding with ignorePad.
const PadToken = 0

// ErrNotANumber is returned by ScoreExtractor for non-numeric text.
var ErrNotANumber = errors.New("testutil: text is not a number")

// ByteTokenizer maps every byte to a token.
type ByteTokenizer struct{}

// Encode implements the tokenizer contract.
func (ByteTokenizer) Encode(text string) ([]int, error) {
	out := make([]int, len(text))
	for i := 0; i < len(text); i++ {
		out[i] = int(text[i])
	}
	return out, nil
}

// Decode implements the tokenizer contract.
func (ByteTokenizer) Decode(tokens []int, ignorePad bool) (string, error) {
	buf := make([]byte, 0, len(tokens))
	for _, t := range tokens {
		if ignorePad && t == PadToken {
			continue
		}
		if t < 0 || t > 255 {
			return "", fmt.Errorf("testutil: token %d out of range", t)
		}
		buf = append(buf, byte(t))
	}
	return string(buf), nil
}

// Tokens encodes text with ByteTokenizer.
func Tokens(text string) []int {
	t, _ := ByteTokenizer{}.Encode(text)
	return t
}

// ScoreExtractor parses the text as a float and returns it as feature F2.
type ScoreExtractor struct {
	calls atomic.Int64
}

// Extract implements the extractor contract.
func (s *ScoreExtractor) Extract(_ context.Context, text, _ string) (model.Features, error) {
	s.calls.Add(1)
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrNotANumber, text)
	}
	return model.Features{Feature: v}, nil
}

// Calls returns the number of Extract calls.
func (s *ScoreExtractor) Calls() int { return int(s.calls.Load()) }

// MapExtractor looks up features by text.
type MapExtractor map[string]model.Features

// Extract implements the extractor contract.
func (m MapExtractor) Extract(_ context.Context, text, _ string) (model.Features, error) {
	f, ok := m[text]
	if !ok {
		return nil, fmt.Errorf("testutil: no features for %q", text)
	}
	return f.Clone(), nil
}

// GeneratorFunc adapts a function to the generator contract.
type GeneratorFunc func(ctx context.Context, inputs [][]int) ([][]int, error)

// GenerateBatch implements the generator contract.
func (f GeneratorFunc) GenerateBatch(ctx context.Context, inputs [][]int) ([][]int, error) {
	return f(ctx, inputs)
}

// TableGenerator answers input i of a batch with outputs[text][i % len].
// Inputs without an entry yield Fallback, or an error when it is empty.
type TableGenerator struct {
	tok      ByteTokenizer
	outputs  map[string][]string
	Fallback string

	mu     sync.Mutex
	calls  int
	inputs []string
	hook   func(ctx context.Context, input string) error
}

// NewTableGenerator returns a generator over outputs keyed by input text.
func NewTableGenerator(outputs map[string][]string) *TableGenerator {
	return &TableGenerator{outputs: outputs}
}

// OnCall installs a hook run before every batch with the decoded first input.
// A hook error is returned by GenerateBatch.
func (g *TableGenerator) OnCall(hook func(ctx context.Context, input string) error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.hook = hook
}

// GenerateBatch implements the generator contract.
func (g *TableGenerator) GenerateBatch(ctx context.Context, inputs [][]int) ([][]int, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	first, err := g.tok.Decode(inputs[0], true)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	g.calls++
	g.inputs = append(g.inputs, first)
	hook := g.hook
	g.mu.Unlock()

	if hook != nil {
		if err := hook(ctx, first); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([][]int, len(inputs))
	for i, in := range inputs {
		text, err := g.tok.Decode(in, true)
		if err != nil {
			return nil, err
		}
		candidates, ok := g.outputs[text]
		switch {
		case ok && len(candidates) > 0:
			out[i] = Tokens(candidates[i%len(candidates)])
		case g.Fallback != "":
			out[i] = Tokens(g.Fallback)
		default:
			return nil, fmt.Errorf("testutil: no outputs for input %q", text)
		}
	}
	return out, nil
}

// Calls returns the number of GenerateBatch calls.
func (g *TableGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// Inputs returns the decoded first input of every call in call order.
func (g *TableGenerator) Inputs() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.inputs...)
}

// RandomGenerator answers every input with a random number in [0, Max) as text.
type RandomGenerator struct {
	RNG *RNG
	Max float64
}

// GenerateBatch implements the generator contract.
func (g RandomGenerator) GenerateBatch(ctx context.Context, inputs [][]int) ([][]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([][]int, len(inputs))
	for i := range inputs {
		out[i] = Tokens(strconv.FormatFloat(g.RNG.Float64()*g.Max, 'f', 4, 64))
	}
	return out, nil
}
