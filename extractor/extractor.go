// Package extractor runs external feature extraction tools.
//
// A Command writes the program text to a temporary file, invokes the tool on
// it and parses the tool output with a ParseFunc. Mux routes a feature space
// to the extractor that produces it.
package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"slices"
	"time"

	"github.com/hupe1980/featsearch/evaluator"
	"github.com/hupe1980/featsearch/model"
)

var (
	// ErrUnsupportedSpace is returned for a feature space the extractor does not produce.
	ErrUnsupportedSpace = errors.New("extractor: unsupported feature space")
	// ErrMalformedOutput is returned when tool output cannot be parsed.
	ErrMalformedOutput = errors.New("extractor: malformed output")
)

// ParseFunc turns raw tool output into features.
type ParseFunc func(out []byte) (model.Features, error)

// Command extracts features by running an external binary.
type Command struct {
	// Path is the tool binary. The source file is appended to Args.
	Path string
	Args []string
	// Spaces lists the feature spaces this tool produces. Empty accepts any.
	Spaces []string
	Parse  ParseFunc
	// Timeout bounds a single invocation. Zero means no limit beyond ctx.
	Timeout time.Duration
	// TempDir holds the source files. Empty means os.TempDir.
	TempDir string
}

var _ evaluator.Extractor = (*Command)(nil)

// Extract implements evaluator.Extractor.
func (c *Command) Extract(ctx context.Context, text, space string) (model.Features, error) {
	if len(c.Spaces) > 0 && !slices.Contains(c.Spaces, space) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSpace, space)
	}

	f, err := os.CreateTemp(c.TempDir, "feat_ext_*.cl")
	if err != nil {
		return nil, fmt.Errorf("extractor: %w", err)
	}
	defer os.Remove(f.Name())
	if _, err := f.WriteString(text); err != nil {
		f.Close()
		return nil, fmt.Errorf("extractor: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("extractor: %w", err)
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	args := append(slices.Clone(c.Args), f.Name())
	cmd := exec.CommandContext(ctx, c.Path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("extractor: %s: %w: %s", c.Path, err, bytes.TrimSpace(stderr.Bytes()))
	}

	parse := c.Parse
	if parse == nil {
		parse = ParseCSV
	}
	return parse(stdout.Bytes())
}

// Mux dispatches on the feature space.
type Mux map[string]evaluator.Extractor

var _ evaluator.Extractor = Mux(nil)

// Extract implements evaluator.Extractor.
func (m Mux) Extract(ctx context.Context, text, space string) (model.Features, error) {
	e, ok := m[space]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSpace, space)
	}
	return e.Extract(ctx, text, space)
}
