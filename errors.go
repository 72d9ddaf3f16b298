package featsearch

import (
	"errors"
	"fmt"

	"github.com/hupe1980/featsearch/engine"
	"github.com/hupe1980/featsearch/target"
)

var (
	// ErrTargetsExhausted is returned when every target has been searched.
	ErrTargetsExhausted = errors.New("targets exhausted")

	// ErrInterrupted is returned by the Run after an interrupted one.
	ErrInterrupted = errors.New("search interrupted")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("searcher closed")

	// ErrNoTargets is returned by Open when no benchmark yields features.
	ErrNoTargets = errors.New("no usable targets")
)

// ErrSearchFailed is the stored failure of a search. Every Run after the
// failure returns it.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrSearchFailed struct {
	Target string
	cause  error
}

func (e *ErrSearchFailed) Error() string {
	return fmt.Sprintf("search for target %q failed: %v", e.Target, e.cause)
}

func (e *ErrSearchFailed) Unwrap() error { return e.cause }

func translateError(err error, targetName string) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, engine.ErrTargetsExhausted):
		return fmt.Errorf("%w: %w", ErrTargetsExhausted, err)
	case errors.Is(err, engine.ErrInterrupted):
		return fmt.Errorf("%w: %w", ErrInterrupted, err)
	case errors.Is(err, engine.ErrClosed):
		return fmt.Errorf("%w: %w", ErrClosed, err)
	case errors.Is(err, target.ErrNoTargets):
		return fmt.Errorf("%w: %w", ErrNoTargets, err)
	case errors.Is(err, engine.ErrInvalidConfig):
		return err
	}

	var sf *ErrSearchFailed
	if errors.As(err, &sf) {
		return err
	}
	return &ErrSearchFailed{Target: targetName, cause: err}
}
