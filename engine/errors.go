package engine

import "errors"

var (
	// ErrTargetsExhausted is returned by Run when no target is left.
	ErrTargetsExhausted = errors.New("engine: targets exhausted")

	// ErrInterrupted is returned by the Run following an interrupted one.
	ErrInterrupted = errors.New("engine: interrupted")

	// ErrBatchMismatch is returned when the generator answers a batch with a
	// different number of outputs.
	ErrBatchMismatch = errors.New("engine: generator output count does not match input count")

	// ErrClosed is returned when the engine or its worker pool is closed.
	ErrClosed = errors.New("engine: closed")

	// ErrInvalidConfig wraps configuration validation failures.
	ErrInvalidConfig = errors.New("engine: invalid config")
)
