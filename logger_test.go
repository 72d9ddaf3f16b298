package featsearch

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func bufferLogger() (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewLogger(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func TestLoggerFields(t *testing.T) {
	l, buf := bufferLogger()
	l.WithTarget("a.cl").WithGeneration(2).Info("hello")

	out := buf.String()
	assert.Contains(t, out, "target=a.cl")
	assert.Contains(t, out, "generation=2")
}

func TestLogFeed(t *testing.T) {
	ctx := context.Background()
	l, buf := bufferLogger()

	l.LogFeed(ctx, "a.cl", 2, false, nil)
	assert.Contains(t, buf.String(), "search run completed")

	buf.Reset()
	l.LogFeed(ctx, "a.cl", 0, true, nil)
	assert.Contains(t, buf.String(), "level=WARN")

	buf.Reset()
	l.LogFeed(ctx, "a.cl", 0, false, errors.New("boom"))
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "error=boom")
}

func TestLogTarget(t *testing.T) {
	ctx := context.Background()
	l, buf := bufferLogger()

	l.LogTarget(ctx, "b.cl", 3)
	assert.Contains(t, buf.String(), "remaining=3")

	buf.Reset()
	l.LogTarget(ctx, "", 0)
	assert.Contains(t, buf.String(), "targets exhausted")
}

func TestNoopLogger(t *testing.T) {
	l := NoopLogger()
	l.LogCheckpoint(context.Background(), "search_state", errors.New("ignored"))
	assert.False(t, l.Enabled(context.Background(), slog.LevelError))
}
