package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithLogger_RoundTrip(t *testing.T) {
	base := &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	ctx := WithLogger(context.Background(), base)
	assert.Same(t, base, FromContext(ctx))
}

func TestFromContext_Default(t *testing.T) {
	logger := FromContext(context.Background())
	require.NotNil(t, logger)
	assert.Same(t, slog.Default(), logger.Logger)
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := &Logger{Logger: slog.New(slog.NewJSONHandler(&buf, nil))}

	scoped := logger.WithFields(slog.String("database", "shop"))
	scoped.Info("schema discovered", slog.Int("entities", 2))

	out := buf.String()
	assert.Contains(t, out, `"database":"shop"`)
	assert.Contains(t, out, `"entities":2`)
	assert.Contains(t, out, "schema discovered")
}

func TestNewLogger_LevelGating(t *testing.T) {
	ctx := context.Background()

	logger := NewLogger(Config{Level: "warn"})
	assert.False(t, logger.Enabled(ctx, slog.LevelInfo))
	assert.True(t, logger.Enabled(ctx, slog.LevelWarn))

	// An unrecognized level falls back to info.
	logger = NewLogger(Config{Level: "nonsense", Format: "json"})
	assert.False(t, logger.Enabled(ctx, slog.LevelDebug))
	assert.True(t, logger.Enabled(ctx, slog.LevelInfo))
}
