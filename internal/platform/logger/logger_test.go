// Package logger_test contains tests for the logger package
package logger_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daylist/daylist-api/internal/config"
	"github.com/daylist/daylist-api/internal/platform/logger"
)

func TestSetup(t *testing.T) {
	// Setup mutates the process default logger, so no t.Parallel here.
	levels := []string{"debug", "info", "warn", "error", "WARN", "Debug"}

	for _, lvl := range levels {
		log, err := logger.Setup(config.ServerConfig{LogLevel: lvl})
		require.NoError(t, err, "level %q", lvl)
		require.NotNil(t, log, "level %q", lvl)
		assert.Equal(t, log, slog.Default(), "Setup should install the logger as default")
	}
}

func TestSetup_InvalidLevelFallsBack(t *testing.T) {
	log, err := logger.Setup(config.ServerConfig{LogLevel: "verbose"})
	require.NoError(t, err)
	require.NotNil(t, log)

	// Info must be enabled under the fallback level, debug must not.
	assert.True(t, log.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, log.Enabled(context.Background(), slog.LevelDebug))
}

func TestWithLogger_RoundTrip(t *testing.T) {
	t.Parallel()

	buf := &logger.TestLogBuffer{}
	attached := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx := logger.WithLogger(context.Background(), attached)

	got := logger.FromContext(ctx)
	require.Equal(t, attached, got)

	got.Info("round trip", slog.String("component", "logger_test"))
	logger.AssertLogContains(t, buf, "round trip")
	logger.AssertLogField(t, buf, "component", "logger_test")
}

func TestFromContext_Fallback(t *testing.T) {
	t.Parallel()

	got := logger.FromContext(context.Background())
	assert.Equal(t, slog.Default(), got)
}

func TestFromContextOrDefault(t *testing.T) {
	t.Parallel()

	fallback := slog.New(slog.NewJSONHandler(&logger.TestLogBuffer{}, nil))

	t.Run("uses context logger when present", func(t *testing.T) {
		t.Parallel()

		attached := slog.New(slog.NewJSONHandler(&logger.TestLogBuffer{}, nil))
		ctx := logger.WithLogger(context.Background(), attached)

		assert.Equal(t, attached, logger.FromContextOrDefault(ctx, fallback))
	})

	t.Run("uses provided default when absent", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, fallback, logger.FromContextOrDefault(context.Background(), fallback))
	})

	t.Run("falls back to global default when both absent", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, slog.Default(), logger.FromContextOrDefault(context.Background(), nil))
	})
}
