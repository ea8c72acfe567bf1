package infrastructure

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adlens/internal/config"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLogLevel(tt.in), "level %q", tt.in)
	}
}

func TestTraceIDContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetTraceID(ctx))

	ctx = WithTraceID(ctx, "abc-123")
	assert.Equal(t, "abc-123", GetTraceID(ctx))
}

func TestInitializeLogger(t *testing.T) {
	ResetLoggerForTesting()
	t.Cleanup(ResetLoggerForTesting)

	logger, err := InitializeLogger(config.LoggingConfig{
		Level:  "debug",
		Format: "json",
		Output: "stdout",
	})
	require.NoError(t, err)
	require.NotNil(t, logger)

	// Initialization is once-only; a second call returns the same logger.
	again, err := InitializeLogger(config.LoggingConfig{Level: "error"})
	require.NoError(t, err)
	assert.Same(t, logger, again)
}

func TestInitializeLogger_FileOutput(t *testing.T) {
	ResetLoggerForTesting()
	t.Cleanup(ResetLoggerForTesting)

	path := t.TempDir() + "/logs/app.log"
	logger, err := InitializeLogger(config.LoggingConfig{
		Level:    "info",
		Format:   "text",
		Output:   "file",
		FilePath: path,
	})
	require.NoError(t, err)

	logger.Info("written to file")
	require.NoError(t, CloseLogFile())
	assert.FileExists(t, path)
}

func TestNewReportMetrics(t *testing.T) {
	logger := slog.Default()
	providers, err := InitializeMetrics(logger)
	require.NoError(t, err)
	require.NotNil(t, providers.MeterProvider)
	require.NotNil(t, providers.PrometheusHTTP)

	metrics, err := NewReportMetrics(providers.Meter)
	require.NoError(t, err)

	// Counter adds must not panic; values are scraped, not asserted here.
	metrics.ReportsParsed.Add(context.Background(), 1)
	metrics.RowsDropped.Add(context.Background(), 2)
	metrics.ParseFailures.Add(context.Background(), 1)
}
