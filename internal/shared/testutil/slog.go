// Package testutil provides log capture and report fixtures for tests.
package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// LogRecord is one captured log entry.
type LogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// CaptureHandler is a slog.Handler that records entries in memory so
// tests can assert on what was logged.
type CaptureHandler struct {
	mu      sync.Mutex
	records []LogRecord
}

// NewLogger returns a logger backed by a capture handler.
func NewLogger(t *testing.T) (*slog.Logger, *CaptureHandler) {
	t.Helper()
	h := &CaptureHandler{}
	return slog.New(h), h
}

func (h *CaptureHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any)
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	h.mu.Lock()
	h.records = append(h.records, LogRecord{
		Level:   r.Level,
		Message: r.Message,
		Attrs:   attrs,
	})
	h.mu.Unlock()
	return nil
}

func (h *CaptureHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h *CaptureHandler) WithAttrs([]slog.Attr) slog.Handler       { return h }
func (h *CaptureHandler) WithGroup(string) slog.Handler            { return h }

// Records returns a copy of everything captured so far.
func (h *CaptureHandler) Records() []LogRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]LogRecord, len(h.records))
	copy(out, h.records)
	return out
}

// Contains reports whether any captured message at the given level
// contains substr.
func (h *CaptureHandler) Contains(level slog.Level, substr string) bool {
	for _, r := range h.Records() {
		if r.Level == level && strings.Contains(r.Message, substr) {
			return true
		}
	}
	return false
}
