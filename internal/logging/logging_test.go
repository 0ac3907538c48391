package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var record map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &record), line)
		records = append(records, record)
	}
	return records
}

func TestNew_Levels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		debug      bool
		wantLevels []string
	}{
		{name: "info", debug: false, wantLevels: []string{"info", "warn", "error"}},
		{name: "debug", debug: true, wantLevels: []string{"debug", "info", "warn", "error"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			handler, closeFn, err := New(WithDebug(tt.debug), WithWriter(&buf))
			require.NoError(t, err)
			logger := slog.New(handler)

			logger.Debug("debug message")
			logger.Info("info message", "count", 3)
			logger.Warn("warn message")
			logger.Error("error message")
			require.NoError(t, closeFn())

			records := decodeLines(t, &buf)
			levels := make([]string, 0, len(records))
			for _, r := range records {
				levels = append(levels, r["level"].(string))
			}
			assert.Equal(t, tt.wantLevels, levels)
		})
	}
}

func TestNew_Attributes(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	handler, closeFn, err := New(WithWriter(&buf))
	require.NoError(t, err)

	slog.New(handler).With("component", "sync").Info("Total new users processed: 2", "created", 2)
	require.NoError(t, closeFn())

	records := decodeLines(t, &buf)
	require.Len(t, records, 1)
	assert.Equal(t, "Total new users processed: 2", records[0]["msg"])
	assert.Equal(t, "sync", records[0]["component"])
	assert.EqualValues(t, 2, records[0]["created"])
	assert.Contains(t, records[0], "time")
}

func TestNew_TraceCorrelation(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	handler, closeFn, err := New(WithWriter(&buf))
	require.NoError(t, err)

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x01, 0x02},
		SpanID:     trace.SpanID{0x03},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	slog.New(handler).InfoContext(ctx, "traced")
	slog.New(handler).Info("untraced")
	require.NoError(t, closeFn())

	records := decodeLines(t, &buf)
	require.Len(t, records, 2)
	assert.Equal(t, sc.TraceID().String(), records[0]["trace_id"])
	assert.Equal(t, sc.SpanID().String(), records[0]["span_id"])
	assert.NotContains(t, records[1], "trace_id")
}

func TestNew_WritesLogFile(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), "logs")
	var buf bytes.Buffer

	handler, closeFn, err := New(WithDir(dir), WithWriter(&buf))
	require.NoError(t, err)
	slog.New(handler).Info("to both outputs")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "to both outputs")
	assert.Contains(t, buf.String(), "to both outputs")
}
