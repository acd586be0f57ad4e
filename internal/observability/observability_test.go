package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/contrib/processors/minsev"
)

func keepDefaultLogger(t *testing.T) {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
}

func TestInstrument_Text(t *testing.T) {
	keepDefaultLogger(t)
	var buf bytes.Buffer

	shutdown, err := Instrument(context.Background(), &buf, slog.LevelInfo, "text")
	require.NoError(t, err)
	defer shutdown(context.Background())

	slog.Debug("hidden")
	slog.Info("hello", "k", "v")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=hello k=v")
}

func TestInstrument_JSON(t *testing.T) {
	keepDefaultLogger(t)
	var buf bytes.Buffer

	shutdown, err := Instrument(context.Background(), &buf, slog.LevelWarn, "json")
	require.NoError(t, err)
	defer shutdown(context.Background())

	slog.Info("hidden")
	slog.Warn("careful")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "careful", record["msg"])
	assert.Equal(t, "WARN", record["level"])
}

func TestInstrument_OTelStdout(t *testing.T) {
	keepDefaultLogger(t)
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("OTEL_EXPORTER_OTLP_LOGS_ENDPOINT", "")
	var buf bytes.Buffer

	shutdown, err := Instrument(context.Background(), &buf, slog.LevelInfo, "otel")
	require.NoError(t, err)

	slog.Debug("hidden")
	slog.Info("exported")
	require.NoError(t, shutdown(context.Background()))

	assert.Contains(t, buf.String(), "exported")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), ServiceName)
}

func TestInstrument_UnknownFormat(t *testing.T) {
	_, err := Instrument(context.Background(), &bytes.Buffer{}, slog.LevelInfo, "xml")
	require.Error(t, err)
}

func TestSeverity(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  minsev.Severity
	}{
		{slog.LevelDebug - 4, minsev.SeverityDebug},
		{slog.LevelDebug, minsev.SeverityDebug},
		{slog.LevelInfo, minsev.SeverityInfo},
		{slog.LevelWarn, minsev.SeverityWarn},
		{slog.LevelError, minsev.SeverityError},
		{slog.LevelError + 4, minsev.SeverityError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, severity(tt.level), tt.level.String())
	}
}
