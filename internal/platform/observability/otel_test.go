package observability

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, ParseLevel(" warning "))
	require.Equal(t, slog.LevelError, ParseLevel("error"))
	require.Equal(t, slog.LevelInfo, ParseLevel(""))
	require.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNilInstrumentsFallBackToGlobalProviders(t *testing.T) {
	var instruments *Instruments
	require.NotNil(t, instruments.Tracer("test"))
	require.NotNil(t, instruments.Meter("test"))
}

func TestSettingsFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("ENVIRONMENT", "staging")
	t.Setenv("OTEL_TRACES_EXPORTER", "STDOUT")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "0")

	settings := SettingsFromEnv("dealership-sync-api")
	require.Equal(t, "dealership-sync-api", settings.ServiceName)
	require.Equal(t, "staging", settings.Environment)
	require.Equal(t, slog.LevelDebug, settings.LogLevel)
	require.Equal(t, "text", settings.LogFormat)
	require.Equal(t, ExporterStdout, settings.Exporter)
	require.False(t, settings.OTLPInsecure)
}

func TestNewLoggerFormats(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, slog.LevelInfo, "json").Info("sync finished", slog.Int("processed", 3))
	require.Contains(t, buf.String(), `"processed":3`)

	buf.Reset()
	NewLogger(&buf, slog.LevelWarn, "text").Info("dropped")
	require.Empty(t, buf.String())
	NewLogger(&buf, slog.LevelWarn, "text").Warn("kept")
	require.Contains(t, buf.String(), "msg=kept")
}

func TestInitWithoutExporter(t *testing.T) {
	instruments, shutdown, err := InitWithSettings(context.Background(), Settings{
		ServiceName: "test",
		Environment: "test",
		Exporter:    ExporterNone,
	})
	require.NoError(t, err)
	require.NotNil(t, instruments.Logger)
	require.NotNil(t, instruments.Tracer("test"))
	require.NoError(t, shutdown(context.Background()))
}

func TestInitRejectsUnknownExporter(t *testing.T) {
	_, _, err := InitWithSettings(context.Background(), Settings{ServiceName: "test", Exporter: "zipkin"})
	require.Error(t, err)
}
