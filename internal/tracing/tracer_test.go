package tracing

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.False(t, cfg.Enabled)
	require.Equal(t, ExporterFile, cfg.Exporter)
	require.Equal(t, DefaultOTLPEndpoint, cfg.OTLPEndpoint)
	require.Equal(t, 1.0, cfg.SampleRate)
	require.Equal(t, DefaultServiceName, cfg.ServiceName)
}

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(Config{Enabled: false})
	require.NoError(t, err)
	require.False(t, provider.Enabled())

	_, span := provider.Tracer().Start(context.Background(), SpanDispatchRun)
	require.False(t, span.SpanContext().IsValid(), "no-op spans carry no ids")
	span.End()

	require.NoError(t, provider.Shutdown(context.Background()))
}

func TestNewProvider_FileExporterWritesSpans(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "traces", "traces.jsonl")
	provider, err := NewProvider(Config{Enabled: true, Exporter: ExporterFile, FilePath: tracePath})
	require.NoError(t, err)
	require.True(t, provider.Enabled())

	ctx, run := provider.Tracer().Start(context.Background(), SpanDispatchRun)
	_, stage := provider.Tracer().Start(ctx, SpanDispatchStage)
	require.Equal(t, run.SpanContext().TraceID(), stage.SpanContext().TraceID())
	stage.End()
	run.End()

	require.NoError(t, provider.Shutdown(context.Background()))

	records := readRecords(t, tracePath)
	require.Len(t, records, 2)
	require.Equal(t, SpanDispatchStage, records[0].Name)
	require.Equal(t, records[1].SpanID, records[0].ParentSpanID)
	require.Equal(t, SpanDispatchRun, records[1].Name)
}

func TestNewProvider_NoneExporter(t *testing.T) {
	provider, err := NewProvider(Config{Enabled: true, Exporter: ExporterNone})
	require.NoError(t, err)

	_, span := provider.Tracer().Start(context.Background(), SpanDispatchRun)
	require.True(t, span.SpanContext().IsValid())
	span.End()
	require.NoError(t, provider.Shutdown(context.Background()))
}

func TestNewProvider_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"file without path", Config{Enabled: true, Exporter: ExporterFile}, "file_path required"},
		{"unknown exporter", Config{Enabled: true, Exporter: "zipkin"}, "unsupported exporter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := NewProvider(tt.cfg)
			require.Error(t, err)
			require.Nil(t, provider)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidExporter(t *testing.T) {
	for _, name := range []string{"", ExporterNone, ExporterFile, ExporterStdout, ExporterOTLP} {
		require.True(t, ValidExporter(name), name)
	}
	require.False(t, ValidExporter("jaeger"))
}
