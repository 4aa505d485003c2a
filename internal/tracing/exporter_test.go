package tracing

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func readRecords(t *testing.T, path string) []SpanRecord {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	var records []SpanRecord
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var rec SpanRecord
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec), "line should be valid JSON")
		records = append(records, rec)
	}
	require.NoError(t, scanner.Err())
	return records
}

func TestNewFileExporter_CreatesParentDirectories(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "nested", "dir", "traces.jsonl")

	exporter, err := NewFileExporter(tracePath)
	require.NoError(t, err)

	_, err = os.Stat(tracePath)
	require.NoError(t, err, "trace file should be created with parent dirs")
	require.NoError(t, exporter.Shutdown(context.Background()))
}

func TestNewFileExporter_AppendsToExistingFile(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "traces.jsonl")
	first := `{"trace_id":"a","span_id":"b","name":"earlier","start_time":"","duration_ms":0,"status":"OK"}`
	require.NoError(t, os.WriteFile(tracePath, []byte(first+"\n"), 0600))

	exporter, err := NewFileExporter(tracePath)
	require.NoError(t, err)

	stub := tracetest.SpanStub{
		Name:      SpanDispatchRun,
		StartTime: time.Now(),
		EndTime:   time.Now().Add(10 * time.Millisecond),
	}
	require.NoError(t, exporter.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()}))
	require.NoError(t, exporter.Shutdown(context.Background()))

	records := readRecords(t, tracePath)
	require.Len(t, records, 2)
	require.Equal(t, "earlier", records[0].Name)
	require.Equal(t, SpanDispatchRun, records[1].Name)
}

func TestFileExporter_RecordFields(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "traces.jsonl")
	exporter, err := NewFileExporter(tracePath)
	require.NoError(t, err)

	start := time.Now()
	stub := tracetest.SpanStub{
		Name:      SpanDispatchStage,
		StartTime: start,
		EndTime:   start.Add(250 * time.Millisecond),
		Status:    sdktrace.Status{Code: codes.Error, Description: "exit status 3"},
		Attributes: []attribute.KeyValue{
			attribute.String(AttrRunID, "run-1"),
			attribute.String(AttrStageProgram, "ebin/lscat"),
			attribute.Int(AttrExitCode, 3),
		},
		Events: []sdktrace.Event{
			{Name: "spawn", Time: start, Attributes: []attribute.KeyValue{attribute.Int(AttrPID, 42)}},
		},
	}
	require.NoError(t, exporter.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()}))
	require.NoError(t, exporter.Shutdown(context.Background()))

	records := readRecords(t, tracePath)
	require.Len(t, records, 1)
	rec := records[0]
	require.Equal(t, SpanDispatchStage, rec.Name)
	require.Equal(t, "ERROR", rec.Status)
	require.Equal(t, "exit status 3", rec.StatusMsg)
	require.InDelta(t, 250.0, rec.DurationMs, 0.001)
	require.Empty(t, rec.ParentSpanID)
	require.Equal(t, "run-1", rec.Attributes[AttrRunID])
	require.Equal(t, "ebin/lscat", rec.Attributes[AttrStageProgram])
	require.EqualValues(t, 3, rec.Attributes[AttrExitCode])
	require.Len(t, rec.Events, 1)
	require.Equal(t, "spawn", rec.Events[0].Name)
	require.EqualValues(t, 42, rec.Events[0].Attributes[AttrPID])
}

func TestFileExporter_ConcurrentExports(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "traces.jsonl")
	exporter, err := NewFileExporter(tracePath)
	require.NoError(t, err)

	const workers, perWorker = 8, 50
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				stub := tracetest.SpanStub{
					Name:       SpanDispatchStage,
					StartTime:  time.Now(),
					EndTime:    time.Now(),
					Attributes: []attribute.KeyValue{attribute.Int(AttrStageIndex, w)},
				}
				_ = exporter.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()})
			}
		}(w)
	}
	wg.Wait()
	require.NoError(t, exporter.Shutdown(context.Background()))

	require.Len(t, readRecords(t, tracePath), workers*perWorker)
}

func TestFileExporter_ExportAfterShutdown(t *testing.T) {
	exporter, err := NewFileExporter(filepath.Join(t.TempDir(), "traces.jsonl"))
	require.NoError(t, err)
	require.NoError(t, exporter.Shutdown(context.Background()))
	require.NoError(t, exporter.Shutdown(context.Background()), "second shutdown is a no-op")

	stub := tracetest.SpanStub{Name: "late"}
	require.Error(t, exporter.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()}))
}
