package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/sbin/internal/domain/registry"
	"github.com/zjrosen/sbin/internal/log"
	"github.com/zjrosen/sbin/internal/tracing"
)

// waitDelay bounds how long Wait keeps copying output after a stage was
// killed, in case a grandchild still holds one of its pipes open.
const waitDelay = 2 * time.Second

// CommandFactoryFunc creates an exec.Cmd for testing purposes.
// Implementations must use exec.CommandContext so cancellation can be wired.
type CommandFactoryFunc func(ctx context.Context, name string, args ...string) *exec.Cmd

// ProgramResolver finds the executable behind a stage program.
type ProgramResolver interface {
	Resolve(ctx context.Context, program string) (string, error)
}

// Streams are the standard streams a pipeline is attached to.
type Streams struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// StdStreams returns the dispatcher process's own standard streams.
func StdStreams() Streams {
	return Streams{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Option is a functional option for configuring a Dispatcher.
type Option func(*Dispatcher)

// WithStreams sets the streams pipelines are attached to.
func WithStreams(s Streams) Option {
	return func(d *Dispatcher) {
		d.streams = s
	}
}

// WithWorkDir sets the working directory of every stage. Relative program
// paths such as "ebin/echo" resolve against it.
func WithWorkDir(dir string) Option {
	return func(d *Dispatcher) {
		d.workDir = dir
	}
}

// WithEnv sets additional environment variables to append to os.Environ().
// Variables are in the format "KEY=VALUE".
func WithEnv(env []string) Option {
	return func(d *Dispatcher) {
		d.env = env
	}
}

// WithTimeout bounds a whole pipeline run. Zero or negative means no timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		d.timeout = timeout
	}
}

// WithPipefail makes the rightmost non-zero stage exit code the pipeline's
// exit code instead of the last stage's.
func WithPipefail(enabled bool) Option {
	return func(d *Dispatcher) {
		d.pipefail = enabled
	}
}

// WithDryRun prints pipelines to stderr instead of running them.
func WithDryRun(enabled bool) Option {
	return func(d *Dispatcher) {
		d.dryRun = enabled
	}
}

// WithProcessGroup controls whether non-interactive pipelines run in their
// own process group so that cancellation kills every descendant.
func WithProcessGroup(enabled bool) Option {
	return func(d *Dispatcher) {
		d.processGroup = enabled
	}
}

// WithTracer sets the tracer used for run and stage spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(d *Dispatcher) {
		if tracer != nil {
			d.tracer = tracer
		}
	}
}

// WithResolver checks stage programs during dry runs.
func WithResolver(r ProgramResolver) Option {
	return func(d *Dispatcher) {
		d.resolver = r
	}
}

// WithCommandFactory sets a custom command factory for testing.
func WithCommandFactory(fn CommandFactoryFunc) Option {
	return func(d *Dispatcher) {
		d.commandFactory = fn
	}
}

// Dispatcher runs registry entries as pipelines. It holds no per-run state,
// so one Dispatcher can serve concurrent runs.
type Dispatcher struct {
	streams        Streams
	workDir        string
	env            []string
	timeout        time.Duration
	pipefail       bool
	dryRun         bool
	processGroup   bool
	tracer         trace.Tracer
	resolver       ProgramResolver
	commandFactory CommandFactoryFunc
}

// New creates a dispatcher attached to the process's standard streams.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		streams:      StdStreams(),
		processGroup: true,
		tracer:       noop.NewTracerProvider().Tracer("noop"),
		commandFactory: func(ctx context.Context, name string, args ...string) *exec.Cmd {
			// #nosec G204 -- argv comes from the command registry
			return exec.CommandContext(ctx, name, args...)
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// StageResult describes how one stage ended.
type StageResult struct {
	Index   int
	Program string
	Argv    []string
	PID     int
	Status  StageStatus
	Code    int
	Err     error
}

// Result describes a finished pipeline run.
type Result struct {
	RunID    string
	Entry    string
	Code     int
	Stages   []StageResult
	Duration time.Duration
	DryRun   bool
}

// Run executes entry with args appended to its final stage and blocks until
// every stage has exited. A non-zero pipeline exit code is returned as a
// *PipelineExecutionError alongside the populated Result.
func (d *Dispatcher) Run(ctx context.Context, entry *registry.Entry, args []string) (Result, error) {
	stages := appendArgs(entry.Stages(), args)
	result := Result{
		RunID:  uuid.NewString(),
		Entry:  entry.Name(),
		Stages: make([]StageResult, len(stages)),
	}
	for i, s := range stages {
		result.Stages[i] = StageResult{Index: i, Program: s.Program(), Argv: s.Argv()}
	}

	if d.dryRun {
		return result, d.dryRunReport(ctx, stages, &result)
	}

	ctx, span := d.tracer.Start(ctx, tracing.SpanDispatchRun, trace.WithAttributes(
		attribute.String(tracing.AttrRunID, result.RunID),
		attribute.String(tracing.AttrEntry, entry.Name()),
		attribute.Int(tracing.AttrStageCount, len(stages)),
	))
	defer span.End()

	var cancel context.CancelFunc
	if d.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	log.Debug(log.CatDispatch, "Dispatching pipeline",
		"run_id", result.RunID,
		"entry", entry.Name(),
		"pipeline", registry.FormatPipeline(stages))

	start := time.Now()
	d.execute(ctx, stages, &result)
	result.Duration = time.Since(start)

	idx, code, cause := d.outcome(result.Stages, ctx.Err())
	result.Code = code

	span.SetAttributes(attribute.Int(tracing.AttrExitCode, result.Code))
	log.Debug(log.CatDispatch, "Pipeline finished",
		"run_id", result.RunID,
		"code", result.Code,
		"duration", result.Duration)

	if result.Code == 0 {
		span.SetStatus(codes.Ok, "")
		return result, nil
	}

	err := &PipelineExecutionError{
		Entry:   entry.Name(),
		RunID:   result.RunID,
		Stage:   idx,
		Program: result.Stages[idx].Program,
		Code:    result.Code,
		Err:     cause,
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return result, err
}

// dryRunReport prints the pipeline and, with a resolver, one line per stage
// program that would fail to start. The exit code stays 0.
func (d *Dispatcher) dryRunReport(ctx context.Context, stages []registry.Stage, result *Result) error {
	result.DryRun = true
	if _, err := fmt.Fprintf(d.streams.Stderr, "+ %s\n", registry.FormatPipeline(stages)); err != nil {
		return err
	}
	if d.resolver == nil {
		return nil
	}
	for i, stage := range stages {
		path, err := d.resolver.Resolve(ctx, stage.Program())
		if err != nil {
			result.Stages[i].Status = StatusNotStarted
			result.Stages[i].Err = err
			if _, werr := fmt.Fprintf(d.streams.Stderr, "sbin: %v\n", err); werr != nil {
				return werr
			}
			continue
		}
		log.Debug(log.CatDispatch, "Dry run resolved stage", "run_id", result.RunID, "stage", i, "path", path)
	}
	return nil
}

// outcome picks the deciding stage and the pipeline's exit code and cause.
// ctxErr only counts when it actually killed a stage, so a pipeline that
// finished just before its deadline keeps its own exit code.
func (d *Dispatcher) outcome(stages []StageResult, ctxErr error) (idx, code int, cause error) {
	idx = d.decidingStage(stages)
	code, cause = stages[idx].Code, stages[idx].Err
	killed := slices.ContainsFunc(stages, func(s StageResult) bool {
		return s.Status == StatusCancelled
	})
	if !killed || ctxErr == nil {
		return idx, code, cause
	}
	if errors.Is(ctxErr, context.DeadlineExceeded) {
		code = ExitCodeTimeout
	}
	return idx, code, ctxErr
}

// decidingStage returns the index of the stage whose exit code becomes the
// pipeline's exit code.
func (d *Dispatcher) decidingStage(stages []StageResult) int {
	last := len(stages) - 1
	if !d.pipefail {
		return last
	}
	for i := last; i >= 0; i-- {
		if stages[i].Code != 0 {
			return i
		}
	}
	return last
}

// execute starts every stage, then waits for all of them.
func (d *Dispatcher) execute(ctx context.Context, stages []registry.Stage, result *Result) {
	stderr := d.streams.Stderr
	if _, ok := stderr.(*os.File); !ok && len(stages) > 1 {
		stderr = &syncWriter{w: stderr}
	}

	group := newProcessGroup(d.processGroup && !isTerminal(d.streams.Stdin))
	cmds := make([]*exec.Cmd, len(stages))
	spans := make([]trace.Span, len(stages))
	var parentEnds []*os.File
	var stdin io.Reader = d.streams.Stdin

	for i, stage := range stages {
		cmd := d.commandFactory(ctx, stage.Program(), stage.Args()...)
		cmd.Dir = d.workDir
		if len(d.env) > 0 {
			cmd.Env = append(os.Environ(), d.env...)
		}
		cmd.Stdin = stdin
		cmd.Stderr = stderr
		cmd.WaitDelay = waitDelay

		if i == len(stages)-1 {
			cmd.Stdout = d.streams.Stdout
		} else {
			r, w, err := os.Pipe()
			if err != nil {
				d.markUnstarted(stderr, result, i, fmt.Errorf("create pipe: %w", err))
				stdin = eofReader{}
				continue
			}
			parentEnds = append(parentEnds, r, w)
			cmd.Stdout = w
			stdin = r
		}

		group.prepare(cmd)

		_, spans[i] = d.tracer.Start(ctx, tracing.SpanDispatchStage, trace.WithAttributes(
			attribute.String(tracing.AttrRunID, result.RunID),
			attribute.Int(tracing.AttrStageIndex, i),
			attribute.String(tracing.AttrStageProgram, stage.Program()),
		))

		if err := cmd.Start(); err != nil {
			d.markUnstarted(stderr, result, i, err)
			spans[i].RecordError(err)
			spans[i].SetStatus(codes.Error, err.Error())
			spans[i].End()
			continue
		}

		group.add(cmd.Process.Pid)
		result.Stages[i].PID = cmd.Process.Pid
		spans[i].SetAttributes(attribute.Int(tracing.AttrPID, cmd.Process.Pid))
		cmds[i] = cmd
		log.Debug(log.CatDispatch, "Stage started",
			"run_id", result.RunID,
			"stage", i,
			"program", stage.Program(),
			"pid", cmd.Process.Pid)
	}

	// The children hold their own copies of the pipe ends. Closing ours lets
	// a reader see EOF once its writer exits, and a writer see EPIPE once its
	// reader exits.
	for _, f := range parentEnds {
		_ = f.Close()
	}

	var wg sync.WaitGroup
	for i, cmd := range cmds {
		if cmd == nil {
			continue
		}
		wg.Add(1)
		go func(i int, cmd *exec.Cmd) {
			defer wg.Done()
			err := cmd.Wait()
			code := exitCode(err)

			stage := &result.Stages[i]
			stage.Code = code
			stage.Err = err
			switch {
			case code == 0:
				stage.Status = StatusCompleted
			case ctx.Err() != nil && isSignaled(err):
				stage.Status = StatusCancelled
			default:
				stage.Status = StatusFailed
			}

			spans[i].SetAttributes(attribute.Int(tracing.AttrExitCode, code))
			if code != 0 {
				spans[i].SetStatus(codes.Error, stage.Status.String())
			}
			spans[i].End()
		}(i, cmd)
	}
	wg.Wait()
}

// markUnstarted records a stage that could not be spawned. Like a shell, the
// failure is reported on stderr and the rest of the pipeline keeps running.
func (d *Dispatcher) markUnstarted(stderr io.Writer, result *Result, i int, err error) {
	stage := &result.Stages[i]
	stage.Status = StatusNotStarted
	stage.Err = err
	stage.Code = ExitCodeNotExecutable
	msg := err.Error()
	switch {
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		stage.Code = ExitCodeNotFound
		msg = "command not found"
	case errors.Is(err, fs.ErrPermission):
		msg = "permission denied"
	}
	_, _ = fmt.Fprintf(stderr, "sbin: %s: %s\n", stage.Program, msg)
	log.Warn(log.CatDispatch, "Stage failed to start",
		"run_id", result.RunID,
		"stage", i,
		"program", stage.Program,
		"error", err)
}

// appendArgs returns stages with args appended to the final stage.
func appendArgs(stages []registry.Stage, args []string) []registry.Stage {
	if len(args) == 0 || len(stages) == 0 {
		return stages
	}
	last := len(stages) - 1
	final := stages[last]
	stages[last] = registry.NewStage(final.Program(), append(final.Args(), args...)...)
	return stages
}

// syncWriter serializes writes from several stages sharing one writer.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// eofReader feeds a stage whose upstream could not be connected.
type eofReader struct{}

func (eofReader) Read([]byte) (int, error) {
	return 0, io.EOF
}
