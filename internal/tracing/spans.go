package tracing

// Span names.
const (
	SpanDispatchRun   = "dispatch.run"
	SpanDispatchStage = "dispatch.stage"
)

// Span attribute keys.
const (
	AttrRunID        = "sbin.run.id"
	AttrEntry        = "sbin.entry"
	AttrStageCount   = "sbin.stage.count"
	AttrStageIndex   = "sbin.stage.index"
	AttrStageProgram = "sbin.stage.program"
	AttrExitCode     = "process.exit.code"
	AttrPID          = "process.pid"
)
