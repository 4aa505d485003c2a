// Package dispatch runs registry entries as process pipelines.
//
// A Dispatcher starts one process per pipeline stage, connecting each stage's
// stdout to the next stage's stdin with an OS pipe. The first stage reads the
// dispatcher's stdin, the last stage writes the dispatcher's stdout, and every
// stage shares the dispatcher's stderr. Output is streamed, never buffered.
//
// Extra CLI arguments are appended to the final stage. The pipeline's exit code
// is the last stage's exit code, or with pipefail the rightmost non-zero one.
// A stage that fails, or cannot even be started, does not abort its neighbours:
// they see EOF or a closed pipe exactly as they would under a shell.
//
// On unix all stages share one process group so that cancellation or a timeout
// kills the whole pipeline, leaving no orphaned stages behind.
package dispatch
