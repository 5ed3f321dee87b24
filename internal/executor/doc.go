// Package executor runs generated test cases against browser engines.
//
// Every browser in the matrix is launched once and driven by its own
// goroutine. Within a browser, cases run in matrix order or, when
// parallelism is enabled, on a bounded pool of workers. Each case gets an
// isolated page sized to its viewport, so cases never share mutable state.
//
// Case failures are data: RunCase always returns a CaptureResult and Run
// returns one result per input case, whatever happens to its siblings.
package executor
