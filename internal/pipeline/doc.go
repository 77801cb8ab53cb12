// Package pipeline runs the packaging stages strictly in order.
//
// The runner is deliberately dumb: no retries, no branching, no
// concurrency. The build is a fixed linear sequence where any failure
// aborts the run, and the first error — wrapped with its stage name —
// is the run's error. Per-stage durations are recorded for the summary
// output.
package pipeline
