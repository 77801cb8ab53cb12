package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/wanlu-media/reelcheck/internal/model"
)

// Stage is one named step of the pipeline. Run does the work; it returns
// a model.BuildError (possibly wrapped) so the CLI can map the failure
// to an exit code.
type Stage struct {
	ID  model.StageID
	Run func(ctx context.Context) error
}

// StageResult records the outcome of one executed stage.
type StageResult struct {
	ID       model.StageID `json:"stage"`
	Duration time.Duration `json:"durationNs"`
	Err      error         `json:"-"`
}

// OK reports whether the stage completed without error.
func (r StageResult) OK() bool {
	return r.Err == nil
}

// Logf is the verbose-logging hook the runner reports progress through.
type Logf func(format string, args ...interface{})

// Runner executes stages strictly in order, aborting on the first error.
// There are no retries and no partial-success semantics: a failed stage
// fails the whole run, and the stages after it never start.
type Runner struct {
	logf Logf
}

// NewRunner creates a Runner. logf may be nil to disable progress output.
func NewRunner(logf Logf) *Runner {
	if logf == nil {
		logf = func(string, ...interface{}) {}
	}
	return &Runner{logf: logf}
}

// Run executes the stages in order. It returns the results of every
// stage that ran (including the failed one) and the first error, wrapped
// with the stage name. Cancellation of ctx is checked between stages;
// within a stage, cancellation is the stage's responsibility (every
// stage here drives external processes through CommandContext).
func (r *Runner) Run(ctx context.Context, stages []Stage) ([]StageResult, error) {
	results := make([]StageResult, 0, len(stages))

	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		r.logf("stage %s: starting", stage.ID)
		start := time.Now()
		err := stage.Run(ctx)
		result := StageResult{ID: stage.ID, Duration: time.Since(start)}

		if err != nil {
			result.Err = err
			results = append(results, result)
			r.logf("stage %s: failed after %s", stage.ID, result.Duration.Round(time.Millisecond))
			// %w keeps the BuildError reachable via errors.As so the
			// exit code survives the wrapping.
			return results, fmt.Errorf("stage %s: %w", stage.ID, err)
		}

		results = append(results, result)
		r.logf("stage %s: done in %s", stage.ID, result.Duration.Round(time.Millisecond))
	}

	return results, nil
}
