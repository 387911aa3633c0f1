package sweep

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/gwdetect/internal/power"
)

// Progress is a snapshot of a running sweep.
type Progress struct {
	Done    int
	Failed  int
	Total   int
	Elapsed time.Duration
}

// Runner dispatches a batch of scenarios over a bounded worker pool.
// A failure inside a worker is captured as text in that row's error
// column and never halts sibling runs.
type Runner struct {
	calc       power.PowerCalculator
	cores      int
	log        zerolog.Logger
	outPath    string
	onProgress func(Progress)
}

func NewRunner(calc power.PowerCalculator, cores int, log zerolog.Logger) *Runner {
	if cores < 1 {
		cores = runtime.NumCPU()
	}
	return &Runner{calc: calc, cores: cores, log: log}
}

// SetOutput saves the results table to path when the sweep completes.
func (r *Runner) SetOutput(path string) { r.outPath = path }

// OnProgress registers a callback invoked after every finished run.
// The callback must be safe for concurrent use.
func (r *Runner) OnProgress(fn func(Progress)) { r.onProgress = fn }

// Run executes every scenario and returns the results table in input
// order. The returned error reflects cancellation or output I/O only;
// per-run failures live in the table's error column.
func (r *Runner) Run(ctx context.Context, scenarios []power.Scenario) (Table, error) {
	total := len(scenarios)
	results := make(Table, total)
	start := time.Now()

	var done, failed atomic.Int64

	g := new(errgroup.Group)
	g.SetLimit(r.cores)

	for i, scn := range scenarios {
		g.Go(func() error {
			res := r.runOne(ctx, scn)
			results[i] = res

			if res.Failed() {
				failed.Add(1)
			}
			d := int(done.Add(1))
			f := int(failed.Load())
			if r.onProgress != nil {
				r.onProgress(Progress{Done: d, Failed: f, Total: total, Elapsed: time.Since(start)})
			}
			return nil
		})
	}

	// Workers never return errors; failures are rows, not aborts.
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return results, err
	}

	r.log.Info().
		Int("runs", total).
		Int("failed", len(results.Failed())).
		Dur("elapsed", time.Since(start)).
		Msg("sweep complete")

	if r.outPath != "" {
		if err := results.SaveCSV(r.outPath); err != nil {
			return results, fmt.Errorf("sweep: saving results: %w", err)
		}
		r.log.Info().Str("path", r.outPath).Msg("results saved")
	}

	return results, nil
}

// runOne isolates a single calculation: error returns and panics both
// end up as captured text on the row.
func (r *Runner) runOne(ctx context.Context, scn power.Scenario) (res power.Result) {
	defer func() {
		if p := recover(); p != nil {
			res = power.Result{
				Scenario: scn,
				Err:      fmt.Sprintf("panic: %v\n%s", p, debug.Stack()),
			}
			r.log.Error().Str("id", scn.ID).Interface("panic", p).Msg("run panicked")
		}
	}()

	if err := ctx.Err(); err != nil {
		return power.Result{Scenario: scn, Err: err.Error()}
	}

	out, err := r.calc.Power(ctx, scn)
	if err != nil {
		r.log.Error().Str("id", scn.ID).Err(err).Msg("run failed")
		return power.Result{Scenario: scn, Err: err.Error()}
	}
	return out
}
