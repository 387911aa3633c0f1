// Package timing implements the pre-flight probe: run a few single
// calculations and extrapolate the wall time of a planned sweep.
package timing

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/gwdetect/internal/power"
)

// Estimate is the extrapolated cost of a planned sweep.
type Estimate struct {
	PerRun     time.Duration
	Total      time.Duration
	Iterations int
	Runs       int
	Cores      int
}

func (e Estimate) String() string {
	return fmt.Sprintf("~%s per run, ~%s for %d runs on %d cores (measured over %d iterations)",
		e.PerRun.Round(time.Millisecond), e.Total.Round(time.Millisecond), e.Runs, e.Cores, e.Iterations)
}

// Run measures iterations single calculations of scn and extrapolates
// the total wall time for plannedRuns spread across cores workers.
func Run(ctx context.Context, calc power.PowerCalculator, scn power.Scenario, iterations, plannedRuns, cores int) (Estimate, error) {
	if iterations < 1 {
		return Estimate{}, fmt.Errorf("timing: iterations must be at least 1, got %d", iterations)
	}
	if plannedRuns < 1 {
		return Estimate{}, fmt.Errorf("timing: planned runs must be at least 1, got %d", plannedRuns)
	}
	if cores < 1 {
		cores = 1
	}

	start := time.Now()
	for i := 0; i < iterations; i++ {
		if _, err := calc.Power(ctx, scn); err != nil {
			return Estimate{}, fmt.Errorf("timing: probe run %d: %w", i, err)
		}
	}
	perRun := time.Since(start) / time.Duration(iterations)

	return Estimate{
		PerRun:     perRun,
		Total:      Extrapolate(perRun, plannedRuns, cores),
		Iterations: iterations,
		Runs:       plannedRuns,
		Cores:      cores,
	}, nil
}

// Extrapolate projects the wall time of runs calculations on a pool of
// cores workers: each worker processes a near-equal share in sequence.
func Extrapolate(perRun time.Duration, runs, cores int) time.Duration {
	if cores < 1 {
		cores = 1
	}
	batches := (runs + cores - 1) / cores
	return perRun * time.Duration(batches)
}
