package sweep

import (
	"errors"
	"fmt"

	"github.com/san-kum/gwdetect/internal/power"
)

// Batch construction errors.
var (
	// ErrNoRuns indicates a sweep with no run identifiers.
	ErrNoRuns = errors.New("sweep: no run ids given")

	// ErrDuplicateID indicates two runs sharing one identifier.
	ErrDuplicateID = errors.New("sweep: duplicate run id")

	// ErrLengthMismatch indicates a per-run parameter list whose length
	// disagrees with the number of run ids.
	ErrLengthMismatch = errors.New("sweep: parameter length mismatch")
)

// Spec declares a batch: a list of run identifiers plus, per parameter,
// either one broadcast value or one value per run.
type Spec struct {
	IDs                 []string `yaml:"ids"`
	InitialConc         Values   `yaml:"initial_conc"`
	TargetConc          Values   `yaml:"target_conc"`
	Slope               Values   `yaml:"slope"`
	NoiseSD             Values   `yaml:"noise_sd"`
	SamplingYears       Values   `yaml:"sampling_years"`
	SamplesPerYear      Values   `yaml:"samples_per_year"`
	ImplementationYears Values   `yaml:"implementation_years"`
	Seed                Values   `yaml:"seed"`
}

// Scenarios expands the spec into one scenario per run id. It fails
// fast on empty or duplicate ids and on mismatched list lengths, before
// any simulation starts.
func (s Spec) Scenarios() ([]power.Scenario, error) {
	n := len(s.IDs)
	if n == 0 {
		return nil, ErrNoRuns
	}

	seen := make(map[string]struct{}, n)
	for _, id := range s.IDs {
		if id == "" {
			return nil, fmt.Errorf("%w: empty run id", ErrNoRuns)
		}
		if _, ok := seen[id]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, id)
		}
		seen[id] = struct{}{}
	}

	params := []struct {
		name string
		vals Values
	}{
		{"initial_conc", s.InitialConc},
		{"target_conc", s.TargetConc},
		{"slope", s.Slope},
		{"noise_sd", s.NoiseSD},
		{"sampling_years", s.SamplingYears},
		{"samples_per_year", s.SamplesPerYear},
		{"implementation_years", s.ImplementationYears},
		{"seed", s.Seed},
	}
	for _, p := range params {
		if len(p.vals) > 1 && len(p.vals) != n {
			return nil, fmt.Errorf("%w: %s has %d values for %d runs", ErrLengthMismatch, p.name, len(p.vals), n)
		}
	}

	scenarios := make([]power.Scenario, n)
	for i, id := range s.IDs {
		scenarios[i] = power.Scenario{
			ID:                  id,
			InitialConc:         s.InitialConc.at(i),
			TargetConc:          s.TargetConc.at(i),
			Slope:               s.Slope.at(i),
			NoiseSD:             s.NoiseSD.at(i),
			SamplingYears:       s.SamplingYears.at(i),
			SamplesPerYear:      s.SamplesPerYear.at(i),
			ImplementationYears: s.ImplementationYears.at(i),
			Seed:                int64(s.Seed.at(i)),
		}
	}
	return scenarios, nil
}
