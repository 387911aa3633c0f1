package power

import (
	"context"
	"fmt"
	"time"
)

// Scenario describes one simulated monitoring setup: a starting
// concentration, the trend to detect, the noise around it, and the
// sampling plan used to observe it.
type Scenario struct {
	ID                  string  `json:"id" yaml:"id"`
	InitialConc         float64 `json:"initial_conc" yaml:"initial_conc"`
	TargetConc          float64 `json:"target_conc" yaml:"target_conc"`
	Slope               float64 `json:"slope" yaml:"slope"`
	NoiseSD             float64 `json:"noise_sd" yaml:"noise_sd"`
	SamplingYears       float64 `json:"sampling_years" yaml:"sampling_years"`
	SamplesPerYear      float64 `json:"samples_per_year" yaml:"samples_per_year"`
	ImplementationYears float64 `json:"implementation_years" yaml:"implementation_years"`
	Seed                int64   `json:"seed" yaml:"seed"`
}

// FieldNames lists the numeric scenario parameters in canonical order.
// Condensed-mode keys and CSV headers both follow this order.
func FieldNames() []string {
	return []string{
		"initial_conc",
		"target_conc",
		"slope",
		"noise_sd",
		"sampling_years",
		"samples_per_year",
		"implementation_years",
	}
}

// Field returns the named numeric parameter.
func (s Scenario) Field(name string) (float64, error) {
	switch name {
	case "initial_conc":
		return s.InitialConc, nil
	case "target_conc":
		return s.TargetConc, nil
	case "slope":
		return s.Slope, nil
	case "noise_sd":
		return s.NoiseSD, nil
	case "sampling_years":
		return s.SamplingYears, nil
	case "samples_per_year":
		return s.SamplesPerYear, nil
	case "implementation_years":
		return s.ImplementationYears, nil
	default:
		return 0, fmt.Errorf("%w: unknown parameter %q", ErrInvalidScenario, name)
	}
}

// EffectiveSlope resolves the trend rate. An explicit Slope wins;
// otherwise the slope is derived from TargetConc over the post
// implementation sampling window.
func (s Scenario) EffectiveSlope() float64 {
	if s.Slope != 0 {
		return s.Slope
	}
	if s.TargetConc == 0 {
		return 0
	}
	window := s.SamplingYears - s.ImplementationYears
	if window <= 0 {
		return 0
	}
	return (s.TargetConc - s.InitialConc) / window
}

func (s Scenario) validate() error {
	if s.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidScenario)
	}
	if s.SamplingYears <= 0 {
		return fmt.Errorf("%w: sampling_years must be positive, got %g", ErrInvalidScenario, s.SamplingYears)
	}
	if s.SamplesPerYear <= 0 {
		return fmt.Errorf("%w: samples_per_year must be positive, got %g", ErrInvalidScenario, s.SamplesPerYear)
	}
	if s.NoiseSD < 0 {
		return fmt.Errorf("%w: noise_sd must be non-negative, got %g", ErrInvalidScenario, s.NoiseSD)
	}
	if s.ImplementationYears < 0 || s.ImplementationYears >= s.SamplingYears {
		return fmt.Errorf("%w: implementation_years must be in [0, sampling_years), got %g", ErrInvalidScenario, s.ImplementationYears)
	}
	return nil
}

// Result is one row of a results table. Err is empty on success; a
// failed run carries the captured failure text instead of a power.
type Result struct {
	Scenario

	Power    float64       `json:"power"`
	Detected int           `json:"detected"`
	NSims    int           `json:"nsims"`
	PValue   float64       `json:"p_value"`
	Cached   bool          `json:"cached"`
	Elapsed  time.Duration `json:"elapsed"`
	Err      string        `json:"error,omitempty"`
}

// Failed reports whether this run raised instead of producing a power.
func (r Result) Failed() bool { return r.Err != "" }

// DetectionTest decides whether a sampled concentration series shows a
// statistically significant trend at the given level.
type DetectionTest interface {
	Name() string
	Detect(times, conc []float64, alpha float64) (detected bool, pValue float64, err error)
}

// PowerCalculator is the single-run contract the batch dispatcher and
// the timing probe operate on.
type PowerCalculator interface {
	Power(ctx context.Context, scn Scenario) (Result, error)
}
