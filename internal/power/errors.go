package power

import (
	"errors"
	"fmt"
)

// Domain errors for power calculations.
var (
	// ErrInvalidScenario indicates a scenario with out-of-range parameters.
	ErrInvalidScenario = errors.New("power: invalid scenario")

	// ErrInvalidConfig indicates a calculator configuration error.
	ErrInvalidConfig = errors.New("power: invalid config")

	// ErrTestFailed indicates the significance test itself errored.
	ErrTestFailed = errors.New("power: detection test failed")

	// ErrCondensedLocked indicates condensed mode was changed after the
	// calculator already ran.
	ErrCondensedLocked = errors.New("power: condensed mode must be set before the first run")
)

// TooFewSamplesError indicates a sampling plan too short to test.
type TooFewSamplesError struct {
	N int
}

func (e *TooFewSamplesError) Error() string {
	return fmt.Sprintf("power: sampling plan yields %d samples, need at least 3", e.N)
}
