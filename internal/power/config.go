package power

import (
	"fmt"
	"runtime"
)

const (
	DefaultNSims = 1000
	DefaultAlpha = 0.05
	DefaultTest  = "linear-regression"
)

// Config holds calculator-wide settings; per-run settings live on the
// Scenario.
type Config struct {
	Test          string  `json:"test" yaml:"test"`
	NSims         int     `json:"nsims" yaml:"nsims"`
	Alpha         float64 `json:"alpha" yaml:"alpha"`
	Cores         int     `json:"cores" yaml:"cores"`
	EfficientMode bool    `json:"efficient_mode" yaml:"efficient_mode"`
	Seed          int64   `json:"seed" yaml:"seed"`
}

func DefaultConfig() Config {
	return Config{
		Test:          DefaultTest,
		NSims:         DefaultNSims,
		Alpha:         DefaultAlpha,
		Cores:         runtime.NumCPU(),
		EfficientMode: true,
		Seed:          1,
	}
}

func (c Config) Validate() error {
	if c.NSims <= 0 {
		return fmt.Errorf("%w: nsims must be positive, got %d", ErrInvalidConfig, c.NSims)
	}
	if c.Alpha <= 0 || c.Alpha >= 1 {
		return fmt.Errorf("%w: alpha must be in (0, 1), got %g", ErrInvalidConfig, c.Alpha)
	}
	if c.Cores < 1 {
		return fmt.Errorf("%w: cores must be at least 1, got %d", ErrInvalidConfig, c.Cores)
	}
	if c.Seed == 0 {
		return fmt.Errorf("%w: seed must be non-zero", ErrInvalidConfig)
	}
	return nil
}
