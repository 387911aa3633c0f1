package config

import (
	"sort"

	"github.com/san-kum/gwdetect/internal/power"
	"github.com/san-kum/gwdetect/internal/sweep"
)

// Presets are ready-made sweeps for quick exploration: a noise ladder
// at a fixed trend, and a sampling-frequency ladder at fixed noise.
func newPresets() map[string]*Config {
	return map[string]*Config{
		"noise-ladder": {
			Calculator: power.DefaultConfig(),
			Sweep: sweep.Spec{
				IDs:            []string{"sd_0p5", "sd_1", "sd_2", "sd_3", "sd_5"},
				InitialConc:    sweep.Scalar(10),
				Slope:          sweep.Scalar(-0.5),
				NoiseSD:        sweep.Values{0.5, 1, 2, 3, 5},
				SamplingYears:  sweep.Scalar(10),
				SamplesPerYear: sweep.Scalar(4),
			},
			LogLevel: "info",
		},
		"sampling-ladder": {
			Calculator: power.DefaultConfig(),
			Sweep: sweep.Spec{
				IDs:            []string{"spy_1", "spy_2", "spy_4", "spy_12", "spy_26"},
				InitialConc:    sweep.Scalar(10),
				Slope:          sweep.Scalar(-0.5),
				NoiseSD:        sweep.Scalar(2),
				SamplingYears:  sweep.Scalar(10),
				SamplesPerYear: sweep.Values{1, 2, 4, 12, 26},
			},
			LogLevel: "info",
		},
	}
}

// GetPreset returns a named preset sweep, or nil if unknown.
func GetPreset(name string) *Config {
	return newPresets()[name]
}

// ListPresets lists the available preset names.
func ListPresets() []string {
	presets := newPresets()
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
