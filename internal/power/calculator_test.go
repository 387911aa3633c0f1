package power

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/san-kum/gwdetect/internal/condense"
)

// thresholdTest flags a decline of more than one unit between the first
// and last sample. Deterministic stand-in for a real significance test.
type thresholdTest struct{}

func (thresholdTest) Name() string { return "threshold" }

func (thresholdTest) Detect(times, conc []float64, alpha float64) (bool, float64, error) {
	drop := conc[0] - conc[len(conc)-1]
	if drop > 1.0 {
		return true, 0.01, nil
	}
	return false, 0.5, nil
}

type failingTest struct{}

func (failingTest) Name() string { return "failing" }

func (failingTest) Detect(times, conc []float64, alpha float64) (bool, float64, error) {
	return false, 0, errors.New("numeric blowup")
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.NSims = 200
	cfg.Seed = 42
	return cfg
}

func trendScenario(id string) Scenario {
	return Scenario{
		ID:             id,
		InitialConc:    10,
		Slope:          -0.5,
		NoiseSD:        2,
		SamplingYears:  10,
		SamplesPerYear: 4,
	}
}

func TestPowerBounds(t *testing.T) {
	calc, err := New(testConfig(), thresholdTest{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	res, err := calc.Power(context.Background(), trendScenario("a"))
	if err != nil {
		t.Fatalf("Power failed: %v", err)
	}

	if res.Power < 0 || res.Power > 100 {
		t.Errorf("power out of range: %f", res.Power)
	}
	if res.NSims != 200 {
		t.Errorf("expected 200 sims, got %d", res.NSims)
	}
	if res.Detected < 0 || res.Detected > res.NSims {
		t.Errorf("detected out of range: %d", res.Detected)
	}
}

func TestPowerDeterministicForSeed(t *testing.T) {
	scn := trendScenario("a")

	var powers [2]float64
	for i := range powers {
		calc, err := New(testConfig(), thresholdTest{})
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		res, err := calc.Power(context.Background(), scn)
		if err != nil {
			t.Fatalf("Power failed: %v", err)
		}
		powers[i] = res.Power
	}

	if powers[0] != powers[1] {
		t.Errorf("same seed produced different powers: %f vs %f", powers[0], powers[1])
	}
}

func TestEfficientModeShortCircuit(t *testing.T) {
	cfg := testConfig()
	cfg.EfficientMode = true
	calc, err := New(cfg, thresholdTest{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// No trend: the noiseless series cannot trip the test.
	scn := trendScenario("flat")
	scn.Slope = 0

	res, err := calc.Power(context.Background(), scn)
	if err != nil {
		t.Fatalf("Power failed: %v", err)
	}
	if res.Power != 0 || res.Detected != 0 {
		t.Errorf("efficient mode should short-circuit to zero power, got %f (%d detected)", res.Power, res.Detected)
	}
}

func TestPowerCanceledContext(t *testing.T) {
	calc, err := New(testConfig(), thresholdTest{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := calc.Power(ctx, trendScenario("a")); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestPowerTestFailure(t *testing.T) {
	calc, err := New(testConfig(), failingTest{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, err = calc.Power(context.Background(), trendScenario("a"))
	if !errors.Is(err, ErrTestFailed) {
		t.Errorf("expected ErrTestFailed, got %v", err)
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero nsims", func(c *Config) { c.NSims = 0 }},
		{"alpha too high", func(c *Config) { c.Alpha = 1.5 }},
		{"alpha zero", func(c *Config) { c.Alpha = 0 }},
		{"zero cores", func(c *Config) { c.Cores = 0 }},
		{"zero seed", func(c *Config) { c.Seed = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			if _, err := New(cfg, thresholdTest{}); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSetCondensedSharesResults(t *testing.T) {
	calc, err := New(testConfig(), thresholdTest{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := calc.SetCondensed(condense.Precisions{"noise_sd": 1}); err != nil {
		t.Fatalf("SetCondensed failed: %v", err)
	}

	a := trendScenario("a")
	a.NoiseSD = 2.01
	b := trendScenario("b")
	b.NoiseSD = 2.04 // rounds onto the same key as 2.01 at one decimal

	resA, err := calc.Power(context.Background(), a)
	if err != nil {
		t.Fatalf("Power(a) failed: %v", err)
	}
	resB, err := calc.Power(context.Background(), b)
	if err != nil {
		t.Fatalf("Power(b) failed: %v", err)
	}

	if resA.Cached {
		t.Error("first run should not be cached")
	}
	if !resB.Cached {
		t.Error("second run should share the first result")
	}
	if resA.Power != resB.Power {
		t.Errorf("shared result differs: %f vs %f", resA.Power, resB.Power)
	}
	if resB.ID != "b" {
		t.Errorf("shared result must keep its own id, got %q", resB.ID)
	}

	if active, hits, misses := calc.Condensed(); !active || hits != 1 || misses != 1 {
		t.Errorf("expected active cache with 1 hit / 1 miss, got active=%v hits=%d misses=%d", active, hits, misses)
	}
}

func TestSetCondensedDistinguishesBeyondPrecision(t *testing.T) {
	calc, err := New(testConfig(), thresholdTest{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := calc.SetCondensed(nil); err != nil {
		t.Fatalf("SetCondensed failed: %v", err)
	}

	a := trendScenario("a")
	b := trendScenario("b")
	b.NoiseSD = a.NoiseSD + 1

	if _, err := calc.Power(context.Background(), a); err != nil {
		t.Fatalf("Power(a) failed: %v", err)
	}
	resB, err := calc.Power(context.Background(), b)
	if err != nil {
		t.Fatalf("Power(b) failed: %v", err)
	}
	if resB.Cached {
		t.Error("distinct scenarios must not share a result")
	}
}

func TestSetCondensedAfterRunFails(t *testing.T) {
	calc, err := New(testConfig(), thresholdTest{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := calc.Power(context.Background(), trendScenario("a")); err != nil {
		t.Fatalf("Power failed: %v", err)
	}

	if err := calc.SetCondensed(nil); !errors.Is(err, ErrCondensedLocked) {
		t.Errorf("expected ErrCondensedLocked, got %v", err)
	}
}

func TestSetCondensedRejectsBadPrecisions(t *testing.T) {
	calc, err := New(testConfig(), thresholdTest{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := calc.SetCondensed(condense.Precisions{"bogus": 2}); err == nil {
		t.Error("expected error for unknown parameter")
	}
	if err := calc.SetCondensed(condense.Precisions{"noise_sd": -1}); err == nil {
		t.Error("expected error for negative precision")
	}
}

func TestPowerHighSignal(t *testing.T) {
	// Nearly noiseless strong decline: every replicate should detect.
	calc, err := New(testConfig(), thresholdTest{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	scn := trendScenario("strong")
	scn.NoiseSD = 0.001

	res, err := calc.Power(context.Background(), scn)
	if err != nil {
		t.Fatalf("Power failed: %v", err)
	}
	if res.Power != 100 {
		t.Errorf("expected 100%% power, got %f", res.Power)
	}
}

func ExampleCalculator_Power() {
	calc, _ := New(Config{
		Test:  "threshold",
		NSims: 100,
		Alpha: 0.05,
		Cores: 1,
		Seed:  7,
	}, thresholdTest{})

	res, _ := calc.Power(context.Background(), Scenario{
		ID:             "well-12",
		InitialConc:    10,
		Slope:          -1,
		NoiseSD:        0.001,
		SamplingYears:  10,
		SamplesPerYear: 4,
	})
	fmt.Printf("%.0f%%\n", res.Power)
	// Output: 100%
}
