// Package power estimates trend detection power for groundwater
// monitoring scenarios.
//
// Detection power is the probability that a significance test flags a
// true concentration trend given noisy samples. The package defines the
// core types:
//
//   - [Scenario]: one monitoring setup (trend, noise, sampling plan)
//   - [Config]: calculator-wide settings (test, replicate count, alpha)
//   - [Calculator]: the Monte Carlo power estimate
//   - [DetectionTest]: pluggable significance test
//   - [Result]: one row of a results table, with a text error column
//
// # Approximation modes
//
// Efficient mode short-circuits to zero power when even the noiseless
// signal fails the test. Condensed mode rounds scenario parameters so
// that nearby scenarios share one simulation result:
//
//	calc, _ := power.New(cfg, stats.LinearRegression{})
//	_ = calc.SetCondensed(condense.Precisions{"noise_sd": 1})
//	res, _ := calc.Power(ctx, scn)
package power
