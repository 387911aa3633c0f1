package stats

import (
	"fmt"
	"math"
)

// LinearRegression detects a trend with an ordinary least squares fit
// and a two-sided t test on the slope.
type LinearRegression struct{}

func (LinearRegression) Name() string { return "linear-regression" }

func (LinearRegression) Detect(times, conc []float64, alpha float64) (bool, float64, error) {
	n := len(times)
	if n != len(conc) {
		return false, 0, fmt.Errorf("stats: length mismatch: %d times, %d values", n, len(conc))
	}
	if n < 3 {
		return false, 0, fmt.Errorf("stats: need at least 3 samples, got %d", n)
	}

	var sumT, sumC float64
	for i := 0; i < n; i++ {
		sumT += times[i]
		sumC += conc[i]
	}
	meanT := sumT / float64(n)
	meanC := sumC / float64(n)

	var sxx, sxy float64
	for i := 0; i < n; i++ {
		dt := times[i] - meanT
		sxx += dt * dt
		sxy += dt * (conc[i] - meanC)
	}
	if sxx == 0 {
		return false, 0, fmt.Errorf("stats: degenerate sampling times")
	}

	slope := sxy / sxx
	intercept := meanC - slope*meanT

	var sse float64
	for i := 0; i < n; i++ {
		resid := conc[i] - (intercept + slope*times[i])
		sse += resid * resid
	}

	df := float64(n - 2)
	s2 := sse / df
	if s2 <= 0 {
		// Perfect fit: any non-zero slope is unambiguous.
		if slope != 0 {
			return true, 0, nil
		}
		return false, 1, nil
	}

	t := slope / math.Sqrt(s2/sxx)
	p := tTestPValue(t, df)
	return p < alpha, p, nil
}
