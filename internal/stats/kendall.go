package stats

import (
	"fmt"
	"math"
)

// MannKendall detects a monotonic trend with the non-parametric
// Mann-Kendall test, using the tie-corrected normal approximation.
type MannKendall struct{}

func (MannKendall) Name() string { return "mann-kendall" }

func (MannKendall) Detect(times, conc []float64, alpha float64) (bool, float64, error) {
	n := len(conc)
	if n != len(times) {
		return false, 0, fmt.Errorf("stats: length mismatch: %d times, %d values", len(times), n)
	}
	if n < 3 {
		return false, 0, fmt.Errorf("stats: need at least 3 samples, got %d", n)
	}

	var s float64
	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			switch {
			case conc[j] > conc[i]:
				s++
			case conc[j] < conc[i]:
				s--
			}
		}
	}

	variance := mkVariance(conc)
	if variance <= 0 {
		// All values tied: no evidence of trend.
		return false, 1, nil
	}

	// Continuity correction.
	var z float64
	switch {
	case s > 0:
		z = (s - 1) / math.Sqrt(variance)
	case s < 0:
		z = (s + 1) / math.Sqrt(variance)
	}

	p := normTwoSided(z)
	return p < alpha, p, nil
}

// mkVariance computes Var(S) with the tie correction.
func mkVariance(conc []float64) float64 {
	n := float64(len(conc))
	variance := n * (n - 1) * (2*n + 5) / 18

	ties := make(map[float64]float64, len(conc))
	for _, v := range conc {
		ties[v]++
	}
	for _, tp := range ties {
		if tp > 1 {
			variance -= tp * (tp - 1) * (2*tp + 5) / 18
		}
	}
	return variance
}
