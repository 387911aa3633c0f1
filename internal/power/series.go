package power

import "math"

// series builds the sampling times (years) and the noiseless
// concentration for a scenario. The trend starts only after the
// implementation delay.
func series(scn Scenario) (times, conc []float64, err error) {
	if err := scn.validate(); err != nil {
		return nil, nil, err
	}

	n := int(math.Round(scn.SamplingYears * scn.SamplesPerYear))
	if n < 3 {
		return nil, nil, &TooFewSamplesError{N: n}
	}

	slope := scn.EffectiveSlope()
	times = make([]float64, n)
	conc = make([]float64, n)

	for i := 0; i < n; i++ {
		t := float64(i) / scn.SamplesPerYear
		times[i] = t
		c := scn.InitialConc
		if t > scn.ImplementationYears {
			c += slope * (t - scn.ImplementationYears)
		}
		conc[i] = c
	}

	return times, conc, nil
}
