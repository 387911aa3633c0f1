package power

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/san-kum/gwdetect/internal/condense"
)

// Calculator estimates detection power: the fraction of noisy replicates
// of a scenario in which the significance test flags the trend.
type Calculator struct {
	cfg  Config
	test DetectionTest

	mu      sync.Mutex
	started bool
	prec    condense.Precisions
	cache   *condense.Cache
}

func New(cfg Config, test DetectionTest) (*Calculator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if test == nil {
		return nil, fmt.Errorf("%w: nil detection test", ErrInvalidConfig)
	}
	return &Calculator{cfg: cfg, test: test}, nil
}

func (c *Calculator) Config() Config { return c.cfg }

// SetCondensed enables condensed mode with the given rounding
// precisions (nil selects the defaults). It must be called before the
// first run; results computed under one precision map cannot be shared
// with another.
func (c *Calculator) SetCondensed(prec condense.Precisions) error {
	if prec == nil {
		prec = condense.Default()
	}
	if err := prec.Validate(FieldNames()); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return ErrCondensedLocked
	}
	c.prec = prec
	c.cache = condense.NewCache()
	return nil
}

// Condensed reports whether condensed mode is active and the cache
// hit/miss counts so far.
func (c *Calculator) Condensed() (active bool, hits, misses int64) {
	c.mu.Lock()
	cache := c.cache
	c.mu.Unlock()
	if cache == nil {
		return false, 0, 0
	}
	return true, cache.Hits(), cache.Misses()
}

// Power runs the Monte Carlo estimate for one scenario. With condensed
// mode active, scenarios that round onto the same key share one result.
func (c *Calculator) Power(ctx context.Context, scn Scenario) (Result, error) {
	c.mu.Lock()
	c.started = true
	cache := c.cache
	prec := c.prec
	c.mu.Unlock()

	if cache == nil {
		return c.simulate(ctx, scn)
	}

	key := prec.Key(c.fieldMap(scn))
	val, err, cached := cache.Do(key, func() (any, error) {
		res, err := c.simulate(ctx, scn)
		if err != nil {
			return Result{}, err
		}
		return res, nil
	})
	if err != nil {
		return Result{}, err
	}

	res := val.(Result)
	res.Scenario = scn
	res.Cached = cached
	return res, nil
}

func (c *Calculator) fieldMap(scn Scenario) map[string]float64 {
	fields := make(map[string]float64, len(FieldNames()))
	for _, name := range FieldNames() {
		v, _ := scn.Field(name)
		fields[name] = v
	}
	return fields
}

func (c *Calculator) simulate(ctx context.Context, scn Scenario) (Result, error) {
	start := time.Now()

	times, truth, err := series(scn)
	if err != nil {
		return Result{}, err
	}

	res := Result{Scenario: scn, NSims: c.cfg.NSims}

	// Efficient mode: if even the noiseless signal is not detected,
	// no noisy replicate can help on average. Short-circuit to zero.
	detected, pval, err := c.test.Detect(times, truth, c.cfg.Alpha)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s on noiseless series: %v", ErrTestFailed, c.test.Name(), err)
	}
	res.PValue = pval
	if c.cfg.EfficientMode && !detected {
		res.Elapsed = time.Since(start)
		return res, nil
	}

	seed := scn.Seed
	if seed == 0 {
		seed = c.cfg.Seed
	}
	rng := rand.New(rand.NewSource(seed))

	noisy := make([]float64, len(truth))
	for i := 0; i < c.cfg.NSims; i++ {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		default:
		}

		for j, v := range truth {
			noisy[j] = v + rng.NormFloat64()*scn.NoiseSD
		}

		hit, _, err := c.test.Detect(times, noisy, c.cfg.Alpha)
		if err != nil {
			return Result{}, fmt.Errorf("%w: %s on replicate %d: %v", ErrTestFailed, c.test.Name(), i, err)
		}
		if hit {
			res.Detected++
		}
	}

	res.Power = 100 * float64(res.Detected) / float64(c.cfg.NSims)
	res.Elapsed = time.Since(start)
	return res, nil
}
