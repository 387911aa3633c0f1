package condense

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestRound(t *testing.T) {
	tests := []struct {
		v        float64
		decimals int
		want     float64
	}{
		{1.2345, 2, 1.23},
		{1.235, 2, 1.24},
		{-1.2345, 2, -1.23},
		{1.5, 0, 2},
		{123.456, 0, 123},
		{0.0004, 3, 0},
	}

	for _, tt := range tests {
		if got := Round(tt.v, tt.decimals); got != tt.want {
			t.Errorf("Round(%v, %d) = %v, want %v", tt.v, tt.decimals, got, tt.want)
		}
	}
}

func TestKeyCollapsesNearbyValues(t *testing.T) {
	p := Precisions{"noise_sd": 1, "slope": 2}

	a := p.Key(map[string]float64{"noise_sd": 2.01, "slope": -0.501})
	b := p.Key(map[string]float64{"noise_sd": 2.04, "slope": -0.499})
	if a != b {
		t.Errorf("nearby values should share a key: %q vs %q", a, b)
	}

	c := p.Key(map[string]float64{"noise_sd": 2.2, "slope": -0.5})
	if a == c {
		t.Errorf("values beyond precision must not share a key: %q", c)
	}
}

func TestKeyUnlistedParameterKeepsPrecision(t *testing.T) {
	p := Precisions{"noise_sd": 1}

	a := p.Key(map[string]float64{"noise_sd": 2, "initial_conc": 10.001})
	b := p.Key(map[string]float64{"noise_sd": 2, "initial_conc": 10.002})
	if a == b {
		t.Error("unlisted parameters must keep full precision")
	}
}

func TestPrecisionsValidate(t *testing.T) {
	known := []string{"noise_sd", "slope"}

	if err := (Precisions{"noise_sd": 2}).Validate(known); err != nil {
		t.Errorf("valid precisions rejected: %v", err)
	}
	if err := (Precisions{"bogus": 2}).Validate(known); err == nil {
		t.Error("unknown parameter accepted")
	}
	if err := (Precisions{"slope": -1}).Validate(known); err == nil {
		t.Error("negative precision accepted")
	}
}

func TestCacheComputesOnce(t *testing.T) {
	c := NewCache()

	calls := 0
	fn := func() (any, error) {
		calls++
		return 42, nil
	}

	v1, err, cached1 := c.Do("k", fn)
	if err != nil || v1 != 42 || cached1 {
		t.Fatalf("first Do: v=%v err=%v cached=%v", v1, err, cached1)
	}

	v2, err, cached2 := c.Do("k", fn)
	if err != nil || v2 != 42 || !cached2 {
		t.Fatalf("second Do: v=%v err=%v cached=%v", v2, err, cached2)
	}

	if calls != 1 {
		t.Errorf("fn called %d times, want 1", calls)
	}
	if c.Hits() != 1 || c.Misses() != 1 {
		t.Errorf("hits=%d misses=%d, want 1/1", c.Hits(), c.Misses())
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestCacheCachesErrors(t *testing.T) {
	c := NewCache()
	boom := errors.New("boom")

	_, err, _ := c.Do("k", func() (any, error) { return nil, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	_, err, cached := c.Do("k", func() (any, error) { return 1, nil })
	if !errors.Is(err, boom) || !cached {
		t.Errorf("cached error not returned: err=%v cached=%v", err, cached)
	}
}

func TestCacheConcurrent(t *testing.T) {
	c := NewCache()

	var mu sync.Mutex
	calls := map[string]int{}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		key := fmt.Sprintf("k%d", i%5)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = c.Do(key, func() (any, error) {
				mu.Lock()
				calls[key]++
				mu.Unlock()
				return key, nil
			})
		}()
	}
	wg.Wait()

	for key, n := range calls {
		if n != 1 {
			t.Errorf("key %s computed %d times", key, n)
		}
	}
	if c.Len() != 5 {
		t.Errorf("Len() = %d, want 5", c.Len())
	}
}
