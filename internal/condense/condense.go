// Package condense implements the condensed-mode approximation: numeric
// parameters are rounded to a configured precision so that nearby
// scenarios collapse onto one simulation result.
package condense

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// Precisions maps a parameter name to the number of decimal places kept
// when building a condensed key for that parameter.
type Precisions map[string]int

// Default returns the rounding precisions used when condensed mode is
// enabled without explicit settings.
func Default() Precisions {
	return Precisions{
		"initial_conc":         2,
		"target_conc":          2,
		"slope":                3,
		"noise_sd":             2,
		"sampling_years":       1,
		"samples_per_year":     0,
		"implementation_years": 1,
	}
}

// Validate checks every configured parameter against the known names
// and rejects negative precisions.
func (p Precisions) Validate(known []string) error {
	for name, decimals := range p {
		if decimals < 0 {
			return fmt.Errorf("condense: negative precision %d for %q", decimals, name)
		}
		found := false
		for _, k := range known {
			if k == name {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("condense: unknown parameter %q", name)
		}
	}
	return nil
}

// Round rounds v to the given number of decimal places.
func Round(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}

// Format renders a rounded value with a fixed number of decimals so that
// equal rounded values always produce identical key fragments.
func Format(v float64, decimals int) string {
	return strconv.FormatFloat(Round(v, decimals), 'f', decimals, 64)
}

// Key builds the canonical condensed key from named parameter values.
// Parameters absent from the precision map keep full precision.
func (p Precisions) Key(fields map[string]float64) string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(name)
		b.WriteByte('=')
		if decimals, ok := p[name]; ok {
			b.WriteString(Format(fields[name], decimals))
		} else {
			b.WriteString(strconv.FormatFloat(fields[name], 'g', -1, 64))
		}
	}
	return b.String()
}

type entry struct {
	once sync.Once
	val  any
	err  error
}

// Cache shares one computed result between all scenarios that condense
// onto the same key. Safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	hits    atomic.Int64
	misses  atomic.Int64
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]*entry)}
}

// Do returns the cached value for key, computing it with fn exactly once.
// cached reports whether another caller already owned the computation.
func (c *Cache) Do(key string, fn func() (any, error)) (val any, err error, cached bool) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	c.mu.Unlock()

	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}

	e.once.Do(func() {
		e.val, e.err = fn()
	})
	return e.val, e.err, ok
}

func (c *Cache) Hits() int64   { return c.hits.Load() }
func (c *Cache) Misses() int64 { return c.misses.Load() }

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
