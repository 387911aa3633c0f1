package stats

import (
	"fmt"
	"sort"

	"github.com/san-kum/gwdetect/internal/power"
)

var tests = map[string]power.DetectionTest{
	LinearRegression{}.Name(): LinearRegression{},
	MannKendall{}.Name():      MannKendall{},
}

// New returns the named significance test.
func New(name string) (power.DetectionTest, error) {
	t, ok := tests[name]
	if !ok {
		return nil, fmt.Errorf("stats: unknown test %q (available: %v)", name, Names())
	}
	return t, nil
}

// Names lists the available significance tests.
func Names() []string {
	names := make([]string, 0, len(tests))
	for name := range tests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
