package sweep

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Values is a sweep parameter given either as a single value broadcast
// to every run or as one value per run.
type Values []float64

// Scalar wraps a single broadcast value.
func Scalar(v float64) Values { return Values{v} }

// UnmarshalYAML accepts either a bare number or a sequence of numbers.
func (v *Values) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var f float64
		if err := node.Decode(&f); err != nil {
			return fmt.Errorf("sweep: parameter must be a number: %w", err)
		}
		*v = Values{f}
		return nil
	case yaml.SequenceNode:
		var fs []float64
		if err := node.Decode(&fs); err != nil {
			return fmt.Errorf("sweep: parameter list must be numbers: %w", err)
		}
		*v = fs
		return nil
	default:
		return fmt.Errorf("sweep: parameter must be a number or a list of numbers")
	}
}

// at returns the value for run i, broadcasting scalars. Lengths are
// checked by Spec.Scenarios before at is ever called.
func (v Values) at(i int) float64 {
	if len(v) == 0 {
		return 0
	}
	if len(v) == 1 {
		return v[0]
	}
	return v[i]
}
