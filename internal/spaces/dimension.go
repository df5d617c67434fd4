// Package spaces implements the hypergrid algebra used to describe parameter,
// context and objective spaces of an optimization problem.
package spaces

import (
	"fmt"
	"math"
)

// Kind identifies the family a dimension belongs to.
type Kind int

const (
	// Continuous dimensions hold float64 values within an interval.
	Continuous Kind = iota
	// Discrete dimensions hold integer values within an inclusive range.
	Discrete
	// Ordinal dimensions hold string values with a meaningful order.
	Ordinal
	// Categorical dimensions hold unordered string values.
	Categorical
)

// String returns the name used for the kind in serialized documents.
func (k Kind) String() string {
	switch k {
	case Continuous:
		return "ContinuousDimension"
	case Discrete:
		return "DiscreteDimension"
	case Ordinal:
		return "OrdinalDimension"
	case Categorical:
		return "CategoricalDimension"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Dimension is one named axis of a hypergrid.
type Dimension interface {
	// Name returns the dimension name.
	Name() string

	// Kind returns the dimension family.
	Kind() Kind

	// Contains reports whether v is a valid value of the dimension.
	Contains(v any) bool

	// WithName returns a copy of the dimension under a different name.
	WithName(name string) Dimension
}

// ContinuousDimension is a real interval.
type ContinuousDimension struct {
	name       string
	min        float64
	max        float64
	includeMin bool
	includeMax bool
}

// NewContinuousDimension creates a continuous dimension over [min, max] with the
// given bound inclusion.
func NewContinuousDimension(name string, min, max float64, includeMin, includeMax bool) *ContinuousDimension {
	if name == "" {
		panic("dimension name must not be empty")
	}
	if math.IsNaN(min) || math.IsNaN(max) || min > max {
		panic(fmt.Sprintf("invalid bounds for %q: [%v, %v]", name, min, max))
	}
	return &ContinuousDimension{
		name:       name,
		min:        min,
		max:        max,
		includeMin: includeMin,
		includeMax: includeMax,
	}
}

func (d *ContinuousDimension) Name() string { return d.name }
func (d *ContinuousDimension) Kind() Kind   { return Continuous }
func (d *ContinuousDimension) Min() float64 { return d.min }
func (d *ContinuousDimension) Max() float64 { return d.max }

// IncludeMin reports whether the lower bound belongs to the interval.
func (d *ContinuousDimension) IncludeMin() bool { return d.includeMin }

// IncludeMax reports whether the upper bound belongs to the interval.
func (d *ContinuousDimension) IncludeMax() bool { return d.includeMax }

func (d *ContinuousDimension) Contains(v any) bool {
	f, ok := AsFloat(v)
	if !ok || math.IsNaN(f) {
		return false
	}
	if f < d.min || (f == d.min && !d.includeMin) {
		return false
	}
	if f > d.max || (f == d.max && !d.includeMax) {
		return false
	}
	return true
}

func (d *ContinuousDimension) WithName(name string) Dimension {
	return NewContinuousDimension(name, d.min, d.max, d.includeMin, d.includeMax)
}

// DiscreteDimension is an inclusive integer range.
type DiscreteDimension struct {
	name string
	min  int64
	max  int64
}

// NewDiscreteDimension creates a discrete dimension over [min, max].
func NewDiscreteDimension(name string, min, max int64) *DiscreteDimension {
	if name == "" {
		panic("dimension name must not be empty")
	}
	if min > max {
		panic(fmt.Sprintf("invalid bounds for %q: [%d, %d]", name, min, max))
	}
	return &DiscreteDimension{name: name, min: min, max: max}
}

func (d *DiscreteDimension) Name() string { return d.name }
func (d *DiscreteDimension) Kind() Kind   { return Discrete }
func (d *DiscreteDimension) Min() int64   { return d.min }
func (d *DiscreteDimension) Max() int64   { return d.max }

func (d *DiscreteDimension) Contains(v any) bool {
	i, ok := toInt(v)
	return ok && i >= d.min && i <= d.max
}

func (d *DiscreteDimension) WithName(name string) Dimension {
	return NewDiscreteDimension(name, d.min, d.max)
}

// OrdinalDimension is an ordered set of string values.
type OrdinalDimension struct {
	name      string
	values    []string
	ascending bool
}

// NewOrdinalDimension creates an ordinal dimension. The values slice is copied.
func NewOrdinalDimension(name string, orderedValues []string, ascending bool) *OrdinalDimension {
	if name == "" {
		panic("dimension name must not be empty")
	}
	if err := checkValues(name, orderedValues); err != nil {
		panic(err.Error())
	}
	return &OrdinalDimension{
		name:      name,
		values:    append([]string(nil), orderedValues...),
		ascending: ascending,
	}
}

func (d *OrdinalDimension) Name() string    { return d.name }
func (d *OrdinalDimension) Kind() Kind      { return Ordinal }
func (d *OrdinalDimension) Ascending() bool { return d.ascending }

// Values returns a copy of the ordered values.
func (d *OrdinalDimension) Values() []string { return append([]string(nil), d.values...) }

// Index returns the position of v in the order, or -1.
func (d *OrdinalDimension) Index(v any) int { return indexOf(d.values, v) }

func (d *OrdinalDimension) Contains(v any) bool { return d.Index(v) >= 0 }

func (d *OrdinalDimension) WithName(name string) Dimension {
	return NewOrdinalDimension(name, d.values, d.ascending)
}

// CategoricalDimension is an unordered set of string values.
type CategoricalDimension struct {
	name   string
	values []string
}

// NewCategoricalDimension creates a categorical dimension. The values slice is copied.
func NewCategoricalDimension(name string, values []string) *CategoricalDimension {
	if name == "" {
		panic("dimension name must not be empty")
	}
	if err := checkValues(name, values); err != nil {
		panic(err.Error())
	}
	return &CategoricalDimension{name: name, values: append([]string(nil), values...)}
}

func (d *CategoricalDimension) Name() string { return d.name }
func (d *CategoricalDimension) Kind() Kind   { return Categorical }

// Values returns a copy of the allowed values.
func (d *CategoricalDimension) Values() []string { return append([]string(nil), d.values...) }

// Index returns the position of v among the values, or -1.
func (d *CategoricalDimension) Index(v any) int { return indexOf(d.values, v) }

func (d *CategoricalDimension) Contains(v any) bool { return d.Index(v) >= 0 }

func (d *CategoricalDimension) WithName(name string) Dimension {
	return NewCategoricalDimension(name, d.values)
}

func checkValues(name string, values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("dimension %q must have at least one value", name)
	}
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, dup := seen[v]; dup {
			return fmt.Errorf("dimension %q has duplicate value %q", name, v)
		}
		seen[v] = struct{}{}
	}
	return nil
}

func indexOf(values []string, v any) int {
	s, ok := v.(string)
	if !ok {
		return -1
	}
	for i, candidate := range values {
		if candidate == s {
			return i
		}
	}
	return -1
}

// AsFloat converts a numeric dimension value to float64.
func AsFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	default:
		return 0, false
	}
}

func toInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) {
			return 0, false
		}
		return int64(x), true
	default:
		return 0, false
	}
}
