package optimization

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/copyleftdev/tundr-problems/internal/spaces"
)

// ErrEmptyFeatureMatrix is returned when a feature matrix would have no rows
// or no columns.
var ErrEmptyFeatureMatrix = errors.New("feature matrix is empty")

// FeatureMatrix lays points out as rows over the modeling dimensions of the
// feature space. Meta dimensions are dropped. Values absent from a point are
// NaN; ordinal and categorical values are encoded as their index.
func (p *Problem) FeatureMatrix(points []spaces.Point) (*mat.Dense, []string, error) {
	const op = "FeatureMatrix"

	dims := ModelingDimensions(p.featureSpace)
	if len(points) == 0 || len(dims) == 0 {
		return nil, nil, newError(op, ErrEmptyFeatureMatrix, "%d points over %d dimensions", len(points), len(dims))
	}

	m := mat.NewDense(len(points), len(dims), nil)
	for i, point := range points {
		for j, d := range dims {
			v, ok := point[d.Name()]
			if !ok {
				m.Set(i, j, math.NaN())
				continue
			}
			x, err := featureValue(d, v)
			if err != nil {
				return nil, nil, newError(op, err, "row %d", i)
			}
			m.Set(i, j, x)
		}
	}
	return m, spaces.Names(dims), nil
}

func featureValue(d spaces.Dimension, v any) (float64, error) {
	if !d.Contains(v) {
		return 0, fmt.Errorf("value %v is outside dimension %q", v, d.Name())
	}
	switch dd := d.(type) {
	case *spaces.OrdinalDimension:
		return float64(dd.Index(v)), nil
	case *spaces.CategoricalDimension:
		return float64(dd.Index(v)), nil
	}
	x, ok := spaces.AsFloat(v)
	if !ok {
		return 0, fmt.Errorf("value %v of dimension %q is not numeric", v, d.Name())
	}
	return x, nil
}
