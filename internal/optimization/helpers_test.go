package optimization

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/copyleftdev/tundr-problems/internal/spaces"
)

// assertMatDimsEqual checks if two matrices have the same dimensions
func assertMatDimsEqual(t *testing.T, got, want mat.Matrix) {
	t.Helper()

	rg, cg := got.Dims()
	rw, cw := want.Dims()

	if rg != rw || cg != cw {
		t.Fatalf("matrix dimensions mismatch: got %dx%d, want %dx%d", rg, cg, rw, cw)
	}
}

// assertMatEqual checks if two matrices are approximately equal.
// NaN entries match only NaN.
func assertMatEqual(t *testing.T, got, want mat.Matrix, tol float64) {
	t.Helper()

	assertMatDimsEqual(t, got, want)

	r, c := got.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			g := got.At(i, j)
			w := want.At(i, j)
			if math.IsNaN(w) {
				if !math.IsNaN(g) {
					t.Fatalf("at (%d,%d): got %v, want NaN", i, j, g)
				}
				continue
			}
			if math.Abs(g-w) > tol {
				t.Fatalf("at (%d,%d): got %v, want %v (tolerance %v)", i, j, g, w, tol)
			}
		}
	}
}

// testParameterSpace returns a two-dimensional parameter space.
func testParameterSpace() *spaces.SimpleHypergrid {
	return spaces.NewSimpleHypergrid("params",
		spaces.NewContinuousDimension("x", 0, 10, true, true),
		spaces.NewDiscreteDimension("size", 1, 64),
	)
}

func testObjectiveSpace() *spaces.SimpleHypergrid {
	return spaces.NewSimpleHypergrid("objectives",
		spaces.NewContinuousDimension("latency", 0, 1e6, true, true),
		spaces.NewContinuousDimension("throughput", 0, 1e6, true, true),
	)
}

func testContextSpace() *spaces.SimpleHypergrid {
	return spaces.NewSimpleHypergrid("context",
		spaces.NewCategoricalDimension("region", []string{"us", "eu"}),
	)
}

// mustProblem builds a problem or fails the test.
func mustProblem(t *testing.T, param, objective spaces.Hypergrid, objectives []Objective, context spaces.Hypergrid) *Problem {
	t.Helper()
	p, err := NewProblem(param, objective, objectives, context)
	if err != nil {
		t.Fatalf("NewProblem: %v", err)
	}
	return p
}
