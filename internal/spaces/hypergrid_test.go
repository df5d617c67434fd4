package spaces

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cacheGrid(t *testing.T) *SimpleHypergrid {
	t.Helper()

	root := NewSimpleHypergrid("cache",
		NewCategoricalDimension("implementation", []string{"lru", "fifo"}),
		NewDiscreteDimension("size", 1, 1024),
	)
	lru := NewSimpleHypergrid("lru",
		NewContinuousDimension("decay", 0, 1, true, false),
	)
	joined, err := root.Join(lru, NewCategoricalDimension("implementation", []string{"lru"}))
	require.NoError(t, err)
	return joined
}

func TestDimensionContains(t *testing.T) {
	tests := []struct {
		name string
		dim  Dimension
		in   []any
		out  []any
	}{
		{
			name: "continuous half open",
			dim:  NewContinuousDimension("x", 0, 1, true, false),
			in:   []any{0.0, 0.5, 0},
			out:  []any{1.0, -0.1, "0.5", nil},
		},
		{
			name: "discrete inclusive",
			dim:  NewDiscreteDimension("n", 1, 3),
			in:   []any{1, int64(3), 2.0},
			out:  []any{0, 4, 2.5},
		},
		{
			name: "ordinal",
			dim:  NewOrdinalDimension("tier", []string{"low", "mid", "high"}, true),
			in:   []any{"low", "high"},
			out:  []any{"max", 1},
		},
		{
			name: "categorical",
			dim:  NewCategoricalDimension("impl", []string{"a", "b"}),
			in:   []any{"a"},
			out:  []any{"c", nil},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, v := range tt.in {
				assert.True(t, tt.dim.Contains(v), "expected %v to be contained", v)
			}
			for _, v := range tt.out {
				assert.False(t, tt.dim.Contains(v), "expected %v not to be contained", v)
			}
		})
	}
}

func TestDimensionConstructorsPanic(t *testing.T) {
	assert.Panics(t, func() { NewContinuousDimension("", 0, 1, true, true) })
	assert.Panics(t, func() { NewContinuousDimension("x", 2, 1, true, true) })
	assert.Panics(t, func() { NewDiscreteDimension("n", 5, 1) })
	assert.Panics(t, func() { NewCategoricalDimension("c", nil) })
	assert.Panics(t, func() { NewOrdinalDimension("o", []string{"a", "a"}, true) })
}

func TestSimpleHypergridDimensions(t *testing.T) {
	g := cacheGrid(t)

	assert.Equal(t, "cache", g.Name())
	assert.Equal(t, []string{"implementation", "size"}, Names(g.RootDimensions()))
	assert.Equal(t, []string{"implementation", "size", "lru.decay"}, g.DimensionNames())
}

func TestSimpleHypergridDuplicateNames(t *testing.T) {
	assert.Panics(t, func() {
		NewSimpleHypergrid("dup", NewDiscreteDimension("a", 0, 1), NewDiscreteDimension("a", 0, 2))
	})
}

func TestJoinRequiresRootPivot(t *testing.T) {
	g := NewSimpleHypergrid("g", NewDiscreteDimension("a", 0, 1))
	sub := NewSimpleHypergrid("sub", NewDiscreteDimension("b", 0, 1))

	_, err := g.Join(sub, NewCategoricalDimension("missing", []string{"x"}))
	assert.Error(t, err)

	_, err = g.Join(sub, NewCategoricalDimension("a", []string{"x"}))
	assert.Error(t, err, "pivot kind must match the root dimension")
}

func TestSimpleHypergridContains(t *testing.T) {
	g := cacheGrid(t)

	tests := []struct {
		name  string
		point Point
		want  bool
	}{
		{"fifo without subgrid values", Point{"implementation": "fifo", "size": 10}, true},
		{"lru with decay", Point{"implementation": "lru", "size": 10, "lru.decay": 0.3}, true},
		{"lru missing decay", Point{"implementation": "lru", "size": 10}, false},
		{"lru decay out of range", Point{"implementation": "lru", "size": 10, "lru.decay": 1.0}, false},
		{"size out of range", Point{"implementation": "fifo", "size": 2048}, false},
		{"missing root", Point{"size": 10}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.Contains(tt.point))
		})
	}
}

func TestEmptyHypergrid(t *testing.T) {
	g := EmptyHypergrid("context")
	assert.Empty(t, g.Dimensions())
	assert.Empty(t, g.RootDimensions())
	assert.True(t, g.Contains(Point{}))
}

func TestUnion(t *testing.T) {
	params := cacheGrid(t)
	context := NewSimpleHypergrid("context", NewContinuousDimension("load", 0, 1, true, true))

	u, err := Union("features", params, context)
	require.NoError(t, err)
	assert.Equal(t, "features", u.Name())
	assert.Equal(t, []string{"implementation", "size", "lru.decay", "load"}, u.DimensionNames())
	assert.Equal(t, u.DimensionNames(), Names(u.RootDimensions()), "union is flat")

	_, err = Union("features", params, NewSimpleHypergrid("other", NewDiscreteDimension("size", 0, 1)))
	assert.Error(t, err)
}
