package spaces

import (
	"fmt"
)

// Point assigns values to dimensions, keyed by flattened dimension name.
type Point map[string]any

// Hypergrid is a named collection of dimensions.
type Hypergrid interface {
	// Name returns the hypergrid name.
	Name() string

	// Dimensions returns every dimension: the root dimensions followed by the
	// dimensions of each joined subgrid, prefixed with "<subgrid>.".
	Dimensions() []Dimension

	// RootDimensions returns only the top-level dimensions.
	RootDimensions() []Dimension

	// Contains reports whether p is a member of the hypergrid.
	Contains(p Point) bool
}

// JoinedSubgrid is a guest grid that becomes active when the pivot root
// dimension (On.Name()) takes a value contained in On.
type JoinedSubgrid struct {
	Subgrid *SimpleHypergrid
	On      Dimension
}

// SimpleHypergrid is an immutable Hypergrid with optional joined subgrids.
type SimpleHypergrid struct {
	name     string
	dims     []Dimension
	subgrids []JoinedSubgrid
}

// NewSimpleHypergrid creates a hypergrid from the given root dimensions.
// It panics on an empty name or duplicate dimension names.
func NewSimpleHypergrid(name string, dims ...Dimension) *SimpleHypergrid {
	g, err := newSimpleHypergrid(name, dims, nil)
	if err != nil {
		panic(err.Error())
	}
	return g
}

// EmptyHypergrid returns a hypergrid with no dimensions.
func EmptyHypergrid(name string) *SimpleHypergrid {
	return &SimpleHypergrid{name: name}
}

func newSimpleHypergrid(name string, dims []Dimension, subgrids []JoinedSubgrid) (*SimpleHypergrid, error) {
	if name == "" {
		return nil, fmt.Errorf("hypergrid name must not be empty")
	}
	g := &SimpleHypergrid{
		name:     name,
		dims:     append([]Dimension(nil), dims...),
		subgrids: append([]JoinedSubgrid(nil), subgrids...),
	}
	seen := make(map[string]struct{})
	for _, d := range g.Dimensions() {
		if _, dup := seen[d.Name()]; dup {
			return nil, fmt.Errorf("hypergrid %q has duplicate dimension %q", name, d.Name())
		}
		seen[d.Name()] = struct{}{}
	}
	return g, nil
}

// Join returns a new hypergrid with subgrid attached to the root dimension named
// on.Name(). The receiver is not modified.
func (g *SimpleHypergrid) Join(subgrid *SimpleHypergrid, on Dimension) (*SimpleHypergrid, error) {
	if subgrid == nil || on == nil {
		return nil, fmt.Errorf("subgrid and pivot dimension are required")
	}
	pivot := g.rootDimension(on.Name())
	if pivot == nil {
		return nil, fmt.Errorf("hypergrid %q has no root dimension %q", g.name, on.Name())
	}
	if pivot.Kind() != on.Kind() {
		return nil, fmt.Errorf("pivot dimension %q must be %s, got %s", on.Name(), pivot.Kind(), on.Kind())
	}
	subgrids := append(append([]JoinedSubgrid(nil), g.subgrids...), JoinedSubgrid{Subgrid: subgrid, On: on})
	return newSimpleHypergrid(g.name, g.dims, subgrids)
}

func (g *SimpleHypergrid) Name() string { return g.name }

func (g *SimpleHypergrid) RootDimensions() []Dimension {
	return append([]Dimension(nil), g.dims...)
}

func (g *SimpleHypergrid) Dimensions() []Dimension {
	out := append([]Dimension(nil), g.dims...)
	for _, s := range g.subgrids {
		for _, d := range s.Subgrid.Dimensions() {
			out = append(out, d.WithName(s.Subgrid.name+"."+d.Name()))
		}
	}
	return out
}

// Subgrids returns the joined subgrids in join order.
func (g *SimpleHypergrid) Subgrids() []JoinedSubgrid {
	return append([]JoinedSubgrid(nil), g.subgrids...)
}

// DimensionNames returns the flattened dimension names in order.
func (g *SimpleHypergrid) DimensionNames() []string {
	return Names(g.Dimensions())
}

func (g *SimpleHypergrid) Contains(p Point) bool {
	for _, d := range g.dims {
		v, ok := p[d.Name()]
		if !ok || !d.Contains(v) {
			return false
		}
	}
	for _, s := range g.subgrids {
		if !s.On.Contains(p[s.On.Name()]) {
			continue
		}
		prefix := s.Subgrid.name + "."
		inner := make(Point)
		for k, v := range p {
			if len(k) > len(prefix) && k[:len(prefix)] == prefix {
				inner[k[len(prefix):]] = v
			}
		}
		if !s.Subgrid.Contains(inner) {
			return false
		}
	}
	return true
}

func (g *SimpleHypergrid) rootDimension(name string) Dimension {
	for _, d := range g.dims {
		if d.Name() == name {
			return d
		}
	}
	return nil
}

// Union returns a flat hypergrid named name holding the dimensions of every
// grid, in order. Joined subgrid dimensions keep their prefixed names.
func Union(name string, grids ...Hypergrid) (*SimpleHypergrid, error) {
	var dims []Dimension
	for _, g := range grids {
		if g == nil {
			continue
		}
		dims = append(dims, g.Dimensions()...)
	}
	return newSimpleHypergrid(name, dims, nil)
}

// Names returns the names of dims in order.
func Names(dims []Dimension) []string {
	names := make([]string, len(dims))
	for i, d := range dims {
		names[i] = d.Name()
	}
	return names
}
