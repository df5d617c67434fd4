package optimization

import "github.com/copyleftdev/tundr-problems/internal/spaces"

// Meta dimensions are injected into composite spaces to track which subspace a
// point came from. They carry no signal and are excluded from modeling.
const (
	MetaContainsParameters = "contains_parameters"
	MetaContainsContext    = "contains_context"
	MetaContainsObjectives = "contains_objectives"
)

var metaDimensionNames = map[string]struct{}{
	MetaContainsParameters: {},
	MetaContainsContext:    {},
	MetaContainsObjectives: {},
}

// MetaDimensionNames returns the reserved meta dimension names.
func MetaDimensionNames() []string {
	return []string{MetaContainsParameters, MetaContainsContext, MetaContainsObjectives}
}

// IsMetaDimension reports whether name is a reserved meta dimension name.
func IsMetaDimension(name string) bool {
	_, ok := metaDimensionNames[name]
	return ok
}

// ModelingDimensions returns the dimensions of g that carry modeling signal,
// in order.
func ModelingDimensions(g spaces.Hypergrid) []spaces.Dimension {
	var out []spaces.Dimension
	for _, d := range g.Dimensions() {
		if !IsMetaDimension(d.Name()) {
			out = append(out, d)
		}
	}
	return out
}
