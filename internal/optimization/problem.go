// Package optimization models an optimization problem instance: the parameter
// space to search, the objectives to minimize or maximize, and the context the
// optimizer observes but does not control.
//
// A Problem is validated once by NewProblem and is immutable afterwards, so a
// single instance may be shared between goroutines without synchronization.
package optimization

import (
	"fmt"

	"github.com/copyleftdev/tundr-problems/internal/spaces"
)

const (
	// FeatureSpaceName is the name of the derived feature space.
	FeatureSpaceName = "features"

	// absentContextName names the empty space stored when no context is given.
	absentContextName = "context"
)

// Objective is a named output quantity and its optimization direction.
type Objective struct {
	Name     string
	Minimize bool
}

// Problem binds a parameter space, an objective space with per-objective
// direction and an optional context space.
type Problem struct {
	parameterSpace spaces.Hypergrid
	objectiveSpace spaces.Hypergrid
	contextSpace   spaces.Hypergrid
	hasContext     bool
	objectives     []Objective
	featureSpace   *spaces.SimpleHypergrid
}

// NewProblem validates its inputs and derives the feature space.
//
// contextSpace may be nil, in which case the problem holds an empty context
// space and HasContext reports false. The checks run in order: categorical
// objective dimensions, objectives missing from the objective space, and
// parameter/context name collisions.
func NewProblem(parameterSpace, objectiveSpace spaces.Hypergrid, objectives []Objective, contextSpace spaces.Hypergrid) (*Problem, error) {
	const op = "NewProblem"

	if isNilSpace(parameterSpace) {
		return nil, newError(op, ErrNilSpace, "parameter space is nil")
	}
	if isNilSpace(objectiveSpace) {
		return nil, newError(op, ErrNilSpace, "objective space is nil")
	}

	objectiveNames := make(map[string]struct{})
	for _, d := range objectiveSpace.Dimensions() {
		if d.Kind() == spaces.Categorical {
			return nil, newError(op, ErrObjectiveSpaceHasCategoricalDimension,
				"objective dimension %q is categorical", d.Name())
		}
		objectiveNames[d.Name()] = struct{}{}
	}
	for _, o := range objectives {
		if _, ok := objectiveNames[o.Name]; !ok {
			return nil, newError(op, ErrObjectiveNotInObjectiveSpace,
				"objective %q has no dimension in %q", o.Name, objectiveSpace.Name())
		}
	}

	hasContext := !isNilSpace(contextSpace)
	if !hasContext {
		contextSpace = spaces.EmptyHypergrid(absentContextName)
	}

	parameterNames := make(map[string]struct{})
	for _, d := range parameterSpace.RootDimensions() {
		parameterNames[d.Name()] = struct{}{}
	}
	for _, d := range contextSpace.RootDimensions() {
		if _, clash := parameterNames[d.Name()]; clash {
			return nil, newError(op, ErrParameterContextNameCollision,
				"dimension %q appears in both parameter and context spaces", d.Name())
		}
	}

	featureSpace, err := spaces.Union(FeatureSpaceName, parameterSpace, contextSpace)
	if err != nil {
		// Root names are disjoint but flattened subgrid names are not.
		return nil, newError(op, ErrParameterContextNameCollision, "derive feature space: %v", err)
	}

	return &Problem{
		parameterSpace: parameterSpace,
		objectiveSpace: objectiveSpace,
		contextSpace:   contextSpace,
		hasContext:     hasContext,
		objectives:     append([]Objective(nil), objectives...),
		featureSpace:   featureSpace,
	}, nil
}

func isNilSpace(g spaces.Hypergrid) bool {
	if g == nil {
		return true
	}
	sg, ok := g.(*spaces.SimpleHypergrid)
	return ok && sg == nil
}

// ParameterSpace returns the space of decision variables.
func (p *Problem) ParameterSpace() spaces.Hypergrid { return p.parameterSpace }

// ObjectiveSpace returns the space of optimized quantities.
func (p *Problem) ObjectiveSpace() spaces.Hypergrid { return p.objectiveSpace }

// ContextSpace returns the context space. It is never nil; when no context was
// supplied it is an empty space and HasContext returns false.
func (p *Problem) ContextSpace() spaces.Hypergrid { return p.contextSpace }

// HasContext reports whether a context space was supplied.
func (p *Problem) HasContext() bool { return p.hasContext }

// FeatureSpace returns the joint parameter and context space fed to models.
func (p *Problem) FeatureSpace() *spaces.SimpleHypergrid { return p.featureSpace }

// Objectives returns a copy of the objectives in declaration order.
func (p *Problem) Objectives() []Objective {
	return append([]Objective(nil), p.objectives...)
}

// Objective looks up an objective by name.
func (p *Problem) Objective(name string) (Objective, bool) {
	for _, o := range p.objectives {
		if o.Name == name {
			return o, true
		}
	}
	return Objective{}, false
}

// Equal reports whether p and other describe the same problem.
func (p *Problem) Equal(other *Problem) bool {
	if p == nil || other == nil {
		return p == other
	}
	if p.hasContext != other.hasContext || len(p.objectives) != len(other.objectives) {
		return false
	}
	for i := range p.objectives {
		if p.objectives[i] != other.objectives[i] {
			return false
		}
	}
	return spaces.Equal(p.parameterSpace, other.parameterSpace) &&
		spaces.Equal(p.objectiveSpace, other.objectiveSpace) &&
		spaces.Equal(p.contextSpace, other.contextSpace) &&
		spaces.Equal(p.featureSpace, other.featureSpace)
}

// String summarizes the problem for logs.
func (p *Problem) String() string {
	return fmt.Sprintf("Problem(parameters=%d, context=%d, objectives=%d)",
		len(p.parameterSpace.Dimensions()), len(p.contextSpace.Dimensions()), len(p.objectives))
}
