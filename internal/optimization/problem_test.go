package optimization

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/tundr-problems/internal/spaces"
)

func TestNewProblem_Validation(t *testing.T) {
	param := testParameterSpace()
	objective := testObjectiveSpace()

	tests := []struct {
		name       string
		param      spaces.Hypergrid
		objective  spaces.Hypergrid
		objectives []Objective
		context    spaces.Hypergrid
		wantErr    error
		wantReason string
	}{
		{
			name:       "valid without context",
			param:      param,
			objective:  objective,
			objectives: []Objective{{Name: "latency", Minimize: true}},
		},
		{
			name:       "valid with context",
			param:      param,
			objective:  objective,
			objectives: []Objective{{Name: "latency", Minimize: true}, {Name: "throughput"}},
			context:    testContextSpace(),
		},
		{
			name:      "no objectives",
			param:     param,
			objective: objective,
		},
		{
			name:  "categorical objective dimension",
			param: param,
			objective: spaces.NewSimpleHypergrid("objectives",
				spaces.NewContinuousDimension("latency", 0, 1, true, true),
				spaces.NewCategoricalDimension("impl", []string{"a", "b"}),
			),
			objectives: []Objective{{Name: "latency", Minimize: true}},
			wantErr:    ErrObjectiveSpaceHasCategoricalDimension,
			wantReason: ReasonCategoricalObjective,
		},
		{
			name: "categorical objective wins over dangling objective",
			param: param,
			objective: spaces.NewSimpleHypergrid("objectives",
				spaces.NewCategoricalDimension("impl", []string{"a", "b"}),
			),
			objectives: []Objective{{Name: "missing"}},
			wantErr:    ErrObjectiveSpaceHasCategoricalDimension,
			wantReason: ReasonCategoricalObjective,
		},
		{
			name:  "dangling objective",
			param: param,
			objective: spaces.NewSimpleHypergrid("objectives",
				spaces.NewContinuousDimension("throughput", 0, 1, true, true),
			),
			objectives: []Objective{{Name: "latency", Minimize: true}},
			wantErr:    ErrObjectiveNotInObjectiveSpace,
			wantReason: ReasonUnknownObjective,
		},
		{
			name:       "parameter and context share a name",
			param:      param,
			objective:  objective,
			objectives: []Objective{{Name: "latency", Minimize: true}},
			context: spaces.NewSimpleHypergrid("context",
				spaces.NewDiscreteDimension("size", 1, 8),
			),
			wantErr:    ErrParameterContextNameCollision,
			wantReason: ReasonNameCollision,
		},
		{
			name:       "nil parameter space",
			objective:  objective,
			wantErr:    ErrNilSpace,
			wantReason: ReasonMissingSpace,
		},
		{
			name:       "typed nil objective space",
			param:      param,
			objective:  (*spaces.SimpleHypergrid)(nil),
			wantErr:    ErrNilSpace,
			wantReason: ReasonMissingSpace,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProblem(tt.param, tt.objective, tt.objectives, tt.context)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Nil(t, p)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.Equal(t, tt.wantReason, ReasonOf(err))
				assert.True(t, IsInvalidProblem(err))

				optErr, ok := IsOptimizationError(err)
				require.True(t, ok)
				assert.Equal(t, "NewProblem", optErr.Op)
				assert.Equal(t, component, optErr.Component)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, p)
		})
	}
}

func TestNewProblem_FeatureSpace(t *testing.T) {
	param := spaces.NewSimpleHypergrid("params",
		spaces.NewContinuousDimension("a", 0, 1, true, true),
		spaces.NewContinuousDimension("b", 0, 1, true, true),
	)
	context := spaces.NewSimpleHypergrid("ctx",
		spaces.NewDiscreteDimension("c", 0, 3),
	)

	p := mustProblem(t, param, testObjectiveSpace(), []Objective{{Name: "latency", Minimize: true}}, context)

	assert.Equal(t, FeatureSpaceName, p.FeatureSpace().Name())
	assert.Equal(t, []string{"a", "b", "c"}, p.FeatureSpace().DimensionNames())
	assert.True(t, p.HasContext())
	assert.Same(t, context, p.ContextSpace())
}

func TestNewProblem_FeatureSpaceWithSubgrid(t *testing.T) {
	cache := spaces.NewSimpleHypergrid("lru",
		spaces.NewDiscreteDimension("capacity", 1, 1024),
	)
	param, err := spaces.NewSimpleHypergrid("params",
		spaces.NewCategoricalDimension("policy", []string{"lru", "fifo"}),
	).Join(cache, spaces.NewCategoricalDimension("policy", []string{"lru"}))
	require.NoError(t, err)

	p := mustProblem(t, param, testObjectiveSpace(), nil, testContextSpace())
	assert.Equal(t, []string{"policy", "lru.capacity", "region"}, p.FeatureSpace().DimensionNames())
}

func TestNewProblem_FlattenedNameCollision(t *testing.T) {
	cache := spaces.NewSimpleHypergrid("lru",
		spaces.NewDiscreteDimension("capacity", 1, 1024),
	)
	param, err := spaces.NewSimpleHypergrid("params",
		spaces.NewCategoricalDimension("policy", []string{"lru", "fifo"}),
	).Join(cache, spaces.NewCategoricalDimension("policy", []string{"lru"}))
	require.NoError(t, err)

	// Root names differ but the flattened names do not.
	context := spaces.NewSimpleHypergrid("context",
		spaces.NewDiscreteDimension("lru.capacity", 1, 8),
	)

	_, err = NewProblem(param, testObjectiveSpace(), nil, context)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParameterContextNameCollision)
}

func TestNewProblem_AbsentContext(t *testing.T) {
	p := mustProblem(t, testParameterSpace(), testObjectiveSpace(), nil, nil)

	assert.False(t, p.HasContext())
	require.NotNil(t, p.ContextSpace())
	assert.Empty(t, p.ContextSpace().Dimensions())
	assert.Equal(t, testParameterSpace().DimensionNames(), p.FeatureSpace().DimensionNames())
}

func TestNewProblem_EmptyContextIsNotAbsent(t *testing.T) {
	p := mustProblem(t, testParameterSpace(), testObjectiveSpace(), nil, spaces.EmptyHypergrid("ctx"))

	assert.True(t, p.HasContext())
	assert.Equal(t, []string{"x", "size"}, p.FeatureSpace().DimensionNames())
}

func TestProblem_Objectives(t *testing.T) {
	objectives := []Objective{{Name: "latency", Minimize: true}, {Name: "throughput"}}
	p := mustProblem(t, testParameterSpace(), testObjectiveSpace(), objectives, nil)

	got := p.Objectives()
	assert.Equal(t, objectives, got)

	// Mutating the inputs or the returned copy does not leak into the problem.
	objectives[0].Minimize = false
	got[1].Name = "changed"
	assert.Equal(t, []Objective{{Name: "latency", Minimize: true}, {Name: "throughput"}}, p.Objectives())

	o, ok := p.Objective("throughput")
	assert.True(t, ok)
	assert.False(t, o.Minimize)
	_, ok = p.Objective("missing")
	assert.False(t, ok)
}

func TestProblem_Equal(t *testing.T) {
	objectives := []Objective{{Name: "latency", Minimize: true}}
	a := mustProblem(t, testParameterSpace(), testObjectiveSpace(), objectives, testContextSpace())
	b := mustProblem(t, testParameterSpace(), testObjectiveSpace(), objectives, testContextSpace())

	assert.True(t, a.Equal(b))
	assert.True(t, a.Equal(a))

	noContext := mustProblem(t, testParameterSpace(), testObjectiveSpace(), objectives, nil)
	assert.False(t, a.Equal(noContext))

	maximize := mustProblem(t, testParameterSpace(), testObjectiveSpace(), []Objective{{Name: "latency"}}, testContextSpace())
	assert.False(t, a.Equal(maximize))

	var nilProblem *Problem
	assert.False(t, a.Equal(nilProblem))
	assert.True(t, nilProblem.Equal(nil))
}

func TestProblem_String(t *testing.T) {
	p := mustProblem(t, testParameterSpace(), testObjectiveSpace(), []Objective{{Name: "latency", Minimize: true}}, nil)
	assert.Equal(t, "Problem(parameters=2, context=0, objectives=1)", p.String())
}

func TestMetaDimensions(t *testing.T) {
	for _, name := range MetaDimensionNames() {
		assert.True(t, IsMetaDimension(name), name)
	}
	assert.False(t, IsMetaDimension("x"))

	g := spaces.NewSimpleHypergrid("g",
		spaces.NewContinuousDimension("x", 0, 1, true, true),
		spaces.NewCategoricalDimension(MetaContainsContext, []string{"true", "false"}),
	)
	assert.Equal(t, []string{"x"}, spaces.Names(ModelingDimensions(g)))
}

func TestReasonOf(t *testing.T) {
	assert.Equal(t, ReasonOther, ReasonOf(errors.New("boom")))
	assert.Equal(t, ReasonOther, ReasonOf(nil))
	assert.False(t, IsInvalidProblem(nil))
	assert.False(t, IsInvalidProblem(errors.New("boom")))
	assert.Equal(t, ReasonMalformedSpace, ReasonOf(newError("op", ErrMalformedSpaceEncoding, "bad")))
}
