package spaces

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		grid *SimpleHypergrid
	}{
		{"empty", EmptyHypergrid("context")},
		{"flat", NewSimpleHypergrid("objectives",
			NewContinuousDimension("latency", 0, 1000, true, true),
			NewDiscreteDimension("errors", 0, 10),
			NewOrdinalDimension("grade", []string{"c", "b", "a"}, false),
		)},
		{"joined", cacheGrid(t)},
		{"unbounded", NewSimpleHypergrid("params",
			NewContinuousDimension("x", math.Inf(-1), math.Inf(1), false, false),
			NewContinuousDimension("rate", 0, math.Inf(1), true, false),
		)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := Encode(tt.grid)
			require.NoError(t, err)

			decoded, err := Decode(text)
			require.NoError(t, err)

			assert.True(t, Equal(tt.grid, decoded))
			assert.Equal(t, tt.grid.DimensionNames(), decoded.DimensionNames())

			again, err := Encode(decoded)
			require.NoError(t, err)
			assert.Equal(t, text, again, "encoding must be deterministic")
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"not json", "{"},
		{"unknown field", `{"ObjectType":"SimpleHypergrid","Name":"g","Dimensions":[],"Extra":1}`},
		{"unknown hypergrid type", `{"ObjectType":"CompositeHypergrid","Name":"g","Dimensions":[]}`},
		{"missing name", `{"ObjectType":"SimpleHypergrid","Name":"","Dimensions":[]}`},
		{"unknown dimension type", `{"Name":"g","Dimensions":[{"ObjectType":"FancyDimension","Name":"x"}]}`},
		{"continuous without bounds", `{"Name":"g","Dimensions":[{"ObjectType":"ContinuousDimension","Name":"x"}]}`},
		{"inverted bounds", `{"Name":"g","Dimensions":[{"ObjectType":"DiscreteDimension","Name":"x","IntMin":3,"IntMax":1}]}`},
		{"categorical without values", `{"Name":"g","Dimensions":[{"ObjectType":"CategoricalDimension","Name":"x"}]}`},
		{"trailing data", `{"Name":"g","Dimensions":[]}}}garbage`},
		{"second document", `{"Name":"g","Dimensions":[]} {"Name":"h","Dimensions":[]}`},
		{"bad bound string", `{"Name":"g","Dimensions":[{"ObjectType":"ContinuousDimension","Name":"x","Min":"big","Max":1}]}`},
		{"nan bound", `{"Name":"g","Dimensions":[{"ObjectType":"ContinuousDimension","Name":"x","Min":"nan","Max":1}]}`},
		{"duplicate dimension", `{"Name":"g","Dimensions":[` +
			`{"ObjectType":"DiscreteDimension","Name":"x","IntMin":0,"IntMax":1},` +
			`{"ObjectType":"DiscreteDimension","Name":"x","IntMin":0,"IntMax":1}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.text)
			assert.Error(t, err)
		})
	}
}

func TestDecodeDefaultsBoundInclusion(t *testing.T) {
	g, err := Decode(`{"Name":"g","Dimensions":[{"ObjectType":"ContinuousDimension","Name":"x","Min":0,"Max":1}]}`)
	require.NoError(t, err)

	d, ok := g.RootDimensions()[0].(*ContinuousDimension)
	require.True(t, ok)
	assert.True(t, d.IncludeMin())
	assert.True(t, d.IncludeMax())
}

func TestDocumentYAMLRoundTrip(t *testing.T) {
	g := cacheGrid(t)

	data, err := yaml.Marshal(ToDocument(g))
	require.NoError(t, err)

	var doc GridDocument
	require.NoError(t, yaml.Unmarshal(data, &doc))

	decoded, err := FromDocument(doc)
	require.NoError(t, err)
	assert.True(t, Equal(g, decoded))
}

func TestBoundJSON(t *testing.T) {
	tests := []struct {
		bound Bound
		text  string
	}{
		{Bound(1.5), "1.5"},
		{Bound(math.Inf(1)), `"inf"`},
		{Bound(math.Inf(-1)), `"-inf"`},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			data, err := json.Marshal(tt.bound)
			require.NoError(t, err)
			assert.Equal(t, tt.text, string(data))

			var got Bound
			require.NoError(t, json.Unmarshal(data, &got))
			assert.Equal(t, tt.bound, got)
		})
	}

	var b Bound
	require.NoError(t, json.Unmarshal([]byte(`"-Infinity"`), &b))
	assert.True(t, math.IsInf(float64(b), -1))

	_, err := json.Marshal(Bound(math.NaN()))
	assert.Error(t, err)
}

func TestFromDocumentRejectsNaNBounds(t *testing.T) {
	tests := []string{
		"name: g\ndimensions:\n  - object_type: ContinuousDimension\n    name: x\n    min: .nan\n    max: 1\n",
		"name: g\ndimensions:\n  - object_type: ContinuousDimension\n    name: x\n    min: 0\n    max: .nan\n",
	}
	for _, text := range tests {
		var doc GridDocument
		require.NoError(t, yaml.Unmarshal([]byte(text), &doc))

		assert.NotPanics(t, func() {
			_, err := FromDocument(doc)
			assert.Error(t, err)
		})
	}
}

func TestDocumentYAMLInfiniteBounds(t *testing.T) {
	g := NewSimpleHypergrid("params", NewContinuousDimension("x", math.Inf(-1), math.Inf(1), false, false))

	data, err := yaml.Marshal(ToDocument(g))
	require.NoError(t, err)
	assert.Contains(t, string(data), ".inf")

	var doc GridDocument
	require.NoError(t, yaml.Unmarshal(data, &doc))
	decoded, err := FromDocument(doc)
	require.NoError(t, err)
	assert.True(t, Equal(g, decoded))
}

func TestEqual(t *testing.T) {
	a := NewSimpleHypergrid("g", NewDiscreteDimension("x", 0, 1))
	b := NewSimpleHypergrid("g", NewDiscreteDimension("x", 0, 1))
	c := NewSimpleHypergrid("g", NewDiscreteDimension("x", 0, 2))
	d := NewSimpleHypergrid("h", NewDiscreteDimension("x", 0, 1))

	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, c))
	assert.False(t, Equal(a, d))
	assert.False(t, Equal(a, nil))
	assert.True(t, Equal(nil, nil))
}

func TestJSONCodec(t *testing.T) {
	var codec JSONCodec
	g := NewSimpleHypergrid("g", NewCategoricalDimension("c", []string{"x", "y"}))

	text, err := codec.Encode(g)
	require.NoError(t, err)

	decoded, err := codec.Decode(text)
	require.NoError(t, err)
	assert.True(t, Equal(g, decoded))

	_, err = codec.Decode("")
	assert.Error(t, err)
}
