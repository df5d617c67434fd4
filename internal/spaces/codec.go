package spaces

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"reflect"
	"strings"
)

// GridDocument is the serialized form of a hypergrid.
type GridDocument struct {
	ObjectType    string              `json:"ObjectType" yaml:"object_type"`
	Name          string              `json:"Name" yaml:"name"`
	Dimensions    []DimensionDocument `json:"Dimensions" yaml:"dimensions"`
	GuestSubgrids []SubgridDocument   `json:"GuestSubgrids,omitempty" yaml:"guest_subgrids,omitempty"`
}

// DimensionDocument is the serialized form of a dimension. Only the fields
// relevant to ObjectType are set.
type DimensionDocument struct {
	ObjectType string   `json:"ObjectType" yaml:"object_type"`
	Name       string   `json:"Name" yaml:"name"`
	Min        *Bound   `json:"Min,omitempty" yaml:"min,omitempty"`
	Max        *Bound   `json:"Max,omitempty" yaml:"max,omitempty"`
	IncludeMin *bool    `json:"IncludeMin,omitempty" yaml:"include_min,omitempty"`
	IncludeMax *bool    `json:"IncludeMax,omitempty" yaml:"include_max,omitempty"`
	IntMin     *int64   `json:"IntMin,omitempty" yaml:"int_min,omitempty"`
	IntMax     *int64   `json:"IntMax,omitempty" yaml:"int_max,omitempty"`
	Values     []string `json:"Values,omitempty" yaml:"values,omitempty"`
	Ascending  *bool    `json:"Ascending,omitempty" yaml:"ascending,omitempty"`
}

// SubgridDocument is the serialized form of a joined subgrid.
type SubgridDocument struct {
	Subgrid GridDocument      `json:"Subgrid" yaml:"subgrid"`
	On      DimensionDocument `json:"On" yaml:"on"`
}

const simpleHypergridType = "SimpleHypergrid"

// Bound is a continuous dimension bound. JSON has no infinities, so they are
// written as the strings "inf" and "-inf". YAML uses its native .inf.
type Bound float64

func (b Bound) MarshalJSON() ([]byte, error) {
	f := float64(b)
	switch {
	case math.IsInf(f, 1):
		return []byte(`"inf"`), nil
	case math.IsInf(f, -1):
		return []byte(`"-inf"`), nil
	case math.IsNaN(f):
		return nil, fmt.Errorf("bound is NaN")
	}
	return json.Marshal(f)
}

func (b *Bound) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || data[0] != '"' {
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return err
		}
		*b = Bound(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch strings.ToLower(s) {
	case "inf", "+inf", "infinity", "+infinity":
		*b = Bound(math.Inf(1))
	case "-inf", "-infinity":
		*b = Bound(math.Inf(-1))
	default:
		return fmt.Errorf("invalid bound %q", s)
	}
	return nil
}

// ToDocument converts g to its document form. Hypergrids other than
// *SimpleHypergrid are captured through their root dimensions only.
func ToDocument(g Hypergrid) GridDocument {
	doc := GridDocument{
		ObjectType: simpleHypergridType,
		Name:       g.Name(),
		Dimensions: make([]DimensionDocument, 0, len(g.RootDimensions())),
	}
	for _, d := range g.RootDimensions() {
		doc.Dimensions = append(doc.Dimensions, dimensionToDocument(d))
	}
	if sg, ok := g.(*SimpleHypergrid); ok {
		for _, s := range sg.subgrids {
			doc.GuestSubgrids = append(doc.GuestSubgrids, SubgridDocument{
				Subgrid: ToDocument(s.Subgrid),
				On:      dimensionToDocument(s.On),
			})
		}
	}
	return doc
}

func dimensionToDocument(d Dimension) DimensionDocument {
	doc := DimensionDocument{ObjectType: d.Kind().String(), Name: d.Name()}
	switch x := d.(type) {
	case *ContinuousDimension:
		doc.Min, doc.Max = ptr(Bound(x.min)), ptr(Bound(x.max))
		doc.IncludeMin, doc.IncludeMax = ptr(x.includeMin), ptr(x.includeMax)
	case *DiscreteDimension:
		doc.IntMin, doc.IntMax = ptr(x.min), ptr(x.max)
	case *OrdinalDimension:
		doc.Values = x.Values()
		doc.Ascending = ptr(x.ascending)
	case *CategoricalDimension:
		doc.Values = x.Values()
	}
	return doc
}

// FromDocument rebuilds a hypergrid from its document form, validating every
// field instead of panicking.
func FromDocument(doc GridDocument) (*SimpleHypergrid, error) {
	if doc.ObjectType != "" && doc.ObjectType != simpleHypergridType {
		return nil, fmt.Errorf("unsupported hypergrid type %q", doc.ObjectType)
	}
	dims := make([]Dimension, 0, len(doc.Dimensions))
	for i, dd := range doc.Dimensions {
		d, err := dimensionFromDocument(dd)
		if err != nil {
			return nil, fmt.Errorf("hypergrid %q dimension %d: %w", doc.Name, i, err)
		}
		dims = append(dims, d)
	}
	g, err := newSimpleHypergrid(doc.Name, dims, nil)
	if err != nil {
		return nil, err
	}
	for _, sd := range doc.GuestSubgrids {
		sub, err := FromDocument(sd.Subgrid)
		if err != nil {
			return nil, err
		}
		on, err := dimensionFromDocument(sd.On)
		if err != nil {
			return nil, fmt.Errorf("hypergrid %q subgrid %q pivot: %w", doc.Name, sd.Subgrid.Name, err)
		}
		if g, err = g.Join(sub, on); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func dimensionFromDocument(dd DimensionDocument) (Dimension, error) {
	if dd.Name == "" {
		return nil, fmt.Errorf("dimension name is required")
	}
	switch dd.ObjectType {
	case Continuous.String():
		if dd.Min == nil || dd.Max == nil {
			return nil, fmt.Errorf("continuous dimension %q requires Min and Max", dd.Name)
		}
		lo, hi := float64(*dd.Min), float64(*dd.Max)
		if math.IsNaN(lo) || math.IsNaN(hi) {
			return nil, fmt.Errorf("continuous dimension %q has a NaN bound", dd.Name)
		}
		if lo > hi {
			return nil, fmt.Errorf("continuous dimension %q has Min > Max", dd.Name)
		}
		return NewContinuousDimension(dd.Name, lo, hi, deref(dd.IncludeMin, true), deref(dd.IncludeMax, true)), nil
	case Discrete.String():
		if dd.IntMin == nil || dd.IntMax == nil {
			return nil, fmt.Errorf("discrete dimension %q requires IntMin and IntMax", dd.Name)
		}
		if *dd.IntMin > *dd.IntMax {
			return nil, fmt.Errorf("discrete dimension %q has IntMin > IntMax", dd.Name)
		}
		return NewDiscreteDimension(dd.Name, *dd.IntMin, *dd.IntMax), nil
	case Ordinal.String():
		if err := checkValues(dd.Name, dd.Values); err != nil {
			return nil, err
		}
		return NewOrdinalDimension(dd.Name, dd.Values, deref(dd.Ascending, true)), nil
	case Categorical.String():
		if err := checkValues(dd.Name, dd.Values); err != nil {
			return nil, err
		}
		return NewCategoricalDimension(dd.Name, dd.Values), nil
	default:
		return nil, fmt.Errorf("unknown dimension type %q", dd.ObjectType)
	}
}

// Encode serializes g to its JSON text form.
func Encode(g Hypergrid) (string, error) {
	if g == nil {
		return "", fmt.Errorf("cannot encode nil hypergrid")
	}
	data, err := json.Marshal(ToDocument(g))
	if err != nil {
		return "", fmt.Errorf("encode hypergrid %q: %w", g.Name(), err)
	}
	return string(data), nil
}

// Decode parses the JSON text produced by Encode.
func Decode(text string) (*SimpleHypergrid, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty hypergrid encoding")
	}
	dec := json.NewDecoder(strings.NewReader(text))
	dec.DisallowUnknownFields()
	var doc GridDocument
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode hypergrid: %w", err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("decode hypergrid: trailing data after document")
	}
	return FromDocument(doc)
}

// JSONCodec encodes hypergrids as JSON text.
type JSONCodec struct{}

func (JSONCodec) Encode(g Hypergrid) (string, error) { return Encode(g) }

func (JSONCodec) Decode(text string) (Hypergrid, error) {
	g, err := Decode(text)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Equal reports whether a and b describe the same hypergrid.
func Equal(a, b Hypergrid) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return reflect.DeepEqual(ToDocument(a), ToDocument(b))
}

func ptr[T any](v T) *T { return &v }

func deref[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
