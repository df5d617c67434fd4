package optimization

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/copyleftdev/tundr-problems/internal/spaces"
)

// ObjectiveDocument is the document form of an Objective.
type ObjectiveDocument struct {
	Name     string `json:"name" yaml:"name"`
	Minimize bool   `json:"minimize" yaml:"minimize"`
}

// Document is a shallow projection of a Problem for logging and storage.
// ContextSpace is nil when the problem has no context.
type Document struct {
	ParameterSpace spaces.Hypergrid
	ContextSpace   spaces.Hypergrid
	ObjectiveSpace spaces.Hypergrid
	Objectives     []ObjectiveDocument
}

// ToDocument projects the problem. The spaces are shared, not copied.
func (p *Problem) ToDocument() Document {
	doc := Document{
		ParameterSpace: p.parameterSpace,
		ObjectiveSpace: p.objectiveSpace,
		Objectives:     make([]ObjectiveDocument, 0, len(p.objectives)),
	}
	if p.hasContext {
		doc.ContextSpace = p.contextSpace
	}
	for _, o := range p.objectives {
		doc.Objectives = append(doc.Objectives, ObjectiveDocument{Name: o.Name, Minimize: o.Minimize})
	}
	return doc
}

// serializedDocument is the rendered form of a Document.
type serializedDocument struct {
	ParameterSpace *spaces.GridDocument `json:"parameter_space" yaml:"parameter_space"`
	ContextSpace   *spaces.GridDocument `json:"context_space,omitempty" yaml:"context_space,omitempty"`
	ObjectiveSpace *spaces.GridDocument `json:"objective_space" yaml:"objective_space"`
	Objectives     []ObjectiveDocument  `json:"objectives" yaml:"objectives"`
}

func (d Document) serialized() serializedDocument {
	return serializedDocument{
		ParameterSpace: gridDocument(d.ParameterSpace),
		ContextSpace:   gridDocument(d.ContextSpace),
		ObjectiveSpace: gridDocument(d.ObjectiveSpace),
		Objectives:     d.Objectives,
	}
}

func gridDocument(g spaces.Hypergrid) *spaces.GridDocument {
	if isNilSpace(g) {
		return nil
	}
	doc := spaces.ToDocument(g)
	return &doc
}

// MarshalYAML renders the spaces through their document codec.
func (d Document) MarshalYAML() (interface{}, error) {
	return d.serialized(), nil
}

// MarshalJSON renders the spaces through their document codec.
func (d Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.serialized())
}

// ParseDocument parses a rendered Document (JSON or YAML) and validates it
// with NewProblem.
func ParseDocument(data []byte) (*Problem, error) {
	const op = "ParseDocument"

	var sd serializedDocument
	var err error
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		err = json.Unmarshal(trimmed, &sd)
	} else {
		err = yaml.Unmarshal(data, &sd)
	}
	if err != nil {
		return nil, newError(op, ErrMalformedSpaceEncoding, "%v", err)
	}

	if sd.ParameterSpace == nil {
		return nil, newError(op, ErrNilSpace, "parameter_space is required")
	}
	if sd.ObjectiveSpace == nil {
		return nil, newError(op, ErrNilSpace, "objective_space is required")
	}
	parameterSpace, err := fromGridDocument(op, "parameter", sd.ParameterSpace)
	if err != nil {
		return nil, err
	}
	objectiveSpace, err := fromGridDocument(op, "objective", sd.ObjectiveSpace)
	if err != nil {
		return nil, err
	}
	var contextSpace spaces.Hypergrid
	if sd.ContextSpace != nil {
		if contextSpace, err = fromGridDocument(op, "context", sd.ContextSpace); err != nil {
			return nil, err
		}
	}

	objectives := make([]Objective, 0, len(sd.Objectives))
	for _, o := range sd.Objectives {
		objectives = append(objectives, Objective{Name: o.Name, Minimize: o.Minimize})
	}
	return NewProblem(parameterSpace, objectiveSpace, objectives, contextSpace)
}

func fromGridDocument(op, which string, doc *spaces.GridDocument) (spaces.Hypergrid, error) {
	g, err := spaces.FromDocument(*doc)
	if err != nil {
		return nil, newError(op, ErrMalformedSpaceEncoding, "%s space: %v", which, err)
	}
	return g, nil
}

// LoadDocument reads and parses a problem document file.
func LoadDocument(path string) (*Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read problem file %s: %w", path, err)
	}
	p, err := ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse problem file %s: %w", path, err)
	}
	return p, nil
}
