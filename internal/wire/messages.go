// Package wire defines the messages exchanged with remote optimizer clients.
//
// The messages are encoded with the protobuf binary format so that clients
// generated from the optimizer service .proto definitions can read them.
// JSON tags mirror the protobuf field names for the HTTP transport.
package wire

import (
	"fmt"
	"math"
	"unicode/utf8"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of the optimizer service schema.
const (
	hypergridJSONStringField = 1

	objectiveNameField     = 1
	objectiveMinimizeField = 2

	problemParameterSpaceField = 1
	problemObjectiveSpaceField = 2
	problemObjectivesField     = 3
	problemContextSpaceField   = 4

	handleIDField = 1

	listIDsField = 1
)

// Hypergrid carries the textual serialization of a space.
type Hypergrid struct {
	HypergridJsonString string `json:"HypergridJsonString"`
}

// GetHypergridJsonString returns the carried text; safe on a nil receiver.
func (h *Hypergrid) GetHypergridJsonString() string {
	if h == nil {
		return ""
	}
	return h.HypergridJsonString
}

func (h *Hypergrid) MarshalBinary() ([]byte, error) {
	var b []byte
	if h.GetHypergridJsonString() != "" {
		b = protowire.AppendTag(b, hypergridJSONStringField, protowire.BytesType)
		b = protowire.AppendString(b, h.HypergridJsonString)
	}
	return b, nil
}

func (h *Hypergrid) UnmarshalBinary(data []byte) error {
	*h = Hypergrid{}
	return walkFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == hypergridJSONStringField && typ == protowire.BytesType {
			v, n, err := consumeString(num, b)
			h.HypergridJsonString = v
			return n, err
		}
		return skipField, nil
	})
}

// Objective names an objective dimension and its direction.
type Objective struct {
	Name     string `json:"Name"`
	Minimize bool   `json:"Minimize"`
}

func (o *Objective) GetName() string {
	if o == nil {
		return ""
	}
	return o.Name
}

func (o *Objective) GetMinimize() bool {
	if o == nil {
		return false
	}
	return o.Minimize
}

func (o *Objective) MarshalBinary() ([]byte, error) {
	var b []byte
	if o.GetName() != "" {
		b = protowire.AppendTag(b, objectiveNameField, protowire.BytesType)
		b = protowire.AppendString(b, o.Name)
	}
	if o.GetMinimize() {
		b = protowire.AppendTag(b, objectiveMinimizeField, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeBool(true))
	}
	return b, nil
}

func (o *Objective) UnmarshalBinary(data []byte) error {
	*o = Objective{}
	return walkFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == objectiveNameField && typ == protowire.BytesType:
			v, n, err := consumeString(num, b)
			o.Name = v
			return n, err
		case num == objectiveMinimizeField && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			o.Minimize = protowire.DecodeBool(v)
			return n, nil
		}
		return skipField, nil
	})
}

// OptimizationProblem is the wire form of an optimization problem.
type OptimizationProblem struct {
	ParameterSpace *Hypergrid   `json:"ParameterSpace"`
	ObjectiveSpace *Hypergrid   `json:"ObjectiveSpace"`
	Objectives     []*Objective `json:"Objectives"`
	ContextSpace   *Hypergrid   `json:"ContextSpace"`
}

func (m *OptimizationProblem) GetParameterSpace() *Hypergrid {
	if m == nil {
		return nil
	}
	return m.ParameterSpace
}

func (m *OptimizationProblem) GetObjectiveSpace() *Hypergrid {
	if m == nil {
		return nil
	}
	return m.ObjectiveSpace
}

func (m *OptimizationProblem) GetObjectives() []*Objective {
	if m == nil {
		return nil
	}
	return m.Objectives
}

func (m *OptimizationProblem) GetContextSpace() *Hypergrid {
	if m == nil {
		return nil
	}
	return m.ContextSpace
}

// MarshalBinary encodes the message. Fields are written in field-number order
// so identical messages produce identical bytes.
func (m *OptimizationProblem) MarshalBinary() ([]byte, error) {
	var b []byte
	var err error
	if ps := m.GetParameterSpace(); ps != nil {
		if b, err = appendMessage(b, problemParameterSpaceField, ps); err != nil {
			return nil, err
		}
	}
	if os := m.GetObjectiveSpace(); os != nil {
		if b, err = appendMessage(b, problemObjectiveSpaceField, os); err != nil {
			return nil, err
		}
	}
	for _, o := range m.GetObjectives() {
		if o == nil {
			continue
		}
		if b, err = appendMessage(b, problemObjectivesField, o); err != nil {
			return nil, err
		}
	}
	if cs := m.GetContextSpace(); cs != nil {
		if b, err = appendMessage(b, problemContextSpaceField, cs); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (m *OptimizationProblem) UnmarshalBinary(data []byte) error {
	*m = OptimizationProblem{}
	return walkFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if typ != protowire.BytesType {
			return skipField, nil
		}
		v, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return n, nil
		}
		switch num {
		case problemParameterSpaceField:
			m.ParameterSpace = new(Hypergrid)
			return n, m.ParameterSpace.UnmarshalBinary(v)
		case problemObjectiveSpaceField:
			m.ObjectiveSpace = new(Hypergrid)
			return n, m.ObjectiveSpace.UnmarshalBinary(v)
		case problemObjectivesField:
			o := new(Objective)
			m.Objectives = append(m.Objectives, o)
			return n, o.UnmarshalBinary(v)
		case problemContextSpaceField:
			m.ContextSpace = new(Hypergrid)
			return n, m.ContextSpace.UnmarshalBinary(v)
		}
		return skipField, nil
	})
}

// ProblemHandle identifies a registered problem.
type ProblemHandle struct {
	Id string `json:"Id"`
}

func (h *ProblemHandle) GetId() string {
	if h == nil {
		return ""
	}
	return h.Id
}

func (h *ProblemHandle) MarshalBinary() ([]byte, error) {
	var b []byte
	if h.GetId() != "" {
		b = protowire.AppendTag(b, handleIDField, protowire.BytesType)
		b = protowire.AppendString(b, h.Id)
	}
	return b, nil
}

func (h *ProblemHandle) UnmarshalBinary(data []byte) error {
	*h = ProblemHandle{}
	return walkFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == handleIDField && typ == protowire.BytesType {
			v, n, err := consumeString(num, b)
			h.Id = v
			return n, err
		}
		return skipField, nil
	})
}

// ProblemList lists registered problem ids.
type ProblemList struct {
	Ids []string `json:"Ids"`
}

func (l *ProblemList) MarshalBinary() ([]byte, error) {
	var b []byte
	for _, id := range l.Ids {
		b = protowire.AppendTag(b, listIDsField, protowire.BytesType)
		b = protowire.AppendString(b, id)
	}
	return b, nil
}

func (l *ProblemList) UnmarshalBinary(data []byte) error {
	*l = ProblemList{}
	return walkFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == listIDsField && typ == protowire.BytesType {
			v, n, err := consumeString(num, b)
			if err == nil && n >= 0 {
				l.Ids = append(l.Ids, v)
			}
			return n, err
		}
		return skipField, nil
	})
}

// Empty is a message without fields.
type Empty struct{}

func (*Empty) MarshalBinary() ([]byte, error) { return nil, nil }

func (e *Empty) UnmarshalBinary(data []byte) error {
	return walkFields(data, func(protowire.Number, protowire.Type, []byte) (int, error) {
		return skipField, nil
	})
}

type binaryMessage interface {
	MarshalBinary() ([]byte, error)
}

// appendMessage appends msg as a length-delimited field. Empty messages are
// still written so that presence survives a round trip.
func appendMessage(b []byte, num protowire.Number, msg binaryMessage) ([]byte, error) {
	inner, err := msg.MarshalBinary()
	if err != nil {
		return nil, err
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, inner), nil
}

// consumeString reads a proto3 string field, which must hold valid UTF-8.
func consumeString(num protowire.Number, b []byte) (string, int, error) {
	v, n := protowire.ConsumeString(b)
	if n >= 0 && !utf8.ValidString(v) {
		return "", n, fmt.Errorf("wire: invalid UTF-8 in field %d", num)
	}
	return v, n, nil
}

// skipField is returned by a field callback for fields it does not know.
const skipField = math.MinInt32

// walkFields iterates over the fields in data. fn consumes the value of a known
// field and returns the number of bytes read, or skipField.
func walkFields(data []byte, fn func(num protowire.Number, typ protowire.Type, b []byte) (int, error)) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("wire: invalid tag: %w", protowire.ParseError(n))
		}
		data = data[n:]

		consumed, err := fn(num, typ, data)
		if err != nil {
			return err
		}
		if consumed == skipField {
			consumed = protowire.ConsumeFieldValue(num, typ, data)
		}
		if consumed < 0 {
			return fmt.Errorf("wire: invalid field %d: %w", num, protowire.ParseError(consumed))
		}
		data = data[consumed:]
	}
	return nil
}
