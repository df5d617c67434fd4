package optimization

import (
	"github.com/copyleftdev/tundr-problems/internal/spaces"
	"github.com/copyleftdev/tundr-problems/internal/wire"
)

// SpaceCodec converts spaces to and from the text carried on the wire.
// Decode must invert Encode.
type SpaceCodec interface {
	Encode(g spaces.Hypergrid) (string, error)
	Decode(text string) (spaces.Hypergrid, error)
}

func codecOrDefault(codec SpaceCodec) SpaceCodec {
	if codec == nil {
		return spaces.JSONCodec{}
	}
	return codec
}

// ToWire encodes the problem as a wire message. The context container is
// always allocated; it carries empty text when the problem has no context.
// A nil codec selects spaces.JSONCodec.
func (p *Problem) ToWire(codec SpaceCodec) (*wire.OptimizationProblem, error) {
	const op = "ToWire"
	codec = codecOrDefault(codec)

	parameterText, err := codec.Encode(p.parameterSpace)
	if err != nil {
		return nil, newError(op, err, "encode parameter space")
	}
	objectiveText, err := codec.Encode(p.objectiveSpace)
	if err != nil {
		return nil, newError(op, err, "encode objective space")
	}
	var contextText string
	if p.hasContext {
		if contextText, err = codec.Encode(p.contextSpace); err != nil {
			return nil, newError(op, err, "encode context space")
		}
	}

	objectives := make([]*wire.Objective, 0, len(p.objectives))
	for _, o := range p.objectives {
		objectives = append(objectives, &wire.Objective{Name: o.Name, Minimize: o.Minimize})
	}

	return &wire.OptimizationProblem{
		ParameterSpace: &wire.Hypergrid{HypergridJsonString: parameterText},
		ObjectiveSpace: &wire.Hypergrid{HypergridJsonString: objectiveText},
		Objectives:     objectives,
		ContextSpace:   &wire.Hypergrid{HypergridJsonString: contextText},
	}, nil
}

// FromWire decodes a wire message and validates the result with NewProblem.
// Empty context text, or a missing context container, means no context.
// A nil codec selects spaces.JSONCodec.
func FromWire(msg *wire.OptimizationProblem, codec SpaceCodec) (*Problem, error) {
	const op = "FromWire"
	if msg == nil {
		return nil, newError(op, ErrMalformedSpaceEncoding, "message is nil")
	}
	codec = codecOrDefault(codec)

	parameterSpace, err := decodeSpace(op, codec, "parameter", msg.GetParameterSpace().GetHypergridJsonString())
	if err != nil {
		return nil, err
	}
	objectiveSpace, err := decodeSpace(op, codec, "objective", msg.GetObjectiveSpace().GetHypergridJsonString())
	if err != nil {
		return nil, err
	}
	var contextSpace spaces.Hypergrid
	if text := msg.GetContextSpace().GetHypergridJsonString(); text != "" {
		if contextSpace, err = decodeSpace(op, codec, "context", text); err != nil {
			return nil, err
		}
	}

	objectives := make([]Objective, 0, len(msg.GetObjectives()))
	for _, o := range msg.GetObjectives() {
		objectives = append(objectives, Objective{Name: o.GetName(), Minimize: o.GetMinimize()})
	}

	return NewProblem(parameterSpace, objectiveSpace, objectives, contextSpace)
}

func decodeSpace(op string, codec SpaceCodec, which, text string) (spaces.Hypergrid, error) {
	g, err := codec.Decode(text)
	if err != nil {
		return nil, newError(op, ErrMalformedSpaceEncoding, "%s space: %v", which, err)
	}
	if isNilSpace(g) {
		return nil, newError(op, ErrMalformedSpaceEncoding, "%s space decoded to nil", which)
	}
	return g, nil
}

// MarshalWire encodes the problem to protobuf binary form.
func (p *Problem) MarshalWire(codec SpaceCodec) ([]byte, error) {
	msg, err := p.ToWire(codec)
	if err != nil {
		return nil, err
	}
	return msg.MarshalBinary()
}

// UnmarshalWire decodes protobuf binary data produced by MarshalWire.
func UnmarshalWire(data []byte, codec SpaceCodec) (*Problem, error) {
	var msg wire.OptimizationProblem
	if err := msg.UnmarshalBinary(data); err != nil {
		return nil, newError("UnmarshalWire", ErrMalformedSpaceEncoding, "%v", err)
	}
	return FromWire(&msg, codec)
}
