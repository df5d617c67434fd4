package rpc

import (
	stdencoding "encoding"
	"fmt"

	"google.golang.org/grpc/encoding"
)

// codecName matches the content subtype of generated protobuf services so
// clients built from the .proto file interoperate with this server.
const codecName = "proto"

// binaryCodec marshals messages that encode themselves to protobuf bytes.
type binaryCodec struct{}

var _ encoding.Codec = binaryCodec{}

func (binaryCodec) Marshal(v interface{}) ([]byte, error) {
	m, ok := v.(stdencoding.BinaryMarshaler)
	if !ok {
		return nil, fmt.Errorf("rpc codec: cannot marshal %T", v)
	}
	return m.MarshalBinary()
}

func (binaryCodec) Unmarshal(data []byte, v interface{}) error {
	m, ok := v.(stdencoding.BinaryUnmarshaler)
	if !ok {
		return fmt.Errorf("rpc codec: cannot unmarshal into %T", v)
	}
	return m.UnmarshalBinary(data)
}

func (binaryCodec) Name() string { return codecName }
