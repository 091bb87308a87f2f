// Package wire implements the carrier's node-to-node wire protocol: protobuf
// messages framed with a 4-byte big-endian length prefix.
//
// Message encoding uses the protobuf wire format directly (via protowire) so
// this package does not require a protoc/codegen toolchain.
//
// Proto definition: messages.proto.
package wire

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers from messages.proto.
const (
	requestIDField    = 1
	distanceListField = 2
)

// NodeRequest is a request sent to another node.
//
// RequestID correlates the eventual NodeResponse; it is chosen by the sender
// and must be unique among the sender's in-flight requests to a given node.
// DistanceList is opaque payload; the carrier does not interpret it.
type NodeRequest struct {
	RequestID    []byte
	DistanceList []byte
}

// NodeResponse is the reply to a NodeRequest, carrying back its RequestID.
type NodeResponse struct {
	RequestID []byte
}

// MarshalWire encodes the request in protobuf wire format.
func (m *NodeRequest) MarshalWire() ([]byte, error) {
	var b []byte
	if len(m.RequestID) > 0 {
		b = protowire.AppendTag(b, requestIDField, protowire.BytesType)
		b = protowire.AppendBytes(b, m.RequestID)
	}
	if len(m.DistanceList) > 0 {
		b = protowire.AppendTag(b, distanceListField, protowire.BytesType)
		b = protowire.AppendBytes(b, m.DistanceList)
	}
	return b, nil
}

// UnmarshalWire decodes the request from protobuf wire format.
// Unknown fields are skipped.
func (m *NodeRequest) UnmarshalWire(b []byte) error {
	m.RequestID = nil
	m.DistanceList = nil
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return decodeErr("NodeRequest", protowire.ParseError(n))
		}
		b = b[n:]
		switch {
		case num == requestIDField && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return decodeErr("NodeRequest", protowire.ParseError(n))
			}
			m.RequestID = append([]byte(nil), v...)
			b = b[n:]
		case num == distanceListField && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return decodeErr("NodeRequest", protowire.ParseError(n))
			}
			m.DistanceList = append([]byte(nil), v...)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return decodeErr("NodeRequest", protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return nil
}

// MarshalWire encodes the response in protobuf wire format.
func (m *NodeResponse) MarshalWire() ([]byte, error) {
	var b []byte
	if len(m.RequestID) > 0 {
		b = protowire.AppendTag(b, requestIDField, protowire.BytesType)
		b = protowire.AppendBytes(b, m.RequestID)
	}
	return b, nil
}

// UnmarshalWire decodes the response from protobuf wire format.
// Unknown fields are skipped.
func (m *NodeResponse) UnmarshalWire(b []byte) error {
	m.RequestID = nil
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return decodeErr("NodeResponse", protowire.ParseError(n))
		}
		b = b[n:]
		switch {
		case num == requestIDField && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return decodeErr("NodeResponse", protowire.ParseError(n))
			}
			m.RequestID = append([]byte(nil), v...)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return decodeErr("NodeResponse", protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return nil
}

func decodeErr(msg string, cause error) error {
	return fmt.Errorf("wire: decode %s: %w", msg, cause)
}
