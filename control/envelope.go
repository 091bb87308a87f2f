package control

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"xdao.co/carrier/wire"
)

// Field numbers from control.proto.
const (
	envelopeNodeField    = 1
	envelopeRequestField = 2
)

// SendEnvelope addresses a NodeRequest to a named node.
type SendEnvelope struct {
	Node    string
	Request wire.NodeRequest
}

// MarshalWire encodes the envelope in protobuf wire format.
func (e *SendEnvelope) MarshalWire() ([]byte, error) {
	var b []byte
	if e.Node != "" {
		b = protowire.AppendTag(b, envelopeNodeField, protowire.BytesType)
		b = protowire.AppendString(b, e.Node)
	}
	req, err := e.Request.MarshalWire()
	if err != nil {
		return nil, err
	}
	if len(req) > 0 {
		b = protowire.AppendTag(b, envelopeRequestField, protowire.BytesType)
		b = protowire.AppendBytes(b, req)
	}
	return b, nil
}

// UnmarshalWire decodes the envelope from protobuf wire format.
// Unknown fields are skipped.
func (e *SendEnvelope) UnmarshalWire(b []byte) error {
	e.Node = ""
	e.Request = wire.NodeRequest{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return decodeErr(protowire.ParseError(n))
		}
		b = b[n:]
		switch {
		case num == envelopeNodeField && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return decodeErr(protowire.ParseError(n))
			}
			e.Node = v
			b = b[n:]
		case num == envelopeRequestField && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return decodeErr(protowire.ParseError(n))
			}
			if err := e.Request.UnmarshalWire(v); err != nil {
				return err
			}
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return decodeErr(protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return nil
}

func decodeErr(cause error) error {
	return fmt.Errorf("control: decode SendEnvelope: %w", cause)
}
