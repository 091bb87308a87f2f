package wire

import (
	"bytes"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"
)

func TestNodeRequestRoundTrip(t *testing.T) {
	in := NodeRequest{
		RequestID:    []byte{0x01, 0x02},
		DistanceList: []byte{1, 2, 3, 4, 5, 6, 7, 8},
	}
	b, err := in.MarshalWire()
	if err != nil {
		t.Fatalf("MarshalWire: %v", err)
	}
	var out NodeRequest
	if err := out.UnmarshalWire(b); err != nil {
		t.Fatalf("UnmarshalWire: %v", err)
	}
	if !bytes.Equal(out.RequestID, in.RequestID) || !bytes.Equal(out.DistanceList, in.DistanceList) {
		t.Fatalf("round trip mismatch: %+v vs %+v", out, in)
	}
}

// Known bytes, matching what any proto3 encoder produces for messages.proto.
func TestNodeRequestKnownEncoding(t *testing.T) {
	in := NodeRequest{RequestID: []byte{0x01}, DistanceList: []byte{0x02, 0x03}}
	b, err := in.MarshalWire()
	if err != nil {
		t.Fatalf("MarshalWire: %v", err)
	}
	want := []byte{0x0a, 0x01, 0x01, 0x12, 0x02, 0x02, 0x03}
	if !bytes.Equal(b, want) {
		t.Fatalf("encoding: got %x want %x", b, want)
	}
}

func TestEmptyMessagesEncodeEmpty(t *testing.T) {
	b, err := (&NodeRequest{}).MarshalWire()
	if err != nil {
		t.Fatalf("MarshalWire: %v", err)
	}
	if len(b) != 0 {
		t.Fatalf("empty request encoded to %x", b)
	}
	var out NodeResponse
	if err := out.UnmarshalWire(nil); err != nil {
		t.Fatalf("UnmarshalWire(nil): %v", err)
	}
	if out.RequestID != nil {
		t.Fatalf("decoded request_id from nothing: %x", out.RequestID)
	}
}

// Future schema revisions may add fields; current decoders must skip them.
func TestUnknownFieldsSkipped(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendBytes(b, []byte{0xAA})
	b = protowire.AppendTag(b, 9, protowire.VarintType)
	b = protowire.AppendVarint(b, 1234)
	b = protowire.AppendTag(b, 10, protowire.BytesType)
	b = protowire.AppendBytes(b, []byte("future"))

	var resp NodeResponse
	if err := resp.UnmarshalWire(b); err != nil {
		t.Fatalf("UnmarshalWire: %v", err)
	}
	if !bytes.Equal(resp.RequestID, []byte{0xAA}) {
		t.Fatalf("request_id: got %x", resp.RequestID)
	}
}

func TestTruncatedMessageRejected(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendVarint(b, 5) // declares 5 bytes, provides none

	var req NodeRequest
	if err := req.UnmarshalWire(b); err == nil {
		t.Fatal("truncated message decoded")
	}
}
