package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, 0)
	reqs := []NodeRequest{
		{RequestID: []byte{0}, DistanceList: []byte{1, 2, 3}},
		{RequestID: []byte{1}},
		{},
	}
	for i := range reqs {
		if err := w.Write(&reqs[i]); err != nil {
			t.Fatalf("Write(%d): %v", i, err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	r := NewReader(&buf, 0)
	for i := range reqs {
		var got NodeRequest
		if err := r.Read(&got); err != nil {
			t.Fatalf("Read(%d): %v", i, err)
		}
		if !bytes.Equal(got.RequestID, reqs[i].RequestID) || !bytes.Equal(got.DistanceList, reqs[i].DistanceList) {
			t.Fatalf("frame %d mismatch: %+v vs %+v", i, got, reqs[i])
		}
	}
	var extra NodeRequest
	if err := r.Read(&extra); err != io.EOF {
		t.Fatalf("Read past end: got %v want EOF", err)
	}
}

func TestFramePrefixIsBigEndian(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, 0)
	if err := w.Write(&NodeRequest{RequestID: []byte{0x01}}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	b := buf.Bytes()
	if len(b) < 4 {
		t.Fatalf("short frame: %x", b)
	}
	if got := binary.BigEndian.Uint32(b[:4]); int(got) != len(b)-4 {
		t.Fatalf("length prefix %d, payload %d", got, len(b)-4)
	}
}

func TestReadRejectsOversizedFrame(t *testing.T) {
	var buf bytes.Buffer
	var lenb [4]byte
	binary.BigEndian.PutUint32(lenb[:], 1024)
	buf.Write(lenb[:])
	buf.Write(make([]byte, 1024))

	r := NewReader(&buf, 16)
	var req NodeRequest
	if err := r.Read(&req); !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("got %v want ErrFrameTooLarge", err)
	}
}

// A declared length near 4 GiB must hit the cap on every platform, including
// ones where it would not fit a signed 32-bit int.
func TestReadRejectsMaxUint32Frame(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0xFF, 0xFF, 0xFF, 0xFF})

	r := NewReader(&buf, 0)
	var req NodeRequest
	if err := r.Read(&req); !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("got %v want ErrFrameTooLarge", err)
	}
}

func TestWriteRejectsOversizedFrame(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, 16)
	req := NodeRequest{DistanceList: make([]byte, 64)}
	if err := w.Write(&req); !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("got %v want ErrFrameTooLarge", err)
	}
}

func TestTruncatedFrameIsUnexpectedEOF(t *testing.T) {
	var buf bytes.Buffer
	var lenb [4]byte
	binary.BigEndian.PutUint32(lenb[:], 8)
	buf.Write(lenb[:])
	buf.Write([]byte{0x0a}) // 1 of 8 declared bytes

	r := NewReader(&buf, 0)
	var req NodeRequest
	if err := r.Read(&req); err != io.ErrUnexpectedEOF {
		t.Fatalf("got %v want ErrUnexpectedEOF", err)
	}
}

func TestZeroLengthFrame(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0, 0, 0, 0})

	r := NewReader(&buf, 0)
	req := NodeRequest{RequestID: []byte("stale")}
	if err := r.Read(&req); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if req.RequestID != nil || req.DistanceList != nil {
		t.Fatalf("zero-length frame did not reset message: %+v", req)
	}
}
