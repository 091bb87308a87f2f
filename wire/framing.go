package wire

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// DefaultMaxLen is the default cap on a single frame's payload length.
const DefaultMaxLen = 8 * 1024 * 1024

// Marshaler is a message that can encode itself in protobuf wire format.
type Marshaler interface {
	MarshalWire() ([]byte, error)
}

// Unmarshaler is a message that can decode itself from protobuf wire format.
type Unmarshaler interface {
	UnmarshalWire([]byte) error
}

// Reader reads length-prefixed protobuf frames from a stream.
//
// Not safe for concurrent use.
type Reader struct {
	r      *bufio.Reader
	buf    []byte
	maxLen int
}

// Writer writes length-prefixed protobuf frames to a stream.
//
// Writes are buffered; call Flush to push frames onto the wire.
// Not safe for concurrent use.
type Writer struct {
	w      *bufio.Writer
	maxLen int
}

// New returns a Reader/Writer pair over the two halves of a stream socket.
// A maxLen of 0 selects DefaultMaxLen.
func New(rw io.ReadWriter, maxLen int) (*Reader, *Writer) {
	return NewReader(rw, maxLen), NewWriter(rw, maxLen)
}

// NewReader returns a frame reader with the given payload cap.
// A maxLen of 0 selects DefaultMaxLen.
func NewReader(r io.Reader, maxLen int) *Reader {
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}
	return &Reader{r: bufio.NewReader(r), maxLen: maxLen}
}

// NewWriter returns a frame writer with the given payload cap.
// A maxLen of 0 selects DefaultMaxLen.
func NewWriter(w io.Writer, maxLen int) *Writer {
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}
	return &Writer{w: bufio.NewWriter(w), maxLen: maxLen}
}

// Read reads the next frame and decodes it into msg.
//
// A declared length above the cap returns ErrFrameTooLarge without consuming
// the payload; the connection should be abandoned at that point.
func (r *Reader) Read(msg Unmarshaler) error {
	var lenb [4]byte
	if _, err := io.ReadFull(r.r, lenb[:]); err != nil {
		return err
	}
	// Compare before converting: near 4 GiB the declared length would wrap
	// negative in a 32-bit int and slip past the cap.
	declared := binary.BigEndian.Uint32(lenb[:])
	if uint64(declared) > uint64(r.maxLen) {
		return fmt.Errorf("%w: declared %d, cap %d", ErrFrameTooLarge, declared, r.maxLen)
	}
	length := int(declared)
	if cap(r.buf) < length {
		r.buf = make([]byte, length)
	}
	r.buf = r.buf[:length]
	if _, err := io.ReadFull(r.r, r.buf); err != nil {
		if err == io.EOF {
			// A frame truncated mid-payload is an unexpected EOF.
			err = io.ErrUnexpectedEOF
		}
		return err
	}
	return msg.UnmarshalWire(r.buf)
}

// Write encodes msg and appends a frame to the write buffer.
func (w *Writer) Write(msg Marshaler) error {
	b, err := msg.MarshalWire()
	if err != nil {
		return err
	}
	if len(b) > w.maxLen {
		return fmt.Errorf("%w: encoded %d, cap %d", ErrFrameTooLarge, len(b), w.maxLen)
	}
	var lenb [4]byte
	binary.BigEndian.PutUint32(lenb[:], uint32(len(b)))
	if _, err := w.w.Write(lenb[:]); err != nil {
		return err
	}
	_, err = w.w.Write(b)
	return err
}

// Flush flushes buffered frames to the underlying stream.
func (w *Writer) Flush() error {
	return w.w.Flush()
}
