package share

import (
	"bufio"
	"fmt"
	"io"

	"github.com/dprio/dprio/utils/buffer"
)

// BinarySize returns the serialized size of the vector in bytes.
func (v Vector) BinarySize() int {
	return 8 + len(v)<<3
}

// WriteTo writes the vector on w. It implements the io.WriterTo
// interface, and will write exactly BinarySize bytes on w.
//
// Unless w implements the buffer.Writer interface (see
// utils/buffer/buffer.go), it will be wrapped into a bufio.Writer.
// Since this requires allocations, it is preferable to pass a
// buffer.Writer directly.
func (v Vector) WriteTo(w io.Writer) (n int64, err error) {

	switch w := w.(type) {
	case buffer.Writer:

		var inc int64

		if inc, err = buffer.WriteInt(w, len(v)); err != nil {
			return n + inc, err
		}

		n += inc

		if inc, err = buffer.WriteUint64Slice(w, v); err != nil {
			return n + inc, err
		}

		n += inc

		return n, w.Flush()

	default:
		return v.WriteTo(bufio.NewWriter(w))
	}
}

// ReadFrom reads the vector from r. It implements the io.ReaderFrom
// interface.
//
// Unless r implements the buffer.Reader interface (see
// utils/buffer/buffer.go), it will be wrapped into a bufio.Reader.
func (v *Vector) ReadFrom(r io.Reader) (n int64, err error) {

	switch r := r.(type) {
	case buffer.Reader:

		var size int

		var inc int
		if inc, err = buffer.ReadInt(r, &size); err != nil {
			return n + int64(inc), err
		}

		n += int64(inc)

		if size < 0 {
			return n, fmt.Errorf("cannot ReadFrom: negative vector length")
		}

		if *v == nil || len(*v) != size {
			*v = make(Vector, size)
		}

		if inc, err = buffer.ReadUint64Slice(r, *v); err != nil {
			return n + int64(inc), err
		}

		return n + int64(inc), nil

	default:
		return v.ReadFrom(bufio.NewReader(r))
	}
}

// MarshalBinary encodes the vector into a newly allocated slice of
// bytes.
func (v Vector) MarshalBinary() (p []byte, err error) {
	buf := buffer.NewBufferSize(v.BinarySize())
	_, err = v.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a slice of bytes generated by MarshalBinary
// or WriteTo on the vector.
func (v *Vector) UnmarshalBinary(p []byte) (err error) {
	_, err = v.ReadFrom(buffer.NewBuffer(p))
	return
}
