package dpnoise

import (
	"bufio"
	"io"

	"github.com/dprio/dprio/utils/buffer"
)

// BinarySize returns the serialized size of the commitment in bytes.
func (cc ClosedCommitment) BinarySize() int {
	return 8 + DigestSize
}

// WriteTo writes the commitment on w. It implements the io.WriterTo
// interface, and will write exactly BinarySize bytes on w.
//
// Unless w implements the buffer.Writer interface (see
// utils/buffer/buffer.go), it will be wrapped into a bufio.Writer.
func (cc ClosedCommitment) WriteTo(w io.Writer) (n int64, err error) {

	switch w := w.(type) {
	case buffer.Writer:

		var inc int64

		if inc, err = buffer.WriteUint64(w, cc.N); err != nil {
			return n + inc, err
		}

		n += inc

		if inc, err = buffer.WriteUint8Slice(w, cc.Digest[:]); err != nil {
			return n + inc, err
		}

		n += inc

		return n, w.Flush()

	default:
		return cc.WriteTo(bufio.NewWriter(w))
	}
}

// ReadFrom reads the commitment from r. It implements the io.ReaderFrom
// interface.
func (cc *ClosedCommitment) ReadFrom(r io.Reader) (n int64, err error) {

	switch r := r.(type) {
	case buffer.Reader:

		var inc int

		if inc, err = buffer.ReadUint64(r, &cc.N); err != nil {
			return n + int64(inc), err
		}

		n += int64(inc)

		if inc, err = buffer.ReadUint8Slice(r, cc.Digest[:]); err != nil {
			return n + int64(inc), err
		}

		return n + int64(inc), nil

	default:
		return cc.ReadFrom(bufio.NewReader(r))
	}
}

// MarshalBinary encodes the commitment into a newly allocated slice of
// bytes.
func (cc ClosedCommitment) MarshalBinary() (p []byte, err error) {
	buf := buffer.NewBufferSize(cc.BinarySize())
	_, err = cc.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a slice of bytes generated by MarshalBinary
// or WriteTo on the commitment.
func (cc *ClosedCommitment) UnmarshalBinary(p []byte) (err error) {
	_, err = cc.ReadFrom(buffer.NewBuffer(p))
	return
}

// BinarySize returns the serialized size of the opening in bytes.
func (o Opening) BinarySize() int {
	return 8 + SaltSize
}

// WriteTo writes the opening on w. It implements the io.WriterTo
// interface, and will write exactly BinarySize bytes on w.
func (o Opening) WriteTo(w io.Writer) (n int64, err error) {

	switch w := w.(type) {
	case buffer.Writer:

		var inc int64

		if inc, err = buffer.WriteUint64(w, o.Value); err != nil {
			return n + inc, err
		}

		n += inc

		if inc, err = buffer.WriteUint8Slice(w, o.Salt[:]); err != nil {
			return n + inc, err
		}

		n += inc

		return n, w.Flush()

	default:
		return o.WriteTo(bufio.NewWriter(w))
	}
}

// ReadFrom reads the opening from r. It implements the io.ReaderFrom
// interface.
func (o *Opening) ReadFrom(r io.Reader) (n int64, err error) {

	switch r := r.(type) {
	case buffer.Reader:

		var inc int

		if inc, err = buffer.ReadUint64(r, &o.Value); err != nil {
			return n + int64(inc), err
		}

		n += int64(inc)

		if inc, err = buffer.ReadUint8Slice(r, o.Salt[:]); err != nil {
			return n + int64(inc), err
		}

		return n + int64(inc), nil

	default:
		return o.ReadFrom(bufio.NewReader(r))
	}
}

// MarshalBinary encodes the opening into a newly allocated slice of
// bytes.
func (o Opening) MarshalBinary() (p []byte, err error) {
	buf := buffer.NewBufferSize(o.BinarySize())
	_, err = o.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a slice of bytes generated by MarshalBinary
// or WriteTo on the opening.
func (o *Opening) UnmarshalBinary(p []byte) (err error) {
	_, err = o.ReadFrom(buffer.NewBuffer(p))
	return
}

// BinarySize returns the serialized size of the commitment in bytes.
func (sc SplitCommitment) BinarySize() int {
	return 8 + DigestSize
}

// WriteTo writes the commitment on w. It implements the io.WriterTo
// interface, and will write exactly BinarySize bytes on w.
func (sc SplitCommitment) WriteTo(w io.Writer) (n int64, err error) {

	switch w := w.(type) {
	case buffer.Writer:

		var inc int64

		if inc, err = buffer.WriteInt(w, sc.Slots); err != nil {
			return n + inc, err
		}

		n += inc

		if inc, err = buffer.WriteUint8Slice(w, sc.Digest[:]); err != nil {
			return n + inc, err
		}

		n += inc

		return n, w.Flush()

	default:
		return sc.WriteTo(bufio.NewWriter(w))
	}
}

// ReadFrom reads the commitment from r. It implements the io.ReaderFrom
// interface.
func (sc *SplitCommitment) ReadFrom(r io.Reader) (n int64, err error) {

	switch r := r.(type) {
	case buffer.Reader:

		var inc int

		if inc, err = buffer.ReadInt(r, &sc.Slots); err != nil {
			return n + int64(inc), err
		}

		n += int64(inc)

		if inc, err = buffer.ReadUint8Slice(r, sc.Digest[:]); err != nil {
			return n + int64(inc), err
		}

		return n + int64(inc), nil

	default:
		return sc.ReadFrom(bufio.NewReader(r))
	}
}

// MarshalBinary encodes the commitment into a newly allocated slice of
// bytes.
func (sc SplitCommitment) MarshalBinary() (p []byte, err error) {
	buf := buffer.NewBufferSize(sc.BinarySize())
	_, err = sc.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a slice of bytes generated by MarshalBinary
// or WriteTo on the commitment.
func (sc *SplitCommitment) UnmarshalBinary(p []byte) (err error) {
	_, err = sc.ReadFrom(buffer.NewBuffer(p))
	return
}

// BinarySize returns the serialized size of the reveal in bytes.
func (sr SplitReveal) BinarySize() int {
	return sr.Out.BinarySize() + SaltSize
}

// WriteTo writes the reveal on w. It implements the io.WriterTo
// interface, and will write exactly BinarySize bytes on w.
func (sr SplitReveal) WriteTo(w io.Writer) (n int64, err error) {

	switch w := w.(type) {
	case buffer.Writer:

		var inc int64

		if inc, err = sr.Out.WriteTo(w); err != nil {
			return n + inc, err
		}

		n += inc

		if inc, err = buffer.WriteUint8Slice(w, sr.Salt[:]); err != nil {
			return n + inc, err
		}

		n += inc

		return n, w.Flush()

	default:
		return sr.WriteTo(bufio.NewWriter(w))
	}
}

// ReadFrom reads the reveal from r. It implements the io.ReaderFrom
// interface.
func (sr *SplitReveal) ReadFrom(r io.Reader) (n int64, err error) {

	switch r := r.(type) {
	case buffer.Reader:

		var inc64 int64
		if inc64, err = sr.Out.ReadFrom(r); err != nil {
			return n + inc64, err
		}

		n += inc64

		var inc int
		if inc, err = buffer.ReadUint8Slice(r, sr.Salt[:]); err != nil {
			return n + int64(inc), err
		}

		return n + int64(inc), nil

	default:
		return sr.ReadFrom(bufio.NewReader(r))
	}
}

// MarshalBinary encodes the reveal into a newly allocated slice of
// bytes.
func (sr SplitReveal) MarshalBinary() (p []byte, err error) {
	buf := buffer.NewBufferSize(sr.BinarySize())
	_, err = sr.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a slice of bytes generated by MarshalBinary
// or WriteTo on the reveal.
func (sr *SplitReveal) UnmarshalBinary(p []byte) (err error) {
	_, err = sr.ReadFrom(buffer.NewBuffer(p))
	return
}
