package snip

import (
	"bufio"
	"io"

	"github.com/dprio/dprio/utils/buffer"
)

// VerifierMessage carries one server's evaluations of its shares of f,
// g and h at the common challenge. The two servers exchange their
// messages and feed both to Decide.
type VerifierMessage struct {
	FR uint64
	GR uint64
	HR uint64
}

// BinarySize returns the serialized size of the message in bytes.
func (vm VerifierMessage) BinarySize() int {
	return 24
}

// WriteTo writes the message on w. It implements the io.WriterTo
// interface, and will write exactly BinarySize bytes on w.
//
// Unless w implements the buffer.Writer interface (see
// utils/buffer/buffer.go), it will be wrapped into a bufio.Writer.
func (vm VerifierMessage) WriteTo(w io.Writer) (n int64, err error) {

	switch w := w.(type) {
	case buffer.Writer:

		var inc int64

		if inc, err = buffer.WriteUint64(w, vm.FR); err != nil {
			return n + inc, err
		}

		n += inc

		if inc, err = buffer.WriteUint64(w, vm.GR); err != nil {
			return n + inc, err
		}

		n += inc

		if inc, err = buffer.WriteUint64(w, vm.HR); err != nil {
			return n + inc, err
		}

		n += inc

		return n, w.Flush()

	default:
		return vm.WriteTo(bufio.NewWriter(w))
	}
}

// ReadFrom reads the message from r. It implements the io.ReaderFrom
// interface.
func (vm *VerifierMessage) ReadFrom(r io.Reader) (n int64, err error) {

	switch r := r.(type) {
	case buffer.Reader:

		var inc int

		if inc, err = buffer.ReadUint64(r, &vm.FR); err != nil {
			return n + int64(inc), err
		}

		n += int64(inc)

		if inc, err = buffer.ReadUint64(r, &vm.GR); err != nil {
			return n + int64(inc), err
		}

		n += int64(inc)

		if inc, err = buffer.ReadUint64(r, &vm.HR); err != nil {
			return n + int64(inc), err
		}

		return n + int64(inc), nil

	default:
		return vm.ReadFrom(bufio.NewReader(r))
	}
}

// MarshalBinary encodes the message into a newly allocated slice of
// bytes.
func (vm VerifierMessage) MarshalBinary() (p []byte, err error) {
	buf := buffer.NewBufferSize(vm.BinarySize())
	_, err = vm.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a slice of bytes generated by MarshalBinary
// or WriteTo on the message.
func (vm *VerifierMessage) UnmarshalBinary(p []byte) (err error) {
	_, err = vm.ReadFrom(buffer.NewBuffer(p))
	return
}
