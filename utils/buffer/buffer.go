// Package buffer implements methods for efficiently writing and reading
// values to and from io.Writer and io.Reader that also expose their
// internal buffers.
package buffer

import (
	"fmt"
	"io"
)

// Writer is an interface for writers that expose their internal
// buffers.
// This interface is notably implemented by the bufio.Writer type
// (see https://pkg.go.dev/bufio#Writer) and by the Buffer type.
type Writer interface {
	io.Writer
	Flush() (err error)
	AvailableBuffer() []byte
	Available() int
}

// Reader is an interface for readers that expose their internal
// buffers.
// This interface is notably implemented by the bufio.Reader type
// (see https://pkg.go.dev/bufio#Reader) and by the Buffer type.
type Reader interface {
	io.Reader
	Size() int
	Peek(n int) ([]byte, error)
	Discard(n int) (discarded int, err error)
}

// Buffer is a simple []byte-backed buffer complying to the Writer and
// Reader interfaces. The backing slice has a fixed size: writes past
// its capacity return an error instead of growing it.
type Buffer struct {
	buf  []byte
	wOff int
	rOff int
}

// NewBuffer instantiates a new Buffer over the backing slice buff.
// Both offsets start at buff[0], so writes overwrite the current
// content of buff.
func NewBuffer(buff []byte) *Buffer {
	return &Buffer{buf: buff}
}

// NewBufferSize instantiates a new Buffer with a fresh backing slice
// of the given size.
func NewBufferSize(size int) *Buffer {
	return &Buffer{buf: make([]byte, size)}
}

// Write writes p at the write offset of b. It returns an error if p
// does not fit in the remaining capacity.
// The case where p aliases the backing slice at the write offset is
// optimized by copy.
func (b *Buffer) Write(p []byte) (n int, err error) {
	if b.wOff+len(p) > cap(b.buf) {
		return 0, fmt.Errorf("buffer too small")
	}
	n = copy(b.buf[b.wOff:], p)
	b.wOff += n
	return
}

// Flush is a no-op on this slice-backed buffer. It is only present to
// comply to the Writer interface.
func (b *Buffer) Flush() (err error) {
	return nil
}

// AvailableBuffer returns an empty slice aliasing the unwritten part of
// the backing slice. It is valid until the next write on b.
func (b *Buffer) AvailableBuffer() []byte {
	return b.buf[b.wOff:][:0]
}

// Available returns the number of bytes that can still be written on b.
func (b *Buffer) Available() int {
	return len(b.buf) - b.wOff
}

// Bytes returns the backing slice.
func (b *Buffer) Bytes() []byte {
	return b.buf
}

// Reset re-initializes the read and write offsets of b.
func (b *Buffer) Reset() {
	b.wOff = 0
	b.rOff = 0
}

// Read reads up to len(p) bytes from the read offset of b into p,
// returning io.EOF if fewer than len(p) bytes remain.
func (b *Buffer) Read(p []byte) (n int, err error) {
	n = copy(p, b.buf[b.rOff:])
	b.rOff += n
	if n < len(p) {
		err = io.EOF
	}
	return
}

// Size returns the number of bytes available for read on b.
func (b *Buffer) Size() int {
	return len(b.buf) - b.rOff
}

// Peek returns the next n bytes without advancing the read offset,
// directly as a reslice of the backing slice. It returns io.EOF along
// with the remaining bytes if fewer than n remain.
func (b *Buffer) Peek(n int) ([]byte, error) {
	if b.rOff+n > len(b.buf) {
		return b.buf[b.rOff:], io.EOF
	}
	return b.buf[b.rOff : b.rOff+n], nil
}

// Discard skips the next n bytes, returning the number of bytes
// effectively discarded and io.EOF if it was smaller than n.
func (b *Buffer) Discard(n int) (discarded int, err error) {
	if remain := len(b.buf) - b.rOff; n > remain {
		b.rOff = len(b.buf)
		return remain, io.EOF
	}
	b.rOff += n
	return n, nil
}
