package buffer

import (
	"bufio"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBufferWriteRead(t *testing.T) {

	c := []uint64{0, 1, 0xFFFFFFFFFFFFFFFF, 42, 1 << 61}

	b := NewBufferSize(len(c) << 3)

	n, err := WriteUint64Slice(b, c)
	require.NoError(t, err)
	require.Equal(t, int64(len(c)<<3), n)

	// Backing slice is full.
	_, err = WriteUint64(b, 0)
	require.Error(t, err)

	out := make([]uint64, len(c))
	nint, err := ReadUint64Slice(b, out)
	require.NoError(t, err)
	require.Equal(t, len(c)<<3, nint)
	require.Equal(t, c, out)

	_, err = Read(b, make([]byte, 1))
	require.Equal(t, io.EOF, err)
}

func TestBufferSmallBufio(t *testing.T) {

	c := make([]uint64, 128)
	for i := range c {
		c[i] = uint64(i) * 0x9E3779B97F4A7C15
	}

	// Forces the chunked path of WriteUint64Slice and ReadUint64Slice
	// with an internal buffer smaller than the payload.
	var raw bytes.Buffer
	w := bufio.NewWriterSize(&raw, 64)

	n, err := WriteUint64Slice(w, c)
	require.NoError(t, err)
	require.NoError(t, w.Flush())
	require.Equal(t, int64(len(c)<<3), n)

	r := bufio.NewReaderSize(&raw, 64)
	out := make([]uint64, len(c))
	nint, err := ReadUint64Slice(r, out)
	require.NoError(t, err)
	require.Equal(t, len(c)<<3, nint)
	require.Equal(t, c, out)
}

func TestBufferUint8(t *testing.T) {

	b := NewBufferSize(4)

	_, err := WriteUint8(b, 0xAB)
	require.NoError(t, err)
	_, err = WriteUint8Slice(b, []uint8{1, 2, 3})
	require.NoError(t, err)

	var u uint8
	_, err = ReadUint8(b, &u)
	require.NoError(t, err)
	require.Equal(t, uint8(0xAB), u)

	s := make([]uint8, 3)
	_, err = ReadUint8Slice(b, s)
	require.NoError(t, err)
	require.Equal(t, []uint8{1, 2, 3}, s)
}
