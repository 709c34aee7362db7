package buffer

import (
	"bytes"
	"encoding"
	"io"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// Serializer is the interface implemented by all serializable objects of
// the library. RequireSerializerCorrect checks the compliance of any such
// object to the interface contract.
type Serializer interface {
	io.WriterTo
	io.ReaderFrom
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
	BinarySize() int
}

// RequireSerializerCorrect checks that the input object can be serialized
// and deserialized to an identical object through both its WriteTo/ReadFrom
// and MarshalBinary/UnmarshalBinary methods, and that the number of written
// and read bytes matches its BinarySize.
func RequireSerializerCorrect(t *testing.T, x Serializer) {

	size := x.BinarySize()

	p, err := x.MarshalBinary()
	require.NoError(t, err)
	require.Equal(t, size, len(p))

	y := reflect.New(reflect.TypeOf(x).Elem()).Interface().(Serializer)
	require.NoError(t, y.UnmarshalBinary(p))
	require.True(t, cmp.Equal(x, y))

	// WriteTo/ReadFrom on a type that does not implement buffer.Writer
	// or buffer.Reader, to exercise the bufio fallback.
	b := new(bytes.Buffer)
	n, err := x.WriteTo(b)
	require.NoError(t, err)
	require.Equal(t, int64(size), n)

	z := reflect.New(reflect.TypeOf(x).Elem()).Interface().(Serializer)
	n, err = z.ReadFrom(b)
	require.NoError(t, err)
	require.Equal(t, int64(size), n)
	require.True(t, cmp.Equal(x, z))

	// WriteTo/ReadFrom on a Buffer.
	buf := NewBufferSize(size)
	n, err = x.WriteTo(buf)
	require.NoError(t, err)
	require.Equal(t, int64(size), n)

	v := reflect.New(reflect.TypeOf(x).Elem()).Interface().(Serializer)
	n, err = v.ReadFrom(buf)
	require.NoError(t, err)
	require.Equal(t, int64(size), n)
	require.True(t, cmp.Equal(x, v))
}
