package sampling

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyedPRNGIsDeterministic(t *testing.T) {

	key := []byte{0x49, 0x0a, 0x42, 0x3d, 0x97, 0x9d, 0xc1, 0x07}

	prngA, err := NewKeyedPRNG(key)
	require.NoError(t, err)

	prngB, err := NewKeyedPRNG(key)
	require.NoError(t, err)

	bufA := make([]byte, 1024)
	bufB := make([]byte, 1024)

	_, err = prngA.Read(bufA)
	require.NoError(t, err)
	_, err = prngB.Read(bufB)
	require.NoError(t, err)

	require.True(t, bytes.Equal(bufA, bufB))

	prngA.Reset()
	bufC := make([]byte, 1024)
	_, err = prngA.Read(bufC)
	require.NoError(t, err)
	require.True(t, bytes.Equal(bufA, bufC))

	require.Equal(t, key, prngA.Key())
}

func TestKeyedPRNGDivergesOnKey(t *testing.T) {

	prngA, err := NewKeyedPRNG([]byte{1})
	require.NoError(t, err)

	prngB, err := NewKeyedPRNG([]byte{2})
	require.NoError(t, err)

	bufA := make([]byte, 64)
	bufB := make([]byte, 64)

	_, err = prngA.Read(bufA)
	require.NoError(t, err)
	_, err = prngB.Read(bufB)
	require.NoError(t, err)

	require.False(t, bytes.Equal(bufA, bufB))
}

func TestRandUniformBound(t *testing.T) {

	prng, err := NewKeyedPRNG(nil)
	require.NoError(t, err)

	v := uint64(12289)
	mask := uint64(16383)

	for i := 0; i < 1024; i++ {
		require.Less(t, RandUniform(prng, v, mask), v)
	}
}

func TestRandFloat64Range(t *testing.T) {

	prng, err := NewKeyedPRNG(nil)
	require.NoError(t, err)

	for i := 0; i < 1024; i++ {
		f := RandFloat64(prng)
		require.GreaterOrEqual(t, f, 0.0)
		require.Less(t, f, 1.0)
	}
}
