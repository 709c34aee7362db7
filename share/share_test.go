package share

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dprio/dprio/field"
	"github.com/dprio/dprio/utils"
	"github.com/dprio/dprio/utils/buffer"
	"github.com/dprio/dprio/utils/sampling"
)

func testField(t *testing.T) *field.Field {
	f, err := field.NewField(0x1FFFFFFFFFE00001)
	require.NoError(t, err)
	return f
}

func TestSplitCombine(t *testing.T) {

	f := testField(t)

	prng, err := sampling.NewKeyedPRNG([]byte{'s', 'p', 'l', 'i', 't'})
	require.NoError(t, err)

	values := Vector{0, 1, 42, f.Modulus - 1, 1 << 60}

	explicit, seed, err := Split(f, values, prng)
	require.NoError(t, err)
	require.Equal(t, len(values), len(explicit))

	expanded, err := seed.Expand(f, len(values))
	require.NoError(t, err)

	combined, err := Combine(f, explicit, expanded)
	require.NoError(t, err)
	require.True(t, utils.EqualSliceUint64(values, combined))

	// The input is not modified.
	require.Equal(t, uint64(42), values[2])
}

func TestExpandIsDeterministic(t *testing.T) {

	f := testField(t)

	var seed Seed
	copy(seed[:], []byte("expansion determinism test seed."))

	a, err := seed.Expand(f, 64)
	require.NoError(t, err)
	b, err := seed.Expand(f, 64)
	require.NoError(t, err)

	require.True(t, utils.EqualSliceUint64(a, b))

	for _, x := range a {
		require.Less(t, x, f.Modulus)
	}
}

func TestSplitSharesDiffer(t *testing.T) {

	f := testField(t)

	prng, err := sampling.NewKeyedPRNG(nil)
	require.NoError(t, err)

	values := NewVector(32)

	e1, s1, err := Split(f, values, prng)
	require.NoError(t, err)
	e2, s2, err := Split(f, values, prng)
	require.NoError(t, err)

	// Fresh randomness per call.
	require.NotEqual(t, s1, s2)
	require.False(t, utils.EqualSliceUint64(e1, e2))
}

func TestCombineLengthMismatch(t *testing.T) {

	f := testField(t)

	_, err := Combine(f, NewVector(3), NewVector(4))
	require.Error(t, err)

	err = AddInPlace(f, NewVector(3), NewVector(4))
	require.Error(t, err)
}

func TestAddInPlace(t *testing.T) {

	f := testField(t)

	a := Vector{1, 2, f.Modulus - 1}
	b := Vector{5, 0, 1}

	require.NoError(t, AddInPlace(f, a, b))
	require.Equal(t, Vector{6, 2, 0}, a)
}

func TestVectorSerialization(t *testing.T) {

	v := Vector{0, 1, 0xFFFFFFFFFFFFFFFF, 1 << 61}
	buffer.RequireSerializerCorrect(t, &v)

	empty := Vector{}
	buffer.RequireSerializerCorrect(t, &empty)
}
