package encoding

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dprio/dprio"
)

func TestBooleanEncoder(t *testing.T) {

	params, err := dprio.NewParametersFromLiteral(dprio.ParametersLiteral{Dimension: 8})
	require.NoError(t, err)

	enc := NewBoolean(params)
	require.Equal(t, 8, enc.Slots())

	in := []uint64{0, 1, 1, 0, 0, 0, 1, 0}
	out, err := enc.Encode(in)
	require.NoError(t, err)
	require.Equal(t, in, out)

	// Encode copies its input.
	out[0] = 1
	require.Equal(t, uint64(0), in[0])

	require.Equal(t, in, enc.Decode(in))

	_, err = enc.Encode([]uint64{0, 1})
	require.Error(t, err)

	_, err = enc.Encode([]uint64{0, 1, 2, 0, 0, 0, 0, 0})
	require.ErrorIs(t, err, ErrValueOutOfRange)
}

func TestRangeEncoder(t *testing.T) {

	params, err := dprio.NewParametersFromLiteral(dprio.ParametersLiteral{Dimension: 12})
	require.NoError(t, err)

	enc, err := NewRange(params, 3, 4)
	require.NoError(t, err)
	require.Equal(t, 12, enc.Slots())
	require.Equal(t, 3, enc.Coords())
	require.Equal(t, 4, enc.Bits())
	require.Equal(t, uint64(15), enc.Max())

	vec, err := enc.Encode([]uint64{5, 0, 15})
	require.NoError(t, err)

	// 5 = 1010 in LSB-first order.
	require.Equal(t, []uint64{1, 0, 1, 0}, vec[0:4])
	require.Equal(t, []uint64{0, 0, 0, 0}, vec[4:8])
	require.Equal(t, []uint64{1, 1, 1, 1}, vec[8:12])

	require.Equal(t, []uint64{5, 0, 15}, enc.Decode(vec))

	_, err = enc.Encode([]uint64{16, 0, 0})
	require.ErrorIs(t, err, ErrValueOutOfRange)

	_, err = enc.Encode([]uint64{1, 2})
	require.Error(t, err)

	// Geometry must match the parameters.
	_, err = NewRange(params, 5, 2)
	require.Error(t, err)
	_, err = NewRange(params, 3, 0)
	require.Error(t, err)
}

func TestRangeDecodeIsLinear(t *testing.T) {

	params, err := dprio.NewParametersFromLiteral(dprio.ParametersLiteral{Dimension: 16})
	require.NoError(t, err)

	enc, err := NewRange(params, 2, 8)
	require.NoError(t, err)

	f := params.Field()

	a, err := enc.Encode([]uint64{200, 17})
	require.NoError(t, err)
	b, err := enc.Encode([]uint64{55, 100})
	require.NoError(t, err)

	sum := make([]uint64, len(a))
	for i := range sum {
		sum[i] = f.Add(a[i], b[i])
	}

	// Decoding the sum of encodings equals the sum of the decoded values.
	require.Equal(t, []uint64{255, 117}, enc.Decode(sum))
}
