package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNextPowerOfTwo(t *testing.T) {
	require.Equal(t, 1, NextPowerOfTwo(1))
	require.Equal(t, 2, NextPowerOfTwo(2))
	require.Equal(t, 4, NextPowerOfTwo(3))
	require.Equal(t, 1024, NextPowerOfTwo(1023))
	require.Equal(t, 1024, NextPowerOfTwo(1024))
	require.Panics(t, func() { NextPowerOfTwo(0) })
}

func TestEqualSliceUint64(t *testing.T) {
	require.True(t, EqualSliceUint64(nil, nil))
	require.True(t, EqualSliceUint64([]uint64{1, 2, 3}, []uint64{1, 2, 3}))
	require.False(t, EqualSliceUint64([]uint64{1, 2, 3}, []uint64{1, 2}))
	require.False(t, EqualSliceUint64([]uint64{1, 2, 3}, []uint64{1, 2, 4}))
}

func TestBitReverseInPlaceSlice(t *testing.T) {
	s := []uint64{0, 1, 2, 3, 4, 5, 6, 7}
	BitReverseInPlaceSlice(s, 8)
	require.Equal(t, []uint64{0, 4, 2, 6, 1, 5, 3, 7}, s)
	BitReverseInPlaceSlice(s, 8)
	require.Equal(t, []uint64{0, 1, 2, 3, 4, 5, 6, 7}, s, "the permutation is an involution")
}
