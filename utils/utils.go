// Package utils implements various helper functions used across the library.
package utils

import (
	"math/bits"
)

// NextPowerOfTwo returns the smallest power of two greater than or equal to n.
// The input must satisfy 0 < n <= 2^62.
func NextPowerOfTwo(n int) int {
	if n < 1 {
		panic("n must be strictly positive")
	}
	return 1 << uint64(bits.Len64(uint64(n-1)))
}

// EqualSliceUint64 checks the equality between two uint64 slices.
func EqualSliceUint64(a, b []uint64) (v bool) {
	v = len(a) == len(b)
	for i := range a {
		v = v && (a[i] == b[i])
	}
	return
}

// BitReverseInPlaceSlice applies an in-place bit-reverse permutation on the
// first N elements of the input slice, where N must be a power of two.
func BitReverseInPlaceSlice[V any](slice []V, N int) {

	var bit, j int

	for i := 1; i < N; i++ {

		bit = N >> 1

		for j >= bit {
			j -= bit
			bit >>= 1
		}

		j += bit

		if i < j {
			slice[i], slice[j] = slice[j], slice[i]
		}
	}
}
