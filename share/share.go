// Package share implements two-party additive secret sharing of vectors
// of field elements.
//
// A vector is split into an explicit share, carried as field elements,
// and a compact share, carried as a 32-byte seed that deterministically
// expands to a uniform vector. The explicit share is the element-wise
// difference between the vector and the expansion of the seed, so that
// combining both shares reconstructs the vector while each share in
// isolation is uniformly distributed.
package share

import (
	"fmt"

	"github.com/dprio/dprio/field"
	"github.com/dprio/dprio/utils/sampling"
)

// SeedSize is the size of a compact share seed in bytes.
const SeedSize = 32

// Seed is a compact share. It expands to a uniform vector of field
// elements through a keyed PRNG.
type Seed [SeedSize]byte

// Vector is a vector of field elements, either a plaintext vector or
// one additive share of it.
type Vector []uint64

// NewVector returns a zero vector of the given length.
func NewVector(length int) Vector {
	return make(Vector, length)
}

// CopyNew returns a deep copy of the vector.
func (v Vector) CopyNew() Vector {
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// Split shares the input vector between an explicit share and a fresh
// compact share drawn from the given PRNG. The input is not modified.
func Split(f *field.Field, values Vector, prng sampling.PRNG) (explicit Vector, seed Seed, err error) {

	if _, err = prng.Read(seed[:]); err != nil {
		return nil, Seed{}, fmt.Errorf("cannot Split: %w", err)
	}

	expanded, err := seed.Expand(f, len(values))
	if err != nil {
		return nil, Seed{}, err
	}

	explicit = make(Vector, len(values))
	for i := range values {
		explicit[i] = f.Sub(values[i], expanded[i])
	}

	return
}

// Expand derives the vector of field elements carried by the seed. Two
// parties holding the same seed derive the same vector.
func (s Seed) Expand(f *field.Field, length int) (Vector, error) {

	prng, err := sampling.NewKeyedPRNG(s[:])
	if err != nil {
		return nil, fmt.Errorf("cannot Expand: %w", err)
	}

	out := make(Vector, length)
	for i := range out {
		out[i] = f.Uniform(prng)
	}

	return out, nil
}

// Combine returns the element-wise sum of two shares, reconstructing
// the shared vector.
func Combine(f *field.Field, a, b Vector) (Vector, error) {

	if len(a) != len(b) {
		return nil, fmt.Errorf("cannot Combine: share lengths %d and %d differ", len(a), len(b))
	}

	out := make(Vector, len(a))
	for i := range a {
		out[i] = f.Add(a[i], b[i])
	}

	return out, nil
}

// AddInPlace accumulates the share b into a, element-wise.
func AddInPlace(f *field.Field, a, b Vector) error {

	if len(a) != len(b) {
		return fmt.Errorf("cannot AddInPlace: share lengths %d and %d differ", len(a), len(b))
	}

	for i := range a {
		a[i] = f.Add(a[i], b[i])
	}

	return nil
}
