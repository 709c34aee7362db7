// Package field implements modular arithmetic over prime fields of odd
// modulus q < 2^62, along with the number theoretic transforms required
// to interpolate and evaluate polynomials over subgroups of roots of
// unity of the field.
package field

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/dprio/dprio/utils/sampling"
)

// ErrNonInvertible is the error returned when attempting to invert a
// field element that has no multiplicative inverse.
var ErrNonInvertible = errors.New("element is not invertible")

// Field stores the modulus of a prime field along with the precomputed
// constants required for the Montgomery and Barrett modular reductions
// over that field.
type Field struct {
	// Modulus is the prime modulus q defining the field.
	Modulus uint64

	// Mask is 2^ceil(log2(q))-1, used for rejection sampling.
	Mask uint64

	// BRedConstant is the constant floor(2^128/q) for the Barrett reduction.
	BRedConstant [2]uint64

	// MRedConstant is the constant q^-1 mod 2^64 for the Montgomery reduction.
	MRedConstant uint64

	primitiveRoot uint64
	factors       []uint64
}

// NewField instantiates a new prime field of modulus q.
// The modulus must be an odd prime of at most 61 bits. The factorization
// of q-1 and a primitive root of the multiplicative group are computed
// at instantiation time.
func NewField(q uint64) (f *Field, err error) {

	if q < 3 || q&1 == 0 {
		return nil, fmt.Errorf("invalid modulus: %d is not an odd prime", q)
	}

	if bits.Len64(q) > MaxModulusBitSize {
		return nil, fmt.Errorf("invalid modulus: %d exceeds %d bits", q, MaxModulusBitSize)
	}

	if !IsPrime(q) {
		return nil, fmt.Errorf("invalid modulus: %d is not prime", q)
	}

	f = &Field{
		Modulus:      q,
		Mask:         (1 << uint64(bits.Len64(q))) - 1,
		BRedConstant: GenBRedConstant(q),
		MRedConstant: GenMRedConstant(q),
	}

	if f.primitiveRoot, f.factors, err = PrimitiveRoot(q, nil); err != nil {
		return nil, err
	}

	return
}

// MaxModulusBitSize is the largest supported bit-size for a field
// modulus. The bound leaves enough headroom for the lazy reductions
// of the Montgomery and Barrett algorithms.
const MaxModulusBitSize = 61

// Add returns x + y mod q.
func (f *Field) Add(x, y uint64) uint64 {
	return CRed(x+y, f.Modulus)
}

// Sub returns x - y mod q.
func (f *Field) Sub(x, y uint64) uint64 {
	return CRed(x+f.Modulus-y, f.Modulus)
}

// Neg returns -x mod q.
func (f *Field) Neg(x uint64) uint64 {
	return CRed(f.Modulus-x, f.Modulus)
}

// Mul returns x * y mod q.
func (f *Field) Mul(x, y uint64) uint64 {
	return BRed(x, y, f.Modulus, f.BRedConstant)
}

// Exp returns x^e mod q.
func (f *Field) Exp(x, e uint64) (result uint64) {
	result = 1
	for i := e; i > 0; i >>= 1 {
		if i&1 == 1 {
			result = BRed(result, x, f.Modulus, f.BRedConstant)
		}
		x = BRed(x, x, f.Modulus, f.BRedConstant)
	}
	return
}

// Inv returns x^-1 mod q, computed as x^(q-2) mod q.
// It returns ErrNonInvertible if x = 0 mod q.
func (f *Field) Inv(x uint64) (uint64, error) {
	if x = f.Reduce(x); x == 0 {
		return 0, ErrNonInvertible
	}
	return f.Exp(x, f.Modulus-2), nil
}

// Reduce returns x mod q for an arbitrary 64-bit x.
func (f *Field) Reduce(x uint64) uint64 {
	return BRedAdd(x, f.Modulus, f.BRedConstant)
}

// FromInt64 maps a signed integer to its field representative, with
// negative values mapped to the upper half of the field.
func (f *Field) FromInt64(v int64) uint64 {
	if v < 0 {
		return f.Modulus - BRedAdd(uint64(-v), f.Modulus, f.BRedConstant)
	}
	return BRedAdd(uint64(v), f.Modulus, f.BRedConstant)
}

// ToInt64 maps a field element to a signed integer through the centered
// lift: values above (q-1)/2 are interpreted as negative.
func (f *Field) ToInt64(x uint64) int64 {
	x = f.Reduce(x)
	if x > f.Modulus>>1 {
		return int64(x) - int64(f.Modulus)
	}
	return int64(x)
}

// Uniform samples a uniform field element from the given PRNG by
// rejection sampling under the field mask.
func (f *Field) Uniform(prng sampling.PRNG) uint64 {
	return sampling.RandUniform(prng, f.Modulus, f.Mask)
}

// EvalPoly evaluates at x the polynomial whose coefficients are given in
// ascending degree order, through the Horner scheme.
func (f *Field) EvalPoly(coeffs []uint64, x uint64) (y uint64) {
	for i := len(coeffs) - 1; i >= 0; i-- {
		y = CRed(BRed(y, x, f.Modulus, f.BRedConstant)+coeffs[i], f.Modulus)
	}
	return
}

// PrimitiveRootOfUnity returns a generator of the multiplicative group
// of the field.
func (f *Field) PrimitiveRootOfUnity() uint64 {
	return f.primitiveRoot
}

// Factors returns the distinct prime factors of q-1.
func (f *Field) Factors() []uint64 {
	factors := make([]uint64, len(f.factors))
	copy(factors, f.factors)
	return factors
}

// Equal returns true if the two fields have the same modulus.
func (f *Field) Equal(other *Field) bool {
	return f.Modulus == other.Modulus
}
