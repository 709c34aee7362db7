package field

import (
	"fmt"

	"github.com/dprio/dprio/utils"
)

// NTTTable stores the constants required to evaluate and interpolate
// polynomials over the multiplicative subgroup of order N of a prime
// field, with N a power of two dividing q-1.
//
// The forward transform maps the coefficients of a polynomial P of
// degree smaller than N to its evaluations (P(w^0), ..., P(w^(N-1))),
// with w a primitive N-th root of unity. The backward transform is its
// inverse, i.e. it interpolates the unique polynomial of degree smaller
// than N through N points lying on the subgroup.
type NTTTable struct {
	f *Field

	// NthRoot is the order N of the subgroup.
	NthRoot uint64

	// RootsForward stores w^i in Montgomery form, in natural order.
	RootsForward []uint64

	// RootsBackward stores w^(-i) in Montgomery form, in natural order.
	RootsBackward []uint64

	// NInv is N^(-1) mod q in Montgomery form.
	NInv uint64
}

// NewNTTTable instantiates the transform constants for the subgroup of
// order nthRoot of the field. nthRoot must be a power of two dividing
// q-1.
func (f *Field) NewNTTTable(nthRoot uint64) (t *NTTTable, err error) {

	if nthRoot < 2 || nthRoot&(nthRoot-1) != 0 {
		return nil, fmt.Errorf("invalid NthRoot: %d is not a power of two", nthRoot)
	}

	if (f.Modulus-1)%nthRoot != 0 {
		return nil, fmt.Errorf("invalid NthRoot: %d does not divide q-1", nthRoot)
	}

	t = &NTTTable{
		f:             f,
		NthRoot:       nthRoot,
		RootsForward:  make([]uint64, nthRoot),
		RootsBackward: make([]uint64, nthRoot),
	}

	q := f.Modulus

	// N^(-1) mod q in Montgomery form.
	t.NInv = MForm(f.Exp(nthRoot, q-2), q, f.BRedConstant)

	// Psi = g^((q-1)/N) is a primitive N-th root of unity.
	psiMont := MForm(f.Exp(f.primitiveRoot, (q-1)/nthRoot), q, f.BRedConstant)
	psiInvMont := MForm(f.Exp(f.primitiveRoot, q-1-(q-1)/nthRoot), q, f.BRedConstant)

	t.RootsForward[0] = MForm(1, q, f.BRedConstant)
	t.RootsBackward[0] = t.RootsForward[0]

	for i := uint64(1); i < nthRoot; i++ {
		t.RootsForward[i] = MRed(t.RootsForward[i-1], psiMont, q, f.MRedConstant)
		t.RootsBackward[i] = MRed(t.RootsBackward[i-1], psiInvMont, q, f.MRedConstant)
	}

	return
}

// N returns the size of the transform.
func (t *NTTTable) N() int {
	return int(t.NthRoot)
}

// Root returns w^i mod q, with w the primitive N-th root of unity of
// the table.
func (t *NTTTable) Root(i int) uint64 {
	return MRed(t.RootsForward[i&(int(t.NthRoot)-1)], 1, t.f.Modulus, t.f.MRedConstant)
}

// Forward evaluates in place the polynomial of coefficients p over the
// subgroup, i.e. p[i] <- P(w^i). The length of p must be N.
func (t *NTTTable) Forward(p []uint64) {
	t.transform(p, t.RootsForward)
}

// Backward interpolates in place the polynomial whose evaluation over
// the subgroup is p, i.e. p <- coefficients of the unique P of degree
// smaller than N with P(w^i) = p[i]. The length of p must be N.
func (t *NTTTable) Backward(p []uint64) {

	t.transform(p, t.RootsBackward)

	q, mredc := t.f.Modulus, t.f.MRedConstant
	for i := range p {
		p[i] = MRed(p[i], t.NInv, q, mredc)
	}
}

// transform applies an in-place iterative radix-2 decimation-in-time
// transform with the given root powers, preceded by the bit-reverse
// permutation of the input.
func (t *NTTTable) transform(p []uint64, roots []uint64) {

	n := int(t.NthRoot)

	if len(p) != n {
		panic(fmt.Errorf("invalid input: len(p) = %d but transform size is %d", len(p), n))
	}

	q, mredc := t.f.Modulus, t.f.MRedConstant

	utils.BitReverseInPlaceSlice(p, n)

	for span := 2; span <= n; span <<= 1 {

		half, stride := span>>1, n/span

		for start := 0; start < n; start += span {
			for i, j := start, 0; i < start+half; i, j = i+1, j+stride {

				u := p[i]
				v := MRed(p[i+half], roots[j], q, mredc)

				p[i] = CRed(u+v, q)
				p[i+half] = CRed(u+q-v, q)
			}
		}
	}
}
