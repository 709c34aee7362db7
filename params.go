package dprio

import (
	"encoding/json"
	"fmt"

	"github.com/dprio/dprio/field"
	"github.com/dprio/dprio/utils"
)

// DefaultModulus is the default field modulus, the 61-bit prime
// 2^61 - 2^21 + 1. Its multiplicative group contains subgroups of
// order 2^k for all k <= 21, which bounds the supported dimension
// to 2^20 - 1.
const DefaultModulus uint64 = 0x1FFFFFFFFFE00001

// ParametersLiteral is a literal representation of aggregation
// parameters. It has public fields and is used to express unchecked
// user-defined parameters literally into Go programs, or to marshal
// them from and to JSON. The fields are checked at the instantiation
// of a Parameters struct with NewParametersFromLiteral.
//
// Q is the field modulus. If left to zero, DefaultModulus is used.
// A user-defined modulus must be a prime of at most 61 bits such
// that the dimension is supported (see Parameters.Domain).
//
// Dimension is the number of field elements in an encoded submission.
type ParametersLiteral struct {
	Q         uint64 `json:",omitempty"`
	Dimension int
}

// Parameters represents a checked parameter set for the aggregation
// protocol. Its fields are private and immutable. See ParametersLiteral
// for user-specified parameters.
type Parameters struct {
	q          uint64
	dimension  int
	fld        *field.Field
	evalTable  *field.NTTTable
	proofTable *field.NTTTable
}

// NewParametersFromLiteral instantiates a set of Parameters from a
// ParametersLiteral specification. It returns the empty parameters
// Parameters{} and a non-nil error if the specified parameters are
// invalid, notably if the modulus is not prime or does not carry a
// large enough power-of-two subgroup for the requested dimension.
func NewParametersFromLiteral(pl ParametersLiteral) (params Parameters, err error) {

	q := pl.Q
	if q == 0 {
		q = DefaultModulus
	}

	if pl.Dimension < 1 {
		return Parameters{}, fmt.Errorf("invalid parameters: dimension must be at least 1")
	}

	fld, err := field.NewField(q)
	if err != nil {
		return Parameters{}, fmt.Errorf("invalid parameters: %w", err)
	}

	n := uint64(utils.NextPowerOfTwo(pl.Dimension + 1))

	if (q-1)%(2*n) != 0 {
		return Parameters{}, fmt.Errorf("invalid parameters: dimension %d requires a subgroup of order %d but %d does not divide q-1", pl.Dimension, 2*n, 2*n)
	}

	params = Parameters{
		q:         q,
		dimension: pl.Dimension,
		fld:       fld,
	}

	if params.evalTable, err = fld.NewNTTTable(n); err != nil {
		return Parameters{}, err
	}

	if params.proofTable, err = fld.NewNTTTable(2 * n); err != nil {
		return Parameters{}, err
	}

	return
}

// Q returns the field modulus.
func (p Parameters) Q() uint64 {
	return p.q
}

// Dimension returns the number of field elements in an encoded
// submission.
func (p Parameters) Dimension() int {
	return p.dimension
}

// Domain returns the size N of the evaluation domain, the smallest
// power of two strictly greater than the dimension. Proof polynomials
// are interpolated through the subgroup of order N and multiplied over
// the subgroup of order 2N.
func (p Parameters) Domain() int {
	return p.evalTable.N()
}

// ProofLength returns the total number of field elements in a proved
// submission: the Dimension data elements, three polynomial constants
// and Domain proof elements.
func (p Parameters) ProofLength() int {
	return p.dimension + 3 + p.Domain()
}

// Field returns the underlying prime field.
func (p Parameters) Field() *field.Field {
	return p.fld
}

// EvalTable returns the transform table over the subgroup of order
// Domain, on which submissions are interpolated.
func (p Parameters) EvalTable() *field.NTTTable {
	return p.evalTable
}

// ProofTable returns the transform table over the subgroup of order
// 2*Domain, on which the proof polynomial is evaluated.
func (p Parameters) ProofTable() *field.NTTTable {
	return p.proofTable
}

// SoundnessError returns an upper bound on the probability that a
// malformed submission passes verification, namely (2N-2)/(q-2N) for
// N the domain size.
func (p Parameters) SoundnessError() float64 {
	n := float64(p.Domain())
	return (2*n - 2) / (float64(p.q) - 2*n)
}

// Equal returns true if the two parameter sets are identical.
func (p Parameters) Equal(other *Parameters) bool {
	return p.q == other.q && p.dimension == other.dimension
}

// MarshalBinary returns a []byte representation of the parameter set.
// This representation corresponds to the MarshalJSON representation.
func (p Parameters) MarshalBinary() ([]byte, error) {
	return p.MarshalJSON()
}

// UnmarshalBinary decodes a slice of bytes on the target Parameters.
func (p *Parameters) UnmarshalBinary(data []byte) error {
	return p.UnmarshalJSON(data)
}

// MarshalJSON returns a JSON representation of this parameter set.
func (p Parameters) MarshalJSON() ([]byte, error) {
	return json.Marshal(ParametersLiteral{Q: p.q, Dimension: p.dimension})
}

// UnmarshalJSON reads a JSON representation of a parameter set into
// the receiver Parameters, validating it in the process.
func (p *Parameters) UnmarshalJSON(data []byte) (err error) {
	var pl ParametersLiteral
	if err = json.Unmarshal(data, &pl); err != nil {
		return
	}
	*p, err = NewParametersFromLiteral(pl)
	return
}
