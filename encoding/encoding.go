// Package encoding implements the mapping between application
// measurements and the vectors of field elements that are secret-shared
// and proved. All encoders produce vectors whose entries are 0 or 1, so
// that a single proof predicate covers every encoding.
//
// Decoding is linear over the field. It can therefore be applied to a
// secret share of an encoded vector, yielding a secret share of the
// decoded values, which is how aggregated shares are mapped back to
// application units without reconstructing individual submissions.
package encoding

import (
	"errors"
	"fmt"

	"github.com/dprio/dprio"
	"github.com/dprio/dprio/field"
)

// ErrValueOutOfRange is the error returned when a measurement does not
// fit the range of its encoder.
var ErrValueOutOfRange = errors.New("measurement out of range")

// Encoder maps measurements to encoded vectors of 0/1 field elements
// and linearly decodes (sums of) encoded vectors back to field values.
type Encoder interface {

	// Slots returns the number of field elements of an encoded vector.
	Slots() int

	// Encode maps a measurement to an encoded vector.
	Encode(values []uint64) ([]uint64, error)

	// Decode applies the linear decoding map to an encoded vector, or
	// to any field-linear combination of encoded vectors such as a
	// secret share or a sum of submissions.
	Decode(vec []uint64) []uint64
}

// Boolean encodes vectors of dimension d whose entries are 0 or 1. It
// is the encoder for boolean statistics such as histograms: summing n
// valid submissions yields, in each slot, the number of clients having
// set that slot.
type Boolean struct {
	slots int
}

// NewBoolean instantiates a Boolean encoder over the given parameters.
func NewBoolean(params dprio.Parameters) *Boolean {
	return &Boolean{slots: params.Dimension()}
}

// Slots returns the number of field elements of an encoded vector.
func (enc *Boolean) Slots() int {
	return enc.slots
}

// Encode checks that the measurement is a 0/1 vector of the encoder
// dimension and returns a copy of it. It returns ErrValueOutOfRange if
// any entry is larger than 1.
func (enc *Boolean) Encode(values []uint64) ([]uint64, error) {

	if len(values) != enc.slots {
		return nil, fmt.Errorf("invalid measurement: %d values for %d slots", len(values), enc.slots)
	}

	out := make([]uint64, enc.slots)
	for i, v := range values {
		if v > 1 {
			return nil, fmt.Errorf("slot %d: %w", i, ErrValueOutOfRange)
		}
		out[i] = v
	}

	return out, nil
}

// Decode returns a copy of the encoded vector: the boolean encoding is
// its own decoding.
func (enc *Boolean) Decode(vec []uint64) []uint64 {
	out := make([]uint64, len(vec))
	copy(out, vec)
	return out
}

// Range encodes vectors of coords values in [0, 2^bits-1] through their
// binary decomposition, using coords*bits slots. A submission is valid
// whenever every slot is 0 or 1, which bounds each decoded coordinate
// by 2^bits-1 without any further predicate.
type Range struct {
	f      *field.Field
	coords int
	bits   int

	// weights[j] = 2^j mod q.
	weights []uint64
}

// NewRange instantiates a Range encoder of coords coordinates of bits
// bits each over the given parameters. coords*bits must equal the
// parameters dimension.
func NewRange(params dprio.Parameters, coords, bits int) (*Range, error) {

	if coords < 1 || bits < 1 || bits > 63 {
		return nil, fmt.Errorf("invalid Range encoder: coords=%d bits=%d", coords, bits)
	}

	if coords*bits != params.Dimension() {
		return nil, fmt.Errorf("invalid Range encoder: coords*bits=%d but dimension is %d", coords*bits, params.Dimension())
	}

	f := params.Field()

	weights := make([]uint64, bits)
	w := uint64(1)
	for j := range weights {
		weights[j] = w
		w = f.Add(w, w)
	}

	return &Range{f: f, coords: coords, bits: bits, weights: weights}, nil
}

// Slots returns the number of field elements of an encoded vector.
func (enc *Range) Slots() int {
	return enc.coords * enc.bits
}

// Coords returns the number of encoded coordinates.
func (enc *Range) Coords() int {
	return enc.coords
}

// Bits returns the number of bits per coordinate.
func (enc *Range) Bits() int {
	return enc.bits
}

// Max returns the largest encodable coordinate value, 2^bits-1.
func (enc *Range) Max() uint64 {
	if enc.bits == 63 {
		return 1<<63 - 1
	}
	return 1<<uint(enc.bits) - 1
}

// Encode maps each coordinate to its binary decomposition, least
// significant bit first. It returns ErrValueOutOfRange if a coordinate
// exceeds 2^bits-1.
func (enc *Range) Encode(values []uint64) ([]uint64, error) {

	if len(values) != enc.coords {
		return nil, fmt.Errorf("invalid measurement: %d values for %d coordinates", len(values), enc.coords)
	}

	out := make([]uint64, enc.Slots())
	for c, v := range values {
		if v > enc.Max() {
			return nil, fmt.Errorf("coordinate %d: %w", c, ErrValueOutOfRange)
		}
		for j := 0; j < enc.bits; j++ {
			out[c*enc.bits+j] = (v >> uint(j)) & 1
		}
	}

	return out, nil
}

// Decode folds each group of bits slots back into a field value. Being
// a field-linear map, it commutes with secret-sharing and aggregation.
func (enc *Range) Decode(vec []uint64) []uint64 {

	out := make([]uint64, len(vec)/enc.bits)
	for c := range out {
		var acc uint64
		for j := 0; j < enc.bits; j++ {
			acc = enc.f.Add(acc, enc.f.Mul(enc.weights[j], vec[c*enc.bits+j]))
		}
		out[c] = acc
	}

	return out
}
