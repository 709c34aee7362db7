package snip

import (
	"fmt"

	"github.com/dprio/dprio"
	"github.com/dprio/dprio/share"
	"github.com/dprio/dprio/utils/sampling"
)

// Prover generates proved submissions. It holds scratch space for the
// polynomial transforms and is not safe for concurrent use; see
// ShallowCopy.
type Prover struct {
	params dprio.Parameters

	// Scratch vectors over the 2N domain for the evaluations of f and g.
	evalsF []uint64
	evalsG []uint64
}

// NewProver instantiates a Prover for the given parameters.
func NewProver(params dprio.Parameters) *Prover {
	twoN := 2 * params.Domain()
	return &Prover{
		params: params,
		evalsF: make([]uint64, twoN),
		evalsG: make([]uint64, twoN),
	}
}

// ShallowCopy returns a Prover sharing the parameters of the receiver
// but with fresh scratch space, safe for use in a different goroutine.
func (p *Prover) ShallowCopy() *Prover {
	return NewProver(p.params)
}

// Prove appends a validity proof to the encoded data, returning the
// full proved submission [data | f0 | g0 | h0 | h points]. The random
// constants masking the data are drawn from the given PRNG.
//
// Prove does not check that the data slots are 0 or 1: a submission
// built from out-of-range data is structurally well formed but fails
// verification with overwhelming probability.
func (p *Prover) Prove(encoded []uint64, prng sampling.PRNG) (share.Vector, error) {

	params := p.params
	d := params.Dimension()

	if len(encoded) != d {
		return nil, fmt.Errorf("cannot Prove: %d data slots for dimension %d", len(encoded), d)
	}

	f := params.Field()
	n := params.Domain()

	proof := share.NewVector(params.ProofLength())
	for i := 0; i < d; i++ {
		proof[i] = f.Reduce(encoded[i])
	}

	f0 := f.Uniform(prng)
	g0 := f.Uniform(prng)

	proof[d] = f0
	proof[d+1] = g0
	proof[d+2] = f.Mul(f0, g0)

	// Points of f over the order-N subgroup: the random constant, the
	// data, then zeros up to N.
	evalsF := p.evalsF
	evalsF[0] = f0
	copy(evalsF[1:1+d], proof[:d])
	for i := 1 + d; i < 2*n; i++ {
		evalsF[i] = 0
	}

	// Points of g: as f, with one subtracted from the data slots.
	evalsG := p.evalsG
	evalsG[0] = g0
	for i := 0; i < d; i++ {
		evalsG[1+i] = f.Sub(evalsF[1+i], 1)
	}
	for i := 1 + d; i < 2*n; i++ {
		evalsG[i] = 0
	}

	// Interpolates f and g over the order-N subgroup, then evaluates
	// them over the order-2N subgroup.
	params.EvalTable().Backward(evalsF[:n])
	params.EvalTable().Backward(evalsG[:n])
	params.ProofTable().Forward(evalsF)
	params.ProofTable().Forward(evalsG)

	// The proof carries h = f*g at the odd powers of the 2N-th root of
	// unity. The even powers are the order-N subgroup, on which h is
	// h0 followed by zeros for valid data.
	for i := 0; i < n; i++ {
		proof[d+3+i] = f.Mul(evalsF[2*i+1], evalsG[2*i+1])
	}

	return proof, nil
}
