package snip

import (
	"fmt"

	"github.com/dprio/dprio"
	"github.com/dprio/dprio/share"
)

// Verifier generates verifier messages for proved submission shares.
// One of the two servers must be instantiated as the leader: it is the
// server whose share of g absorbs the minus-one offset of the proof
// predicate, so that the offset is applied exactly once across the two
// servers.
//
// A Verifier holds scratch space for the polynomial transforms and is
// not safe for concurrent use; see ShallowCopy.
type Verifier struct {
	params dprio.Parameters
	leader bool

	pointsF []uint64
	pointsG []uint64
	pointsH []uint64
}

// NewVerifier instantiates a Verifier for the given parameters.
func NewVerifier(params dprio.Parameters, leader bool) *Verifier {
	n := params.Domain()
	return &Verifier{
		params:  params,
		leader:  leader,
		pointsF: make([]uint64, n),
		pointsG: make([]uint64, n),
		pointsH: make([]uint64, 2*n),
	}
}

// ShallowCopy returns a Verifier sharing the parameters and role of the
// receiver but with fresh scratch space, safe for use in a different
// goroutine.
func (v *Verifier) ShallowCopy() *Verifier {
	return NewVerifier(v.params, v.leader)
}

// IsLeader returns whether this verifier applies the leader offset.
func (v *Verifier) IsLeader() bool {
	return v.leader
}

// GenVerifierMessage evaluates the verifier's shares of f, g and h at
// the challenge r and returns the resulting message for the peer.
// It returns ErrMalformedProof if the share does not have the length
// prescribed by the parameters.
func (v *Verifier) GenVerifierMessage(sub share.Vector, r uint64) (VerifierMessage, error) {

	params := v.params
	d := params.Dimension()
	n := params.Domain()

	if len(sub) != params.ProofLength() {
		return VerifierMessage{}, fmt.Errorf("%w: length %d, expected %d", ErrMalformedProof, len(sub), params.ProofLength())
	}

	f := params.Field()

	// Share of the points of f: constant share, data shares, zeros.
	pointsF := v.pointsF
	pointsF[0] = f.Reduce(sub[d])
	for i := 0; i < d; i++ {
		pointsF[1+i] = f.Reduce(sub[i])
	}
	for i := 1 + d; i < n; i++ {
		pointsF[i] = 0
	}

	// Share of the points of g: only the leader subtracts one from the
	// data shares, so the offset is counted once after recombination.
	pointsG := v.pointsG
	pointsG[0] = f.Reduce(sub[d+1])
	for i := 0; i < d; i++ {
		if v.leader {
			pointsG[1+i] = f.Sub(pointsF[1+i], 1)
		} else {
			pointsG[1+i] = pointsF[1+i]
		}
	}
	for i := 1 + d; i < n; i++ {
		pointsG[i] = 0
	}

	// Share of the points of h over the 2N domain: the constant share,
	// the proof points at odd powers, zeros at the remaining even
	// powers where h vanishes on valid data.
	pointsH := v.pointsH
	for i := range pointsH {
		pointsH[i] = 0
	}
	pointsH[0] = f.Reduce(sub[d+2])
	for i := 0; i < n; i++ {
		pointsH[2*i+1] = f.Reduce(sub[d+3+i])
	}

	params.EvalTable().Backward(pointsF)
	params.EvalTable().Backward(pointsG)
	params.ProofTable().Backward(pointsH)

	return VerifierMessage{
		FR: f.EvalPoly(pointsF, r),
		GR: f.EvalPoly(pointsG, r),
		HR: f.EvalPoly(pointsH, r),
	}, nil
}
