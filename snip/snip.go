// Package snip implements the secret-shared non-interactive proof
// system used to verify that secret-shared submissions are well formed
// without reconstructing them.
//
// A proved submission is a single vector of ProofLength field elements
// laid out as [data | f0 | g0 | h0 | h points]. The prover interpolates
// a polynomial f through a random constant f0 followed by the data
// slots over the subgroup of order N, a polynomial g through g0
// followed by the data slots minus one, and publishes the evaluations
// of h = f*g at the odd powers of a 2N-th root of unity. On valid 0/1
// data, h vanishes on the remaining non-constant even powers, so each
// verifier can reconstruct its share of h from the proof alone.
//
// Each verifier interpolates its share of f, g and h, evaluates the
// three at a common random challenge r, and exchanges the resulting
// VerifierMessage with its peer. The submission is accepted iff the
// recombined evaluations satisfy f(r)*g(r) = h(r), which for a
// malformed submission happens with probability at most
// (2N-2)/(q-2N) over the challenge.
package snip

import (
	"errors"

	"github.com/zeebo/blake3"

	"github.com/dprio/dprio"
	"github.com/dprio/dprio/field"
	"github.com/dprio/dprio/utils/sampling"
)

// ErrMalformedProof is the error returned when a proved submission does
// not have the length prescribed by the parameters. Structurally valid
// submissions that fail the polynomial identity are not errors; they
// are reported as a negative Decide outcome.
var ErrMalformedProof = errors.New("malformed proof share")

// CRS is an interface for common reference strings, shared sources of
// randomness available to both aggregation servers but unpredictable
// to clients.
type CRS sampling.PRNG

// NewJointCRS derives a common reference string from the servers'
// random contributions, exchanged once per epoch: the challenge stream
// is keyed by a hash over all contributions, so no single server
// controls it. Both servers must feed the contributions in the same
// order to derive the same stream.
func NewJointCRS(contributions ...[]byte) (CRS, error) {

	hasher := blake3.New()
	for _, c := range contributions {
		hasher.Write(c)
	}

	return sampling.NewKeyedPRNG(hasher.Sum(nil))
}

// SampleChallenge draws the evaluation challenge for one verification
// round from the common reference string. The challenge is sampled
// uniformly, rejecting the 2N-th roots of unity on which the proof
// identity holds trivially. Both servers must derive the challenge
// from the same CRS state.
func SampleChallenge(params dprio.Parameters, crs CRS) uint64 {

	f := params.Field()
	twoN := 2 * uint64(params.Domain())

	for {
		if r := f.Uniform(crs); f.Exp(r, twoN) != 1 {
			return r
		}
	}
}

// Decide combines the two verifier messages of a submission and reports
// whether the proof identity f(r)*g(r) = h(r) holds, i.e. whether the
// submission is accepted.
func Decide(f *field.Field, own, peer VerifierMessage) bool {

	fr := f.Add(own.FR, peer.FR)
	gr := f.Add(own.GR, peer.GR)
	hr := f.Add(own.HR, peer.HR)

	return f.Mul(fr, gr) == hr
}
