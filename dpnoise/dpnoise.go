// Package dpnoise implements the two-server differential-privacy noise
// generation. The target noise law is the discrete Laplace (two-sided
// geometric) distribution, reached through one of two protocols:
//
// The pool protocol selects one of the noise submissions contributed by
// the clients: every client submits a shifted, range-encoded and proved
// noise sample alongside its measurement, each server keeps its shares
// of the accepted submissions in a Pool, and at epoch close the two
// servers agree on a joint uniform index through a commit-reveal
// exchange. The protocol runs once per epoch, not once per client.
//
// The split protocol convolves contributions of the two servers: each
// server samples a Polya-difference vector, splits it additively,
// commits to the outgoing half and exchanges it, so that the sum of the
// two resulting noise shares follows the target law while neither
// server can choose its contribution after seeing the other's.
//
// Both protocols abort on any malformed, withheld or equivocating peer
// message. An aborted epoch must never be published: publishing without
// the agreed noise would void the privacy guarantee.
package dpnoise

import (
	"errors"

	"github.com/dprio/dprio/utils/sampling"
)

// ErrProtocolAborted is the error returned when a peer contribution to
// the noise exchange is malformed, withheld or inconsistent with its
// commitment. It propagates to the epoch: the aggregate must be
// withheld rather than published with partial or no noise.
var ErrProtocolAborted = errors.New("noise protocol aborted")

// ErrCommitmentMismatch is the error returned when a revealed value
// does not match the commitment it is checked against.
var ErrCommitmentMismatch = errors.New("commitment does not match the revealed value")

// ErrCorpusSizeMismatch is the error returned when commitments drawn
// over different corpus sizes are gathered together.
var ErrCorpusSizeMismatch = errors.New("commitments drawn over different corpus sizes")

// ErrEmptyCorpus is the error returned when gathering an empty set of
// opened commitments.
var ErrEmptyCorpus = errors.New("no opened commitment to gather")

// SampleShifted draws coords increments from the sampler, shifts them
// by shift and clamps the results to [0, max], the domain of the range
// encoding carrying pool submissions. The shift must be subtracted once
// per coordinate from the revealed aggregate.
func SampleShifted(l *Laplace, coords int, shift, max uint64, prng sampling.PRNG) []uint64 {

	out := make([]uint64, coords)
	for i := range out {

		v := int64(shift) + l.Sample(prng)

		switch {
		case v < 0:
			out[i] = 0
		case uint64(v) > max:
			out[i] = max
		default:
			out[i] = uint64(v)
		}
	}

	return out
}
