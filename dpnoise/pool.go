package dpnoise

import (
	"fmt"

	"github.com/dprio/dprio/share"
)

// Pool accumulates one server's shares of the noise submissions
// accepted during an epoch. The two servers must add accepted
// submissions in the same order, so that a jointly selected index
// designates the two halves of the same submission.
type Pool struct {
	shares []share.Vector
}

// NewPool returns an empty pool.
func NewPool() *Pool {
	return &Pool{}
}

// Add appends the local share of an accepted noise submission.
func (p *Pool) Add(v share.Vector) {
	p.shares = append(p.shares, v)
}

// Size returns the number of submissions in the pool.
func (p *Pool) Size() int {
	return len(p.shares)
}

// Share returns the local share of the submission at the given index.
func (p *Pool) Share(index uint64) (share.Vector, error) {

	if index >= uint64(len(p.shares)) {
		return nil, fmt.Errorf("cannot Share: index %d out of a pool of %d", index, len(p.shares))
	}

	return p.shares[index], nil
}

// SelectIndex runs the local half of the commit-reveal index selection:
// it validates the peer's opening against the peer's commitment,
// checks that both contributions were drawn over the same pool size,
// and reduces the contributions to the joint uniform index.
//
// Any inconsistency returns an error wrapping ErrProtocolAborted: a
// peer that could discard unfavorable contributions after seeing the
// local one could bias the selection, so the epoch must not publish.
func SelectIndex(own *Commitment, peerClosed ClosedCommitment, peerOpening Opening) (uint64, error) {

	if peerClosed.N != own.N() {
		return 0, fmt.Errorf("cannot SelectIndex: %w: %w", ErrProtocolAborted, ErrCorpusSizeMismatch)
	}

	peer, err := peerClosed.Validate(peerOpening)
	if err != nil {
		return 0, fmt.Errorf("cannot SelectIndex: %w: %w", ErrProtocolAborted, err)
	}

	index, err := Gather(own.opened(), peer)
	if err != nil {
		return 0, fmt.Errorf("cannot SelectIndex: %w: %w", ErrProtocolAborted, err)
	}

	return index, nil
}
