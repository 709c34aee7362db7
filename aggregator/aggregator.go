// Package aggregator implements the per-server epoch state machine: it
// accumulates the verified data shares of one server, folds in the
// server's noise share at epoch close, and combines the two servers'
// final sums into the revealed aggregate.
//
// Each server owns exactly one Aggregator per epoch and never hands it
// to its peer: the only cross-server values are the final accumulated
// sums exchanged at reveal time, after the noise is baked in.
package aggregator

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dprio/dprio"
	"github.com/dprio/dprio/field"
	"github.com/dprio/dprio/share"
)

// ErrEpochAborted is the error returned by any operation on an aborted
// aggregator. An aborted epoch is terminal: its partial sums must never
// be published.
var ErrEpochAborted = errors.New("epoch aborted")

// State is the lifecycle state of an Aggregator.
type State int

const (
	// Collecting accepts client shares.
	Collecting State = iota
	// Closed accepts no further client shares; noise shares are folded
	// in while Closed.
	Closed
	// Revealed is terminal: the aggregate has been reconstructed.
	Revealed
	// Aborted is terminal: the epoch is discarded unpublished.
	Aborted
)

// String returns the name of the state.
func (s State) String() string {
	switch s {
	case Collecting:
		return "Collecting"
	case Closed:
		return "Closed"
	case Revealed:
		return "Revealed"
	case Aborted:
		return "Aborted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Aggregator is one server's accumulation state for one epoch. Its
// methods are safe for concurrent use: many submissions may be
// accumulated concurrently, the sum being independent of the order
// since field addition is commutative and associative.
type Aggregator struct {
	f *field.Field

	mu       sync.Mutex
	state    State
	sum      share.Vector
	noised   bool
	accepted uint64
	rejected uint64
}

// New instantiates an Aggregator over the encoded dimension of the
// given parameters, in the Collecting state.
func New(params dprio.Parameters) *Aggregator {
	return &Aggregator{
		f:   params.Field(),
		sum: share.NewVector(params.Dimension()),
	}
}

// State returns the current state.
func (a *Aggregator) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Accepted returns the number of accumulated submissions.
func (a *Aggregator) Accepted() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.accepted
}

// Rejected returns the number of rejected submissions recorded for
// monitoring. Rejections never abort the epoch.
func (a *Aggregator) Rejected() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rejected
}

// Accumulate adds the data share of an accepted submission into the
// running sum. It is only legal while Collecting.
func (a *Aggregator) Accumulate(data share.Vector) error {

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != Collecting {
		return a.transitionError("Accumulate")
	}

	if len(data) != len(a.sum) {
		return fmt.Errorf("cannot Accumulate: share has %d slots, expected %d", len(data), len(a.sum))
	}

	for i := range a.sum {
		a.sum[i] = a.f.Add(a.sum[i], data[i])
	}

	a.accepted++

	return nil
}

// RecordReject tallies a rejected submission. The submission's shares
// are never added to the sum.
func (a *Aggregator) RecordReject() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rejected++
}

// Close ends the submission window: no further client share can be
// accumulated. The epoch's noise shares are folded in while Closed.
func (a *Aggregator) Close() error {

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != Collecting {
		return a.transitionError("Close")
	}

	a.state = Closed

	return nil
}

// FoldNoise adds the server's noise share into the sum. It is only
// legal while Closed, i.e. after the last client share and before the
// reveal.
func (a *Aggregator) FoldNoise(noise share.Vector) error {

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != Closed {
		return a.transitionError("FoldNoise")
	}

	if len(noise) != len(a.sum) {
		return fmt.Errorf("cannot FoldNoise: share has %d slots, expected %d", len(noise), len(a.sum))
	}

	for i := range a.sum {
		a.sum[i] = a.f.Add(a.sum[i], noise[i])
	}

	a.noised = true

	return nil
}

// Noised returns whether a noise share has been folded into the sum.
func (a *Aggregator) Noised() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.noised
}

// SumShare returns a copy of the accumulated sum, the single message
// sent to the peer at reveal time. It is only legal while Closed, so
// that a partially accumulated sum can never leave the server.
func (a *Aggregator) SumShare() (share.Vector, error) {

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != Closed {
		return nil, a.transitionError("SumShare")
	}

	return a.sum.CopyNew(), nil
}

// Reveal combines the peer's accumulated sum with the local one,
// transitioning to Revealed and returning the reconstructed aggregate
// vector. It is only legal while Closed and succeeds exactly once.
func (a *Aggregator) Reveal(peerSum share.Vector) (share.Vector, error) {

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != Closed {
		return nil, a.transitionError("Reveal")
	}

	aggregate, err := share.Combine(a.f, a.sum, peerSum)
	if err != nil {
		return nil, fmt.Errorf("cannot Reveal: %w", err)
	}

	a.state = Revealed

	return aggregate, nil
}

// Abort discards the epoch. The transition is terminal and the
// accumulated sum can no longer be revealed or exchanged.
func (a *Aggregator) Abort() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = Aborted
}

func (a *Aggregator) transitionError(op string) error {

	if a.state == Aborted {
		return fmt.Errorf("cannot %s: %w", op, ErrEpochAborted)
	}

	return fmt.Errorf("cannot %s: aggregator is %s", op, a.state)
}
