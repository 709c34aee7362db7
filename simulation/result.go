package simulation

import (
	"time"

	"github.com/google/go-cmp/cmp"
)

// Phases carries the wall-clock cost of each protocol phase of one
// epoch, matching the phases of the published comparison: client-side
// encoding, the noise choice at epoch close, verification, and the
// aggregation and merge of the final sums.
type Phases struct {
	Encode         time.Duration
	Verify         time.Duration
	ChooseNoise    time.Duration
	AggregateMerge time.Duration

	// Total covers the server-side phases, i.e. everything but Encode.
	Total time.Duration
}

// Result is the outcome of one revealed epoch.
type Result struct {

	// Aggregate is the published statistic, one count per slot, with the
	// noise shift already corrected.
	Aggregate []int64

	// Accepted and Rejected count the data submissions.
	Accepted uint64
	Rejected uint64

	// NoiseAccepted and NoiseRejected count the pool noise submissions;
	// both are zero outside the pool mode.
	NoiseAccepted uint64
	NoiseRejected uint64

	// Granularity is the resolution of the noise discretization, zero
	// when no noise protocol ran. Deviations of the aggregate finer than
	// this are meaningless and must be reported alongside it.
	Granularity float64

	Phases Phases
}

// Equal returns true if the two results carry the same counts and
// aggregate, ignoring timings.
func (r *Result) Equal(other *Result) bool {
	return cmp.Equal(r.Aggregate, other.Aggregate) &&
		r.Accepted == other.Accepted &&
		r.Rejected == other.Rejected &&
		r.NoiseAccepted == other.NoiseAccepted &&
		r.NoiseRejected == other.NoiseRejected
}
