package aggregator

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dprio/dprio"
	"github.com/dprio/dprio/share"
	"github.com/dprio/dprio/utils/sampling"
)

func testParams(t *testing.T, dim int) dprio.Parameters {
	params, err := dprio.NewParametersFromLiteral(dprio.ParametersLiteral{Dimension: dim})
	require.NoError(t, err)
	return params
}

func TestLifecycle(t *testing.T) {

	params := testParams(t, 4)
	agg := New(params)

	require.Equal(t, Collecting, agg.State())

	require.NoError(t, agg.Accumulate(share.Vector{1, 0, 1, 0}))
	require.NoError(t, agg.Accumulate(share.Vector{0, 1, 0, 1}))
	agg.RecordReject()

	require.EqualValues(t, 2, agg.Accepted())
	require.EqualValues(t, 1, agg.Rejected())

	// Noise and reveal are illegal while Collecting.
	require.Error(t, agg.FoldNoise(share.Vector{0, 0, 0, 0}))
	_, err := agg.SumShare()
	require.Error(t, err)
	_, err = agg.Reveal(share.Vector{0, 0, 0, 0})
	require.Error(t, err)

	require.NoError(t, agg.Close())
	require.Equal(t, Closed, agg.State())

	// No further accumulation once Closed.
	require.Error(t, agg.Accumulate(share.Vector{1, 1, 1, 1}))
	require.Error(t, agg.Close())

	require.False(t, agg.Noised())
	require.NoError(t, agg.FoldNoise(share.Vector{1, 2, 3, 4}))
	require.True(t, agg.Noised())

	sum, err := agg.SumShare()
	require.NoError(t, err)
	require.Equal(t, share.Vector{2, 3, 4, 5}, sum)

	aggregate, err := agg.Reveal(share.Vector{1, 1, 1, 1})
	require.NoError(t, err)
	require.Equal(t, share.Vector{3, 4, 5, 6}, aggregate)
	require.Equal(t, Revealed, agg.State())

	// Reveal succeeds exactly once.
	_, err = agg.Reveal(share.Vector{1, 1, 1, 1})
	require.Error(t, err)
}

func TestAccumulateRejectsWrongDimension(t *testing.T) {

	agg := New(testParams(t, 4))
	require.Error(t, agg.Accumulate(share.Vector{1, 2}))
	require.NoError(t, agg.Close())
	require.Error(t, agg.FoldNoise(share.Vector{1, 2}))
}

// TestAccumulateOrderIndependent checks that accumulating the same set
// of shares in any order, including concurrently, yields an identical
// sum.
func TestAccumulateOrderIndependent(t *testing.T) {

	params := testParams(t, 8)
	f := params.Field()

	prng, err := sampling.NewKeyedPRNG([]byte("order"))
	require.NoError(t, err)

	shares := make([]share.Vector, 64)
	for i := range shares {
		shares[i] = share.NewVector(8)
		for j := range shares[i] {
			shares[i][j] = f.Uniform(prng)
		}
	}

	sumOf := func(order []int, concurrent bool) share.Vector {

		agg := New(params)

		if concurrent {
			var wg sync.WaitGroup
			for _, i := range order {
				wg.Add(1)
				go func(v share.Vector) {
					defer wg.Done()
					require.NoError(t, agg.Accumulate(v))
				}(shares[i])
			}
			wg.Wait()
		} else {
			for _, i := range order {
				require.NoError(t, agg.Accumulate(shares[i]))
			}
		}

		require.NoError(t, agg.Close())
		sum, err := agg.SumShare()
		require.NoError(t, err)
		return sum
	}

	forward := make([]int, len(shares))
	backward := make([]int, len(shares))
	for i := range forward {
		forward[i] = i
		backward[i] = len(shares) - 1 - i
	}

	reference := sumOf(forward, false)
	require.Equal(t, reference, sumOf(backward, false))
	require.Equal(t, reference, sumOf(forward, true))
}

func TestAbortIsTerminal(t *testing.T) {

	agg := New(testParams(t, 2))

	require.NoError(t, agg.Accumulate(share.Vector{1, 1}))

	agg.Abort()
	require.Equal(t, Aborted, agg.State())

	require.ErrorIs(t, agg.Accumulate(share.Vector{1, 1}), ErrEpochAborted)
	require.ErrorIs(t, agg.Close(), ErrEpochAborted)
	require.ErrorIs(t, agg.FoldNoise(share.Vector{1, 1}), ErrEpochAborted)

	_, err := agg.SumShare()
	require.ErrorIs(t, err, ErrEpochAborted)

	_, err = agg.Reveal(share.Vector{1, 1})
	require.ErrorIs(t, err, ErrEpochAborted)
}

func TestStateString(t *testing.T) {
	require.Equal(t, "Collecting", Collecting.String())
	require.Equal(t, "Closed", Closed.String())
	require.Equal(t, "Revealed", Revealed.String())
	require.Equal(t, "Aborted", Aborted.String())
}
