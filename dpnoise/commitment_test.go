package dpnoise

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dprio/dprio/utils/buffer"
)

func TestCommitmentRoundTrip(t *testing.T) {

	prng := testPRNG(t, "commitment")

	const n = 162564322

	commitments := make([]*Commitment, 3)
	for i := range commitments {
		c, err := NewCommitment(n, prng)
		require.NoError(t, err)
		commitments[i] = c
	}

	opened := make([]OpenedCommitment, len(commitments))
	for i, c := range commitments {
		oc, err := c.Commit().Validate(c.Open())
		require.NoError(t, err)
		opened[i] = oc
	}

	index, err := Gather(opened...)
	require.NoError(t, err)
	require.Less(t, index, uint64(n))
}

func TestCommitmentRejectsEmptyCorpus(t *testing.T) {

	_, err := NewCommitment(0, testPRNG(t, "empty"))
	require.Error(t, err)

	_, err = Gather()
	require.ErrorIs(t, err, ErrEmptyCorpus)
}

func TestCommitmentRejectsTamperedOpening(t *testing.T) {

	prng := testPRNG(t, "tampered")

	c, err := NewCommitment(100, prng)
	require.NoError(t, err)

	closed := c.Commit()

	o := c.Open()
	o.Value++
	_, err = closed.Validate(o)
	require.ErrorIs(t, err, ErrCommitmentMismatch)

	o = c.Open()
	o.Salt[0] ^= 1
	_, err = closed.Validate(o)
	require.ErrorIs(t, err, ErrCommitmentMismatch)

	_, err = closed.Validate(c.Open())
	require.NoError(t, err)
}

func TestGatherRejectsCorpusSizeMismatch(t *testing.T) {

	prng := testPRNG(t, "mismatch")

	a, err := NewCommitment(100, prng)
	require.NoError(t, err)
	b, err := NewCommitment(101, prng)
	require.NoError(t, err)

	_, err = Gather(a.opened(), b.opened())
	require.ErrorIs(t, err, ErrCorpusSizeMismatch)
}

// TestGatherIndexDistribution checks that the jointly selected index is
// close to uniform over a small corpus.
func TestGatherIndexDistribution(t *testing.T) {

	prng := testPRNG(t, "index distribution")

	const n = 8
	const trials = 8000

	counts := make([]int, n)
	for i := 0; i < trials; i++ {

		a, err := NewCommitment(n, prng)
		require.NoError(t, err)
		b, err := NewCommitment(n, prng)
		require.NoError(t, err)

		index, err := SelectIndex(a, b.Commit(), b.Open())
		require.NoError(t, err)
		counts[index]++
	}

	for i, c := range counts {
		require.InEpsilon(t, trials/n, c, 0.2, "index %d", i)
	}
}

func TestCommitmentSerialization(t *testing.T) {

	prng := testPRNG(t, "serialization")

	c, err := NewCommitment(1000, prng)
	require.NoError(t, err)

	closed := c.Commit()
	buffer.RequireSerializerCorrect(t, &closed)

	opening := c.Open()
	buffer.RequireSerializerCorrect(t, &opening)
}
