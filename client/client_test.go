package client

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dprio/dprio"
	"github.com/dprio/dprio/encoding"
	"github.com/dprio/dprio/encrypt"
	"github.com/dprio/dprio/share"
	"github.com/dprio/dprio/snip"
	"github.com/dprio/dprio/utils/sampling"
)

func testSetup(t *testing.T, dim int) (dprio.Parameters, *Client, *encrypt.PrivateKey, *encrypt.PrivateKey) {

	params, err := dprio.NewParametersFromLiteral(dprio.ParametersLiteral{Dimension: dim})
	require.NoError(t, err)

	leaderKey, err := encrypt.GenerateKey()
	require.NoError(t, err)
	followerKey, err := encrypt.GenerateKey()
	require.NoError(t, err)

	prng, err := sampling.NewKeyedPRNG([]byte("client"))
	require.NoError(t, err)

	c, err := New(params, encoding.NewBoolean(params), leaderKey.Public(), followerKey.Public(), prng)
	require.NoError(t, err)

	return params, c, leaderKey, followerKey
}

// openAndVerify plays both servers on a sealed submission and returns
// their verification decision.
func openAndVerify(t *testing.T, params dprio.Parameters, sub Submission, leaderKey, followerKey *encrypt.PrivateKey) bool {

	f := params.Field()

	p, err := encrypt.Open(leaderKey, sub.ForLeader)
	require.NoError(t, err)

	var explicit share.Vector
	require.NoError(t, explicit.UnmarshalBinary(p))
	require.Equal(t, params.ProofLength(), len(explicit))

	rawSeed, err := encrypt.Open(followerKey, sub.ForFollower)
	require.NoError(t, err)
	require.Equal(t, share.SeedSize, len(rawSeed))

	var seed share.Seed
	copy(seed[:], rawSeed)
	expanded, err := seed.Expand(f, params.ProofLength())
	require.NoError(t, err)

	crs, err := sampling.NewKeyedPRNG([]byte("client test crs"))
	require.NoError(t, err)
	r := snip.SampleChallenge(params, crs)

	vmLeader, err := snip.NewVerifier(params, true).GenVerifierMessage(explicit, r)
	require.NoError(t, err)
	vmFollower, err := snip.NewVerifier(params, false).GenVerifierMessage(expanded, r)
	require.NoError(t, err)

	return snip.Decide(f, vmLeader, vmFollower)
}

func TestSubmitValidMeasurement(t *testing.T) {

	params, c, leaderKey, followerKey := testSetup(t, 8)

	sub, err := c.Submit([]uint64{1, 0, 0, 1, 0, 1, 1, 0})
	require.NoError(t, err)

	require.True(t, openAndVerify(t, params, sub, leaderKey, followerKey))
}

func TestSubmitRejectsOutOfRangeMeasurement(t *testing.T) {

	_, c, _, _ := testSetup(t, 8)

	_, err := c.Submit([]uint64{7, 0, 0, 0, 0, 0, 0, 0})
	require.ErrorIs(t, err, encoding.ErrValueOutOfRange)
}

func TestSubmitEncodedBypassesDomainCheck(t *testing.T) {

	params, c, leaderKey, followerKey := testSetup(t, 8)

	// The boolean value 7: structurally valid, semantically invalid.
	encoded := make([]uint64, 8)
	encoded[0] = 7

	sub, err := c.SubmitEncoded(encoded)
	require.NoError(t, err)

	require.False(t, openAndVerify(t, params, sub, leaderKey, followerKey))
}

func TestNewRejectsMismatchedEncoder(t *testing.T) {

	params, err := dprio.NewParametersFromLiteral(dprio.ParametersLiteral{Dimension: 8})
	require.NoError(t, err)

	otherParams, err := dprio.NewParametersFromLiteral(dprio.ParametersLiteral{Dimension: 4})
	require.NoError(t, err)

	key, err := encrypt.GenerateKey()
	require.NoError(t, err)

	prng, err := sampling.NewKeyedPRNG([]byte("mismatch"))
	require.NoError(t, err)

	_, err = New(params, encoding.NewBoolean(otherParams), key.Public(), key.Public(), prng)
	require.Error(t, err)
}

func TestShallowCopy(t *testing.T) {

	params, c, leaderKey, followerKey := testSetup(t, 4)

	copied, err := c.ShallowCopy()
	require.NoError(t, err)

	sub, err := copied.Submit([]uint64{1, 1, 0, 0})
	require.NoError(t, err)

	require.True(t, openAndVerify(t, params, sub, leaderKey, followerKey))
}
