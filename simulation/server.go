package simulation

import (
	"fmt"

	"github.com/dprio/dprio"
	"github.com/dprio/dprio/aggregator"
	"github.com/dprio/dprio/client"
	"github.com/dprio/dprio/dpnoise"
	"github.com/dprio/dprio/encrypt"
	"github.com/dprio/dprio/field"
	"github.com/dprio/dprio/share"
	"github.com/dprio/dprio/snip"
	"github.com/dprio/dprio/utils/sampling"
)

// server holds one aggregation server's private state for an epoch.
// The two servers of a simulation only interact through the values a
// real deployment would put on the wire: sealed submissions, verifier
// messages, noise commitments and reveals, and the final sums.
type server struct {
	leader bool
	key    *encrypt.PrivateKey

	verifier      *snip.Verifier
	noiseVerifier *snip.Verifier

	agg  *aggregator.Aggregator
	pool *dpnoise.Pool

	// prng drives the server's protocol randomness (CRS contribution,
	// commitments, local noise).
	prng sampling.PRNG

	// crsContribution is the random value this server contributes to the
	// joint challenge derivation.
	crsContribution [32]byte
}

func (s *Simulation) newServer(leader bool, seed string) (*server, error) {

	key, err := encrypt.GenerateKey()
	if err != nil {
		return nil, err
	}

	prng, err := sampling.NewKeyedPRNG([]byte(seed))
	if err != nil {
		return nil, err
	}

	sv := &server{
		leader:   leader,
		key:      key,
		verifier: snip.NewVerifier(s.params, leader),
		agg:      aggregator.New(s.params),
		prng:     prng,
	}

	if s.cfg.Noise == NoisePool {
		sv.noiseVerifier = snip.NewVerifier(s.noiseParams, leader)
		sv.pool = dpnoise.NewPool()
	}

	if _, err := prng.Read(sv.crsContribution[:]); err != nil {
		return nil, err
	}

	return sv, nil
}

// half returns the blob of a submission addressed to this server.
func (sv *server) half(sub client.Submission) []byte {
	if sv.leader {
		return sub.ForLeader
	}
	return sub.ForFollower
}

// openSubmission decrypts and expands this server's share of a proved
// submission: the leader receives the explicit vector, the follower a
// seed expanding to its share.
func (sv *server) openSubmission(params dprio.Parameters, f *field.Field, sub client.Submission) (share.Vector, error) {

	p, err := encrypt.Open(sv.key, sv.half(sub))
	if err != nil {
		return nil, err
	}

	if sv.leader {

		var explicit share.Vector
		if err := explicit.UnmarshalBinary(p); err != nil {
			return nil, err
		}

		return explicit, nil
	}

	if len(p) != share.SeedSize {
		return nil, fmt.Errorf("invalid submission: seed of %d bytes", len(p))
	}

	var seed share.Seed
	copy(seed[:], p)

	return seed.Expand(f, params.ProofLength())
}

// verifySubmission plays both servers through one verification round:
// each opens its share, computes its verifier message and the two
// messages cross. It returns each server's share of the proved vector
// and whether the submission was accepted. A malformed share is
// reported as a rejection rather than an error, since a single bad
// client must never stall the epoch.
func verifySubmission(
	params dprio.Parameters,
	leader, follower *server,
	vLeader, vFollower *snip.Verifier,
	sub client.Submission,
	challenge uint64,
) (leaderShare, followerShare share.Vector, accepted bool) {

	f := params.Field()

	leaderShare, err := leader.openSubmission(params, f, sub)
	if err != nil {
		return nil, nil, false
	}

	followerShare, err = follower.openSubmission(params, f, sub)
	if err != nil {
		return nil, nil, false
	}

	vmLeader, err := vLeader.GenVerifierMessage(leaderShare, challenge)
	if err != nil {
		return nil, nil, false
	}

	vmFollower, err := vFollower.GenVerifierMessage(followerShare, challenge)
	if err != nil {
		return nil, nil, false
	}

	// Both servers decide on the same pair of messages; the submission
	// is counted only if both accept.
	if !snip.Decide(f, vmLeader, vmFollower) || !snip.Decide(f, vmFollower, vmLeader) {
		return nil, nil, false
	}

	return leaderShare, followerShare, true
}
