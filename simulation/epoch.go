package simulation

import (
	"fmt"
	"math/bits"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dprio/dprio"
	"github.com/dprio/dprio/client"
	"github.com/dprio/dprio/dpnoise"
	"github.com/dprio/dprio/share"
	"github.com/dprio/dprio/snip"
	"github.com/dprio/dprio/utils/sampling"
)

// RunEpoch drives one full epoch: client encoding, concurrent
// verification, epoch close, the configured noise protocol and the
// final reveal. The epoch index separates the randomness of repeated
// epochs under the same seed.
//
// A failed noise exchange aborts the epoch: both aggregators transition
// to Aborted, no aggregate is produced and the error wraps
// dpnoise.ErrProtocolAborted.
func (s *Simulation) RunEpoch(epoch int) (*Result, error) {

	cfg := s.cfg
	f := s.params.Field()

	leader, err := s.newServer(true, fmt.Sprintf("%s/epoch=%d/server=leader", cfg.Seed, epoch))
	if err != nil {
		return nil, err
	}

	follower, err := s.newServer(false, fmt.Sprintf("%s/epoch=%d/server=follower", cfg.Seed, epoch))
	if err != nil {
		return nil, err
	}

	result := &Result{}

	// Client encoding: every client prepares its sealed data submission
	// and, in pool mode, one sealed noise submission.
	start := time.Now()

	dataSubs := make([]client.Submission, cfg.Clients)
	var noiseSubs []client.Submission

	var sampler *dpnoise.Laplace
	if cfg.Noise == NoisePool || cfg.Noise == NoiseSplit {
		if sampler, err = cfg.DP.Sampler(); err != nil {
			return nil, err
		}
		result.Granularity = sampler.Granularity()
	}

	for i := 0; i < cfg.Clients; i++ {

		prng, err := sampling.NewKeyedPRNG([]byte(fmt.Sprintf("%s/epoch=%d/client=%d", cfg.Seed, epoch, i)))
		if err != nil {
			return nil, err
		}

		cl, err := client.New(s.params, s.dataEnc, leader.key.Public(), follower.key.Public(), prng)
		if err != nil {
			return nil, err
		}

		if i < cfg.Invalid {
			// An out-of-range measurement encoded as if boolean; the
			// servers must reject it during verification.
			encoded := make([]uint64, cfg.Dimension)
			encoded[0] = 7
			dataSubs[i], err = cl.SubmitEncoded(encoded)
		} else {
			dataSubs[i], err = cl.Submit(s.measurement(i, prng))
		}
		if err != nil {
			return nil, err
		}

		if cfg.Noise == NoisePool {

			ncl, err := client.New(s.noiseParams, s.noiseEnc, leader.key.Public(), follower.key.Public(), prng)
			if err != nil {
				return nil, err
			}

			sub, err := ncl.Submit(dpnoise.SampleShifted(sampler, cfg.Dimension, s.shift, s.noiseEnc.Max(), prng))
			if err != nil {
				return nil, err
			}

			noiseSubs = append(noiseSubs, sub)
		}
	}

	result.Phases.Encode = time.Since(start)

	// Verification: the challenge stream is derived jointly, then the
	// independent submissions are verified concurrently under a bounded
	// fan-out. Accumulation happens after the fan-out, in submission
	// order, so that the two servers build identical pool orderings.
	start = time.Now()

	crs, err := snip.NewJointCRS(leader.crsContribution[:], follower.crsContribution[:])
	if err != nil {
		return nil, err
	}

	dataChallenges := make([]uint64, len(dataSubs))
	for i := range dataChallenges {
		dataChallenges[i] = snip.SampleChallenge(s.params, crs)
	}

	noiseChallenges := make([]uint64, len(noiseSubs))
	for i := range noiseChallenges {
		noiseChallenges[i] = snip.SampleChallenge(s.noiseParams, crs)
	}

	dataLeader, dataFollower, dataOK := s.verifyAll(leader, follower, s.params, leader.verifier, follower.verifier, dataSubs, dataChallenges)

	for i := range dataSubs {
		if !dataOK[i] {
			leader.agg.RecordReject()
			follower.agg.RecordReject()
			continue
		}
		if err := leader.agg.Accumulate(dataLeader[i][:cfg.Dimension]); err != nil {
			return nil, err
		}
		if err := follower.agg.Accumulate(dataFollower[i][:cfg.Dimension]); err != nil {
			return nil, err
		}
	}

	if cfg.Noise == NoisePool {

		noiseLeader, noiseFollower, noiseOK := s.verifyAll(leader, follower, s.noiseParams, leader.noiseVerifier, follower.noiseVerifier, noiseSubs, noiseChallenges)

		for i := range noiseSubs {
			if !noiseOK[i] {
				result.NoiseRejected++
				continue
			}
			result.NoiseAccepted++
			leader.pool.Add(noiseLeader[i][:s.noiseParams.Dimension()])
			follower.pool.Add(noiseFollower[i][:s.noiseParams.Dimension()])
		}
	}

	result.Phases.Verify = time.Since(start)

	// Epoch close: no further submission is accepted.
	if err := leader.agg.Close(); err != nil {
		return nil, err
	}
	if err := follower.agg.Close(); err != nil {
		return nil, err
	}

	// Noise choice: runs once per epoch, strictly after close and
	// strictly before the reveal.
	start = time.Now()

	switch cfg.Noise {
	case NoisePool:
		err = s.chooseNoisePool(leader, follower)
	case NoiseSplit:
		err = s.chooseNoiseSplit(leader, follower)
	}

	if err != nil {
		leader.agg.Abort()
		follower.agg.Abort()
		s.log.Warn("epoch aborted, aggregate withheld",
			zap.Int("epoch", epoch),
			zap.Error(err))
		return nil, fmt.Errorf("epoch %d: %w", epoch, err)
	}

	result.Phases.ChooseNoise = time.Since(start)

	// Reveal: the final sums cross, each server reconstructs the same
	// aggregate, and the decoded counts are corrected for the pool shift.
	start = time.Now()

	leaderSum, err := leader.agg.SumShare()
	if err != nil {
		return nil, err
	}
	followerSum, err := follower.agg.SumShare()
	if err != nil {
		return nil, err
	}

	aggregate, err := leader.agg.Reveal(followerSum)
	if err != nil {
		return nil, err
	}
	if _, err := follower.agg.Reveal(leaderSum); err != nil {
		return nil, err
	}

	decoded := s.dataEnc.Decode(aggregate)

	result.Aggregate = make([]int64, len(decoded))
	for i, v := range decoded {
		if cfg.Noise == NoisePool {
			v = f.Sub(v, f.Reduce(s.shift))
		}
		result.Aggregate[i] = f.ToInt64(v)
	}

	result.Phases.AggregateMerge = time.Since(start)
	result.Phases.Total = result.Phases.Verify + result.Phases.ChooseNoise + result.Phases.AggregateMerge

	result.Accepted = leader.agg.Accepted()
	result.Rejected = leader.agg.Rejected()

	s.log.Info("epoch revealed",
		zap.Int("epoch", epoch),
		zap.Uint64("accepted", result.Accepted),
		zap.Uint64("rejected", result.Rejected),
		zap.Uint64("noiseAccepted", result.NoiseAccepted),
		zap.Uint64("noiseRejected", result.NoiseRejected),
		zap.Duration("encode", result.Phases.Encode),
		zap.Duration("verify", result.Phases.Verify),
		zap.Duration("chooseNoise", result.Phases.ChooseNoise),
		zap.Duration("aggregateMerge", result.Phases.AggregateMerge))

	return result, nil
}

// verifyAll verifies a batch of independent submissions concurrently,
// bounded by the configured concurrency. Each worker carries its own
// verifier scratch space.
func (s *Simulation) verifyAll(
	leader, follower *server,
	params dprio.Parameters,
	vLeader, vFollower *snip.Verifier,
	subs []client.Submission,
	challenges []uint64,
) (leaderShares, followerShares []share.Vector, accepted []bool) {

	leaderShares = make([]share.Vector, len(subs))
	followerShares = make([]share.Vector, len(subs))
	accepted = make([]bool, len(subs))

	workers := s.cfg.Concurrency
	if workers > len(subs) {
		workers = len(subs)
	}

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		w := w
		vL, vF := vLeader.ShallowCopy(), vFollower.ShallowCopy()
		g.Go(func() error {
			for i := w; i < len(subs); i += workers {
				leaderShares[i], followerShares[i], accepted[i] = verifySubmission(params, leader, follower, vL, vF, subs[i], challenges[i])
			}
			return nil
		})
	}

	// Sanity check, the workers never return an error.
	if err := g.Wait(); err != nil {
		panic(err)
	}

	return
}

// chooseNoisePool runs the commit-reveal index selection and folds the
// decoded shares of the selected pool submission into both sums.
func (s *Simulation) chooseNoisePool(leader, follower *server) error {

	if leader.pool.Size() == 0 {
		return fmt.Errorf("empty noise pool: %w", dpnoise.ErrProtocolAborted)
	}

	cLeader, err := dpnoise.NewCommitment(uint64(leader.pool.Size()), leader.prng)
	if err != nil {
		return err
	}

	cFollower, err := dpnoise.NewCommitment(uint64(follower.pool.Size()), follower.prng)
	if err != nil {
		return err
	}

	// Commitments cross first, then the openings.
	closedLeader, closedFollower := cLeader.Commit(), cFollower.Commit()
	openLeader, openFollower := cLeader.Open(), cFollower.Open()

	if s.cfg.CorruptNoiseReveal {
		openFollower.Value++
	}

	idxLeader, err := dpnoise.SelectIndex(cLeader, closedFollower, openFollower)
	if err != nil {
		return err
	}

	idxFollower, err := dpnoise.SelectIndex(cFollower, closedLeader, openLeader)
	if err != nil {
		return err
	}

	vLeader, err := leader.pool.Share(idxLeader)
	if err != nil {
		return err
	}

	vFollower, err := follower.pool.Share(idxFollower)
	if err != nil {
		return err
	}

	// The range decoding is field-linear, so decoding each share yields
	// the shares of the decoded noise vector.
	if err := leader.agg.FoldNoise(share.Vector(s.noiseEnc.Decode(vLeader))); err != nil {
		return err
	}

	return follower.agg.FoldNoise(share.Vector(s.noiseEnc.Decode(vFollower)))
}

// chooseNoiseSplit runs the convolution protocol and folds each
// server's resulting noise share into its sum.
func (s *Simulation) chooseNoiseSplit(leader, follower *server) error {

	protoLeader, err := dpnoise.NewSplitProtocol(s.params, s.cfg.DP.Epsilon, s.cfg.DP.Sensitivity, leader.prng)
	if err != nil {
		return err
	}

	protoFollower, err := dpnoise.NewSplitProtocol(s.params, s.cfg.DP.Epsilon, s.cfg.DP.Sensitivity, follower.prng)
	if err != nil {
		return err
	}

	shareLeader, err := protoLeader.GenShare()
	if err != nil {
		return err
	}

	shareFollower, err := protoFollower.GenShare()
	if err != nil {
		return err
	}

	commitLeader, commitFollower := shareLeader.Commit(), shareFollower.Commit()

	revealFollower := shareFollower.Reveal()
	if s.cfg.CorruptNoiseReveal {
		revealFollower.Out = revealFollower.Out.CopyNew()
		revealFollower.Out[0]++
	}

	noiseLeader, err := protoLeader.Finalize(shareLeader, commitFollower, revealFollower)
	if err != nil {
		return err
	}

	noiseFollower, err := protoFollower.Finalize(shareFollower, commitLeader, shareLeader.Reveal())
	if err != nil {
		return err
	}

	if err := leader.agg.FoldNoise(noiseLeader); err != nil {
		return err
	}

	return follower.agg.FoldNoise(noiseFollower)
}

// measurement returns client i's measurement: the configured override,
// or a uniformly random one-hot vector that is all zero with
// probability 1/(Dimension+1).
func (s *Simulation) measurement(i int, prng sampling.PRNG) []uint64 {

	if s.cfg.Measure != nil {
		return s.cfg.Measure(i)
	}

	m := make([]uint64, s.cfg.Dimension)

	v := uint64(s.cfg.Dimension + 1)
	mask := uint64(1)<<bits.Len64(v-1) - 1
	if slot := sampling.RandUniform(prng, v, mask); slot < uint64(s.cfg.Dimension) {
		m[slot] = 1
	}

	return m
}
