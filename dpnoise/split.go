package dpnoise

import (
	"fmt"
	"math"

	"github.com/zeebo/blake3"

	"github.com/dprio/dprio"
	"github.com/dprio/dprio/field"
	"github.com/dprio/dprio/share"
	"github.com/dprio/dprio/utils/sampling"
)

// SplitProtocol implements the convolution variant of the noise
// generation. Each server samples a Polya-difference vector, so that
// the element-wise sum of the two servers' vectors follows the
// two-sided geometric law of parameter e^(-epsilon/sensitivity). The
// vector is split additively into a half the server keeps and a half it
// sends, and the outgoing half is bound by a commitment exchanged
// before the halves themselves, so that neither server can pick its
// contribution as a function of the other's.
//
// A SplitProtocol draws from its own PRNG and is not safe for
// concurrent use; see ShallowCopy.
type SplitProtocol struct {
	f     *field.Field
	slots int
	eps   float64
	sens  float64
	polya *Polya
	prng  sampling.PRNG
}

// NewSplitProtocol instantiates one server's side of the protocol over
// the encoded dimension of the given parameters, targeting the discrete
// Laplace law of the given budget and sensitivity.
func NewSplitProtocol(params dprio.Parameters, epsilon, sensitivity float64, prng sampling.PRNG) (*SplitProtocol, error) {

	if epsilon <= 0 || sensitivity <= 0 {
		return nil, fmt.Errorf("invalid SplitProtocol: epsilon and sensitivity must be positive")
	}

	polya, err := NewPolya(0.5, math.Exp(-epsilon/sensitivity), prng)
	if err != nil {
		return nil, fmt.Errorf("invalid SplitProtocol: %w", err)
	}

	return &SplitProtocol{
		f:     params.Field(),
		slots: params.Dimension(),
		eps:   epsilon,
		sens:  sensitivity,
		polya: polya,
		prng:  prng,
	}, nil
}

// ShallowCopy returns a SplitProtocol with the same target law but a
// fresh PRNG seeded from the receiver's, safe for use in a different
// goroutine.
func (p *SplitProtocol) ShallowCopy() (*SplitProtocol, error) {

	var key [32]byte
	if _, err := p.prng.Read(key[:]); err != nil {
		// Sanity check, this error should not happen.
		panic(err)
	}

	prng, err := sampling.NewKeyedPRNG(key[:])
	if err != nil {
		return nil, err
	}

	polya, err := NewPolya(0.5, math.Exp(-p.eps/p.sens), prng)
	if err != nil {
		return nil, err
	}

	return &SplitProtocol{
		f:     p.f,
		slots: p.slots,
		eps:   p.eps,
		sens:  p.sens,
		polya: polya,
		prng:  prng,
	}, nil
}

// SplitShare is one server's state for a protocol run: the half of its
// contribution it keeps, the half it sends, and the salt binding the
// commitment to the outgoing half.
type SplitShare struct {
	keep share.Vector
	out  share.Vector
	salt [SaltSize]byte
}

// GenShare samples the local Polya-difference contribution and splits
// it additively into the kept and outgoing halves.
func (p *SplitProtocol) GenShare() (*SplitShare, error) {

	contribution := share.NewVector(p.slots)
	for i := range contribution {
		contribution[i] = p.f.FromInt64(p.polya.SampleDifference())
	}

	out, seed, err := share.Split(p.f, contribution, p.prng)
	if err != nil {
		return nil, fmt.Errorf("cannot GenShare: %w", err)
	}

	keep, err := seed.Expand(p.f, p.slots)
	if err != nil {
		return nil, fmt.Errorf("cannot GenShare: %w", err)
	}

	s := &SplitShare{keep: keep, out: out}
	if _, err := p.prng.Read(s.salt[:]); err != nil {
		return nil, fmt.Errorf("cannot GenShare: %w", err)
	}

	return s, nil
}

// Commit returns the binding commitment to the outgoing half, to be
// sent before any half is revealed.
func (s *SplitShare) Commit() SplitCommitment {
	return SplitCommitment{
		Slots:  len(s.out),
		Digest: splitDigest(s.salt[:], s.out),
	}
}

// Reveal returns the outgoing half and its binding salt, to be sent
// once the peer's commitment has been received.
func (s *SplitShare) Reveal() SplitReveal {
	return SplitReveal{Out: s.out, Salt: s.salt}
}

// SplitCommitment is the published commitment to an outgoing half.
type SplitCommitment struct {
	Slots  int
	Digest [DigestSize]byte
}

// SplitReveal carries a revealed outgoing half and its binding salt.
type SplitReveal struct {
	Out  share.Vector
	Salt [SaltSize]byte
}

// Finalize validates the peer's revealed half against the peer's
// commitment and returns the local noise share, the sum of the kept
// half and the peer's half. Any inconsistency returns an error wrapping
// ErrProtocolAborted and the epoch must not publish.
func (p *SplitProtocol) Finalize(own *SplitShare, peerCommit SplitCommitment, peerReveal SplitReveal) (share.Vector, error) {

	if peerCommit.Slots != p.slots || len(peerReveal.Out) != p.slots {
		return nil, fmt.Errorf("cannot Finalize: %w: peer half has %d slots, expected %d", ErrProtocolAborted, len(peerReveal.Out), p.slots)
	}

	if splitDigest(peerReveal.Salt[:], peerReveal.Out) != peerCommit.Digest {
		return nil, fmt.Errorf("cannot Finalize: %w: %w", ErrProtocolAborted, ErrCommitmentMismatch)
	}

	noise, err := share.Combine(p.f, own.keep, peerReveal.Out)
	if err != nil {
		return nil, fmt.Errorf("cannot Finalize: %w: %w", ErrProtocolAborted, err)
	}

	return noise, nil
}

func splitDigest(salt []byte, out share.Vector) (digest [DigestSize]byte) {

	hasher := blake3.New()
	hasher.Write(salt)

	p, err := out.MarshalBinary()
	if err != nil {
		// Sanity check, this error should not happen.
		panic(err)
	}
	hasher.Write(p)

	copy(digest[:], hasher.Sum(nil))

	return
}
