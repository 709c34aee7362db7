package dpnoise

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/bits"

	"github.com/zeebo/blake3"

	"github.com/dprio/dprio/utils/sampling"
)

// SaltSize is the size in bytes of the salt binding a commitment.
const SaltSize = 32

// DigestSize is the size in bytes of a commitment digest.
const DigestSize = 32

// Commitment is one server's secret contribution toward a joint
// uniform index in [0, n), together with the salt binding its
// commitment. The contribution is drawn from [0, n*floor(MaxUint64/n)),
// a multiple of n, so that the sum of contributions reduced modulo n is
// exactly uniform as long as at least one contributor is honest.
type Commitment struct {
	n     uint64
	value uint64
	salt  [SaltSize]byte
}

// NewCommitment draws a fresh contribution toward a joint uniform index
// over a corpus of size n, along with its binding salt.
func NewCommitment(n uint64, prng sampling.PRNG) (c *Commitment, err error) {

	if n == 0 {
		return nil, fmt.Errorf("cannot NewCommitment: corpus is empty")
	}

	c = &Commitment{n: n}

	bound := n * (math.MaxUint64 / n)
	for {
		if v := sampling.RandUint64(prng); v < bound {
			c.value = v
			break
		}
	}

	if _, err = prng.Read(c.salt[:]); err != nil {
		return nil, fmt.Errorf("cannot NewCommitment: %w", err)
	}

	return
}

// N returns the corpus size the contribution was drawn over.
func (c *Commitment) N() uint64 {
	return c.n
}

// Commit returns the binding, hiding commitment to the contribution,
// to be sent to the peer before any contribution is revealed.
func (c *Commitment) Commit() ClosedCommitment {
	return ClosedCommitment{
		N:      c.n,
		Digest: commitmentDigest(c.n, c.value, c.salt[:]),
	}
}

// Open returns the opening of the commitment, to be sent to the peer
// once its own commitment has been received.
func (c *Commitment) Open() Opening {
	return Opening{Value: c.value, Salt: c.salt}
}

func (c *Commitment) opened() OpenedCommitment {
	return OpenedCommitment{n: c.n, value: c.value}
}

// ClosedCommitment is the published commitment to a contribution: the
// corpus size and a salted digest of the contribution. It reveals
// nothing about the contribution until opened.
type ClosedCommitment struct {
	N      uint64
	Digest [DigestSize]byte
}

// Opening reveals a committed contribution and the salt binding it.
type Opening struct {
	Value uint64
	Salt  [SaltSize]byte
}

// Validate checks the opening against the commitment, returning the
// opened commitment on success and ErrCommitmentMismatch if the digest
// of the revealed value differs from the committed one.
func (cc ClosedCommitment) Validate(o Opening) (OpenedCommitment, error) {

	if commitmentDigest(cc.N, o.Value, o.Salt[:]) != cc.Digest {
		return OpenedCommitment{}, ErrCommitmentMismatch
	}

	return OpenedCommitment{n: cc.N, value: o.Value}, nil
}

// OpenedCommitment is a contribution whose opening has been validated
// against its commitment.
type OpenedCommitment struct {
	n     uint64
	value uint64
}

// Gather reduces the sum of the opened contributions modulo the common
// corpus size, yielding the jointly selected index. It returns
// ErrEmptyCorpus on an empty input and ErrCorpusSizeMismatch if the
// contributions were not all drawn over the same corpus.
func Gather(opened ...OpenedCommitment) (uint64, error) {

	if len(opened) == 0 {
		return 0, ErrEmptyCorpus
	}

	n := opened[0].n

	var hi, lo, carry uint64
	for _, o := range opened {

		if o.n != n {
			return 0, ErrCorpusSizeMismatch
		}

		lo, carry = bits.Add64(lo, o.value, 0)
		hi += carry
	}

	// hi*2^64 + lo and (hi mod n)*2^64 + lo are congruent modulo n, and
	// reducing hi first satisfies the Div64 precondition hi < n.
	_, rem := bits.Div64(hi%n, lo, n)

	return rem, nil
}

func commitmentDigest(n, value uint64, salt []byte) (digest [DigestSize]byte) {

	hasher := blake3.New()

	var buf [16]byte
	binary.BigEndian.PutUint64(buf[:8], n)
	binary.BigEndian.PutUint64(buf[8:], value)
	hasher.Write(buf[:])
	hasher.Write(salt)

	copy(digest[:], hasher.Sum(nil))

	return
}
