// Package client implements the client side of the aggregation
// protocol: a measurement is encoded, proved, split into two additive
// shares and each share is sealed to the public key of one server. The
// leader server receives the explicit share and the follower receives
// the compact seed share, so that a single submission costs one full
// vector and one 32-byte seed on the wire.
package client

import (
	"fmt"

	"github.com/dprio/dprio"
	"github.com/dprio/dprio/encoding"
	"github.com/dprio/dprio/encrypt"
	"github.com/dprio/dprio/share"
	"github.com/dprio/dprio/snip"
	"github.com/dprio/dprio/utils/sampling"
)

// Client prepares sealed submissions for one pair of servers. A Client
// is not safe for concurrent use; see ShallowCopy.
type Client struct {
	params      dprio.Parameters
	enc         encoding.Encoder
	prover      *snip.Prover
	leaderKey   *encrypt.PublicKey
	followerKey *encrypt.PublicKey
	prng        sampling.PRNG
}

// Submission carries the two sealed halves of one proved submission,
// each readable by exactly one server.
type Submission struct {

	// ForLeader seals the explicit share vector.
	ForLeader []byte

	// ForFollower seals the seed expanding to the compact share.
	ForFollower []byte
}

// New instantiates a Client over the given parameters, encoder and
// server public keys. The encoder must produce vectors of the
// parameters' dimension.
func New(params dprio.Parameters, enc encoding.Encoder, leaderKey, followerKey *encrypt.PublicKey, prng sampling.PRNG) (*Client, error) {

	if enc.Slots() != params.Dimension() {
		return nil, fmt.Errorf("invalid Client: encoder produces %d slots but the dimension is %d", enc.Slots(), params.Dimension())
	}

	return &Client{
		params:      params,
		enc:         enc,
		prover:      snip.NewProver(params),
		leaderKey:   leaderKey,
		followerKey: followerKey,
		prng:        prng,
	}, nil
}

// ShallowCopy returns a Client sharing the parameters, encoder and keys
// of the receiver but with fresh proving scratch space and its own
// PRNG, safe for use in a different goroutine.
func (c *Client) ShallowCopy() (*Client, error) {

	var key [32]byte
	if _, err := c.prng.Read(key[:]); err != nil {
		// Sanity check, this error should not happen.
		panic(err)
	}

	prng, err := sampling.NewKeyedPRNG(key[:])
	if err != nil {
		return nil, err
	}

	return &Client{
		params:      c.params,
		enc:         c.enc,
		prover:      c.prover.ShallowCopy(),
		leaderKey:   c.leaderKey,
		followerKey: c.followerKey,
		prng:        prng,
	}, nil
}

// Submit encodes, proves, splits and seals one measurement. Encoding
// errors, notably encoding.ErrValueOutOfRange, are the client's to
// recover from and are never visible to the servers.
func (c *Client) Submit(measurement []uint64) (Submission, error) {

	encoded, err := c.enc.Encode(measurement)
	if err != nil {
		return Submission{}, fmt.Errorf("cannot Submit: %w", err)
	}

	return c.SubmitEncoded(encoded)
}

// SubmitEncoded proves, splits and seals a pre-encoded vector without
// checking it against the encoder domain. A vector outside the domain
// produces a structurally valid submission that the servers reject
// during verification; the simulation harness uses this to inject
// invalid submissions.
func (c *Client) SubmitEncoded(encoded []uint64) (Submission, error) {

	proof, err := c.prover.Prove(encoded, c.prng)
	if err != nil {
		return Submission{}, fmt.Errorf("cannot Submit: %w", err)
	}

	explicit, seed, err := share.Split(c.params.Field(), proof, c.prng)
	if err != nil {
		return Submission{}, fmt.Errorf("cannot Submit: %w", err)
	}

	p, err := explicit.MarshalBinary()
	if err != nil {
		return Submission{}, fmt.Errorf("cannot Submit: %w", err)
	}

	forLeader, err := encrypt.Seal(c.leaderKey, p)
	if err != nil {
		return Submission{}, fmt.Errorf("cannot Submit: %w", err)
	}

	forFollower, err := encrypt.Seal(c.followerKey, seed[:])
	if err != nil {
		return Submission{}, fmt.Errorf("cannot Submit: %w", err)
	}

	return Submission{ForLeader: forLeader, ForFollower: forFollower}, nil
}
