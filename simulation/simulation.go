// Package simulation drives a full in-process epoch of the aggregation
// protocol: many clients, two servers, concurrent verification, the
// noise protocol at epoch close and the final reveal. It is the
// consumer of the protocol core used to compare the differentially
// private flavor against a plain baseline that skips the noise
// protocol, and times each protocol phase separately for that purpose.
package simulation

import (
	"fmt"
	"runtime"

	"go.uber.org/zap"

	"github.com/dprio/dprio"
	"github.com/dprio/dprio/dpnoise"
	"github.com/dprio/dprio/encoding"
)

// NoiseMode selects the noise protocol run at epoch close.
type NoiseMode string

const (
	// NoiseNone publishes the exact aggregate. This is the baseline the
	// differentially private flavors are compared against.
	NoiseNone NoiseMode = "none"

	// NoisePool selects one client-contributed, proof-verified noise
	// submission through a commit-reveal exchange between the servers.
	NoisePool NoiseMode = "pool"

	// NoiseSplit convolves a Polya-difference contribution from each
	// server, exchanged as committed additive halves.
	NoiseSplit NoiseMode = "split"
)

// Config specifies one simulated deployment.
type Config struct {

	// Dimension is the number of boolean slots per measurement.
	Dimension int

	// Clients is the number of simulated clients.
	Clients int

	// Invalid is the number of clients submitting an out-of-range
	// measurement that the servers must reject.
	Invalid int

	// Noise selects the noise protocol. Defaults to NoiseNone.
	Noise NoiseMode

	// DP is the privacy budget used by the noise protocols.
	DP dpnoise.Config

	// Concurrency bounds the number of submissions verified in flight.
	// Defaults to the number of CPUs.
	Concurrency int

	// Seed makes client data and all protocol randomness deterministic.
	Seed string

	// Measure overrides the measurement of client i. By default every
	// client submits a uniformly random one-hot vector (or, with
	// probability 1/(Dimension+1), the zero vector).
	Measure func(i int) []uint64

	// CorruptNoiseReveal makes the follower server reveal a value
	// inconsistent with its commitment during the noise exchange, which
	// must abort the epoch.
	CorruptNoiseReveal bool
}

// Validate checks the configuration.
func (c Config) Validate() error {

	if c.Dimension < 1 {
		return fmt.Errorf("invalid config: dimension must be at least 1")
	}

	if c.Clients < 1 {
		return fmt.Errorf("invalid config: at least one client is required")
	}

	if c.Invalid < 0 || c.Invalid > c.Clients {
		return fmt.Errorf("invalid config: %d invalid clients out of %d", c.Invalid, c.Clients)
	}

	switch c.Noise {
	case NoiseNone, NoisePool, NoiseSplit:
	case "":
	default:
		return fmt.Errorf("invalid config: unknown noise mode %q", c.Noise)
	}

	if c.Noise == NoisePool || c.Noise == NoiseSplit {
		if err := c.DP.Validate(); err != nil {
			return err
		}
	}

	if c.Concurrency < 0 {
		return fmt.Errorf("invalid config: concurrency must be non-negative")
	}

	return nil
}

// Simulation is a reusable epoch driver for one configuration.
type Simulation struct {
	cfg Config
	log *zap.Logger

	// params covers data submissions; noiseParams and noiseEnc cover the
	// range-encoded pool submissions.
	params      dprio.Parameters
	dataEnc     *encoding.Boolean
	noiseParams dprio.Parameters
	noiseEnc    *encoding.Range
	shift       uint64
}

// New instantiates a Simulation from the configuration. The logger may
// be nil, in which case logging is disabled.
func New(cfg Config, log *zap.Logger) (*Simulation, error) {

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Noise == "" {
		cfg.Noise = NoiseNone
	}

	if cfg.Concurrency == 0 {
		cfg.Concurrency = runtime.NumCPU()
	}

	if log == nil {
		log = zap.NewNop()
	}

	params, err := dprio.NewParametersFromLiteral(dprio.ParametersLiteral{Dimension: cfg.Dimension})
	if err != nil {
		return nil, err
	}

	s := &Simulation{
		cfg:     cfg,
		log:     log,
		params:  params,
		dataEnc: encoding.NewBoolean(params),
	}

	if cfg.Noise == NoisePool {

		shift, bitsPerCoord, err := cfg.DP.PoolGeometry()
		if err != nil {
			return nil, err
		}

		noiseParams, err := dprio.NewParametersFromLiteral(dprio.ParametersLiteral{Dimension: cfg.Dimension * bitsPerCoord})
		if err != nil {
			return nil, err
		}

		noiseEnc, err := encoding.NewRange(noiseParams, cfg.Dimension, bitsPerCoord)
		if err != nil {
			return nil, err
		}

		s.noiseParams = noiseParams
		s.noiseEnc = noiseEnc
		s.shift = shift
	}

	return s, nil
}

// Params returns the data submission parameters.
func (s *Simulation) Params() dprio.Parameters {
	return s.params
}
