package dpnoise

import (
	"fmt"
	"math/bits"
)

// Config specifies the differential-privacy budget of an epoch. The
// mechanism is pure epsilon-DP: the released aggregate carries discrete
// Laplace noise of scale Sensitivity/Epsilon in each coordinate.
type Config struct {

	// Epsilon is the privacy budget of one epoch.
	Epsilon float64 `json:"epsilon"`

	// Sensitivity is the L1 sensitivity of the released statistic, i.e.
	// the largest change a single client can induce on it.
	Sensitivity float64 `json:"sensitivity"`

	// Tail bounds the probability that a pool noise sample falls outside
	// the bounded domain of its range encoding and is clamped. Defaults
	// to DefaultTail.
	Tail float64 `json:"tail,omitempty"`
}

// DefaultTail is the default clamping probability bound, 2^-30.
const DefaultTail = 0x1p-30

// DefaultConfig returns a configuration with a unit budget over a
// counting statistic.
func DefaultConfig() Config {
	return Config{Epsilon: 1, Sensitivity: 1, Tail: DefaultTail}
}

// Validate checks the configuration.
func (c Config) Validate() error {

	if c.Epsilon <= 0 {
		return fmt.Errorf("invalid config: epsilon must be positive but is %f", c.Epsilon)
	}

	if c.Sensitivity <= 0 {
		return fmt.Errorf("invalid config: sensitivity must be positive but is %f", c.Sensitivity)
	}

	if c.Tail < 0 || c.Tail >= 1 {
		return fmt.Errorf("invalid config: tail must be in [0, 1) but is %f", c.Tail)
	}

	return nil
}

// Sampler returns the discrete Laplace sampler of the configured
// budget.
func (c Config) Sampler() (*Laplace, error) {

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return NewDiscreteLaplace(c.Epsilon, c.Sensitivity)
}

// PoolGeometry derives the shift and per-coordinate bit width of the
// range encoding carrying pool noise submissions: samples are shifted
// by the tail bound of the sampler so that they are non-negative except
// with probability Tail, and encoded over enough bits to carry twice
// the shift.
func (c Config) PoolGeometry() (shift uint64, bitsPerCoord int, err error) {

	sampler, err := c.Sampler()
	if err != nil {
		return 0, 0, err
	}

	tail := c.Tail
	if tail == 0 {
		tail = DefaultTail
	}

	shift = uint64(sampler.Bound(tail))
	bitsPerCoord = bits.Len64(2 * shift)

	return
}
