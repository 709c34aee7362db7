package dpnoise

import (
	"fmt"
	"math"

	"github.com/dprio/dprio/utils/sampling"
)

// granularityParam is the resolution parameter 2^40 of the discretized
// Laplace mechanism: the granularity is the smallest power of two at
// least sensitivity/epsilon, divided by this parameter.
const granularityParam = float64(1 << 40)

// minLambda is the smallest admissible geometric parameter, 2^-59.
// Below this value the mechanism would lose its privacy guarantee to
// the limited resolution of float64 arithmetic.
const minLambda = 0x1p-59

// Laplace samples the discretized Laplace mechanism of scale
// sensitivity/epsilon. Samples are integer increments k of a fixed
// granularity g, drawn from the two-sided geometric distribution of
// parameter lambda = g*epsilon/(sensitivity+g); the represented noise
// value is k*g. Keeping the increments integral lets the surrounding
// protocol carry them as field elements, with the discretization error
// bounded by the published granularity rather than silently absorbed.
type Laplace struct {
	epsilon     float64
	sensitivity float64
	granularity float64
	lambda      float64
}

// NewLaplace instantiates a sampler for the Laplace mechanism of the
// given privacy budget epsilon and L1 sensitivity, discretized at the
// granularity ceilPowerOfTwo(sensitivity/epsilon)/2^40.
func NewLaplace(epsilon, sensitivity float64) (*Laplace, error) {

	g, err := ceilPowerOfTwo(sensitivity / epsilon)
	if err != nil {
		return nil, err
	}

	return newLaplace(epsilon, sensitivity, g/granularityParam)
}

// NewDiscreteLaplace instantiates a sampler with unit granularity, i.e.
// the exact discrete Laplace mechanism over the integers. Sample then
// directly returns the noise value and the discretization error is
// zero, which is the appropriate choice for integer-valued statistics
// such as counts.
func NewDiscreteLaplace(epsilon, sensitivity float64) (*Laplace, error) {
	return newLaplace(epsilon, sensitivity, 1)
}

func newLaplace(epsilon, sensitivity, granularity float64) (*Laplace, error) {

	if epsilon <= 0 || math.IsNaN(epsilon) || math.IsInf(epsilon, 0) {
		return nil, fmt.Errorf("invalid Laplace sampler: epsilon must be a positive finite float but is %f", epsilon)
	}

	if sensitivity <= 0 || math.IsNaN(sensitivity) || math.IsInf(sensitivity, 0) {
		return nil, fmt.Errorf("invalid Laplace sampler: sensitivity must be a positive finite float but is %f", sensitivity)
	}

	lambda := granularity * epsilon / (sensitivity + granularity)

	if lambda <= minLambda {
		return nil, fmt.Errorf("invalid Laplace sampler: geometric parameter %e is below 2^-59", lambda)
	}

	return &Laplace{
		epsilon:     epsilon,
		sensitivity: sensitivity,
		granularity: granularity,
		lambda:      lambda,
	}, nil
}

// Granularity returns the resolution g of the discretization: samples
// are multiples of g and the discretization error of the mechanism is
// bounded by g.
func (l *Laplace) Granularity() float64 {
	return l.granularity
}

// Lambda returns the parameter of the underlying two-sided geometric
// distribution.
func (l *Laplace) Lambda() float64 {
	return l.lambda
}

// Variance returns the variance of Sample, in increments squared.
func (l *Laplace) Variance() float64 {
	a := math.Exp(-l.lambda)
	return 2 * a / ((1 - a) * (1 - a))
}

// Bound returns a magnitude that a sample exceeds with probability at
// most tail. It is used to size the shift and range encoding of pool
// submissions, which clamp samples to a bounded domain.
func (l *Laplace) Bound(tail float64) int64 {
	return int64(math.Ceil(math.Log(2/tail) / l.lambda))
}

// Sample draws one increment from the two-sided geometric distribution
// of parameter lambda. The represented noise value is Value(k).
func (l *Laplace) Sample(prng sampling.PRNG) int64 {
	return sampleTwoSidedGeometric(prng, l.lambda)
}

// Value returns the noise value represented by the increment k, namely
// k times the granularity.
func (l *Laplace) Value(k int64) float64 {
	return float64(k) * l.granularity
}

// sampleGeometric draws a sample from the geometric distribution of
// parameter p = 1 - e^(-lambda) supported on {1, 2, ...}, by binary
// search over the inverse cumulative distribution so that the number of
// random draws is logarithmic in the sample rather than linear.
// Samples beyond the int64 horizon are truncated to MaxInt64.
func sampleGeometric(prng sampling.PRNG, lambda float64) int64 {

	if sampling.RandFloat64(prng) > -math.Expm1(-lambda*float64(math.MaxInt64)) {
		return math.MaxInt64
	}

	var left, right int64 = 0, math.MaxInt64
	for left+1 < right {

		// Midpoint splitting the probability mass of (left, right]
		// approximately evenly, clamped to keep the interval contracting.
		mid := int64(math.Ceil(float64(left) - (math.Log(0.5)+math.Log1p(math.Exp(lambda*float64(left-right))))/lambda))
		if mid <= left {
			mid = left + 1
		}
		if mid >= right {
			mid = right - 1
		}

		// q = P[sample <= mid | left < sample <= right].
		q := math.Expm1(lambda*float64(left-mid)) / math.Expm1(lambda*float64(left-right))
		if sampling.RandFloat64(prng) <= q {
			right = mid
		} else {
			left = mid
		}
	}

	return right
}

// sampleTwoSidedGeometric draws a sample from the two-sided geometric
// distribution of parameter lambda, rejecting the zero sample on
// negative signs so that zero is not counted twice.
func sampleTwoSidedGeometric(prng sampling.PRNG, lambda float64) int64 {

	var sample int64
	var positive bool

	for sample == 0 && !positive {
		sample = sampleGeometric(prng, lambda) - 1
		positive = sampling.RandUint64(prng)&1 == 1
	}

	if positive {
		return sample
	}

	return -sample
}

// ceilPowerOfTwo returns the smallest power of two at least x.
func ceilPowerOfTwo(x float64) (float64, error) {

	if x <= 0 || math.IsNaN(x) || x > 0x1p1023 {
		return 0, fmt.Errorf("invalid granularity derivation: %f is not in (0, 2^1023]", x)
	}

	frac, exp := math.Frexp(x)
	if frac == 0.5 {
		exp--
	}

	return math.Ldexp(1, exp), nil
}
