package dpnoise

import (
	"fmt"

	exprand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/dprio/dprio/utils/sampling"
)

// Polya samples the Polya (negative binomial) distribution of shape r
// and parameter alpha through its Gamma-Poisson mixture. The sum of k
// independent Polya(1/k, alpha) samples follows the geometric
// distribution of parameter 1-alpha, so the difference of two Polya
// sums, taken across the two servers, follows the two-sided geometric
// distribution: this is what lets each server contribute half of the
// discrete Laplace noise without either knowing the total.
type Polya struct {
	r     float64
	alpha float64
	gamma distuv.Gamma
	src   exprand.Source
}

// NewPolya instantiates a Polya sampler of shape r and parameter alpha,
// drawing its randomness from a source seeded by the given PRNG.
func NewPolya(r, alpha float64, prng sampling.PRNG) (*Polya, error) {

	if r <= 0 {
		return nil, fmt.Errorf("invalid Polya sampler: shape %f is not positive", r)
	}

	if alpha <= 0 || alpha >= 1 {
		return nil, fmt.Errorf("invalid Polya sampler: parameter %f is not in (0, 1)", alpha)
	}

	src := exprand.NewSource(sampling.RandUint64(prng))

	return &Polya{
		r:     r,
		alpha: alpha,
		gamma: distuv.Gamma{Alpha: r, Beta: (1 - alpha) / alpha, Src: src},
		src:   src,
	}, nil
}

// Sample draws one Polya sample as a Poisson draw of Gamma-distributed
// rate.
func (p *Polya) Sample() int64 {

	lambda := p.gamma.Rand()
	if lambda == 0 {
		return 0
	}

	return int64(distuv.Poisson{Lambda: lambda, Src: p.src}.Rand())
}

// SampleDifference returns the difference of two independent Polya
// samples. Summed across the two servers with r = 1/2, the differences
// follow the two-sided geometric distribution of parameter alpha.
func (p *Polya) SampleDifference() int64 {
	return p.Sample() - p.Sample()
}
