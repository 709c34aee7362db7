package field

import (
	"fmt"
	"math/big"
	"math/bits"
)

// IsPrime applies the Baillie-PSW primality test, which is 100% accurate
// for numbers below 2^64.
func IsPrime(x uint64) bool {
	return new(big.Int).SetUint64(x).ProbablyPrime(0)
}

// ModExp computes x^e mod p without requiring a prior instantiation of
// the field of modulus p.
func ModExp(x, e, p uint64) (result uint64) {
	brc := GenBRedConstant(p)
	result = 1
	for i := e; i > 0; i >>= 1 {
		if i&1 == 1 {
			result = BRed(result, x, p, brc)
		}
		x = BRed(x, x, p, brc)
	}
	return
}

// PrimitiveRoot returns the smallest primitive root of the prime q along
// with the distinct prime factors of q-1.
// The unique factors of q-1 can be given to speed up the search for the
// root, in which case their correctness is verified first.
func PrimitiveRoot(q uint64, factors []uint64) (uint64, []uint64, error) {

	if factors != nil {
		if err := CheckFactors(q-1, factors); err != nil {
			return 0, factors, err
		}
	} else {
		factors = factorize(q - 1)
	}

	notFoundPrimitiveRoot := true

	var g uint64 = 2

	for notFoundPrimitiveRoot {
		g++
		for _, factor := range factors {
			// If g^((q-1)/factor) = 1 mod q for any factor of q-1, g is not a primitive root.
			if ModExp(g, (q-1)/factor, q) == 1 {
				notFoundPrimitiveRoot = true
				break
			}
			notFoundPrimitiveRoot = false
		}
	}

	return g, factors, nil
}

// CheckFactors checks that the given list of factors contains all the
// unique prime factors of m.
func CheckFactors(m uint64, factors []uint64) (err error) {

	for _, factor := range factors {

		if !IsPrime(factor) {
			return fmt.Errorf("composite factor: %d", factor)
		}

		for m%factor == 0 {
			m /= factor
		}
	}

	if m != 1 {
		return fmt.Errorf("incomplete factor list")
	}

	return
}

// CheckPrimitiveRoot checks that g is a valid primitive root of the
// prime q, given the unique prime factors of q-1.
func CheckPrimitiveRoot(g, q uint64, factors []uint64) (err error) {

	if err = CheckFactors(q-1, factors); err != nil {
		return
	}

	for _, factor := range factors {
		if ModExp(g, (q-1)/factor, q) == 1 {
			return fmt.Errorf("invalid primitive root %d", g)
		}
	}

	return
}

// GenerateNTTPrimes generates n primes q = 1 mod nthRoot close to
// 2^logQ, alternating between upward and downward of 2^logQ, such that
// the field of modulus q contains a multiplicative subgroup of order
// nthRoot. logQ must be at most MaxModulusBitSize; primes found upward
// of 2^logQ have logQ+1 bits.
func GenerateNTTPrimes(logQ, nthRoot, n int) (primes []uint64) {

	if logQ < 2 || logQ > MaxModulusBitSize {
		panic(fmt.Errorf("logQ must be in [2, %d]", MaxModulusBitSize))
	}

	var nextPrime, previousPrime uint64
	checkForNext, checkForPrevious := true, true

	qPow2 := uint64(1 << logQ)
	nextPrime = qPow2 + 1
	previousPrime = qPow2 + 1

	primes = []uint64{}

	for {

		if !(checkForNext || checkForPrevious) {
			panic("cannot generate enough primes for the given parameters")
		}

		if checkForNext {

			nextPrime += uint64(nthRoot)

			if bits.Len64(nextPrime) > MaxModulusBitSize {
				checkForNext = false
			} else if IsPrime(nextPrime) {
				primes = append(primes, nextPrime)
				if len(primes) == n {
					return
				}
			}
		}

		if checkForPrevious {

			if previousPrime < uint64(nthRoot) {
				checkForPrevious = false
			} else {

				previousPrime -= uint64(nthRoot)

				if bits.Len64(previousPrime) < logQ {
					checkForPrevious = false
				} else if IsPrime(previousPrime) {
					primes = append(primes, previousPrime)
					if len(primes) == n {
						return
					}
				}
			}
		}
	}
}

// factorize returns the distinct prime factors of m, found by trial
// division by small primes followed by Pollard's rho on the remainder.
func factorize(m uint64) (factors []uint64) {

	appendFactor := func(p uint64) {
		for _, f := range factors {
			if f == p {
				return
			}
		}
		factors = append(factors, p)
	}

	for m&1 == 0 {
		appendFactor(2)
		m >>= 1
	}

	for p := uint64(3); p < 1<<10 && p*p <= m; p += 2 {
		for m%p == 0 {
			appendFactor(p)
			m /= p
		}
	}

	var split func(n uint64)
	split = func(n uint64) {
		if n == 1 {
			return
		}
		if IsPrime(n) {
			appendFactor(n)
			return
		}
		d := pollardRho(n)
		split(d)
		split(n / d)
	}

	split(m)

	return
}

// pollardRho returns a non-trivial factor of the odd composite n.
func pollardRho(n uint64) uint64 {

	g := func(x, c uint64) uint64 {
		hi, lo := bits.Mul64(x, x)
		_, r := bits.Div64(hi, lo, n)
		return CRed(r+c, n)
	}

	for c := uint64(1); ; c++ {

		x, y, d := uint64(2), uint64(2), uint64(1)

		for d == 1 {
			x = g(x, c)
			y = g(g(y, c), c)

			diff := x - y
			if y > x {
				diff = y - x
			}
			if diff == 0 {
				break
			}
			d = gcd(diff, n)
		}

		if d != 1 && d != n {
			return d
		}
	}
}

func gcd(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
