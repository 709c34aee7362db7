package field

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dprio/dprio/utils"
	"github.com/dprio/dprio/utils/sampling"
)

var testModuli = []uint64{
	0x1FFFFFFFFFE00001, // 61 bits, 2-adicity 21
	0x1000002D0001,     // 45 bits NTT prime
	12289,
}

func testString(opname string, q uint64) string {
	return fmt.Sprintf("%s/Q=%d", opname, q)
}

func TestNewFieldRejectsInvalidModuli(t *testing.T) {

	// Even.
	_, err := NewField(1 << 16)
	require.Error(t, err)

	// Composite.
	_, err = NewField(0xFFFFFFFFFFFFFFF)
	require.Error(t, err)

	// Too large.
	_, err = NewField(0x7FFFFFFFFFFFFFE7)
	require.Error(t, err)
}

func TestFieldArithmetic(t *testing.T) {

	prng, err := sampling.NewKeyedPRNG([]byte{'f', 'i', 'e', 'l', 'd'})
	require.NoError(t, err)

	for _, q := range testModuli {

		f, err := NewField(q)
		require.NoError(t, err)

		bigQ := new(big.Int).SetUint64(q)

		t.Run(testString("AddSubMulNeg", q), func(t *testing.T) {

			for i := 0; i < 128; i++ {

				x, y := f.Uniform(prng), f.Uniform(prng)
				bigX, bigY := new(big.Int).SetUint64(x), new(big.Int).SetUint64(y)

				want := new(big.Int).Add(bigX, bigY)
				require.Equal(t, want.Mod(want, bigQ).Uint64(), f.Add(x, y))

				want = new(big.Int).Sub(bigX, bigY)
				require.Equal(t, want.Mod(want, bigQ).Uint64(), f.Sub(x, y))

				want = new(big.Int).Mul(bigX, bigY)
				require.Equal(t, want.Mod(want, bigQ).Uint64(), f.Mul(x, y))

				want = new(big.Int).Neg(bigX)
				require.Equal(t, want.Mod(want, bigQ).Uint64(), f.Neg(x))
			}

			require.Equal(t, uint64(0), f.Neg(0))
			require.Equal(t, uint64(0), f.Add(q-1, 1))
		})

		t.Run(testString("ExpInv", q), func(t *testing.T) {

			for i := 0; i < 32; i++ {

				x := f.Uniform(prng)
				if x == 0 {
					continue
				}

				xInv, err := f.Inv(x)
				require.NoError(t, err)
				require.Equal(t, uint64(1), f.Mul(x, xInv))
			}

			_, err := f.Inv(0)
			require.ErrorIs(t, err, ErrNonInvertible)

			// Fermat: x^(q-1) = 1.
			require.Equal(t, uint64(1), f.Exp(5, q-1))
			require.Equal(t, uint64(1), f.Exp(7, 0))
		})

		t.Run(testString("CenteredLift", q), func(t *testing.T) {

			for _, v := range []int64{0, 1, -1, 255, -255, 1 << 32, -(1 << 32)} {
				require.Equal(t, v, f.ToInt64(f.FromInt64(v)))
			}

			require.Equal(t, q-1, f.FromInt64(-1))
			require.Equal(t, int64(-1), f.ToInt64(q-1))
		})

		t.Run(testString("EvalPoly", q), func(t *testing.T) {

			coeffs := []uint64{3, 0, 1, 7}
			x := uint64(11)

			// 3 + x^2 + 7x^3.
			want := f.Add(3, f.Add(f.Mul(x, x), f.Mul(7, f.Mul(x, f.Mul(x, x)))))
			require.Equal(t, want, f.EvalPoly(coeffs, x))

			require.Equal(t, uint64(0), f.EvalPoly(nil, x))
		})

		t.Run(testString("PrimitiveRoot", q), func(t *testing.T) {

			g := f.PrimitiveRootOfUnity()
			require.NoError(t, CheckPrimitiveRoot(g, q, f.Factors()))
			require.Equal(t, uint64(1), f.Exp(g, q-1))
		})
	}
}

func TestFieldUniform(t *testing.T) {

	prng, err := sampling.NewKeyedPRNG(nil)
	require.NoError(t, err)

	f, err := NewField(12289)
	require.NoError(t, err)

	for i := 0; i < 4096; i++ {
		require.Less(t, f.Uniform(prng), f.Modulus)
	}
}

func TestNTTTable(t *testing.T) {

	prng, err := sampling.NewKeyedPRNG([]byte{'n', 't', 't'})
	require.NoError(t, err)

	for _, q := range testModuli {

		f, err := NewField(q)
		require.NoError(t, err)

		for _, nthRoot := range []uint64{2, 8, 64, 256} {

			t.Run(testString(fmt.Sprintf("Transform/N=%d", nthRoot), q), func(t *testing.T) {

				tab, err := f.NewNTTTable(nthRoot)
				require.NoError(t, err)

				n := tab.N()

				coeffs := make([]uint64, n)
				for i := range coeffs {
					coeffs[i] = f.Uniform(prng)
				}

				// Forward evaluates the polynomial on the subgroup.
				evals := make([]uint64, n)
				copy(evals, coeffs)
				tab.Forward(evals)

				for i := 0; i < n; i++ {
					require.Equal(t, f.EvalPoly(coeffs, tab.Root(i)), evals[i])
				}

				// Backward inverts Forward.
				tab.Backward(evals)
				require.True(t, utils.EqualSliceUint64(coeffs, evals))
			})
		}

		// The order of the subgroup must divide q-1.
		_, err = f.NewNTTTable(1 << 62)
		require.Error(t, err)
		_, err = f.NewNTTTable(3)
		require.Error(t, err)
	}
}

func TestNTTRootOrder(t *testing.T) {

	f, err := NewField(0x1FFFFFFFFFE00001)
	require.NoError(t, err)

	tab, err := f.NewNTTTable(128)
	require.NoError(t, err)

	w := tab.Root(1)
	require.Equal(t, uint64(1), f.Exp(w, 128))
	require.NotEqual(t, uint64(1), f.Exp(w, 64))
	require.Equal(t, tab.Root(5), f.Exp(w, 5))
}

func TestGenerateNTTPrimes(t *testing.T) {

	primes := GenerateNTTPrimes(45, 1<<10, 4)
	require.Equal(t, 4, len(primes))

	for _, p := range primes {
		require.True(t, IsPrime(p))
		require.Equal(t, uint64(1), p%(1<<10))

		f, err := NewField(p)
		require.NoError(t, err)

		_, err = f.NewNTTTable(1 << 10)
		require.NoError(t, err)
	}
}
