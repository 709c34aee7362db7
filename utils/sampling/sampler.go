package sampling

import (
	"encoding/binary"
)

// RandUint64 reads eight bytes from the given PRNG and returns them
// as an uint64.
func RandUint64(prng PRNG) uint64 {
	var b [8]byte
	if _, err := prng.Read(b[:]); err != nil {
		// Sanity check, this error should not happen.
		panic(err)
	}
	return binary.LittleEndian.Uint64(b[:])
}

// RandFloat64 reads eight bytes from the given PRNG and returns a
// uniform float64 in [0, 1) with 53 bits of precision.
func RandFloat64(prng PRNG) float64 {
	return float64(RandUint64(prng)>>11) / (1 << 53)
}

// RandUniform samples a uniform value in [0, v-1] by rejection sampling
// under the given mask, which must satisfy mask = 2^ceil(log2(v)) - 1.
func RandUniform(prng PRNG, v, mask uint64) (randomInt uint64) {
	for {
		if randomInt = RandUint64(prng) & mask; randomInt < v {
			return randomInt
		}
	}
}
