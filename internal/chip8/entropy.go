package chip8

import (
	crand "crypto/rand"
	"math/rand/v2"
)

// Entropy is the source of random bytes used by the random number instruction.
type Entropy interface {
	RandomByte() uint8
}

// SeededEntropy is a deterministic entropy source.
type SeededEntropy struct {
	rng *rand.Rand
}

// NewSeededEntropy returns a deterministic entropy source for the given seed.
func NewSeededEntropy(seed uint64) *SeededEntropy {
	return &SeededEntropy{
		rng: rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15)),
	}
}

// RandomByte returns the next pseudo random byte.
func (e *SeededEntropy) RandomByte() uint8 {
	return uint8(e.rng.Uint32())
}

// CryptoEntropy reads random bytes from the operating system.
type CryptoEntropy struct{}

// RandomByte returns one byte of operating system entropy.
func (CryptoEntropy) RandomByte() uint8 {
	var b [1]byte
	_, _ = crand.Read(b[:])
	return b[0]
}
