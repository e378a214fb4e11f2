// Package entropy provides the seedable random source consumed by the
// simulation. Every stochastic decision in the engine draws from a Source so
// a whole run can be replayed from one seed.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand"
)

// Source is the random stream the engine draws from.
type Source interface {
	// Float64 returns a uniform float in [0, 1).
	Float64() float64
	// Intn returns a uniform int in [0, n). Panics if n <= 0.
	Intn(n int) int
	// IntRange returns a uniform int in [lo, hi], both inclusive.
	IntRange(lo, hi int) int
	// Sample returns k distinct indices drawn from [0, n) without replacement.
	Sample(n, k int) []int
	// Shuffle permutes n elements in place through swap.
	Shuffle(n int, swap func(i, j int))
	// Int63 returns a non-negative int64, used to derive child seeds.
	Int63() int64
}

// Rand is a Source backed by math/rand.
type Rand struct {
	rng *mrand.Rand
}

// New creates a Source with the given seed. A zero seed is replaced with a
// seed from crypto/rand, matching how world generation treats Seed == 0.
func New(seed int64) *Rand {
	if seed == 0 {
		seed = CryptoSeed()
	}
	return &Rand{rng: mrand.New(mrand.NewSource(seed))}
}

func (r *Rand) Float64() float64 { return r.rng.Float64() }

func (r *Rand) Intn(n int) int { return r.rng.Intn(n) }

func (r *Rand) IntRange(lo, hi int) int {
	return lo + r.rng.Intn(hi-lo+1)
}

func (r *Rand) Sample(n, k int) []int {
	return sample(r, n, k)
}

func (r *Rand) Shuffle(n int, swap func(i, j int)) { r.rng.Shuffle(n, swap) }

func (r *Rand) Int63() int64 { return r.rng.Int63() }

// Derive returns a new independent Source seeded from the next value of src.
// Callers that fan work out across goroutines derive one child per unit of
// work, in order, so the result does not depend on scheduling.
func Derive(src Source) *Rand {
	return &Rand{rng: mrand.New(mrand.NewSource(src.Int63()))}
}

// sample runs a partial Fisher-Yates over [0, n) and keeps the first k.
func sample(src Source, n, k int) []int {
	if k > n {
		k = n
	}
	if k <= 0 {
		return nil
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + src.Intn(n-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx[:k]
}

// CryptoSeed returns a non-zero seed read from crypto/rand.
func CryptoSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// This should never happen but fall back to a fixed seed.
		return 1
	}
	seed := int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
	if seed == 0 {
		seed = 1
	}
	return seed
}
