package domain

// Rand is the random source the price model draws from. *math/rand.Rand
// satisfies it; tests supply seeded or scripted sources.
type Rand interface {
	// Intn returns a non-negative pseudo-random int in [0, n). It panics if n <= 0.
	Intn(n int) int
	// Float64 returns a pseudo-random float64 in [0.0, 1.0).
	Float64() float64
}
