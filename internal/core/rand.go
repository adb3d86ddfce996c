package core

import "math/rand"

// Rand is the random source owned by a single model.
// It is never shared between models so that each treatment variant
// consumes an independent, reproducible stream.
type Rand struct {
	r *rand.Rand
}

// NewRand creates a random source seeded with seed.
func NewRand(seed int64) *Rand {
	return &Rand{r: rand.New(rand.NewSource(seed))}
}

// Double returns a uniform float64 in [0, 1).
func (r *Rand) Double() float64 {
	return r.r.Float64()
}

// Int returns a uniform int in [0, n). Panics if n <= 0.
func (r *Rand) Int(n int) int {
	return r.r.Intn(n)
}

// Shuffle applies a uniform random permutation using swap.
func (r *Rand) Shuffle(n int, swap func(i, j int)) {
	r.r.Shuffle(n, swap)
}

// SplitSeeds derives n independent seeds from one experiment seed.
// The same seed always yields the same sequence.
func SplitSeeds(seed int64, n int) []int64 {
	src := rand.New(rand.NewSource(seed))
	seeds := make([]int64, n)
	for i := range seeds {
		seeds[i] = src.Int63()
	}
	return seeds
}
