package exam

import "math/rand/v2"

// Rand is the randomness source used for shuffling. *rand.Rand from
// math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Shuffle returns a uniformly random permutation of in using a Fisher-Yates
// walk from the last index down to 1. The input slice is not modified.
// A nil rng uses the math/rand/v2 global source.
func Shuffle[T any](rng Rand, in []T) []T {
	if rng == nil {
		rng = globalRand{}
	}
	out := make([]T, len(in))
	copy(out, in)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
