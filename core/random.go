package core

import (
	"math/rand"
	"time"
)

// Creates the random source that is handed to the
// randomized strategies.
// A seed of 0 seeds the source from the current time.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// Draws a uniformly random element from the slice.
// Returns false when the slice is empty.
func pickRandom[S ~[]E, E any](slice S, rng *rand.Rand) (E, bool) {
	var zero E
	if len(slice) == 0 {
		return zero, false
	}
	return slice[rng.Intn(len(slice))], true
}
