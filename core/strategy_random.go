package core

import "math/rand"

// Draws the next pair uniformly from all undecided pairs
type RandomStrategy struct {
	rng *rand.Rand
}

func (s *RandomStrategy) Name() string {
	return "random"
}

func (s *RandomStrategy) SelectNext(g *TournamentGraph) (Pair, bool) {
	return pickRandom(g.CandidatePairs(), s.rng)
}

func NewRandomStrategy(rng *rand.Rand) *RandomStrategy {
	return &RandomStrategy{rng: rng}
}
