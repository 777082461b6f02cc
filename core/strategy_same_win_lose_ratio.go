package core

import (
	"cmp"
	"maps"
	"math/rand"
	"slices"
)

// Groups the items by their win/lose difference and
// draws a random pair from the largest group.
//
// Equally large groups are ordered by their difference,
// the higher one first. When the largest group has no
// undecided pair the next group is tried.
type SameWinLoseRatioStrategy struct {
	rng *rand.Rand
}

func (s *SameWinLoseRatioStrategy) Name() string {
	return "same-win-lose-ratio"
}

func (s *SameWinLoseRatioStrategy) SelectNext(g *TournamentGraph) (Pair, bool) {
	if g.CandidateCount() == 0 {
		return Pair{}, false
	}

	groups := make(map[int][]Item)
	for _, item := range g.Items() {
		difference := g.WinLoseDifference(item)
		groups[difference] = append(groups[difference], item)
	}

	differences := slices.SortedFunc(maps.Keys(groups), func(a, b int) int {
		if c := cmp.Compare(len(groups[b]), len(groups[a])); c != 0 {
			return c
		}
		return cmp.Compare(b, a)
	})

	for _, difference := range differences {
		pairs := g.CandidatePairsWithin(groups[difference])
		if pair, ok := pickRandom(pairs, s.rng); ok {
			return pair, true
		}
	}

	return pickRandom(g.CandidatePairs(), s.rng)
}

func NewSameWinLoseRatioStrategy(rng *rand.Rand) *SameWinLoseRatioStrategy {
	return &SameWinLoseRatioStrategy{rng: rng}
}
