package core

import (
	"cmp"
	"slices"
)

// Sorts the items by their current record and compares
// neighbours in that order. When all direct neighbours are
// decided the distance grows by one. This is similar to
// a bubble sort pass over the current ranking.
type RankingTopDownStrategy struct{}

func (s *RankingTopDownStrategy) Name() string {
	return "ranking-top-down"
}

func (s *RankingTopDownStrategy) SelectNext(g *TournamentGraph) (Pair, bool) {
	if g.CandidateCount() == 0 {
		return Pair{}, false
	}

	items := g.Items()
	slices.SortStableFunc(items, func(a, b Item) int {
		if c := cmp.Compare(g.OutDegree(b), g.OutDegree(a)); c != 0 {
			return c
		}
		return cmp.Compare(g.InDegree(a), g.InDegree(b))
	})

	for step := 1; step < len(items); step++ {
		for i := 0; i+step < len(items); i++ {
			a, b := items[i], items[i+step]
			if !g.Decided(a, b) {
				return NewPair(a, b), true
			}
		}
	}

	return Pair{}, false
}

func NewRankingTopDownStrategy() *RankingTopDownStrategy {
	return &RankingTopDownStrategy{}
}
