package core

import (
	"cmp"
	"math"
	"math/rand"
	"slices"
)

// Weights of the pair score. A lower score means
// a more balanced pair.
const (
	weightLoseSum             = 10
	weightLoseDistance        = 8
	weightWinSum              = -1
	weightWinDistance         = 5
	weightPointsDistance      = 6
	weightBattleCountDistance = -3
)

// Scores every undecided pair by how balanced the records
// of the two items are and samples from the sorted pairs
// with an exponential distribution.
//
// Pairs of items that lost rarely are strongly preferred so
// the top of the ranking settles first. The sampling still
// picks pairs further down the list from time to time.
type WinnerOrientedStrategy struct {
	rng *rand.Rand
}

type scoredPair struct {
	pair  Pair
	score int
}

func (s *WinnerOrientedStrategy) Name() string {
	return "winner-oriented"
}

func (s *WinnerOrientedStrategy) SelectNext(g *TournamentGraph) (Pair, bool) {
	ranked := rankPairs(g)
	if len(ranked) == 0 {
		return Pair{}, false
	}

	index := exponentialIndex(len(ranked), s.rng.Float64())
	return ranked[index].pair, true
}

// Returns the undecided pairs sorted by ascending score
func rankPairs(g *TournamentGraph) []scoredPair {
	pairs := g.CandidatePairs()
	scored := make([]scoredPair, 0, len(pairs))
	for _, p := range pairs {
		scored = append(scored, scoredPair{pair: p, score: pairScore(g, p)})
	}

	slices.SortStableFunc(scored, func(a, b scoredPair) int {
		return cmp.Compare(a.score, b.score)
	})

	return scored
}

func pairScore(g *TournamentGraph, p Pair) int {
	losesA, losesB := g.InDegree(p.A), g.InDegree(p.B)
	winsA, winsB := g.OutDegree(p.A), g.OutDegree(p.B)

	loseSum := losesA + losesB
	loseDistance := abs(losesA - losesB)
	winSum := winsA + winsB
	winDistance := abs(winsA - winsB)
	pointsDistance := abs((winsA - losesA) - (winsB - losesB))
	battleCountDistance := abs((winsA + losesA) - (winsB + losesB))

	return weightLoseSum*loseSum +
		weightLoseDistance*loseDistance +
		weightWinSum*winSum +
		weightWinDistance*winDistance +
		weightPointsDistance*pointsDistance +
		weightBattleCountDistance*battleCountDistance
}

// Maps the uniform sample u in [0, 1) to an index in [0, count-1].
// Low indices are exponentially more likely. The rate shrinks
// with the number of candidates so long lists are explored deeper.
func exponentialIndex(count int, u float64) int {
	lambda := math.Sqrt(3 / math.Sqrt(float64(count)))
	index := int(math.Round(math.Log(1-u)/-lambda)) - 1
	return min(max(index, 0), count-1)
}

func NewWinnerOrientedStrategy(rng *rand.Rand) *WinnerOrientedStrategy {
	return &WinnerOrientedStrategy{rng: rng}
}
