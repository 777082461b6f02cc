package core

// Searches the place of one item in the current ranking
// by nested intervals.
//
// For every item the interval between the lowest ranked
// item that beat it and the highest ranked item it beat is
// where its final place has to be. The item with the widest
// interval is compared to the item in the middle of it.
type BiSectionStrategy struct{}

func (s *BiSectionStrategy) Name() string {
	return "bisection"
}

func (s *BiSectionStrategy) SelectNext(g *TournamentGraph) (Pair, bool) {
	if g.CandidateCount() == 0 {
		return Pair{}, false
	}

	ranked := rankedItems(g)
	n := len(ranked)
	rankIndex := make(map[Item]int, n)
	for i, item := range ranked {
		rankIndex[item] = i
	}

	var searched Item
	found := false
	widest, low, high := 0, 0, 0
	for _, item := range ranked {
		if g.Degree(item) >= n-1 {
			continue
		}

		worstWinner := 0
		for _, w := range g.Winners(item) {
			worstWinner = max(worstWinner, rankIndex[w])
		}
		bestLoser := n - 1
		for _, l := range g.Losers(item) {
			bestLoser = min(bestLoser, rankIndex[l])
		}

		interval := bestLoser - worstWinner
		if !found || interval > widest {
			searched = item
			found = true
			widest, low, high = interval, worstWinner, bestLoser
		}
	}

	if !found {
		return Pair{}, false
	}

	midpoint := float64(low+high) / 2
	var opponent Item
	distance := -1.0
	for _, item := range ranked {
		if item == searched || g.Decided(searched, item) {
			continue
		}
		d := float64(rankIndex[item]) - midpoint
		if d < 0 {
			d = -d
		}
		if distance < 0 || d < distance {
			opponent, distance = item, d
		}
	}

	return NewPair(searched, opponent), true
}

func NewBiSectionStrategy() *BiSectionStrategy {
	return &BiSectionStrategy{}
}
