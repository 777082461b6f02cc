package core

import (
	"slices"
)

// Returns all pairs of items without a decision between them.
// The pairs are canonical and sorted.
func (g *TournamentGraph) CandidatePairs() []Pair {
	return g.candidatePairs(g.Items(), g.CandidateCount())
}

// Same as CandidatePairs but only pairs where both items
// are in the given working set are returned.
// Items that are not in the graph are skipped.
func (g *TournamentGraph) CandidatePairsWithin(items []Item) []Pair {
	workingSet := make([]Item, 0, len(items))
	for _, item := range items {
		if g.HasItem(item) {
			workingSet = append(workingSet, item)
		}
	}
	slices.Sort(workingSet)
	workingSet = slices.Compact(workingSet)

	return g.candidatePairs(workingSet, 0)
}

// The number of undecided pairs
func (g *TournamentGraph) CandidateCount() int {
	return g.MaxEdgeCount() - g.edgeCount
}

// Returns the items that have no decision with the given item
func (g *TournamentGraph) Undecided(item Item) []Item {
	undecided := make([]Item, 0, max(0, g.Len()-1-g.Degree(item)))
	for _, other := range g.Items() {
		if other == item || g.Decided(item, other) {
			continue
		}
		undecided = append(undecided, other)
	}
	return undecided
}

func (g *TournamentGraph) candidatePairs(sortedItems []Item, capacity int) []Pair {
	pairs := make([]Pair, 0, capacity)
	for i, a := range sortedItems {
		for _, b := range sortedItems[i+1:] {
			if g.Decided(a, b) {
				continue
			}
			pairs = append(pairs, Pair{A: a, B: b})
		}
	}
	return pairs
}
