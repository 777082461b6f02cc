package core

// Prefers the pair whose decision is estimated to infer
// the most decisions by transitivity.
//
// The estimate adds up how different the two items are in
// who they lost and won against. The product of both terms
// favors pairs where both differences are large. It is a
// heuristic and does not count the exact closure.
type MaxNewEdgesStrategy struct{}

func (s *MaxNewEdgesStrategy) Name() string {
	return "max-new-edges"
}

func (s *MaxNewEdgesStrategy) SelectNext(g *TournamentGraph) (Pair, bool) {
	return minimizeScore(g.CandidatePairs(), func(p Pair) int {
		return -estimateNewEdges(g, p)
	})
}

func estimateNewEdges(g *TournamentGraph, p Pair) int {
	incoming := symmetricDifference(g.Winners(p.A), g.Winners(p.B))
	outgoing := symmetricDifference(g.Losers(p.A), g.Losers(p.B))
	return incoming + outgoing + incoming*outgoing
}

// Returns the size of the symmetric difference of two sorted slices
func symmetricDifference(a, b []Item) int {
	i, j, size := 0, 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			i += 1
			j += 1
		case a[i] < b[j]:
			size += 1
			i += 1
		default:
			size += 1
			j += 1
		}
	}
	size += len(a) - i
	size += len(b) - j
	return size
}

func NewMaxNewEdgesStrategy() *MaxNewEdgesStrategy {
	return &MaxNewEdgesStrategy{}
}
