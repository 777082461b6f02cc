package core

// Prefers the pair whose items took part in the
// fewest decisions so far
type MinimumDegreeStrategy struct{}

func (s *MinimumDegreeStrategy) Name() string {
	return "minimum-degree"
}

func (s *MinimumDegreeStrategy) SelectNext(g *TournamentGraph) (Pair, bool) {
	return minimizeScore(g.CandidatePairs(), func(p Pair) int {
		return g.Degree(p.A) + g.Degree(p.B)
	})
}

func NewMinimumDegreeStrategy() *MinimumDegreeStrategy {
	return &MinimumDegreeStrategy{}
}
