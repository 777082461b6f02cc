package core

// Prefers pairs of items that are close in time,
// e.g. photos from the same day.
type DateDistanceStrategy struct {
	times TimeSource
}

func (s *DateDistanceStrategy) Name() string {
	return "date-distance"
}

func (s *DateDistanceStrategy) SelectNext(g *TournamentGraph) (Pair, bool) {
	items := g.Items()
	seconds := make(map[Item]int64, len(items))
	for _, item := range items {
		seconds[item] = itemTime(s.times, item).Unix()
	}

	return minimizeScore(g.CandidatePairs(), func(p Pair) int64 {
		distance := seconds[p.A] - seconds[p.B]
		if distance < 0 {
			return -distance
		}
		return distance
	})
}

func NewDateDistanceStrategy(times TimeSource) *DateDistanceStrategy {
	return &DateDistanceStrategy{times: times}
}
