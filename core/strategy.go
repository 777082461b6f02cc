package core

import (
	"cmp"
	"time"
)

// A Strategy decides which undecided pair of items
// should be compared next.
type Strategy interface {
	// The name that the strategy is registered under
	Name() string

	// Returns the next pair to compare.
	//
	// The pair never has a decision yet. Returns false
	// only when the graph has no undecided pair left.
	SelectNext(g *TournamentGraph) (Pair, bool)
}

// A TimeSource provides a point in time for an item,
// e.g. when a photo was taken.
type TimeSource interface {
	// Returns false when the time of the item is unknown
	Time(item Item) (time.Time, bool)
}

// Adapts a plain function to the TimeSource interface
type TimeFunc func(item Item) (time.Time, bool)

func (f TimeFunc) Time(item Item) (time.Time, bool) {
	return f(item)
}

// Returns the time of the item or the zero time
// when it is unknown
func itemTime(times TimeSource, item Item) time.Time {
	if times == nil {
		return time.Time{}
	}
	t, ok := times.Time(item)
	if !ok {
		return time.Time{}
	}
	return t
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Returns the first pair that minimizes the score
func minimizeScore[N cmp.Ordered](pairs []Pair, score func(p Pair) N) (Pair, bool) {
	if len(pairs) == 0 {
		return Pair{}, false
	}

	best := pairs[0]
	bestScore := score(best)
	for _, p := range pairs[1:] {
		s := score(p)
		if s < bestScore {
			best, bestScore = p, s
		}
	}

	return best, true
}
