package core

import (
	"slices"
)

// Pairs items like a knock-out bracket that is seeded by
// time. Items with the fewest losses are paired first and
// older items come before newer ones.
//
// The loss level only grows between calls so items that
// lost are not revisited until the bracket has moved on.
// When no pair is left at or above the level the bracket
// starts over at level zero.
type ChronologicKOStrategy struct {
	times TimeSource
	level int
}

func (s *ChronologicKOStrategy) Name() string {
	return "chronologic-ko"
}

func (s *ChronologicKOStrategy) SelectNext(g *TournamentGraph) (Pair, bool) {
	if g.CandidateCount() == 0 {
		return Pair{}, false
	}

	items := chronologicItems(g, s.times)
	n := len(items)

	for range 2 {
		collected := make([]Item, 0, n)
		for level := s.level; level < n; level++ {
			for _, item := range items {
				if g.InDegree(item) == level && g.Degree(item) < n-1 {
					collected = append(collected, item)
				}
			}

			if len(collected) < 2 {
				continue
			}
			if pair, ok := firstUndecided(g, collected); ok {
				s.level = level
				return pair, true
			}
		}
		s.level = 0
	}

	return g.CandidatePairs()[0], true
}

// The current loss level of the bracket
func (s *ChronologicKOStrategy) Level() int {
	return s.level
}

// Returns the items sorted from oldest to newest.
// Items without a time come first.
func chronologicItems(g *TournamentGraph, times TimeSource) []Item {
	items := g.Items()
	itemTimes := make(map[Item]int64, len(items))
	for _, item := range items {
		itemTimes[item] = itemTime(times, item).Unix()
	}

	slices.SortStableFunc(items, func(a, b Item) int {
		ta, tb := itemTimes[a], itemTimes[b]
		switch {
		case ta < tb:
			return -1
		case ta > tb:
			return 1
		}
		return 0
	})

	return items
}

// Returns the first undecided pair in the order of the slice
func firstUndecided(g *TournamentGraph, items []Item) (Pair, bool) {
	for i, a := range items {
		for _, b := range items[i+1:] {
			if !g.Decided(a, b) {
				return NewPair(a, b), true
			}
		}
	}
	return Pair{}, false
}

func NewChronologicKOStrategy(times TimeSource) *ChronologicKOStrategy {
	return &ChronologicKOStrategy{times: times}
}
