package core

import (
	"cmp"
	"slices"
)

// One line of the result list of a battle
type ResultEntry struct {
	Item Item `json:"item" yaml:"item"`

	// The 1-based place in the ranking.
	// Zero for ignored items which have no place.
	Place int `json:"place,omitempty" yaml:"place,omitempty"`

	Wins   int `json:"wins" yaml:"wins"`
	Losses int `json:"losses" yaml:"losses"`

	Ignored bool `json:"ignored,omitempty" yaml:"ignored,omitempty"`
}

// Wins minus losses
func (r ResultEntry) Difference() int {
	return r.Wins - r.Losses
}

// Returns the items sorted by their win/lose difference
// in descending order. Equal differences keep the
// order of the item identifiers.
func rankedItems(g *TournamentGraph) []Item {
	items := g.Items()
	slices.SortStableFunc(items, func(a, b Item) int {
		return cmp.Compare(g.WinLoseDifference(b), g.WinLoseDifference(a))
	})
	return items
}

// Creates the result list of the graph.
//
// The items of the graph are ranked by their win/lose
// difference. The ignored items are appended without
// a place.
func (g *TournamentGraph) Results(ignored []Item) []ResultEntry {
	ranked := rankedItems(g)
	results := make([]ResultEntry, 0, len(ranked)+len(ignored))
	for i, item := range ranked {
		results = append(results, ResultEntry{
			Item:   item,
			Place:  i + 1,
			Wins:   g.OutDegree(item),
			Losses: g.InDegree(item),
		})
	}

	for _, item := range ignored {
		if g.HasItem(item) {
			continue
		}
		results = append(results, ResultEntry{Item: item, Ignored: true})
	}

	return results
}
