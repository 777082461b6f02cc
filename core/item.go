package core

import "strings"

// An Item is one unit that takes part in a battle,
// e.g. the path of an image or an audio track.
//
// Items are opaque to the engine. They only need
// to be stable and unique among the items of a battle.
type Item string

// A Decision is the recorded outcome of one comparison.
// It is the directed edge Winner -> Loser in the
// TournamentGraph.
type Decision struct {
	Winner Item `json:"winner" yaml:"winner"`
	Loser  Item `json:"loser" yaml:"loser"`
}

// Returns the decision with winner and loser swapped
func (d Decision) Invert() Decision {
	return Decision{Winner: d.Loser, Loser: d.Winner}
}

// Returns true when the item is either winner or loser
func (d Decision) Contains(item Item) bool {
	return d.Winner == item || d.Loser == item
}

func (d Decision) String() string {
	var sb strings.Builder
	sb.WriteString(string(d.Winner))
	sb.WriteString(" > ")
	sb.WriteString(string(d.Loser))
	return sb.String()
}

// A Pair is two items that are presented to the user
// for comparison.
//
// Pairs handed out by the engine are canonical: A < B.
type Pair struct {
	A Item `json:"a" yaml:"a"`
	B Item `json:"b" yaml:"b"`
}

// Creates the canonical pair of the two items
func NewPair(a, b Item) Pair {
	if b < a {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

// Returns the opponent of the given item in the pair
func (p Pair) Other(item Item) Item {
	if item == p.A {
		return p.B
	}
	if item == p.B {
		return p.A
	}

	panic("Item is not in the Pair")
}

func (p Pair) Contains(item Item) bool {
	return p.A == item || p.B == item
}

// Returns the decision where the given item won
func (p Pair) Won(winner Item) Decision {
	return Decision{Winner: winner, Loser: p.Other(winner)}
}

func (p Pair) String() string {
	var sb strings.Builder
	sb.WriteString(string(p.A))
	sb.WriteString(" vs. ")
	sb.WriteString(string(p.B))
	return sb.String()
}

func compareDecisions(a, b Decision) int {
	if c := strings.Compare(string(a.Winner), string(b.Winner)); c != 0 {
		return c
	}
	return strings.Compare(string(a.Loser), string(b.Loser))
}
