// This file contains the wrapper around the graph module
// that stores the decisions of a battle.
package core

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/dominikbraun/graph"
)

var (
	ErrUnknownItem   = errors.New("unknown item")
	ErrSelfDecision  = errors.New("an item cannot win against itself")
	ErrContradiction = errors.New("decision contradicts an existing decision")
)

type adjacency = map[Item]map[Item]graph.Edge[Item]

func itemHash(item Item) Item {
	return item
}

// A TournamentGraph has the items of a battle as its nodes.
// A directed edge from A to B means A beats B.
//
// The graph is kept transitively closed: whenever A beats B
// and B beats C there is also an edge from A to C. Since
// no edge exists in both directions, the graph is acyclic.
//
// Edges can only be created through AddDecision which takes
// care of the closure.
type TournamentGraph struct {
	graph graph.Graph[Item, Item]

	// The adjacency and predecessor maps are built from the graph
	// on first use and kept in sync while decisions are added.
	// Removing edges resets them.
	successors   adjacency
	predecessors adjacency

	edgeCount int
	finished  bool
}

// Creates a TournamentGraph with the given items and no decisions
func NewTournamentGraph(items ...Item) *TournamentGraph {
	g := &TournamentGraph{
		graph: graph.New(itemHash, graph.Directed()),
	}
	for _, item := range items {
		g.AddItem(item)
	}
	g.updateFinished()
	return g
}

func (g *TournamentGraph) adjacencyMaps() (adjacency, adjacency) {
	if g.successors == nil {
		g.successors, _ = g.graph.AdjacencyMap()
		g.predecessors, _ = g.graph.PredecessorMap()
	}
	return g.successors, g.predecessors
}

func (g *TournamentGraph) invalidate() {
	g.successors = nil
	g.predecessors = nil
}

func (g *TournamentGraph) updateFinished() {
	g.finished = g.edgeCount == g.MaxEdgeCount()
}

// Adds the item to the graph. Does nothing when
// the item is already present.
func (g *TournamentGraph) AddItem(item Item) {
	err := g.graph.AddVertex(item)
	if err != nil {
		return
	}

	if g.successors != nil {
		g.successors[item] = make(map[Item]graph.Edge[Item])
		g.predecessors[item] = make(map[Item]graph.Edge[Item])
	}

	g.updateFinished()
}

func (g *TournamentGraph) HasItem(item Item) bool {
	_, err := g.graph.Vertex(item)
	return err == nil
}

// Returns all items sorted by their identifier
func (g *TournamentGraph) Items() []Item {
	successors, _ := g.adjacencyMaps()
	return slices.Sorted(maps.Keys(successors))
}

// Returns the number of items
func (g *TournamentGraph) Len() int {
	successors, _ := g.adjacencyMaps()
	return len(successors)
}

// Records that winner beats loser and adds all decisions
// that follow from it by transitivity.
//
// The returned slice contains all edges that were created,
// the direct one first. It is empty when the decision was
// already known.
func (g *TournamentGraph) AddDecision(winner, loser Item) ([]Decision, error) {
	if winner == loser {
		return nil, fmt.Errorf("%w: %s", ErrSelfDecision, winner)
	}
	if !g.HasItem(winner) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownItem, winner)
	}
	if !g.HasItem(loser) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownItem, loser)
	}
	if g.Beats(winner, loser) {
		return []Decision{}, nil
	}
	if g.Beats(loser, winner) {
		return nil, fmt.Errorf("%w: %s already beats %s", ErrContradiction, loser, winner)
	}

	direct := Decision{Winner: winner, Loser: loser}
	g.insert(direct)

	added := []Decision{direct}
	queue := []Decision{direct}

	for len(queue) > 0 {
		d := queue[0]
		queue = queue[1:]

		successors, predecessors := g.adjacencyMaps()

		// The winner also beats everyone the loser beats
		for _, beaten := range slices.Sorted(maps.Keys(successors[d.Loser])) {
			if g.Decided(d.Winner, beaten) {
				continue
			}
			inferred := Decision{Winner: d.Winner, Loser: beaten}
			g.insert(inferred)
			added = append(added, inferred)
			queue = append(queue, inferred)
		}

		// Everyone who beats the winner also beats the loser
		for _, beating := range slices.Sorted(maps.Keys(predecessors[d.Winner])) {
			if g.Decided(beating, d.Loser) {
				continue
			}
			inferred := Decision{Winner: beating, Loser: d.Loser}
			g.insert(inferred)
			added = append(added, inferred)
			queue = append(queue, inferred)
		}
	}

	g.updateFinished()

	return added, nil
}

func (g *TournamentGraph) insert(d Decision) {
	successors, predecessors := g.adjacencyMaps()

	err := g.graph.AddEdge(d.Winner, d.Loser)
	if err != nil {
		panic(fmt.Sprintf("could not insert decision %s: %v", d, err))
	}

	edge := graph.Edge[Item]{Source: d.Winner, Target: d.Loser}
	successors[d.Winner][d.Loser] = edge
	predecessors[d.Loser][d.Winner] = edge
	g.edgeCount += 1
}

// Removes the item and all decisions it is part of.
// The removed decisions are returned.
func (g *TournamentGraph) RemoveItem(item Item) ([]Decision, error) {
	removed, err := g.ClearItem(item)
	if err != nil {
		return nil, err
	}

	err = g.graph.RemoveVertex(item)
	if err != nil {
		return nil, fmt.Errorf("removing %s: %w", item, err)
	}

	g.invalidate()
	g.updateFinished()

	return removed, nil
}

// Removes all decisions the item is part of while
// keeping the item in the graph.
// The removed decisions are returned.
//
// The remaining graph stays transitively closed because
// no remaining edge depended on the removed ones.
func (g *TournamentGraph) ClearItem(item Item) ([]Decision, error) {
	if !g.HasItem(item) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownItem, item)
	}

	incident := g.IncidentDecisions(item)
	for _, d := range incident {
		err := g.graph.RemoveEdge(d.Winner, d.Loser)
		if err != nil {
			return nil, fmt.Errorf("removing decision %s: %w", d, err)
		}
	}

	g.edgeCount -= len(incident)
	g.invalidate()
	g.updateFinished()

	return incident, nil
}

// Returns the decisions that the item is part of.
// Wins come first, then losses.
func (g *TournamentGraph) IncidentDecisions(item Item) []Decision {
	incident := make([]Decision, 0, g.Degree(item))
	for _, loser := range g.Losers(item) {
		incident = append(incident, Decision{Winner: item, Loser: loser})
	}
	for _, winner := range g.Winners(item) {
		incident = append(incident, Decision{Winner: winner, Loser: item})
	}
	return incident
}

// Returns true when a beats b
func (g *TournamentGraph) Beats(a, b Item) bool {
	successors, _ := g.adjacencyMaps()
	_, ok := successors[a][b]
	return ok
}

// Returns true when there is a decision between a and b
// in either direction
func (g *TournamentGraph) Decided(a, b Item) bool {
	return g.Beats(a, b) || g.Beats(b, a)
}

// Returns the items that the given item beats
func (g *TournamentGraph) Losers(item Item) []Item {
	successors, _ := g.adjacencyMaps()
	return slices.Sorted(maps.Keys(successors[item]))
}

// Returns the items that beat the given item
func (g *TournamentGraph) Winners(item Item) []Item {
	_, predecessors := g.adjacencyMaps()
	return slices.Sorted(maps.Keys(predecessors[item]))
}

// The number of wins of the item
func (g *TournamentGraph) OutDegree(item Item) int {
	successors, _ := g.adjacencyMaps()
	return len(successors[item])
}

// The number of losses of the item
func (g *TournamentGraph) InDegree(item Item) int {
	_, predecessors := g.adjacencyMaps()
	return len(predecessors[item])
}

// The number of decisions the item is part of
func (g *TournamentGraph) Degree(item Item) int {
	return g.OutDegree(item) + g.InDegree(item)
}

// Wins minus losses
func (g *TournamentGraph) WinLoseDifference(item Item) int {
	return g.OutDegree(item) - g.InDegree(item)
}

// Returns all decisions sorted by winner and loser
func (g *TournamentGraph) Decisions() []Decision {
	successors, _ := g.adjacencyMaps()
	decisions := make([]Decision, 0, g.edgeCount)
	for winner, losers := range successors {
		for loser := range losers {
			decisions = append(decisions, Decision{Winner: winner, Loser: loser})
		}
	}
	slices.SortFunc(decisions, compareDecisions)
	return decisions
}

func (g *TournamentGraph) EdgeCount() int {
	return g.edgeCount
}

// The number of decisions in a finished graph
func (g *TournamentGraph) MaxEdgeCount() int {
	n := g.Len()
	return n * (n - 1) / 2
}

// Returns true when every pair of items is decided
func (g *TournamentGraph) IsFinished() bool {
	return g.finished
}

// Returns the share of decided pairs in [0, 1].
// A graph with less than two items counts as complete.
func (g *TournamentGraph) Progress() float64 {
	maxEdges := g.MaxEdgeCount()
	if maxEdges == 0 {
		return 1
	}
	return float64(g.edgeCount) / float64(maxEdges)
}
