package core

import (
	"errors"
	"math/rand"
	"slices"
	"testing"

	"github.com/goccy/go-json"
)

type recordingObserver struct {
	decided    []Decision
	inferred   int
	removed    []Item
	progressed []float64
}

func (o *recordingObserver) Decided(d Decision, inferred int) {
	o.decided = append(o.decided, d)
	o.inferred += inferred
}

func (o *recordingObserver) Removed(item Item) {
	o.removed = append(o.removed, item)
}

func (o *recordingObserver) Progressed(progress float64) {
	o.progressed = append(o.progressed, progress)
}

func testBattle(snapshot Snapshot, opts ...BattleOption) *Battle {
	registry := DefaultRegistry(rand.New(rand.NewSource(1)), nil)
	registry.Use("minimum-degree")
	opts = append([]BattleOption{WithRegistry(registry)}, opts...)
	return NewBattle(snapshot, opts...)
}

func TestLoadSnapshot(t *testing.T) {
	b := testBattle(Snapshot{
		Items: []Item{"A", "B", "C"},
		Decisions: []Decision{
			{Winner: "A", Loser: "B"},
			{Winner: "B", Loser: "C"},
		},
		Ignored: []Item{"X"},
	})

	if b.Graph().Len() != 3 || b.Graph().EdgeCount() != 3 {
		t.Fatal("The snapshot was not loaded with its closure")
	}
	if !b.IsFinished() {
		t.Fatal("The loaded battle is not finished")
	}
	if !b.IsIgnored("X") || b.Graph().HasItem("X") {
		t.Fatal("The ignored item is part of the graph")
	}

	report := b.LoadReport()
	if len(report.Dropped) != 0 || len(report.Unignored) != 0 {
		t.Fatal("A consistent snapshot was corrected")
	}
}

func TestLoadInconsistentSnapshot(t *testing.T) {
	b := testBattle(Snapshot{
		Items: []Item{"A", "B", "C"},
		Decisions: []Decision{
			{Winner: "A", Loser: "B"},
			{Winner: "B", Loser: "C"},
			{Winner: "C", Loser: "A"},
			{Winner: "D", Loser: "A"},
			{Winner: "E", Loser: "E"},
		},
		Ignored: []Item{"D", "F"},
	})

	report := b.LoadReport()
	if len(report.Dropped) != 2 {
		t.Fatal("The contradicting and the invalid decision were not dropped")
	}
	if report.Dropped[0] != (Decision{Winner: "C", Loser: "A"}) {
		t.Fatal("The wrong decision was dropped")
	}
	if !slices.Equal(report.Unignored, []Item{"D"}) {
		t.Fatal("The ignored item with decisions was not unignored")
	}

	if b.IsIgnored("D") || !b.Graph().Beats("D", "C") {
		t.Fatal("The decisions of the unignored item were not kept")
	}
	if !b.IsIgnored("F") {
		t.Fatal("The ignored item without decisions was unignored")
	}
	if slices.Contains(b.Ignored(), "D") {
		t.Fatal("The unignored item is still listed as ignored")
	}
}

func TestDecide(t *testing.T) {
	observer := &recordingObserver{}
	b := testBattle(Snapshot{Items: []Item{"A", "B", "C"}}, WithObserver(observer))

	b.Decide("A", "B")
	added, err := b.Decide("B", "C")
	if err != nil {
		t.Fatal(err)
	}
	if len(added) != 2 || added[0] != (Decision{Winner: "B", Loser: "C"}) {
		t.Fatal("The direct decision was not returned first")
	}

	if len(observer.decided) != 2 || observer.inferred != 1 {
		t.Fatal("The observer was not notified about the decisions")
	}
	if observer.progressed[len(observer.progressed)-1] != 1 {
		t.Fatal("The observer did not receive the final progress")
	}

	added, err = b.Decide("A", "C")
	if err != nil || len(added) != 0 {
		t.Fatal("Repeating an inferred decision did not do nothing")
	}
	if len(observer.decided) != 2 {
		t.Fatal("The observer was notified about a decision that did not change anything")
	}

	if _, err := b.Decide("C", "A"); !errors.Is(err, ErrContradiction) {
		t.Fatal("A contradicting decision was accepted")
	}
	if _, err := b.Decide("A", "Z"); !errors.Is(err, ErrUnknownItem) {
		t.Fatal("A decision with an unknown item was accepted")
	}
}

func TestNextToCompare(t *testing.T) {
	b := testBattle(Snapshot{Items: []Item{"A", "B", "C"}})

	for range 3 {
		pair, err := b.NextToCompare()
		if err != nil {
			t.Fatal(err)
		}
		if b.Graph().Decided(pair.A, pair.B) {
			t.Fatal("A decided pair was returned")
		}
		b.Decide(pair.A, pair.B)
		if b.IsFinished() {
			break
		}
	}

	if _, err := b.NextToCompare(); !errors.Is(err, ErrBattleFinished) {
		t.Fatal("A finished battle did not return ErrBattleFinished")
	}
}

func TestNextToCompareExistenceCheck(t *testing.T) {
	existing := map[Item]bool{"A": true, "C": true}
	observer := &recordingObserver{}
	b := testBattle(
		Snapshot{
			Items:     []Item{"A", "B", "C", "D"},
			Decisions: []Decision{{Winner: "B", Loser: "C"}},
		},
		WithExistenceCheck(func(item Item) bool { return existing[item] }),
		WithObserver(observer),
	)

	pair, err := b.NextToCompare()
	if err != nil {
		t.Fatal(err)
	}
	if pair != NewPair("A", "C") {
		t.Fatalf("The pair of the remaining items was not returned, got %v", pair)
	}

	vanished := b.TakeVanished()
	slices.Sort(vanished)
	if !slices.Equal(vanished, []Item{"B", "D"}) {
		t.Fatalf("The vanished items were not reported, got %v", vanished)
	}
	if len(b.TakeVanished()) != 0 {
		t.Fatal("The vanished items were reported twice")
	}
	if b.Graph().HasItem("B") || b.Graph().EdgeCount() != 0 {
		t.Fatal("The vanished item and its decisions are still in the graph")
	}
	if len(observer.removed) != 2 {
		t.Fatal("The observer was not notified about the removed items")
	}

	delete(existing, "C")
	if _, err := b.NextToCompare(); !errors.Is(err, ErrBattleFinished) {
		t.Fatal("The battle did not finish when only one item was left")
	}
}

func TestIgnore(t *testing.T) {
	b := testBattle(Snapshot{Items: []Item{"A", "B", "C"}})
	b.Decide("A", "B")
	b.Decide("B", "C")

	if len(b.ListIgnoreDecisions("B")) != 2 {
		t.Fatal("The decisions of the item were not listed")
	}
	if len(b.ListIgnoreDecisions("Z")) != 0 {
		t.Fatal("An unknown item has decisions")
	}

	removed, err := b.Ignore("B")
	if err != nil {
		t.Fatal(err)
	}
	if len(removed) != 2 {
		t.Fatal("The discarded decisions were not returned")
	}
	if !b.IsIgnored("B") || b.Graph().HasItem("B") {
		t.Fatal("The item was not ignored")
	}
	if !b.Graph().Beats("A", "C") {
		t.Fatal("The decision between the other items was discarded")
	}

	if b.AddItem("B") {
		t.Fatal("An ignored item was added back")
	}

	if _, err := b.Ignore("B"); !errors.Is(err, ErrUnknownItem) {
		t.Fatal("Ignoring an item twice did not fail")
	}

	if err := b.Unignore("B"); err != nil {
		t.Fatal(err)
	}
	if b.IsIgnored("B") || b.Graph().Degree("B") != 0 {
		t.Fatal("The unignored item did not start without decisions")
	}
	if err := b.Unignore("B"); !errors.Is(err, ErrNotIgnored) {
		t.Fatal("Unignoring an item that is not ignored did not fail")
	}
}

func TestReset(t *testing.T) {
	b := testBattle(Snapshot{Items: []Item{"A", "B", "C"}})
	b.Decide("A", "B")
	b.Decide("B", "C")

	removed, err := b.Reset("A")
	if err != nil {
		t.Fatal(err)
	}
	if len(removed) != 2 {
		t.Fatal("The decisions of the item were not returned")
	}
	if !b.Graph().HasItem("A") || b.Graph().Degree("A") != 0 {
		t.Fatal("The item did not stay without decisions")
	}
	if b.Graph().EdgeCount() != 1 {
		t.Fatal("Decisions of other items were discarded")
	}

	if _, err := b.Reset("Z"); !errors.Is(err, ErrUnknownItem) {
		t.Fatal("Resetting an unknown item did not fail")
	}
}

func TestRemoveItem(t *testing.T) {
	b := testBattle(Snapshot{Items: []Item{"A", "B"}, Ignored: []Item{"C"}})
	b.Decide("A", "B")

	removed, err := b.RemoveItem("A")
	if err != nil || len(removed) != 1 {
		t.Fatal("The decisions of the removed item were not returned")
	}

	removed, err = b.RemoveItem("C")
	if err != nil || len(removed) != 0 || b.IsIgnored("C") {
		t.Fatal("The ignored item was not forgotten")
	}

	if _, err := b.RemoveItem("A"); !errors.Is(err, ErrUnknownItem) {
		t.Fatal("Removing an item twice did not fail")
	}
}

func TestUseStrategy(t *testing.T) {
	b := testBattle(Snapshot{Items: []Item{"A", "B"}})

	if b.ActiveStrategy() != "minimum-degree" {
		t.Fatal("The strategy of the registry is not active")
	}
	if err := b.UseStrategy("random"); err != nil {
		t.Fatal(err)
	}
	if b.ActiveStrategy() != "random" {
		t.Fatal("The strategy was not switched")
	}
	if err := b.UseStrategy("nope"); !errors.Is(err, ErrUnknownStrategy) {
		t.Fatal("An unknown strategy was accepted")
	}
	if len(b.Strategies()) != 9 {
		t.Fatal("Not all strategies are listed")
	}

	empty := NewBattle(Snapshot{Items: []Item{"A", "B"}}, WithRegistry(NewRegistry()))
	if _, err := empty.NextToCompare(); !errors.Is(err, ErrUnknownStrategy) {
		t.Fatal("A battle without strategies returned a pair")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	b := testBattle(Snapshot{Items: []Item{"A", "B", "C", "D"}})
	b.Decide("A", "B")
	b.Decide("B", "C")
	b.Ignore("D")

	snapshot := b.Snapshot()
	if !slices.Equal(snapshot.Ignored, []Item{"D"}) || len(snapshot.Decisions) != 3 {
		t.Fatal("The snapshot does not contain the state")
	}

	restored := testBattle(snapshot)
	if !slices.Equal(restored.Graph().Decisions(), b.Graph().Decisions()) {
		t.Fatal("The restored battle has different decisions")
	}
	if !restored.IsIgnored("D") {
		t.Fatal("The restored battle lost the ignored item")
	}
}

func TestMarshalBattle(t *testing.T) {
	b := testBattle(Snapshot{Items: []Item{"A", "B"}, Ignored: []Item{"C"}})
	b.Decide("B", "A")

	data, err := json.Marshal(b)
	if err != nil {
		t.Fatal(err)
	}

	var decoded struct {
		Strategy  string        `json:"strategy"`
		Ignored   []Item        `json:"ignored"`
		Decisions []Decision    `json:"decisions"`
		Results   []ResultEntry `json:"results"`
		Finished  bool          `json:"finished"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}

	if decoded.Strategy != "minimum-degree" || !decoded.Finished {
		t.Fatal("The battle state was not marshalled")
	}
	if len(decoded.Decisions) != 1 || decoded.Decisions[0].Winner != "B" {
		t.Fatal("The decisions were not marshalled")
	}
	if len(decoded.Results) != 3 || decoded.Results[0].Item != "B" || !decoded.Results[2].Ignored {
		t.Fatal("The results were not marshalled")
	}
}
