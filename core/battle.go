package core

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/rs/zerolog"
)

var (
	ErrBattleFinished = errors.New("battle finished")
	ErrNotIgnored     = errors.New("item is not ignored")
)

// The state of a battle as it is persisted.
// A Battle is created from a Snapshot and can
// produce one at any time.
type Snapshot struct {
	Items     []Item     `json:"items" yaml:"items"`
	Decisions []Decision `json:"decisions" yaml:"decisions"`
	Ignored   []Item     `json:"ignored" yaml:"ignored"`
}

// Describes how a Snapshot was corrected while
// a Battle was created from it
type LoadReport struct {
	// Items that were ignored but had decisions.
	// They take part in the battle again.
	Unignored []Item

	// Decisions that were dropped because they
	// contradicted other decisions or were invalid
	Dropped []Decision
}

// An Observer is notified about changes of a battle
type Observer interface {
	// Called for every new decision with the number
	// of decisions that were inferred from it
	Decided(d Decision, inferred int)

	// Called when an item leaves the battle because
	// it was removed or ignored
	Removed(item Item)

	// Called with the new progress after every change
	Progressed(progress float64)
}

type nopObserver struct{}

func (nopObserver) Decided(Decision, int) {}
func (nopObserver) Removed(Item)          {}
func (nopObserver) Progressed(float64)    {}

// A Battle is the TournamentGraph of a set of items
// together with the items that the user chose to ignore
// and the strategies that pick the next comparison.
//
// A Battle is not safe for concurrent use.
type Battle struct {
	graph      *TournamentGraph
	ignored    map[Item]struct{}
	strategies *Registry

	// Reports whether the item still exists outside
	// of the battle, e.g. as a file
	exists func(item Item) bool

	observer Observer
	log      zerolog.Logger

	report   LoadReport
	vanished []Item
}

type BattleOption func(b *Battle)

func WithRegistry(registry *Registry) BattleOption {
	return func(b *Battle) {
		b.strategies = registry
	}
}

func WithExistenceCheck(exists func(item Item) bool) BattleOption {
	return func(b *Battle) {
		b.exists = exists
	}
}

func WithObserver(observer Observer) BattleOption {
	return func(b *Battle) {
		b.observer = observer
	}
}

func WithLogger(logger zerolog.Logger) BattleOption {
	return func(b *Battle) {
		b.log = logger
	}
}

// Creates a Battle from the snapshot.
//
// Decisions that contradict earlier ones are dropped.
// Ignored items that have decisions are inconsistent. The
// decisions win and the items are no longer ignored. Both
// corrections are logged and listed in the LoadReport.
func NewBattle(snapshot Snapshot, opts ...BattleOption) *Battle {
	battle := &Battle{
		graph:    NewTournamentGraph(),
		ignored:  make(map[Item]struct{}),
		observer: nopObserver{},
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(battle)
	}
	if battle.strategies == nil {
		battle.strategies = DefaultRegistry(NewRand(0), nil)
	}

	battle.load(snapshot)

	return battle
}

func (b *Battle) load(snapshot Snapshot) {
	for _, item := range snapshot.Items {
		b.graph.AddItem(item)
	}
	for _, item := range snapshot.Ignored {
		b.graph.AddItem(item)
		b.ignored[item] = struct{}{}
	}

	for _, d := range snapshot.Decisions {
		b.graph.AddItem(d.Winner)
		b.graph.AddItem(d.Loser)
		_, err := b.graph.AddDecision(d.Winner, d.Loser)
		if err != nil {
			b.log.Warn().Err(err).Stringer("decision", d).Msg("dropping invalid decision")
			b.report.Dropped = append(b.report.Dropped, d)
		}
	}

	for _, item := range b.Ignored() {
		if b.graph.Degree(item) > 0 {
			b.log.Warn().
				Str("item", string(item)).
				Int("decisions", b.graph.Degree(item)).
				Msg("ignored item has decisions, keeping it in the battle")
			delete(b.ignored, item)
			b.report.Unignored = append(b.report.Unignored, item)
			continue
		}
		_, _ = b.graph.RemoveItem(item)
	}

	b.log.Debug().
		Int("items", b.graph.Len()).
		Int("decisions", b.graph.EdgeCount()).
		Int("ignored", len(b.ignored)).
		Msg("battle loaded")
}

// Adds a newly observed item. Ignored items stay ignored.
// Returns true when the item was not known before.
func (b *Battle) AddItem(item Item) bool {
	if b.IsIgnored(item) || b.graph.HasItem(item) {
		return false
	}
	b.graph.AddItem(item)
	b.observer.Progressed(b.graph.Progress())
	return true
}

// Removes an item that no longer exists.
// The decisions that were removed with it are returned.
func (b *Battle) RemoveItem(item Item) ([]Decision, error) {
	if b.IsIgnored(item) {
		delete(b.ignored, item)
		return []Decision{}, nil
	}

	removed, err := b.graph.RemoveItem(item)
	if err != nil {
		return nil, err
	}

	b.observer.Removed(item)
	b.observer.Progressed(b.graph.Progress())

	return removed, nil
}

// Records that winner beats loser. All new decisions
// are returned, the direct one first.
func (b *Battle) Decide(winner, loser Item) ([]Decision, error) {
	added, err := b.graph.AddDecision(winner, loser)
	if err != nil {
		return nil, err
	}
	if len(added) == 0 {
		return added, nil
	}

	b.log.Debug().
		Str("winner", string(winner)).
		Str("loser", string(loser)).
		Int("inferred", len(added)-1).
		Msg("decision recorded")

	b.observer.Decided(added[0], len(added)-1)
	b.observer.Progressed(b.graph.Progress())

	return added, nil
}

// Returns the next pair to compare according to the
// active strategy.
//
// Pairs with an item that fails the existence check are
// discarded and the missing item is removed from the
// battle. Returns ErrBattleFinished when every pair
// is decided.
func (b *Battle) NextToCompare() (Pair, error) {
	strategy := b.strategies.Active()
	if strategy == nil {
		return Pair{}, fmt.Errorf("%w: no active strategy", ErrUnknownStrategy)
	}

	for {
		pair, ok := strategy.SelectNext(b.graph)
		if !ok {
			return Pair{}, ErrBattleFinished
		}

		missing := b.missingItems(pair)
		if len(missing) == 0 {
			return pair, nil
		}

		for _, item := range missing {
			b.log.Info().Str("item", string(item)).Msg("item vanished, removing it from the battle")
			_, err := b.RemoveItem(item)
			if err != nil {
				return Pair{}, err
			}
			b.vanished = append(b.vanished, item)
		}
	}
}

func (b *Battle) missingItems(pair Pair) []Item {
	if b.exists == nil {
		return nil
	}
	missing := make([]Item, 0, 2)
	if !b.exists(pair.A) {
		missing = append(missing, pair.A)
	}
	if !b.exists(pair.B) {
		missing = append(missing, pair.B)
	}
	return missing
}

// Returns the items that NextToCompare removed because they
// vanished since the last call and forgets them.
func (b *Battle) TakeVanished() []Item {
	vanished := b.vanished
	b.vanished = nil
	return vanished
}

// Switches the strategy that picks the next pair
func (b *Battle) UseStrategy(name string) error {
	return b.strategies.Use(name)
}

func (b *Battle) Strategies() []string {
	return b.strategies.Names()
}

func (b *Battle) ActiveStrategy() string {
	active := b.strategies.Active()
	if active == nil {
		return ""
	}
	return active.Name()
}

func (b *Battle) Results() []ResultEntry {
	return b.graph.Results(b.Ignored())
}

func (b *Battle) Progress() float64 {
	return b.graph.Progress()
}

func (b *Battle) IsFinished() bool {
	return b.graph.IsFinished()
}

// The graph is read-only for callers. Mutate
// the battle through its methods.
func (b *Battle) Graph() *TournamentGraph {
	return b.graph
}

func (b *Battle) LoadReport() LoadReport {
	return b.report
}

// Returns the current state for persistence
func (b *Battle) Snapshot() Snapshot {
	return Snapshot{
		Items:     b.graph.Items(),
		Decisions: b.graph.Decisions(),
		Ignored:   b.Ignored(),
	}
}

// Returns the ignored items sorted by their identifier
func (b *Battle) Ignored() []Item {
	return slices.Sorted(maps.Keys(b.ignored))
}

func (b *Battle) IsIgnored(item Item) bool {
	_, ok := b.ignored[item]
	return ok
}
