// Package session binds a battle to a store. Every change of
// the battle is written to the store right away so a session
// can be resumed at any time.
package session

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ezBadminton/gobattle/core"
	"github.com/ezBadminton/gobattle/internal/store"
)

// A Scanner lists the items that currently exist
type Scanner interface {
	Scan(ctx context.Context) ([]core.Item, error)
}

// The changes that Sync applied
type SyncReport struct {
	Added   []core.Item
	Removed []core.Item
}

// A Session is a battle whose state lives in a store.
// It is safe for concurrent use.
type Session struct {
	battle     *core.Battle
	battleOpts []core.BattleOption
	store      store.Store
	log        zerolog.Logger

	mu sync.Mutex
}

type options struct {
	battleOpts []core.BattleOption
	log        zerolog.Logger
}

type Option func(o *options)

// Passes options to the battle, e.g. a registry
// or an existence check
func WithBattleOptions(opts ...core.BattleOption) Option {
	return func(o *options) {
		o.battleOpts = append(o.battleOpts, opts...)
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.log = logger
	}
}

// Loads the battle from the store. Corrections that were
// necessary to load it are written back.
func Open(ctx context.Context, st store.Store, opts ...Option) (*Session, error) {
	o := options{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	snapshot, err := st.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	battleOpts := append([]core.BattleOption{core.WithLogger(o.log)}, o.battleOpts...)
	s := &Session{
		battle:     core.NewBattle(snapshot, battleOpts...),
		battleOpts: battleOpts,
		store:      st,
		log:        o.log,
	}

	if err := s.writeCorrections(ctx, snapshot); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Session) writeCorrections(ctx context.Context, loaded core.Snapshot) error {
	report := s.battle.LoadReport()

	if err := s.store.RemoveDecisions(ctx, report.Dropped...); err != nil {
		return fmt.Errorf("drop invalid decisions: %w", err)
	}
	for _, item := range report.Unignored {
		if err := s.store.SetIgnored(ctx, item, false); err != nil {
			return fmt.Errorf("unignore %s: %w", item, err)
		}
	}

	current := s.battle.Snapshot()

	newItems := difference(current.Items, loaded.Items)
	if err := s.store.AddItems(ctx, newItems...); err != nil {
		return fmt.Errorf("add items: %w", err)
	}

	inferred := difference(current.Decisions, loaded.Decisions)
	if err := s.store.AddDecisions(ctx, inferred...); err != nil {
		return fmt.Errorf("add inferred decisions: %w", err)
	}

	if len(report.Dropped)+len(report.Unignored)+len(newItems)+len(inferred) > 0 {
		s.log.Info().
			Int("dropped", len(report.Dropped)).
			Int("unignored", len(report.Unignored)).
			Int("items", len(newItems)).
			Int("inferred", len(inferred)).
			Msg("stored battle was corrected")
	}

	return nil
}

// Replaces the battle with what the store holds after a write
// failed, so the battle never runs ahead of the store. Returns
// cause. The strategy in use stays active.
func (s *Session) rollback(ctx context.Context, cause error) error {
	active := s.battle.ActiveStrategy()

	snapshot, err := s.store.Load(context.WithoutCancel(ctx))
	if err != nil {
		s.log.Error().Err(err).AnErr("cause", cause).Msg("could not reload the battle after a failed write")
		return cause
	}

	s.battle = core.NewBattle(snapshot, s.battleOpts...)
	if active != "" {
		_ = s.battle.UseStrategy(active)
	}

	s.log.Warn().Err(cause).
		Int("decisions", s.battle.Graph().EdgeCount()).
		Msg("write failed, battle reloaded from the store")

	return cause
}

// Returns the elements of a that are not in b
func difference[T comparable](a, b []T) []T {
	known := make(map[T]struct{}, len(b))
	for _, v := range b {
		known[v] = struct{}{}
	}
	diff := make([]T, 0)
	for _, v := range a {
		if _, ok := known[v]; !ok {
			diff = append(diff, v)
		}
	}
	return diff
}

// Records the decision and stores it with everything it
// implies. When the store fails the battle is reloaded
// from the store and the error is returned.
func (s *Session) Decide(ctx context.Context, winner, loser core.Item) ([]core.Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	added, err := s.battle.Decide(winner, loser)
	if err != nil {
		return nil, err
	}
	if err := s.store.AddDecisions(ctx, added...); err != nil {
		return nil, s.rollback(ctx, fmt.Errorf("store decisions: %w", err))
	}
	return added, nil
}

func (s *Session) Ignore(ctx context.Context, item core.Item) ([]core.Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := s.battle.Ignore(item)
	if err != nil {
		return nil, err
	}
	if err := s.store.RemoveDecisions(ctx, removed...); err != nil {
		return nil, s.rollback(ctx, fmt.Errorf("store ignored decisions: %w", err))
	}
	if err := s.store.SetIgnored(ctx, item, true); err != nil {
		return nil, s.rollback(ctx, fmt.Errorf("store ignore mark: %w", err))
	}
	return removed, nil
}

func (s *Session) Unignore(ctx context.Context, item core.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.battle.Unignore(item); err != nil {
		return err
	}
	if err := s.store.SetIgnored(ctx, item, false); err != nil {
		return s.rollback(ctx, fmt.Errorf("store ignore mark: %w", err))
	}
	return nil
}

func (s *Session) Reset(ctx context.Context, item core.Item) ([]core.Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := s.battle.Reset(item)
	if err != nil {
		return nil, err
	}
	if err := s.store.RemoveDecisions(ctx, removed...); err != nil {
		return nil, s.rollback(ctx, fmt.Errorf("store reset: %w", err))
	}
	return removed, nil
}

// Returns the next pair to compare. Items that vanished
// while the pair was picked are removed from the store.
// Returns core.ErrBattleFinished when nothing is left.
func (s *Session) Next(ctx context.Context) (core.Pair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pair, nextErr := s.battle.NextToCompare()

	for _, item := range s.battle.TakeVanished() {
		if err := s.store.RemoveItem(ctx, item); err != nil {
			return core.Pair{}, s.rollback(ctx, fmt.Errorf("remove vanished item %s: %w", item, err))
		}
	}

	return pair, nextErr
}

// Brings the battle in line with the items the scanner finds.
// New items are added and missing items are removed together
// with their decisions.
func (s *Session) Sync(ctx context.Context, scanner Scanner) (SyncReport, error) {
	scanned, err := scanner.Scan(ctx)
	if err != nil {
		return SyncReport{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	report := SyncReport{Added: []core.Item{}, Removed: []core.Item{}}
	for _, item := range scanned {
		if s.battle.AddItem(item) {
			report.Added = append(report.Added, item)
		}
	}
	if err := s.store.AddItems(ctx, report.Added...); err != nil {
		return SyncReport{}, s.rollback(ctx, fmt.Errorf("store new items: %w", err))
	}

	known := append(s.battle.Graph().Items(), s.battle.Ignored()...)
	slices.Sort(known)
	for _, item := range difference(known, scanned) {
		if _, err := s.battle.RemoveItem(item); err != nil {
			return SyncReport{}, err
		}
		if err := s.store.RemoveItem(ctx, item); err != nil {
			return SyncReport{}, s.rollback(ctx, fmt.Errorf("remove item %s: %w", item, err))
		}
		report.Removed = append(report.Removed, item)
	}

	s.log.Info().
		Int("added", len(report.Added)).
		Int("removed", len(report.Removed)).
		Int("items", s.battle.Graph().Len()).
		Msg("library synced")

	return report, nil
}

func (s *Session) UseStrategy(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.battle.UseStrategy(name)
}

func (s *Session) Strategies() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.battle.Strategies()
}

func (s *Session) ActiveStrategy() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.battle.ActiveStrategy()
}

func (s *Session) Results() []core.ResultEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.battle.Results()
}

func (s *Session) Progress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.battle.Progress()
}

func (s *Session) IsFinished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.battle.IsFinished()
}

func (s *Session) ListIgnoreDecisions(item core.Item) []core.Decision {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.battle.ListIgnoreDecisions(item)
}

func (s *Session) Snapshot() core.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.battle.Snapshot()
}

// Returns the battle state as JSON
func (s *Session) MarshalJSON() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.battle.MarshalJSON()
}

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Close()
}
