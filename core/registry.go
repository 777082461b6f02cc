package core

import (
	"errors"
	"fmt"
	"math/rand"
)

var (
	ErrUnknownStrategy = errors.New("unknown strategy")
)

// A Registry holds the available strategies by name
// and the one that is currently in use.
type Registry struct {
	strategies map[string]Strategy
	names      []string
	active     Strategy
}

// Creates a Registry with the given strategies.
// The first strategy becomes the active one.
func NewRegistry(strategies ...Strategy) *Registry {
	registry := &Registry{
		strategies: make(map[string]Strategy, len(strategies)),
		names:      make([]string, 0, len(strategies)),
	}
	for _, s := range strategies {
		registry.Register(s)
	}
	return registry
}

// Creates a Registry with all built-in strategies.
// The randomized strategies share the rng and the time
// based ones read from times which can be nil.
//
// The winner oriented strategy is active.
func DefaultRegistry(rng *rand.Rand, times TimeSource) *Registry {
	registry := NewRegistry(
		NewRandomStrategy(rng),
		NewMinimumDegreeStrategy(),
		NewMaxNewEdgesStrategy(),
		NewRankingTopDownStrategy(),
		NewBiSectionStrategy(),
		NewChronologicKOStrategy(times),
		NewDateDistanceStrategy(times),
		NewSameWinLoseRatioStrategy(rng),
		NewWinnerOrientedStrategy(rng),
	)
	registry.Use("winner-oriented")
	return registry
}

// Adds the strategy. A strategy with the same
// name is replaced.
func (r *Registry) Register(s Strategy) {
	name := s.Name()
	if _, exists := r.strategies[name]; !exists {
		r.names = append(r.names, name)
	}
	if r.active == nil || r.active.Name() == name {
		r.active = s
	}
	r.strategies[name] = s
}

func (r *Registry) Get(name string) (Strategy, error) {
	s, ok := r.strategies[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
	return s, nil
}

// Makes the named strategy the active one
func (r *Registry) Use(name string) error {
	s, err := r.Get(name)
	if err != nil {
		return err
	}
	r.active = s
	return nil
}

// Returns the active strategy or nil when the
// registry is empty
func (r *Registry) Active() Strategy {
	return r.active
}

// Returns the names of all strategies in the
// order they were registered
func (r *Registry) Names() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}

// Returns the names of the built-in strategies
func StrategyNames() []string {
	return DefaultRegistry(nil, nil).Names()
}
