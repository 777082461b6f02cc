package store

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/ezBadminton/gobattle/core"
)

// MemoryStore keeps the battle in memory. Nothing survives
// the process. Safe for concurrent use.
type MemoryStore struct {
	items     map[core.Item]struct{}
	decisions map[core.Decision]struct{}
	ignored   map[core.Item]struct{}
	closed    bool
	mu        sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items:     make(map[core.Item]struct{}),
		decisions: make(map[core.Decision]struct{}),
		ignored:   make(map[core.Item]struct{}),
	}
}

func (s *MemoryStore) Load(ctx context.Context) (core.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return core.Snapshot{}, ErrClosed
	}

	return normalize(core.Snapshot{
		Items:     slices.Collect(maps.Keys(s.items)),
		Decisions: slices.Collect(maps.Keys(s.decisions)),
		Ignored:   slices.Collect(maps.Keys(s.ignored)),
	}), nil
}

func (s *MemoryStore) AddItems(ctx context.Context, items ...core.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	for _, item := range items {
		s.items[item] = struct{}{}
	}
	return nil
}

func (s *MemoryStore) RemoveItem(ctx context.Context, item core.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	delete(s.items, item)
	delete(s.ignored, item)
	maps.DeleteFunc(s.decisions, func(d core.Decision, _ struct{}) bool {
		return d.Contains(item)
	})
	return nil
}

func (s *MemoryStore) AddDecisions(ctx context.Context, decisions ...core.Decision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	for _, d := range decisions {
		s.decisions[d] = struct{}{}
	}
	return nil
}

func (s *MemoryStore) RemoveDecisions(ctx context.Context, decisions ...core.Decision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	for _, d := range decisions {
		delete(s.decisions, d)
	}
	return nil
}

func (s *MemoryStore) SetIgnored(ctx context.Context, item core.Item, ignored bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	if ignored {
		s.items[item] = struct{}{}
		s.ignored[item] = struct{}{}
	} else {
		delete(s.ignored, item)
	}
	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
