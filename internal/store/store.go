// Package store persists the state of a battle.
//
// A Store holds three sets: the items, the decisions between
// them and the items that are ignored. The battle itself keeps
// the transitive closure consistent, a Store only records what
// it is told.
package store

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/rs/zerolog"

	"github.com/ezBadminton/gobattle/core"
	"github.com/ezBadminton/gobattle/internal/config"
)

var (
	ErrClosed         = errors.New("store is closed")
	ErrUnknownBackend = errors.New("unknown store backend")
)

type Store interface {
	// Returns everything that was recorded
	Load(ctx context.Context) (core.Snapshot, error)

	AddItems(ctx context.Context, items ...core.Item) error

	// Deletes the item together with its ignore mark
	// and every decision it is part of
	RemoveItem(ctx context.Context, item core.Item) error

	AddDecisions(ctx context.Context, decisions ...core.Decision) error
	RemoveDecisions(ctx context.Context, decisions ...core.Decision) error

	// Marks or unmarks the item as ignored. Marking an
	// item also records it as an item.
	SetIgnored(ctx context.Context, item core.Item, ignored bool) error

	Close() error
}

// Opens the store that the configuration selects. A relative
// badger path is resolved against root.
func Open(cfg config.StoreConfig, root string, logger zerolog.Logger) (Store, error) {
	switch cfg.Backend {
	case "memory":
		return NewMemoryStore(), nil
	case "badger":
		path := cfg.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		st, err := OpenBadgerStore(path, WithPrefix(cfg.Prefix), WithLogger(logger))
		if err != nil {
			return nil, err
		}
		return st, nil
	case "redis":
		st, err := OpenRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, WithPrefix(cfg.Prefix), WithLogger(logger))
		if err != nil {
			return nil, err
		}
		return st, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
}

type options struct {
	prefix string
	log    zerolog.Logger
}

type Option func(o *options)

// Sets the prefix of all keys so several battles
// can share one database
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.log = logger
	}
}

func newOptions(opts []Option) options {
	o := options{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Sorts the snapshot and replaces nil slices with empty ones
func normalize(snapshot core.Snapshot) core.Snapshot {
	if snapshot.Items == nil {
		snapshot.Items = []core.Item{}
	}
	if snapshot.Decisions == nil {
		snapshot.Decisions = []core.Decision{}
	}
	if snapshot.Ignored == nil {
		snapshot.Ignored = []core.Item{}
	}

	slices.Sort(snapshot.Items)
	slices.Sort(snapshot.Ignored)
	slices.SortFunc(snapshot.Decisions, func(a, b core.Decision) int {
		if c := cmp.Compare(a.Winner, b.Winner); c != 0 {
			return c
		}
		return cmp.Compare(a.Loser, b.Loser)
	})

	return snapshot
}
