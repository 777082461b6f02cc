package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/ezBadminton/gobattle/core"
)

const (
	itemKeyPrefix     = "item:"
	ignoredKeyPrefix  = "ignored:"
	decisionKeyPrefix = "decision:"

	// Indexes the decisions by their loser
	beatenKeyPrefix = "beaten:"
)

// BadgerStore keeps the battle in an embedded badger
// database, usually next to the library.
type BadgerStore struct {
	db     *badger.DB
	prefix string
	log    zerolog.Logger

	closed bool
	mu     sync.RWMutex
}

// Opens or creates the database in dir
func OpenBadgerStore(dir string, opts ...Option) (*BadgerStore, error) {
	o := newOptions(opts)

	badgerOpts := badger.DefaultOptions(dir).WithLogger(badgerLogger{log: o.log})
	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open badger database %s: %w", dir, err)
	}

	o.log.Debug().Str("path", dir).Msg("badger store opened")

	return NewBadgerStore(db, opts...), nil
}

// Wraps an open database. Close closes the database.
func NewBadgerStore(db *badger.DB, opts ...Option) *BadgerStore {
	o := newOptions(opts)
	return &BadgerStore{
		db:     db,
		prefix: o.prefix,
		log:    o.log,
	}
}

func (s *BadgerStore) key(prefix string, id string) []byte {
	return []byte(s.prefix + prefix + id)
}

func (s *BadgerStore) decisionKey(d core.Decision) []byte {
	return s.key(decisionKeyPrefix, string(d.Winner)+"\x00"+string(d.Loser))
}

func (s *BadgerStore) beatenKey(d core.Decision) []byte {
	return s.key(beatenKeyPrefix, string(d.Loser)+"\x00"+string(d.Winner))
}

func (s *BadgerStore) Load(ctx context.Context) (core.Snapshot, error) {
	var snapshot core.Snapshot
	err := s.view(func(txn *badger.Txn) error {
		items, err := s.scanIds(txn, itemKeyPrefix)
		if err != nil {
			return err
		}
		ignored, err := s.scanIds(txn, ignoredKeyPrefix)
		if err != nil {
			return err
		}
		decisions, err := s.scanDecisions(txn)
		if err != nil {
			return err
		}

		snapshot = core.Snapshot{Items: items, Decisions: decisions, Ignored: ignored}
		return nil
	})
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("load battle: %w", err)
	}

	return normalize(snapshot), nil
}

// Returns the identifiers that follow the key prefix
func (s *BadgerStore) scanIds(txn *badger.Txn, keyPrefix string) ([]core.Item, error) {
	prefix := []byte(s.prefix + keyPrefix)

	it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix})
	defer it.Close()

	ids := make([]core.Item, 0)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		key := string(it.Item().Key())
		ids = append(ids, core.Item(strings.TrimPrefix(key, string(prefix))))
	}
	return ids, nil
}

func (s *BadgerStore) scanDecisions(txn *badger.Txn) ([]core.Decision, error) {
	prefix := []byte(s.prefix + decisionKeyPrefix)

	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	decisions := make([]core.Decision, 0)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		var d core.Decision
		err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &d)
		})
		if err != nil {
			return nil, fmt.Errorf("decode decision %q: %w", it.Item().Key(), err)
		}
		decisions = append(decisions, d)
	}
	return decisions, nil
}

// Runs fn in a read-only transaction unless the store is closed
func (s *BadgerStore) view(fn func(txn *badger.Txn) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return s.db.View(fn)
}

// Runs fn in a read-write transaction unless the store is closed
func (s *BadgerStore) update(fn func(txn *badger.Txn) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return s.db.Update(fn)
}

// Runs fn on a write batch unless the store is closed. The batch
// commits as many transactions as the writes need, so a failed
// batch can leave a part of its writes behind.
func (s *BadgerStore) batch(fn func(wb *badger.WriteBatch) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	if err := fn(wb); err != nil {
		return err
	}
	return wb.Flush()
}

func (s *BadgerStore) AddItems(ctx context.Context, items ...core.Item) error {
	return s.batch(func(wb *badger.WriteBatch) error {
		for _, item := range items {
			if err := wb.Set(s.key(itemKeyPrefix, string(item)), nil); err != nil {
				return fmt.Errorf("set item %s: %w", item, err)
			}
		}
		return nil
	})
}

func (s *BadgerStore) RemoveItem(ctx context.Context, item core.Item) error {
	var incident []core.Decision
	err := s.view(func(txn *badger.Txn) error {
		var err error
		incident, err = s.incidentDecisions(txn, item)
		return err
	})
	if err != nil {
		return fmt.Errorf("read decisions of %s: %w", item, err)
	}

	return s.batch(func(wb *badger.WriteBatch) error {
		if err := wb.Delete(s.key(itemKeyPrefix, string(item))); err != nil {
			return fmt.Errorf("delete item %s: %w", item, err)
		}
		if err := wb.Delete(s.key(ignoredKeyPrefix, string(item))); err != nil {
			return fmt.Errorf("delete ignore mark %s: %w", item, err)
		}
		return s.deleteDecisions(wb, incident)
	})
}

// Lists the decisions the item is part of. Both key ranges
// start with the item so only its own keys are visited.
func (s *BadgerStore) incidentDecisions(txn *badger.Txn, item core.Item) ([]core.Decision, error) {
	decisions := make([]core.Decision, 0)

	won, err := s.scanIds(txn, decisionKeyPrefix+string(item)+"\x00")
	if err != nil {
		return nil, err
	}
	for _, loser := range won {
		decisions = append(decisions, core.Decision{Winner: item, Loser: loser})
	}

	lost, err := s.scanIds(txn, beatenKeyPrefix+string(item)+"\x00")
	if err != nil {
		return nil, err
	}
	for _, winner := range lost {
		decisions = append(decisions, core.Decision{Winner: winner, Loser: item})
	}

	return decisions, nil
}

func (s *BadgerStore) AddDecisions(ctx context.Context, decisions ...core.Decision) error {
	return s.batch(func(wb *badger.WriteBatch) error {
		for _, d := range decisions {
			data, err := json.Marshal(d)
			if err != nil {
				return fmt.Errorf("marshal decision: %w", err)
			}
			if err := wb.Set(s.decisionKey(d), data); err != nil {
				return fmt.Errorf("set decision %s: %w", d, err)
			}
			if err := wb.Set(s.beatenKey(d), nil); err != nil {
				return fmt.Errorf("index decision %s: %w", d, err)
			}
		}
		return nil
	})
}

func (s *BadgerStore) RemoveDecisions(ctx context.Context, decisions ...core.Decision) error {
	return s.batch(func(wb *badger.WriteBatch) error {
		return s.deleteDecisions(wb, decisions)
	})
}

func (s *BadgerStore) deleteDecisions(wb *badger.WriteBatch, decisions []core.Decision) error {
	for _, d := range decisions {
		if err := wb.Delete(s.decisionKey(d)); err != nil {
			return fmt.Errorf("delete decision %s: %w", d, err)
		}
		if err := wb.Delete(s.beatenKey(d)); err != nil {
			return fmt.Errorf("delete index of %s: %w", d, err)
		}
	}
	return nil
}

func (s *BadgerStore) SetIgnored(ctx context.Context, item core.Item, ignored bool) error {
	return s.update(func(txn *badger.Txn) error {
		if !ignored {
			return txn.Delete(s.key(ignoredKeyPrefix, string(item)))
		}
		if err := txn.Set(s.key(itemKeyPrefix, string(item)), nil); err != nil {
			return err
		}
		return txn.Set(s.key(ignoredKeyPrefix, string(item)), nil)
	})
}

func (s *BadgerStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// Routes the badger log output through zerolog
type badgerLogger struct {
	log zerolog.Logger
}

func (l badgerLogger) Errorf(format string, args ...any) {
	l.log.Error().Str("component", "badger").Msgf(strings.TrimSpace(format), args...)
}

func (l badgerLogger) Warningf(format string, args ...any) {
	l.log.Warn().Str("component", "badger").Msgf(strings.TrimSpace(format), args...)
}

func (l badgerLogger) Infof(format string, args ...any) {
	l.log.Debug().Str("component", "badger").Msgf(strings.TrimSpace(format), args...)
}

func (l badgerLogger) Debugf(format string, args ...any) {
	l.log.Trace().Str("component", "badger").Msgf(strings.TrimSpace(format), args...)
}
