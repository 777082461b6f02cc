package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/goccy/go-json"
	backend "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ezBadminton/gobattle/core"
)

// RedisStore keeps the battle in three redis sets.
// Decisions are stored as JSON members. Every item has
// an index set with the members of its decisions.
type RedisStore struct {
	client *backend.Client
	prefix string
	log    zerolog.Logger

	closed bool
	mu     sync.RWMutex
}

// Connects to the redis server and checks that it answers
func OpenRedisStore(addr, password string, db int, opts ...Option) (*RedisStore, error) {
	client := backend.NewClient(&backend.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}

	s := NewRedisStore(client, opts...)
	s.log.Debug().Str("addr", addr).Int("db", db).Msg("redis store opened")

	return s, nil
}

// Wraps a client. Close closes the client.
func NewRedisStore(client *backend.Client, opts ...Option) *RedisStore {
	o := newOptions(opts)
	return &RedisStore{
		client: client,
		prefix: o.prefix,
		log:    o.log,
	}
}

func (s *RedisStore) itemsKey() string {
	return s.prefix + "items"
}

func (s *RedisStore) ignoredKey() string {
	return s.prefix + "ignored"
}

func (s *RedisStore) decisionsKey() string {
	return s.prefix + "decisions"
}

func (s *RedisStore) indexKey(item core.Item) string {
	return s.prefix + "decisions:" + string(item)
}

func (s *RedisStore) check() error {
	if s.closed {
		return ErrClosed
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context) (core.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return core.Snapshot{}, err
	}

	pipe := s.client.Pipeline()
	itemsCmd := pipe.SMembers(ctx, s.itemsKey())
	ignoredCmd := pipe.SMembers(ctx, s.ignoredKey())
	decisionsCmd := pipe.SMembers(ctx, s.decisionsKey())
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, backend.Nil) {
		return core.Snapshot{}, fmt.Errorf("load battle: %w", err)
	}

	decisions := make([]core.Decision, 0, len(decisionsCmd.Val()))
	for _, member := range decisionsCmd.Val() {
		var d core.Decision
		if err := json.Unmarshal([]byte(member), &d); err != nil {
			return core.Snapshot{}, fmt.Errorf("decode decision %q: %w", member, err)
		}
		decisions = append(decisions, d)
	}

	return normalize(core.Snapshot{
		Items:     toItems(itemsCmd.Val()),
		Decisions: decisions,
		Ignored:   toItems(ignoredCmd.Val()),
	}), nil
}

func toItems(members []string) []core.Item {
	items := make([]core.Item, len(members))
	for i, m := range members {
		items[i] = core.Item(m)
	}
	return items
}

func toMembers[T any](values []T, encode func(v T) (string, error)) ([]any, error) {
	members := make([]any, len(values))
	for i, v := range values {
		m, err := encode(v)
		if err != nil {
			return nil, err
		}
		members[i] = m
	}
	return members, nil
}

func encodeItem(item core.Item) (string, error) {
	return string(item), nil
}

func encodeDecision(d core.Decision) (string, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("marshal decision: %w", err)
	}
	return string(data), nil
}

// The members of a set of decisions, also grouped by
// the items they belong to
type decisionMembers struct {
	all    []any
	byItem map[core.Item][]any
}

func encodeDecisions(decisions []core.Decision) (decisionMembers, error) {
	members := decisionMembers{
		all:    make([]any, 0, len(decisions)),
		byItem: make(map[core.Item][]any),
	}
	for _, d := range decisions {
		m, err := encodeDecision(d)
		if err != nil {
			return decisionMembers{}, err
		}
		members.add(d, m)
	}
	return members, nil
}

func (m *decisionMembers) add(d core.Decision, member string) {
	m.all = append(m.all, member)
	m.byItem[d.Winner] = append(m.byItem[d.Winner], member)
	m.byItem[d.Loser] = append(m.byItem[d.Loser], member)
}

// Limits the arguments of a single command
const membersPerCommand = 1000

// Queues the change of the decisions set and of the
// index sets
func (s *RedisStore) queue(ctx context.Context, pipe backend.Pipeliner, members decisionMembers, add bool) {
	apply := pipe.SRem
	if add {
		apply = pipe.SAdd
	}
	for chunk := range slices.Chunk(members.all, membersPerCommand) {
		apply(ctx, s.decisionsKey(), chunk...)
	}
	for item, itemMembers := range members.byItem {
		for chunk := range slices.Chunk(itemMembers, membersPerCommand) {
			apply(ctx, s.indexKey(item), chunk...)
		}
	}
}

func (s *RedisStore) AddItems(ctx context.Context, items ...core.Item) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	members, _ := toMembers(items, encodeItem)
	if err := s.client.SAdd(ctx, s.itemsKey(), members...).Err(); err != nil {
		return fmt.Errorf("add items: %w", err)
	}
	return nil
}

func (s *RedisStore) RemoveItem(ctx context.Context, item core.Item) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return err
	}

	indexed, err := s.client.SMembers(ctx, s.indexKey(item)).Result()
	if err != nil {
		return fmt.Errorf("read decisions of %s: %w", item, err)
	}
	incident := decisionMembers{byItem: make(map[core.Item][]any)}
	for _, member := range indexed {
		var d core.Decision
		if err := json.Unmarshal([]byte(member), &d); err != nil {
			return fmt.Errorf("decode decision %q: %w", member, err)
		}
		incident.add(d, member)
	}
	delete(incident.byItem, item)

	_, err = s.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		pipe.SRem(ctx, s.itemsKey(), string(item))
		pipe.SRem(ctx, s.ignoredKey(), string(item))
		pipe.Del(ctx, s.indexKey(item))
		s.queue(ctx, pipe, incident, false)
		return nil
	})
	if err != nil {
		return fmt.Errorf("remove item %s: %w", item, err)
	}
	return nil
}

func (s *RedisStore) AddDecisions(ctx context.Context, decisions ...core.Decision) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return err
	}
	if len(decisions) == 0 {
		return nil
	}

	members, err := encodeDecisions(decisions)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		s.queue(ctx, pipe, members, true)
		return nil
	})
	if err != nil {
		return fmt.Errorf("add decisions: %w", err)
	}
	return nil
}

func (s *RedisStore) RemoveDecisions(ctx context.Context, decisions ...core.Decision) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return err
	}
	if len(decisions) == 0 {
		return nil
	}

	members, err := encodeDecisions(decisions)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		s.queue(ctx, pipe, members, false)
		return nil
	})
	if err != nil {
		return fmt.Errorf("remove decisions: %w", err)
	}
	return nil
}

func (s *RedisStore) SetIgnored(ctx context.Context, item core.Item, ignored bool) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return err
	}

	var err error
	if ignored {
		_, err = s.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
			pipe.SAdd(ctx, s.itemsKey(), string(item))
			pipe.SAdd(ctx, s.ignoredKey(), string(item))
			return nil
		})
	} else {
		err = s.client.SRem(ctx, s.ignoredKey(), string(item)).Err()
	}
	if err != nil {
		return fmt.Errorf("set ignored %s: %w", item, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.client.Close()
}
