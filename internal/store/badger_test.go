package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezBadminton/gobattle/core"
	"github.com/ezBadminton/gobattle/internal/config"
	"github.com/ezBadminton/gobattle/internal/logging"
)

func TestBadgerStore(t *testing.T) {
	st, err := OpenBadgerStore(t.TempDir())
	require.NoError(t, err)

	runStoreContract(t, st)
}

func TestBadgerStorePersists(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	st, err := OpenBadgerStore(dir, WithPrefix("battle:"))
	require.NoError(t, err)
	require.NoError(t, st.AddItems(ctx, "a.jpg", "b.jpg"))
	require.NoError(t, st.AddDecisions(ctx, core.Decision{Winner: "b.jpg", Loser: "a.jpg"}))
	require.NoError(t, st.SetIgnored(ctx, "c.jpg", true))
	require.NoError(t, st.Close())

	st, err = OpenBadgerStore(dir, WithPrefix("battle:"))
	require.NoError(t, err)
	defer st.Close()

	snapshot, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.Item{"a.jpg", "b.jpg", "c.jpg"}, snapshot.Items)
	assert.Equal(t, []core.Decision{{Winner: "b.jpg", Loser: "a.jpg"}}, snapshot.Decisions)
	assert.Equal(t, []core.Item{"c.jpg"}, snapshot.Ignored)
}

func TestBadgerStorePrefixes(t *testing.T) {
	ctx := context.Background()

	st, err := OpenBadgerStore(t.TempDir())
	require.NoError(t, err)
	defer st.Close()

	first := NewBadgerStore(st.db, WithPrefix("first:"))
	second := NewBadgerStore(st.db, WithPrefix("second:"))

	require.NoError(t, first.AddItems(ctx, "a.jpg"))
	require.NoError(t, second.AddItems(ctx, "b.jpg"))

	snapshot, err := first.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.Item{"a.jpg"}, snapshot.Items)
}

func TestOpenBadgerRelativePath(t *testing.T) {
	root := t.TempDir()
	st, err := Open(config.StoreConfig{Backend: "badger", Path: ".gobattle"}, root, logging.Nop())
	require.NoError(t, err)
	defer st.Close()

	assert.DirExists(t, filepath.Join(root, ".gobattle"))
}

// Opens a store whose memtable keeps the transaction limit at a
// few thousand entries
func openSmallBadgerStore(t *testing.T) *BadgerStore {
	t.Helper()
	opts := badger.DefaultOptions(t.TempDir()).
		WithMemTableSize(2 << 20).
		WithValueThreshold(1 << 10).
		WithLogger(badgerLogger{log: zerolog.Nop()})
	db, err := badger.Open(opts)
	require.NoError(t, err)

	st := NewBadgerStore(db)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

// Every item of the upper half beats every item of the lower half
func mergeDecisions(size int) []core.Decision {
	decisions := make([]core.Decision, 0, size*size)
	for i := range size {
		for j := range size {
			decisions = append(decisions, core.Decision{
				Winner: core.Item(fmt.Sprintf("top/%04d", i)),
				Loser:  core.Item(fmt.Sprintf("bottom/%04d", j)),
			})
		}
	}
	return decisions
}

func countKeys(t *testing.T, st *BadgerStore, prefix string) int {
	t.Helper()
	count := 0
	err := st.db.View(func(txn *badger.Txn) error {
		ids, err := st.scanIds(txn, prefix)
		count = len(ids)
		return err
	})
	require.NoError(t, err)
	return count
}

func TestBadgerStoreLargeDelta(t *testing.T) {
	ctx := context.Background()
	st := openSmallBadgerStore(t)
	decisions := mergeDecisions(150)

	err := st.db.Update(func(txn *badger.Txn) error {
		for _, d := range decisions {
			if err := txn.Set(st.decisionKey(d), nil); err != nil {
				return err
			}
		}
		return nil
	})
	require.ErrorIs(t, err, badger.ErrTxnTooBig)

	require.NoError(t, st.AddDecisions(ctx, decisions...))

	snapshot, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, snapshot.Decisions, len(decisions))
	assert.Equal(t, len(decisions), countKeys(t, st, beatenKeyPrefix))

	require.NoError(t, st.RemoveDecisions(ctx, decisions...))

	snapshot, err = st.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, snapshot.Decisions)
	assert.Zero(t, countKeys(t, st, beatenKeyPrefix))
}

func TestBadgerStoreRemoveItemUsesIndex(t *testing.T) {
	ctx := context.Background()
	st := openSmallBadgerStore(t)
	decisions := mergeDecisions(20)

	require.NoError(t, st.AddItems(ctx, "top/0003", "bottom/0007"))
	require.NoError(t, st.AddDecisions(ctx, decisions...))
	require.NoError(t, st.AddDecisions(ctx, core.Decision{Winner: "bottom/0007", Loser: "loner"}))

	require.NoError(t, st.RemoveItem(ctx, "top/0003"))
	require.NoError(t, st.RemoveItem(ctx, "bottom/0007"))

	snapshot, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, snapshot.Decisions, 19*19)
	for _, d := range snapshot.Decisions {
		assert.False(t, d.Contains("top/0003"), d.String())
		assert.False(t, d.Contains("bottom/0007"), d.String())
	}
	assert.Empty(t, snapshot.Items)
	assert.Equal(t, 19*19, countKeys(t, st, beatenKeyPrefix))
}
