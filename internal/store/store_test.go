package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezBadminton/gobattle/core"
	"github.com/ezBadminton/gobattle/internal/config"
	"github.com/ezBadminton/gobattle/internal/logging"
)

// Checks the behaviour that every Store implementation shares.
// The store has to be empty.
func runStoreContract(t *testing.T, st Store) {
	ctx := context.Background()

	t.Run("Empty", func(t *testing.T) {
		snapshot, err := st.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, snapshot.Items)
		assert.Empty(t, snapshot.Decisions)
		assert.Empty(t, snapshot.Ignored)
		assert.NotNil(t, snapshot.Items)
	})

	t.Run("Add", func(t *testing.T) {
		require.NoError(t, st.AddItems(ctx, "c.jpg", "a.jpg", "b.jpg", "d.jpg"))
		require.NoError(t, st.AddItems(ctx, "a.jpg"))
		require.NoError(t, st.AddDecisions(ctx,
			core.Decision{Winner: "a.jpg", Loser: "b.jpg"},
			core.Decision{Winner: "b.jpg", Loser: "c.jpg"},
			core.Decision{Winner: "a.jpg", Loser: "c.jpg"},
		))
		require.NoError(t, st.AddDecisions(ctx))

		snapshot, err := st.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, []core.Item{"a.jpg", "b.jpg", "c.jpg", "d.jpg"}, snapshot.Items)
		assert.Equal(t, []core.Decision{
			{Winner: "a.jpg", Loser: "b.jpg"},
			{Winner: "a.jpg", Loser: "c.jpg"},
			{Winner: "b.jpg", Loser: "c.jpg"},
		}, snapshot.Decisions)
	})

	t.Run("Ignore", func(t *testing.T) {
		require.NoError(t, st.SetIgnored(ctx, "e.jpg", true))
		require.NoError(t, st.SetIgnored(ctx, "d.jpg", true))
		require.NoError(t, st.SetIgnored(ctx, "d.jpg", false))

		snapshot, err := st.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, []core.Item{"e.jpg"}, snapshot.Ignored)
		assert.Contains(t, snapshot.Items, core.Item("e.jpg"))
	})

	t.Run("RemoveDecisions", func(t *testing.T) {
		require.NoError(t, st.RemoveDecisions(ctx, core.Decision{Winner: "a.jpg", Loser: "c.jpg"}))

		snapshot, err := st.Load(ctx)
		require.NoError(t, err)
		assert.Len(t, snapshot.Decisions, 2)
		assert.NotContains(t, snapshot.Decisions, core.Decision{Winner: "a.jpg", Loser: "c.jpg"})
	})

	t.Run("RemoveItem", func(t *testing.T) {
		require.NoError(t, st.RemoveItem(ctx, "b.jpg"))
		require.NoError(t, st.RemoveItem(ctx, "e.jpg"))
		require.NoError(t, st.RemoveItem(ctx, "never-added.jpg"))

		snapshot, err := st.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, []core.Item{"a.jpg", "c.jpg", "d.jpg"}, snapshot.Items)
		assert.Empty(t, snapshot.Decisions)
		assert.Empty(t, snapshot.Ignored)
	})

	t.Run("Close", func(t *testing.T) {
		require.NoError(t, st.Close())

		_, err := st.Load(ctx)
		assert.ErrorIs(t, err, ErrClosed)
		assert.ErrorIs(t, st.AddItems(ctx, "x.jpg"), ErrClosed)
		assert.ErrorIs(t, st.SetIgnored(ctx, "x.jpg", true), ErrClosed)
		assert.NoError(t, st.Close())
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreContract(t, NewMemoryStore())
}

func TestOpenMemory(t *testing.T) {
	st, err := Open(config.StoreConfig{Backend: "memory"}, t.TempDir(), logging.Nop())
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, st)
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(config.StoreConfig{Backend: "sqlite"}, t.TempDir(), logging.Nop())
	assert.ErrorIs(t, err, ErrUnknownBackend)
}
