package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezBadminton/gobattle/core"
)

func TestCollectorObservesBattle(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := NewCollector(reg)

	b := core.NewBattle(
		core.Snapshot{Items: []core.Item{"a", "b", "c", "d"}},
		core.WithObserver(collector),
	)

	_, err := b.Decide("a", "b")
	require.NoError(t, err)
	_, err = b.Decide("b", "c")
	require.NoError(t, err)
	_, err = b.Decide("a", "c")
	require.NoError(t, err)
	_, err = b.Ignore("d")
	require.NoError(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(collector.Decisions))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.InferredDecisions))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.RemovedItems))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.Progress))

	count, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestCollectorWithoutRegistry(t *testing.T) {
	collector := NewCollector(nil)
	collector.Progressed(0.5)

	assert.Equal(t, 0.5, testutil.ToFloat64(collector.Progress))
}
