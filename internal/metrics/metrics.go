// Package metrics exports the progress of a battle as
// prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ezBadminton/gobattle/core"
)

const namespace = "gobattle"

// Collector observes a battle and records its changes.
// It implements core.Observer.
type Collector struct {
	Decisions         prometheus.Counter
	InferredDecisions prometheus.Counter
	RemovedItems      prometheus.Counter
	Progress          prometheus.Gauge
}

var _ core.Observer = (*Collector)(nil)

// Creates the collector and registers its metrics with reg.
// A nil reg leaves the metrics unregistered.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		Decisions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decisions_total",
			Help:      "Total number of decisions made by the user",
		}),
		InferredDecisions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inferred_decisions_total",
			Help:      "Total number of decisions inferred by transitivity",
		}),
		RemovedItems: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "removed_items_total",
			Help:      "Total number of items that were ignored or vanished",
		}),
		Progress: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "progress_ratio",
			Help:      "Share of item pairs that are decided",
		}),
	}
}

func (c *Collector) Decided(d core.Decision, inferred int) {
	c.Decisions.Inc()
	c.InferredDecisions.Add(float64(inferred))
}

func (c *Collector) Removed(item core.Item) {
	c.RemovedItems.Inc()
}

func (c *Collector) Progressed(progress float64) {
	c.Progress.Set(progress)
}
