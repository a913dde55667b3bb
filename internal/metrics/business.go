// SPDX-License-Identifier: MIT
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Business metrics
	packsBuiltTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pendel_packs_built_total",
		Help: "Playlist packs built by endpoint and outcome",
	}, []string{"endpoint", "outcome"}) // outcome=ok|under_filled|empty_pool|no_fit

	packItemCount = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pendel_pack_items",
		Help:    "Number of items in a built pack",
		Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
	})

	packFillRatio = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pendel_pack_fill_ratio",
		Help:    "Pack duration as a fraction of the requested window maximum",
		Buckets: prometheus.LinearBuckets(0, 0.1, 11),
	})

	difficultyAdjustments = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pendel_difficulty_adjustments_total",
		Help: "Difficulty bumps applied by the wizard",
	}, []string{"from", "to"})

	historyWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pendel_history_writes_total",
		Help: "Watch-history write attempts by outcome",
	}, []string{"outcome"}) // outcome=ok|error

	exportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pendel_exports_total",
		Help: "Pack snapshot exports by outcome",
	}, []string{"outcome"}) // outcome=ok|error

	warmCyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pendel_warm_cycles_total",
		Help: "Cache warm cycles by outcome",
	}, []string{"outcome"}) // outcome=ok|error

	warmTopics = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pendel_warm_topics",
		Help: "Number of topics in the active warm list",
	})
)

// RecordPackBuilt records a pack build with its size and fill ratio.
// windowMax of zero skips the ratio observation.
func RecordPackBuilt(endpoint, outcome string, items, totalSec, windowMax int) {
	packsBuiltTotal.WithLabelValues(endpoint, outcome).Inc()
	packItemCount.Observe(float64(items))
	if windowMax > 0 {
		packFillRatio.Observe(float64(totalSec) / float64(windowMax))
	}
}

// RecordDifficultyAdjustment records a mastery-driven difficulty bump.
func RecordDifficultyAdjustment(from, to string) {
	difficultyAdjustments.WithLabelValues(from, to).Inc()
}

// RecordHistoryWrite records a watch-history write attempt.
func RecordHistoryWrite(outcome string) {
	historyWritesTotal.WithLabelValues(outcome).Inc()
}

// RecordExport records a pack snapshot export attempt.
func RecordExport(outcome string) {
	exportsTotal.WithLabelValues(outcome).Inc()
}

// RecordWarmCycle records a completed cache warm cycle.
func RecordWarmCycle(outcome string) {
	warmCyclesTotal.WithLabelValues(outcome).Inc()
}

// SetWarmTopics publishes the size of the active warm list.
func SetWarmTopics(n int) {
	warmTopics.Set(float64(n))
}
