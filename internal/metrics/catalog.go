// SPDX-License-Identifier: MIT
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	catalogRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pendel_catalog_requests_total",
		Help: "Catalog upstream requests by operation and outcome",
	}, []string{"operation", "outcome"}) // outcome=success|error|timeout|circuit_open

	catalogRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pendel_catalog_request_duration_seconds",
		Help:    "Catalog upstream request latencies in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	catalogRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pendel_catalog_retries_total",
		Help: "Catalog request retries by operation",
	}, []string{"operation"})

	catalogCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pendel_catalog_cache_total",
		Help: "Catalog cache lookups by result",
	}, []string{"result"}) // result=hit|miss|bypass

	catalogCandidates = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pendel_catalog_candidates",
		Help:    "Candidates returned per catalog search",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})
)

// RecordCatalogRequest records one upstream request with its latency.
func RecordCatalogRequest(operation, outcome string, duration time.Duration) {
	catalogRequestsTotal.WithLabelValues(operation, outcome).Inc()
	catalogRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordCatalogRetry counts a retry attempt for an operation.
func RecordCatalogRetry(operation string) {
	catalogRetriesTotal.WithLabelValues(operation).Inc()
}

// RecordCatalogCache records a cache lookup result.
func RecordCatalogCache(result string) {
	catalogCacheTotal.WithLabelValues(result).Inc()
}

// RecordCatalogCandidates records the size of a search result set.
func RecordCatalogCandidates(n int) {
	catalogCandidates.Observe(float64(n))
}
