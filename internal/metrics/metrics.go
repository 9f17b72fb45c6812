// Package metrics exposes Prometheus counters for the matching pipeline and
// an optional scrape endpoint.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	searchQueriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kitscout_search_queries_total",
			Help: "Total number of search queries issued.",
		},
	)

	candidateURLsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kitscout_candidate_urls_total",
			Help: "Total number of candidate URLs accepted for fetching.",
		},
	)

	pagesFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kitscout_pages_fetched_total",
			Help: "Total number of fetch tasks, labeled by outcome.",
		},
		[]string{"outcome"},
	)

	hitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kitscout_hits_total",
			Help: "Total number of accepted page hits, labeled by analyte.",
		},
		[]string{"analyte"},
	)

	matchedVendorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kitscout_matched_vendors_total",
			Help: "Total number of vendors with complete analyte coverage.",
		},
	)

	runDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kitscout_run_duration_seconds",
			Help:    "Histogram of end-to-end run durations.",
			Buckets: []float64{1, 5, 10, 20, 30, 40, 60, 120},
		},
	)
)

// SearchQueryIssued counts one outgoing search query.
func SearchQueryIssued() {
	searchQueriesTotal.Inc()
}

// CandidatesCollected counts URLs accepted into the fetch queue.
func CandidatesCollected(n int) {
	candidateURLsTotal.Add(float64(n))
}

// PageFetched counts one finished fetch task. Outcome is one of "matched",
// "unmatched", "failed", or "skipped".
func PageFetched(outcome string) {
	pagesFetchedTotal.WithLabelValues(outcome).Inc()
}

// HitRecorded counts one accepted hit for an analyte.
func HitRecorded(analyte string) {
	hitsTotal.WithLabelValues(analyte).Inc()
}

// VendorsMatched counts vendors that ended a run with complete coverage.
func VendorsMatched(n int) {
	matchedVendorsTotal.Add(float64(n))
}

// RunFinished records the duration of a completed run.
func RunFinished(d time.Duration) {
	runDurationSeconds.Observe(d.Seconds())
}
