package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Hunt outcomes
const (
	OutcomeSuccess  = "success"
	OutcomeCacheHit = "cache_hit"
	OutcomeFailure  = "failure"
	OutcomeTimeout  = "timeout"
)

// Pipeline stages that can fail per branch
const (
	StageSearch  = "search"
	StageScrape  = "scrape"
	StageExtract = "extract"
)

var (
	HuntsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "desirehunter_hunts_total",
			Help: "Total number of hunts by outcome",
		},
		[]string{"outcome"},
	)

	HuntDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "desirehunter_hunt_duration_seconds",
			Help:    "Duration of hunts in seconds",
			Buckets: []float64{1, 2, 5, 10, 20, 30, 45, 60},
		},
	)

	BranchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "desirehunter_branch_failures_total",
			Help: "Total number of failed fan-out branches by stage",
		},
		[]string{"stage"},
	)

	ProductsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "desirehunter_products_returned",
			Help:    "Number of products returned per hunt",
			Buckets: []float64{0, 1, 2, 3, 4, 5},
		},
	)

	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "desirehunter_cache_entries",
			Help: "Number of hunt results held in the result cache",
		},
	)
)

// RecordHunt updates the hunt metrics once a hunt has finished.
func RecordHunt(outcome string, duration time.Duration, products int) {
	HuntsTotal.WithLabelValues(outcome).Inc()
	HuntDuration.Observe(duration.Seconds())
	if outcome == OutcomeSuccess || outcome == OutcomeCacheHit {
		ProductsReturned.Observe(float64(products))
	}
}

// RecordBranchFailure counts a failed fan-out branch.
func RecordBranchFailure(stage string) {
	BranchFailures.WithLabelValues(stage).Inc()
}

// SetCacheEntries reports the current size of the result cache.
func SetCacheEntries(n int) {
	CacheEntries.Set(float64(n))
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
