package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RunsTotal counts digest runs by outcome.
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trenddigest",
			Name:      "runs_total",
			Help:      "Total number of digest runs by result",
		},
		[]string{"result"},
	)

	// ItemsLoaded reports the item count of the latest snapshot per platform.
	ItemsLoaded = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "trenddigest",
			Name:      "items_loaded",
			Help:      "Trending items loaded in the latest run per platform",
		},
		[]string{"platform"},
	)

	// ClustersTotal counts story clusters by kind.
	ClustersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trenddigest",
			Name:      "clusters_total",
			Help:      "Total number of story clusters built",
		},
		[]string{"kind"},
	)

	// SummariesTotal counts summary requests by provider and result.
	SummariesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trenddigest",
			Name:      "summaries_total",
			Help:      "Total number of story summaries by provider",
		},
		[]string{"provider", "result"},
	)

	// RunDuration measures a full digest run.
	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "trenddigest",
			Name:      "run_duration_seconds",
			Help:      "Duration of digest runs in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

// RecordSummary records one summarizer call.
func RecordSummary(provider, result string) {
	SummariesTotal.WithLabelValues(provider, result).Inc()
}
