// Package metrics holds the Prometheus collectors shared by the analysis
// pipeline. Collectors are registered on the default registry at init.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ExtractionStrategy = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "biaslens_extraction_strategy_total",
			Help: "Extractions labeled by the strategy that produced the content.",
		},
		[]string{"strategy"},
	)
	ExtractionFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "biaslens_extraction_insufficient_total",
			Help: "Extractions rejected because no strategy produced enough text.",
		},
	)
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "biaslens_cache_lookups_total",
			Help: "Result cache lookups labeled by hit or miss.",
		},
		[]string{"result"},
	)
	CacheEvictions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "biaslens_cache_evictions_total",
			Help: "Result cache evictions labeled by reason (age, capacity).",
		},
		[]string{"reason"},
	)
	CacheEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "biaslens_cache_entries",
			Help: "Current number of entries in the result cache.",
		},
	)
	AnalysisRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "biaslens_analysis_requests_total",
			Help: "Calls to the analysis service labeled by outcome.",
		},
		[]string{"outcome"},
	)
	AnalysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "biaslens_analysis_duration_seconds",
			Help:    "Latency of calls to the analysis service.",
			Buckets: prometheus.DefBuckets,
		},
	)
	SharedFlights = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "biaslens_analysis_shared_total",
			Help: "Analyses that joined an in-flight call for the same page instead of issuing their own.",
		},
	)
)

func init() {
	prometheus.MustRegister(ExtractionStrategy)
	prometheus.MustRegister(ExtractionFailures)
	prometheus.MustRegister(CacheLookups)
	prometheus.MustRegister(CacheEvictions)
	prometheus.MustRegister(CacheEntries)
	prometheus.MustRegister(AnalysisRequests)
	prometheus.MustRegister(AnalysisDuration)
	prometheus.MustRegister(SharedFlights)
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
