// Package metrics provides centralized Prometheus metrics registry for the odds service.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	EstimationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "prize_odds",
		Name:      "estimations_total",
		Help:      "Total number of odds estimations served",
	}, []string{"action", "cache_hit"})
	EstimationErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "prize_odds",
		Name:      "estimation_errors_total",
		Help:      "Total number of rejected odds estimations",
	}, []string{"reason"})
	EstimationsNotFetchedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "prize_odds",
		Name:      "estimations_not_fetched_total",
		Help:      "Total number of estimations answered before a snapshot or amount was available",
	})
	APIRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "prize_odds",
		Name:      "api_requests_total",
		Help:      "Total number of API requests by route and status code",
	}, []string{"route", "code"})
)

// Gauge metrics
var (
	EstimationCacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "prize_odds",
		Name:      "estimation_cache_hit_ratio",
		Help:      "Estimation memo cache hit ratio",
	})
	EstimationCacheItems = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "prize_odds",
		Name:      "estimation_cache_items",
		Help:      "Number of memoised estimations",
	})
)

// Histogram metrics
var (
	APIRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "prize_odds",
		Name:      "api_request_duration_seconds",
		Help:      "API request latency in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(EstimationsTotal)
		registry.MustRegister(EstimationErrorsTotal)
		registry.MustRegister(EstimationsNotFetchedTotal)
		registry.MustRegister(APIRequestsTotal)

		// Register gauge metrics
		registry.MustRegister(EstimationCacheHitRatio)
		registry.MustRegister(EstimationCacheItems)

		// Register histogram metrics
		registry.MustRegister(APIRequestDuration)

		// Register snapshot metrics
		registry.MustRegister(SnapshotRefreshTotal)
		registry.MustRegister(SnapshotRefreshDuration)
		registry.MustRegister(SnapshotVersion)
		registry.MustRegister(SnapshotTotalSupply)
		registry.MustRegister(SnapshotNumberOfPrizes)
		registry.MustRegister(StreamMessagesTotal)
		registry.MustRegister(StreamReconnectsTotal)

		registry.MustRegister(collectors.NewGoCollector())
		registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordEstimation records a served estimation.
func RecordEstimation(action string, cacheHit bool) {
	hit := "false"
	if cacheHit {
		hit = "true"
	}
	EstimationsTotal.WithLabelValues(action, hit).Inc()
}

// RecordEstimationError records a rejected estimation.
func RecordEstimationError(reason string) {
	EstimationErrorsTotal.WithLabelValues(reason).Inc()
}

// RecordNotFetched records an estimation answered with is_fetched=false.
func RecordNotFetched() {
	EstimationsNotFetchedTotal.Inc()
}

// UpdateCacheStats updates the memo cache gauges.
func UpdateCacheStats(hitRatio float64, items int) {
	EstimationCacheHitRatio.Set(hitRatio)
	EstimationCacheItems.Set(float64(items))
}

// RecordAPIRequest records an API request outcome and its latency.
func RecordAPIRequest(route, code string, durationSeconds float64) {
	APIRequestsTotal.WithLabelValues(route, code).Inc()
	APIRequestDuration.WithLabelValues(route).Observe(durationSeconds)
}
