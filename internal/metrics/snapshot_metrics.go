// Package metrics defines pool snapshot metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Snapshot counter vectors
var (
	SnapshotRefreshTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "prize_odds",
		Name:      "snapshot_refresh_total",
		Help:      "Total number of pool snapshot refreshes by source and status",
	}, []string{"pool_id", "source", "status"})

	StreamMessagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "prize_odds",
		Name:      "stream_messages_total",
		Help:      "Total number of stream messages by type and outcome",
	}, []string{"op", "status"})

	StreamReconnectsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "prize_odds",
		Name:      "stream_reconnects_total",
		Help:      "Total number of snapshot stream reconnect attempts",
	})
)

// Snapshot histogram vectors
var (
	SnapshotRefreshDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "prize_odds",
		Name:      "snapshot_refresh_duration_seconds",
		Help:      "Pool snapshot fetch latency in seconds",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"source"})
)

// Snapshot gauge vectors
var (
	SnapshotVersion = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "prize_odds",
		Name:      "snapshot_version",
		Help:      "Version of the current snapshot for each pool",
	}, []string{"pool_id"})

	SnapshotTotalSupply = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "prize_odds",
		Name:      "snapshot_total_supply",
		Help:      "Total pool deposits in whole tokens (approximate)",
	}, []string{"pool_id"})

	SnapshotNumberOfPrizes = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "prize_odds",
		Name:      "snapshot_number_of_prizes",
		Help:      "Number of prizes per draw for each pool",
	}, []string{"pool_id"})
)

// RecordSnapshotRefresh records a refresh attempt.
func RecordSnapshotRefresh(poolID, source, status string, durationSeconds float64) {
	SnapshotRefreshTotal.WithLabelValues(poolID, source, status).Inc()
	SnapshotRefreshDuration.WithLabelValues(source).Observe(durationSeconds)
}

// UpdateSnapshot updates the per-pool snapshot gauges.
func UpdateSnapshot(poolID string, version uint64, totalSupply float64, numberOfPrizes int) {
	SnapshotVersion.WithLabelValues(poolID).Set(float64(version))
	SnapshotTotalSupply.WithLabelValues(poolID).Set(totalSupply)
	SnapshotNumberOfPrizes.WithLabelValues(poolID).Set(float64(numberOfPrizes))
}

// RecordStreamMessage records a received stream message.
func RecordStreamMessage(op, status string) {
	StreamMessagesTotal.WithLabelValues(op, status).Inc()
}

// RecordStreamReconnect records a stream reconnect attempt.
func RecordStreamReconnect() {
	StreamReconnectsTotal.Inc()
}
