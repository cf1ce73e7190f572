package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistry(t *testing.T) {
	// Initialize the registry
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
	assert.Same(t, registry, InitRegistry())
}

func TestRecordEstimation(t *testing.T) {
	InitRegistry()

	before := testutil.ToFloat64(EstimationsTotal.WithLabelValues("DEPOSIT", "true"))
	RecordEstimation("DEPOSIT", true)
	after := testutil.ToFloat64(EstimationsTotal.WithLabelValues("DEPOSIT", "true"))

	assert.Equal(t, before+1, after)
}

func TestUpdateCacheStats(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name  string
		ratio float64
		items int
	}{
		{name: "empty cache", ratio: 0, items: 0},
		{name: "warm cache", ratio: 0.75, items: 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			UpdateCacheStats(tt.ratio, tt.items)
			assert.Equal(t, tt.ratio, testutil.ToFloat64(EstimationCacheHitRatio))
			assert.Equal(t, float64(tt.items), testutil.ToFloat64(EstimationCacheItems))
		})
	}
}

func TestUpdateSnapshot(t *testing.T) {
	InitRegistry()

	UpdateSnapshot("usdc-pool", 7, 1250.5, 4)

	assert.Equal(t, 7.0, testutil.ToFloat64(SnapshotVersion.WithLabelValues("usdc-pool")))
	assert.Equal(t, 1250.5, testutil.ToFloat64(SnapshotTotalSupply.WithLabelValues("usdc-pool")))
	assert.Equal(t, 4.0, testutil.ToFloat64(SnapshotNumberOfPrizes.WithLabelValues("usdc-pool")))
}

func TestRecordHelpersDoNotPanic(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordEstimationError("invalid_projection")
		RecordNotFetched()
		RecordAPIRequest("odds", "200", 0.01)
		RecordSnapshotRefresh("usdc-pool", "http", "success", 0.2)
		RecordStreamMessage("snapshot", "applied")
		RecordStreamReconnect()
	})
}

func TestHandlerServesMetrics(t *testing.T) {
	InitRegistry()
	RecordNotFetched()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "prize_odds_estimations_not_fetched_total")
}
