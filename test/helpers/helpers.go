// Package helpers provides shared fixtures and fake providers for integration tests.
package helpers

import (
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yourusername/prize-odds/internal/models"
)

// PoolStats is a provider document in the default field layout
type PoolStats struct {
	NumberOfPrizes int             `json:"numberOfPrizes"`
	Decimals       int             `json:"decimals"`
	TotalSupply    json.RawMessage `json:"totalSupply"`
}

// LoadFixture loads test data from a JSON file under test/fixtures.
func LoadFixture(t *testing.T, filename string, target interface{}) {
	t.Helper()

	_, thisFile, _, _ := runtime.Caller(0)
	fixturePath := filepath.Join(filepath.Dir(thisFile), "..", "fixtures", filename)
	data, err := os.ReadFile(fixturePath)
	require.NoError(t, err, "failed to read fixture file: %s", filename)

	err = json.Unmarshal(data, target)
	require.NoError(t, err, "failed to unmarshal fixture: %s", filename)
}

// LoadPoolFixtures loads provider documents keyed by pool id.
func LoadPoolFixtures(t *testing.T) map[string]PoolStats {
	t.Helper()

	var pools map[string]PoolStats
	LoadFixture(t, "pools.json", &pools)
	return pools
}

// NewSnapshot builds a versioned snapshot for tests.
func NewSnapshot(poolID string, numberOfPrizes int, totalSupply string, decimals int, version uint64) *models.OddsDataSnapshot {
	supply, ok := new(big.Int).SetString(totalSupply, 10)
	if !ok {
		panic("invalid total supply " + totalSupply)
	}
	return models.NewOddsDataSnapshot(poolID, numberOfPrizes, supply, decimals).WithVersion(version, time.Now().UTC())
}

// MockProvider is a fake pool statistics REST provider.
type MockProvider struct {
	*httptest.Server

	mu       sync.RWMutex
	pools    map[string]PoolStats
	failing  atomic.Bool
	requests atomic.Int32
}

// NewMockProvider serves GET /pools/{id} from pools.
func NewMockProvider(t *testing.T, pools map[string]PoolStats) *MockProvider {
	t.Helper()

	p := &MockProvider{pools: pools}
	p.Server = httptest.NewServer(http.HandlerFunc(p.serve))
	t.Cleanup(p.Close)
	return p
}

func (p *MockProvider) serve(w http.ResponseWriter, r *http.Request) {
	p.requests.Add(1)

	if p.failing.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	poolID := strings.TrimPrefix(r.URL.Path, "/pools/")
	p.mu.RLock()
	stats, ok := p.pools[poolID]
	p.mu.RUnlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// SetPool replaces the statistics served for poolID.
func (p *MockProvider) SetPool(poolID string, stats PoolStats) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pools[poolID] = stats
}

// SetFailing makes every request fail with 503.
func (p *MockProvider) SetFailing(failing bool) {
	p.failing.Store(failing)
}

// Requests returns the number of requests served.
func (p *MockProvider) Requests() int {
	return int(p.requests.Load())
}
