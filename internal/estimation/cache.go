// Package estimation gates odds estimation on snapshot readiness and memoises results.
package estimation

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/prize-odds/internal/metrics"
	"github.com/yourusername/prize-odds/internal/models"
)

// CacheKey identifies one estimation by value
type CacheKey struct {
	PoolID          string
	SnapshotVersion uint64
	Amount          string
	Action          models.EstimateAction
	Change          string
}

// NewCacheKey builds the key for req against a snapshot
func NewCacheKey(snapshot *models.OddsDataSnapshot, req models.EstimationRequest) CacheKey {
	return CacheKey{
		PoolID:          snapshot.PoolID,
		SnapshotVersion: snapshot.Version,
		Amount:          req.Amount.String(),
		Action:          req.NormalizedAction(),
		Change:          req.NormalizedChange().String(),
	}
}

// String returns string representation of cache key
func (k CacheKey) String() string {
	return fmt.Sprintf("%s|%d|%s|%s|%s", strconv.Quote(k.PoolID), k.SnapshotVersion, k.Amount, k.Action, k.Change)
}

func poolPrefix(poolID string) string {
	return strconv.Quote(poolID) + "|"
}

// ResultCache provides in-memory caching for estimation results
type ResultCache struct {
	cache   *cache.Cache
	ttl     time.Duration
	maxSize int
	mu      sync.Mutex
	hits    atomic.Uint64
	misses  atomic.Uint64
}

// NewResultCache creates a new result cache. A ttl of zero keeps entries until
// they are invalidated or evicted by size.
func NewResultCache(ttl time.Duration, maxSize int) *ResultCache {
	expiration, cleanup := ttl, ttl*2
	if ttl <= 0 {
		expiration, cleanup = cache.NoExpiration, 0
	}
	return &ResultCache{
		cache:   cache.New(expiration, cleanup),
		ttl:     expiration,
		maxSize: maxSize,
	}
}

// Get retrieves a cached result
func (rc *ResultCache) Get(key CacheKey) (models.EstimationResult, bool) {
	if value, found := rc.cache.Get(key.String()); found {
		if result, ok := value.(models.EstimationResult); ok {
			rc.hits.Add(1)
			rc.updateMetrics()
			return result, true
		}
	}

	rc.misses.Add(1)
	rc.updateMetrics()
	return models.EstimationResult{}, false
}

// Set stores a result in cache
func (rc *ResultCache) Set(key CacheKey, result models.EstimationResult) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.maxSize > 0 && rc.cache.ItemCount() >= rc.maxSize {
		rc.cache.DeleteExpired()
		if rc.cache.ItemCount() >= rc.maxSize {
			rc.cache.Flush()
		}
	}

	rc.cache.Set(key.String(), result, rc.ttl)
}

// InvalidatePool removes every entry computed against poolID
func (rc *ResultCache) InvalidatePool(poolID string) int {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	prefix := poolPrefix(poolID)
	removed := 0
	for k := range rc.cache.Items() {
		if strings.HasPrefix(k, prefix) {
			rc.cache.Delete(k)
			removed++
		}
	}
	return removed
}

// Clear flushes the entire cache
func (rc *ResultCache) Clear() {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.cache.Flush()
	rc.hits.Store(0)
	rc.misses.Store(0)
}

// Stats returns cache statistics
func (rc *ResultCache) Stats() (hits, misses uint64, ratio float64) {
	hits = rc.hits.Load()
	misses = rc.misses.Load()
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// ItemCount returns the number of items in cache
func (rc *ResultCache) ItemCount() int {
	return rc.cache.ItemCount()
}

func (rc *ResultCache) updateMetrics() {
	_, _, ratio := rc.Stats()
	metrics.UpdateCacheStats(ratio, rc.cache.ItemCount())
}
