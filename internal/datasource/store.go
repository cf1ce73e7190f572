package datasource

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/prize-odds/internal/logger"
	"github.com/yourusername/prize-odds/internal/metrics"
	"github.com/yourusername/prize-odds/internal/models"
)

// anyGeneration accepts a snapshot regardless of what was stored meanwhile
const anyGeneration = ^uint64(0)

// SnapshotStore holds the latest accepted snapshot for each configured pool.
// A pool with no snapshot is awaiting its first fetch. A failed refresh keeps
// the previous snapshot, so a pool never goes back to awaiting once fetched.
// A fetch that completes after a newer snapshot was accepted for the same pool
// is dropped.
type SnapshotStore struct {
	mu          sync.RWMutex
	pools       map[string]struct{}
	snapshots   map[string]*models.OddsDataSnapshot
	generations map[string]uint64
	version     uint64

	fetcher Fetcher
	logger  *logger.SnapshotLogger
	now     func() time.Time
}

// NewSnapshotStore creates a store for the given pools. fetcher may be nil when
// snapshots only arrive through Apply.
func NewSnapshotStore(fetcher Fetcher, poolIDs []string, baseLogger *logrus.Logger) *SnapshotStore {
	pools := make(map[string]struct{}, len(poolIDs))
	for _, id := range poolIDs {
		pools[id] = struct{}{}
	}

	return &SnapshotStore{
		pools:       pools,
		snapshots:   make(map[string]*models.OddsDataSnapshot, len(poolIDs)),
		generations: make(map[string]uint64, len(poolIDs)),
		fetcher:     fetcher,
		logger:      logger.NewSnapshotLogger(baseLogger),
		now:         time.Now,
	}
}

// Refresh fetches the pool's current statistics and makes them the pool's snapshot.
// If another snapshot for the pool was accepted while the fetch was in flight, the
// fetched data is discarded and the newer snapshot is returned.
func (s *SnapshotStore) Refresh(ctx context.Context, poolID string) (*models.OddsDataSnapshot, error) {
	if s.fetcher == nil {
		return nil, errors.New("snapshot store has no fetcher")
	}
	if !s.knows(poolID) {
		return nil, fmt.Errorf("%w: %s", models.ErrUnknownPool, poolID)
	}

	source := s.fetcher.Name()
	generation := s.generation(poolID)
	start := time.Now()

	fetched, err := s.fetcher.Fetch(ctx, poolID)
	elapsed := time.Since(start)
	if err != nil {
		metrics.RecordSnapshotRefresh(poolID, source, "error", elapsed.Seconds())
		s.logger.LogSnapshotError(poolID, source, err)
		return nil, fmt.Errorf("refresh pool %s: %w", poolID, err)
	}

	accepted, err := s.accept(fetched, generation)
	if errors.Is(err, errSuperseded) {
		metrics.RecordSnapshotRefresh(poolID, source, "superseded", elapsed.Seconds())
		s.logger.LogSnapshotSuperseded(poolID, source, accepted.Version)
		return accepted, nil
	}
	if err != nil {
		metrics.RecordSnapshotRefresh(poolID, source, "invalid", elapsed.Seconds())
		s.logger.LogSnapshotError(poolID, source, err)
		return nil, fmt.Errorf("refresh pool %s: %w", poolID, err)
	}

	metrics.RecordSnapshotRefresh(poolID, source, "success", elapsed.Seconds())
	s.logger.LogSnapshotRefresh(poolID, source, accepted.Version, accepted.NumberOfPrizes, accepted.TotalSupply.String(), elapsed)
	return accepted, nil
}

// RefreshAll refreshes every configured pool and joins the failures
func (s *SnapshotStore) RefreshAll(ctx context.Context) error {
	var errs []error
	for _, poolID := range s.Pools() {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if _, err := s.Refresh(ctx, poolID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Apply accepts a snapshot pushed by source, stamping it with the next version
func (s *SnapshotStore) Apply(source string, snapshot *models.OddsDataSnapshot) (*models.OddsDataSnapshot, error) {
	if snapshot != nil && !s.knows(snapshot.PoolID) {
		return nil, fmt.Errorf("%w: %s", models.ErrUnknownPool, snapshot.PoolID)
	}

	accepted, err := s.accept(snapshot, anyGeneration)
	if err != nil {
		poolID := ""
		if snapshot != nil {
			poolID = snapshot.PoolID
		}
		metrics.RecordSnapshotRefresh(poolID, source, "invalid", 0)
		s.logger.LogSnapshotError(poolID, source, err)
		return nil, err
	}

	metrics.RecordSnapshotRefresh(accepted.PoolID, source, "success", 0)
	s.logger.LogSnapshotRefresh(accepted.PoolID, source, accepted.Version, accepted.NumberOfPrizes, accepted.TotalSupply.String(), 0)
	return accepted, nil
}

var errSuperseded = errors.New("snapshot superseded")

// accept stores snapshot as the pool's current one. Unless generation is
// anyGeneration, the pool must not have accepted anything since generation was
// read; otherwise the stored snapshot is returned with errSuperseded.
func (s *SnapshotStore) accept(snapshot *models.OddsDataSnapshot, generation uint64) (*models.OddsDataSnapshot, error) {
	if err := snapshot.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if generation != anyGeneration && s.generations[snapshot.PoolID] != generation {
		current := s.snapshots[snapshot.PoolID]
		s.mu.Unlock()
		return current, errSuperseded
	}
	s.version++
	s.generations[snapshot.PoolID]++
	accepted := snapshot.WithVersion(s.version, s.now().UTC())
	s.snapshots[accepted.PoolID] = accepted
	s.mu.Unlock()

	metrics.UpdateSnapshot(accepted.PoolID, accepted.Version, accepted.Supply().Float(accepted.Decimals), accepted.NumberOfPrizes)
	return accepted, nil
}

func (s *SnapshotStore) generation(poolID string) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generations[poolID]
}

// Snapshot returns the pool's current snapshot, if it has been fetched
func (s *SnapshotStore) Snapshot(poolID string) (*models.OddsDataSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot, ok := s.snapshots[poolID]
	return snapshot, ok
}

// State returns the pool's readiness
func (s *SnapshotStore) State(poolID string) models.SnapshotState {
	if _, ok := s.Snapshot(poolID); ok {
		return models.SnapshotStateReady
	}
	return models.SnapshotStateAwaiting
}

// Pools returns the configured pool ids in sorted order
func (s *SnapshotStore) Pools() []string {
	ids := make([]string, 0, len(s.pools))
	for id := range s.pools {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Knows reports whether poolID is configured
func (s *SnapshotStore) Knows(poolID string) bool {
	return s.knows(poolID)
}

func (s *SnapshotStore) knows(poolID string) bool {
	_, ok := s.pools[poolID]
	return ok
}

// Ping reports an error naming every pool that has never been fetched
func (s *SnapshotStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var missing []string
	for _, poolID := range s.Pools() {
		if _, ok := s.Snapshot(poolID); !ok {
			missing = append(missing, poolID)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: awaiting snapshot for %s", models.ErrSnapshotNotFound, strings.Join(missing, ", "))
	}
	return nil
}
