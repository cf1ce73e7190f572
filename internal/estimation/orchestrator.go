package estimation

import (
	"errors"
	"math/big"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/prize-odds/internal/logger"
	"github.com/yourusername/prize-odds/internal/metrics"
	"github.com/yourusername/prize-odds/internal/models"
	"github.com/yourusername/prize-odds/internal/odds"
)

// SnapshotSource provides the current snapshot of a pool
type SnapshotSource interface {
	Snapshot(poolID string) (*models.OddsDataSnapshot, bool)
}

// EstimateFunc computes odds from raw inputs. odds.EstimateOdds is the default.
type EstimateFunc func(
	amount *big.Int,
	totalSupply *big.Int,
	numberOfPrizes int,
	decimals int,
	action models.EstimateAction,
	change *big.Int,
) (models.EstimationResult, error)

// Orchestrator answers estimation requests against the latest snapshot of each pool.
// It is safe for concurrent use.
type Orchestrator struct {
	source   SnapshotSource
	cache    *ResultCache
	estimate EstimateFunc
	logger   *logger.OddsLogger
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithEstimateFunc replaces the odds computation
func WithEstimateFunc(fn EstimateFunc) Option {
	return func(o *Orchestrator) {
		o.estimate = fn
	}
}

// WithCache replaces the default result cache
func WithCache(c *ResultCache) Option {
	return func(o *Orchestrator) {
		o.cache = c
	}
}

// NewOrchestrator creates an orchestrator reading snapshots from source
func NewOrchestrator(source SnapshotSource, baseLogger *logrus.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		source:   source,
		estimate: odds.EstimateOdds,
		logger:   logger.NewOddsLogger(baseLogger),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.cache == nil {
		o.cache = NewResultCache(0, 10000)
	}
	return o
}

// State reports whether a snapshot is available for poolID
func (o *Orchestrator) State(poolID string) models.SnapshotState {
	if _, ok := o.source.Snapshot(poolID); ok {
		return models.SnapshotStateReady
	}
	return models.SnapshotStateAwaiting
}

// Estimate returns the odds for req. The result is not fetched while the pool is
// awaiting its first snapshot or the request has no amount. Results are memoised
// per snapshot version, so a new snapshot recomputes.
func (o *Orchestrator) Estimate(poolID string, req models.EstimationRequest) (models.Estimation, error) {
	snapshot, ok := o.source.Snapshot(poolID)
	if !ok || req.Amount == nil {
		metrics.RecordNotFetched()
		o.logger.LogNotFetched(poolID, string(o.State(poolID)), req.Amount == nil)
		return models.Estimation{}, nil
	}

	action := req.NormalizedAction()
	key := NewCacheKey(snapshot, req)
	if cached, hit := o.cache.Get(key); hit {
		metrics.RecordEstimation(action.String(), true)
		o.logger.LogEstimation(poolID, snapshot.Version, action.String(), cached.Odds, true)
		return models.Estimation{IsFetched: true, Data: &cached}, nil
	}

	result, err := o.estimate(
		req.Amount,
		snapshot.TotalSupply,
		snapshot.NumberOfPrizes,
		snapshot.Decimals,
		action,
		req.Change,
	)
	if err != nil {
		metrics.RecordEstimationError(errorReason(err))
		o.logger.LogEstimationError(poolID, action.String(), err)
		return models.Estimation{}, err
	}

	o.cache.Set(key, result)
	metrics.RecordEstimation(action.String(), false)
	o.logger.LogEstimation(poolID, snapshot.Version, action.String(), result.Odds, false)
	return models.Estimation{IsFetched: true, Data: &result}, nil
}

// Invalidate drops memoised results for poolID
func (o *Orchestrator) Invalidate(poolID string) {
	o.cache.InvalidatePool(poolID)
}

// Stats returns memo cache statistics
func (o *Orchestrator) Stats() (hits, misses uint64, ratio float64) {
	return o.cache.Stats()
}

func errorReason(err error) string {
	switch {
	case errors.Is(err, models.ErrInvalidProjection):
		return "invalid_projection"
	case errors.Is(err, models.ErrInvalidInput):
		return "invalid_input"
	default:
		return "unknown"
	}
}
