// Package logger provides odds-estimation logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// OddsLogger provides dedicated logging for odds estimations.
type OddsLogger struct {
	*logrus.Entry
}

// NewOddsLogger creates a new odds logger.
func NewOddsLogger(baseLogger *logrus.Logger) *OddsLogger {
	if baseLogger == nil {
		baseLogger = Discard()
	}
	return &OddsLogger{
		Entry: baseLogger.WithField("component", "odds"),
	}
}

// LogEstimation logs a computed or memoised estimation.
func (ol *OddsLogger) LogEstimation(poolID string, snapshotVersion uint64, action string, odds float64, cacheHit bool) {
	ol.WithFields(logrus.Fields{
		"pool_id":          poolID,
		"snapshot_version": snapshotVersion,
		"action":           action,
		"odds":             odds,
		"cache_hit":        cacheHit,
	}).Debug("Odds estimation served")
}

// LogNotFetched logs an estimation answered before its inputs were ready.
func (ol *OddsLogger) LogNotFetched(poolID string, state string, amountMissing bool) {
	ol.WithFields(logrus.Fields{
		"pool_id":        poolID,
		"state":          state,
		"amount_missing": amountMissing,
	}).Debug("Odds estimation not ready")
}

// LogEstimationError logs a rejected estimation.
func (ol *OddsLogger) LogEstimationError(poolID string, action string, err error) {
	ol.WithFields(logrus.Fields{
		"pool_id": poolID,
		"action":  action,
	}).WithError(err).Warn("Odds estimation rejected")
}
