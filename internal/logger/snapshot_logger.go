// Package logger provides pool snapshot logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// SnapshotLogger provides dedicated logging for pool snapshot refreshes.
type SnapshotLogger struct {
	*logrus.Entry
}

// NewSnapshotLogger creates a new snapshot logger.
func NewSnapshotLogger(baseLogger *logrus.Logger) *SnapshotLogger {
	if baseLogger == nil {
		baseLogger = Discard()
	}
	return &SnapshotLogger{
		Entry: baseLogger.WithField("component", "snapshot"),
	}
}

// LogSnapshotRefresh logs an accepted snapshot.
func (sl *SnapshotLogger) LogSnapshotRefresh(poolID, source string, version uint64, numberOfPrizes int, totalSupply string, duration time.Duration) {
	sl.WithFields(logrus.Fields{
		"pool_id":          poolID,
		"source":           source,
		"version":          version,
		"number_of_prizes": numberOfPrizes,
		"total_supply":     totalSupply,
		"duration_ms":      duration.Milliseconds(),
	}).Info("Pool snapshot refreshed")
}

// LogSnapshotError logs a failed refresh. The previous snapshot, if any, stays current.
func (sl *SnapshotLogger) LogSnapshotError(poolID, source string, err error) {
	sl.WithFields(logrus.Fields{
		"pool_id": poolID,
		"source":  source,
	}).WithError(err).Error("Pool snapshot refresh failed")
}

// LogSnapshotSuperseded logs a fetch discarded because a newer snapshot arrived first.
func (sl *SnapshotLogger) LogSnapshotSuperseded(poolID, source string, currentVersion uint64) {
	sl.WithFields(logrus.Fields{
		"pool_id":         poolID,
		"source":          source,
		"current_version": currentVersion,
	}).Debug("Fetched snapshot superseded by a newer one")
}

// LogStreamEvent logs a snapshot stream lifecycle event.
func (sl *SnapshotLogger) LogStreamEvent(event string, fields logrus.Fields) {
	sl.WithFields(fields).WithField("event", event).Info("Snapshot stream event")
}
