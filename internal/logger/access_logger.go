// Package logger provides API access logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AccessLogger provides dedicated API access logging.
type AccessLogger struct {
	*logrus.Entry
}

// NewAccessLogger creates a new access logger.
func NewAccessLogger(baseLogger *logrus.Logger) *AccessLogger {
	if baseLogger == nil {
		baseLogger = Discard()
	}
	return &AccessLogger{
		Entry: baseLogger.WithField("component", "api"),
	}
}

// LogRequest logs a served API request.
func (al *AccessLogger) LogRequest(requestID, method, path string, status int, duration time.Duration) {
	entry := al.WithFields(logrus.Fields{
		"request_id":  requestID,
		"method":      method,
		"path":        path,
		"status":      status,
		"duration_ms": duration.Milliseconds(),
	})
	if status >= 500 {
		entry.Error("API request failed")
		return
	}
	entry.Info("API request served")
}
