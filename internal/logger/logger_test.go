package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	if err != nil {
		return nil
	}
	return logEntry
}

func TestNewLoggerWithOutputProductionJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewLoggerWithOutput("debug", "production", buf)

	log.Info("hello")

	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	entry := parseLogOutput(buf)
	require.NotNil(t, entry)
	assert.Equal(t, "hello", entry["msg"])
}

func TestNewLoggerWithOutputInvalidLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewLoggerWithOutput("chatty", "development", buf)

	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.Contains(t, buf.String(), "Invalid log level")
}

func TestOddsLoggerEstimation(t *testing.T) {
	log, buf := setupTestLogger()
	oddsLogger := NewOddsLogger(log)

	oddsLogger.LogEstimation("usdc-pool", 3, "DEPOSIT", 0.25, true)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "odds", logEntry["component"])
	assert.Equal(t, "usdc-pool", logEntry["pool_id"])
	assert.Equal(t, "DEPOSIT", logEntry["action"])
	assert.Equal(t, true, logEntry["cache_hit"])
}

func TestOddsLoggerEstimationError(t *testing.T) {
	log, buf := setupTestLogger()
	NewOddsLogger(log).LogEstimationError("usdc-pool", "WITHDRAW", errors.New("invalid projection"))

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "warning", logEntry["level"])
	assert.Equal(t, "invalid projection", logEntry["error"])
}

func TestSnapshotLoggerRefresh(t *testing.T) {
	log, buf := setupTestLogger()
	NewSnapshotLogger(log).LogSnapshotRefresh("usdc-pool", "http", 2, 4, "10000", 150*time.Millisecond)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "snapshot", logEntry["component"])
	assert.Equal(t, float64(2), logEntry["version"])
	assert.Equal(t, float64(150), logEntry["duration_ms"])
	assert.Equal(t, "10000", logEntry["total_supply"])
}

func TestAccessLoggerServerError(t *testing.T) {
	log, buf := setupTestLogger()
	NewAccessLogger(log).LogRequest("req-1", "GET", "/v1/pools/x/odds", 500, time.Second)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "error", logEntry["level"])
	assert.Equal(t, "api", logEntry["component"])
}

func TestComponentLoggersAcceptNilBase(t *testing.T) {
	assert.NotPanics(t, func() {
		NewOddsLogger(nil).LogNotFetched("p", "AWAITING_SNAPSHOT", false)
		NewSnapshotLogger(nil).LogStreamEvent("connected", logrus.Fields{"url": "ws://x"})
		NewAccessLogger(nil).LogRequest("r", "GET", "/", 200, 0)
	})
}
