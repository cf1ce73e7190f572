package datasource

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/yourusername/prize-odds/internal/config"
	"github.com/yourusername/prize-odds/internal/logger"
	"github.com/yourusername/prize-odds/internal/metrics"
)

// Stream message ops
const (
	StreamOpSubscribe = "subscribe"
	StreamOpSnapshot  = "snapshot"
	StreamOpHeartbeat = "heartbeat"
	StreamOpError     = "error"
)

// ReconnectConfig controls reconnection behavior
type ReconnectConfig struct {
	// MaxRetries bounds consecutive failed connection attempts; 0 retries forever
	MaxRetries        int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// DefaultReconnectConfig returns default reconnection configuration
func DefaultReconnectConfig() ReconnectConfig {
	return ReconnectConfig{
		MaxRetries:        10,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 2,
	}
}

// ReconnectConfigFromStream maps the stream configuration section
func ReconnectConfigFromStream(cfg config.StreamConfig) ReconnectConfig {
	rc := DefaultReconnectConfig()
	rc.MaxRetries = cfg.MaxRetries
	if cfg.InitialBackoffMs > 0 {
		rc.InitialBackoff = time.Duration(cfg.InitialBackoffMs) * time.Millisecond
	}
	if cfg.MaxBackoffMs > 0 {
		rc.MaxBackoff = time.Duration(cfg.MaxBackoffMs) * time.Millisecond
	}
	return rc
}

type subscribeMessage struct {
	Op    string   `json:"op"`
	Pools []string `json:"pools"`
}

// StreamSubscriber receives pushed pool snapshots over a websocket and applies
// them to a sink. Messages look like
//
//	{"op":"snapshot","pool_id":"usdc-mainnet","data":{...provider document...}}
type StreamSubscriber struct {
	url       string
	header    http.Header
	pools     []string
	paths     FieldPaths
	sink      SnapshotSink
	reconnect ReconnectConfig
	dialer    *websocket.Dialer
	logger    *logger.SnapshotLogger

	mu              sync.RWMutex
	connected       bool
	lastMessageTime time.Time
}

// NewStreamSubscriber creates a new stream subscriber
func NewStreamSubscriber(url string, pools []string, paths FieldPaths, sink SnapshotSink, reconnect ReconnectConfig, baseLogger *logrus.Logger) *StreamSubscriber {
	if paths == (FieldPaths{}) {
		paths = DefaultFieldPaths()
	}
	return &StreamSubscriber{
		url:       url,
		header:    http.Header{},
		pools:     pools,
		paths:     paths,
		sink:      sink,
		reconnect: reconnect,
		dialer:    &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		logger:    logger.NewSnapshotLogger(baseLogger),
	}
}

// SetHeader adds a header sent with every handshake
func (s *StreamSubscriber) SetHeader(key, value string) {
	s.header.Set(key, value)
}

// Name returns the name of the data source
func (s *StreamSubscriber) Name() string {
	return "stream"
}

// Run connects, subscribes and applies snapshots until ctx is cancelled or the
// retry budget is exhausted. Each dropped session is followed by a backoff.
func (s *StreamSubscriber) Run(ctx context.Context) error {
	backoff := s.reconnect.InitialBackoff
	failures := 0

	for {
		received, err := s.session(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if received {
			failures = 0
			backoff = s.reconnect.InitialBackoff
		} else {
			failures++
		}

		if s.reconnect.MaxRetries > 0 && failures > s.reconnect.MaxRetries {
			return fmt.Errorf("snapshot stream gave up after %d attempts: %w", failures, err)
		}

		s.logger.LogStreamEvent("reconnecting", logrus.Fields{
			"attempt":    failures,
			"backoff_ms": backoff.Milliseconds(),
			"error":      errString(err),
		})
		metrics.RecordStreamReconnect()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = s.nextBackoff(backoff)
	}
}

func (s *StreamSubscriber) nextBackoff(current time.Duration) time.Duration {
	multiplier := s.reconnect.BackoffMultiplier
	if multiplier < 1 {
		multiplier = 2
	}
	next := time.Duration(float64(current) * multiplier)
	if next <= 0 {
		next = time.Second
	}
	if s.reconnect.MaxBackoff > 0 && next > s.reconnect.MaxBackoff {
		next = s.reconnect.MaxBackoff
	}
	return next
}

// session runs one connection. received reports whether any message arrived.
func (s *StreamSubscriber) session(ctx context.Context) (received bool, err error) {
	conn, _, err := s.dialer.DialContext(ctx, s.url, s.header)
	if err != nil {
		return false, fmt.Errorf("failed to connect to stream: %w", err)
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()
	defer conn.Close()

	s.setConnected(true)
	defer s.setConnected(false)
	s.logger.LogStreamEvent("connected", logrus.Fields{"pools": len(s.pools)})

	if err := conn.WriteJSON(subscribeMessage{Op: StreamOpSubscribe, Pools: s.pools}); err != nil {
		return false, fmt.Errorf("failed to subscribe: %w", err)
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return received, err
		}
		received = true
		s.touch()
		s.handleMessage(data)
	}
}

func (s *StreamSubscriber) handleMessage(data []byte) {
	if !gjson.ValidBytes(data) {
		metrics.RecordStreamMessage("unknown", "invalid")
		s.logger.LogStreamEvent("invalid_message", logrus.Fields{"bytes": len(data)})
		return
	}

	msg := gjson.ParseBytes(data)
	op := msg.Get("op").String()

	switch op {
	case StreamOpSnapshot:
		poolID := msg.Get("pool_id").String()
		snapshot, err := ParseSnapshot([]byte(msg.Get("data").Raw), poolID, s.paths)
		if err != nil {
			metrics.RecordStreamMessage(op, "invalid")
			s.logger.LogSnapshotError(poolID, s.Name(), err)
			return
		}
		if _, err := s.sink.Apply(s.Name(), snapshot); err != nil {
			metrics.RecordStreamMessage(op, "rejected")
			return
		}
		metrics.RecordStreamMessage(op, "applied")
	case StreamOpHeartbeat:
		metrics.RecordStreamMessage(op, "ok")
	case StreamOpError:
		metrics.RecordStreamMessage(op, "ok")
		s.logger.LogStreamEvent("provider_error", logrus.Fields{"message": msg.Get("message").String()})
	default:
		metrics.RecordStreamMessage("unknown", "ignored")
	}
}

func (s *StreamSubscriber) setConnected(connected bool) {
	s.mu.Lock()
	s.connected = connected
	s.mu.Unlock()
}

func (s *StreamSubscriber) touch() {
	s.mu.Lock()
	s.lastMessageTime = time.Now()
	s.mu.Unlock()
}

// IsConnected returns whether the stream is connected
func (s *StreamSubscriber) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// LastMessageTime returns the time of the last received message
func (s *StreamSubscriber) LastMessageTime() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastMessageTime
}

// Ping fails while the stream is disconnected and has been silent for longer
// than twice the maximum reconnect backoff. A short drop between reconnects is
// still healthy.
func (s *StreamSubscriber) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.IsConnected() {
		return nil
	}

	last := s.LastMessageTime()
	if last.IsZero() {
		return fmt.Errorf("%w: never connected to %s", ErrStreamDisconnected, s.url)
	}
	if quiet := time.Since(last); quiet > s.staleAfter() {
		return fmt.Errorf("%w: no message for %s", ErrStreamDisconnected, quiet.Round(time.Second))
	}
	return nil
}

func (s *StreamSubscriber) staleAfter() time.Duration {
	if s.reconnect.MaxBackoff <= 0 {
		return time.Minute
	}
	return 2 * s.reconnect.MaxBackoff
}

func errString(err error) string {
	if err == nil || errors.Is(err, context.Canceled) {
		return ""
	}
	return err.Error()
}
