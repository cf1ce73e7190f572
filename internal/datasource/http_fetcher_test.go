package datasource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClientConfig() HTTPClientConfig {
	cfg := DefaultHTTPClientConfig()
	cfg.MaxRetries = 0
	cfg.RetryWaitMin = time.Millisecond
	cfg.RetryWaitMax = time.Millisecond
	cfg.RateLimit = 1000
	return cfg
}

func newTestFetcher(serverURL string, cfg HTTPClientConfig) *HTTPFetcher {
	client := NewRateLimitedHTTPClient(cfg, nil)
	return NewHTTPFetcher(client, HTTPFetcherConfig{BaseURL: serverURL + "/", APIKey: "secret-key"}, nil)
}

func TestHTTPFetcherFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pools/usdc%20mainnet", r.URL.EscapedPath())
		assert.Equal(t, "secret-key", r.Header.Get("X-API-Key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"numberOfPrizes": 4, "decimals": "18", "totalSupply": "10000"}`))
	}))
	defer server.Close()

	fetcher := newTestFetcher(server.URL, testClientConfig())
	snapshot, err := fetcher.Fetch(context.Background(), "usdc mainnet")
	require.NoError(t, err)

	assert.Equal(t, "http", fetcher.Name())
	assert.Equal(t, "usdc mainnet", snapshot.PoolID)
	assert.Equal(t, 4, snapshot.NumberOfPrizes)
	assert.Equal(t, "10000", snapshot.TotalSupply.String())
}

func TestHTTPFetcherStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		code   string
		target error
	}{
		{name: "not found", status: http.StatusNotFound, code: ErrCodeNotFound, target: ErrNotFound},
		{name: "unauthorized", status: http.StatusUnauthorized, code: ErrCodeAuthenticationFailed, target: ErrAuthenticationFailed},
		{name: "forbidden", status: http.StatusForbidden, code: ErrCodeAuthenticationFailed, target: ErrAuthenticationFailed},
		{name: "rate limited", status: http.StatusTooManyRequests, code: ErrCodeRateLimitExceeded, target: ErrRateLimitExceeded},
		{name: "server error", status: http.StatusInternalServerError, code: ErrCodeServerError, target: ErrServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			_, err := newTestFetcher(server.URL, testClientConfig()).Fetch(context.Background(), "pool")
			require.Error(t, err)

			var dsErr DataSourceError
			require.True(t, errors.As(err, &dsErr))
			assert.Equal(t, tt.code, dsErr.Code)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestHTTPFetcherInvalidBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"numberOfPrizes": 4}`))
	}))
	defer server.Close()

	_, err := newTestFetcher(server.URL, testClientConfig()).Fetch(context.Background(), "pool")
	assert.ErrorIs(t, err, ErrInvalidData)
}

func TestHTTPFetcherNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestFetcher(url, testClientConfig()).Fetch(context.Background(), "pool")
	assert.ErrorIs(t, err, ErrNetworkError)
}

func TestHTTPClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"numberOfPrizes": 1, "decimals": 0, "totalSupply": 5}`))
	}))
	defer server.Close()

	cfg := testClientConfig()
	cfg.MaxRetries = 3
	snapshot, err := newTestFetcher(server.URL, cfg).Fetch(context.Background(), "pool")
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, "5", snapshot.TotalSupply.String())
}

func TestHTTPClientCircuitBreaker(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	cfg := testClientConfig()
	cfg.CircuitBreakerMax = 2
	cfg.CircuitCooldown = time.Hour
	client := NewRateLimitedHTTPClient(cfg, nil)

	for i := 0; i < 2; i++ {
		resp, err := client.Get(context.Background(), server.URL)
		require.NoError(t, err)
		resp.Body.Close()
	}
	assert.True(t, client.IsOpen())

	_, err := client.Get(context.Background(), server.URL)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(2), calls.Load())

	client.Reset()
	assert.False(t, client.IsOpen())
}

func TestHTTPClientCircuitBreakerHalfOpen(t *testing.T) {
	var healthy atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := testClientConfig()
	cfg.CircuitBreakerMax = 1
	cfg.CircuitCooldown = 10 * time.Millisecond
	client := NewRateLimitedHTTPClient(cfg, nil)

	resp, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)
	resp.Body.Close()
	require.True(t, client.IsOpen())

	healthy.Store(true)
	time.Sleep(20 * time.Millisecond)

	resp, err = client.Get(context.Background(), server.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.False(t, client.IsOpen())
}
