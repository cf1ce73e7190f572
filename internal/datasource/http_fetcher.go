package datasource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/prize-odds/internal/models"
)

const maxResponseBytes = 1 << 20

// HTTPFetcher reads pool statistics from a REST provider at {baseURL}/pools/{poolID}
type HTTPFetcher struct {
	client       *RateLimitedHTTPClient
	baseURL      string
	apiKey       string
	apiKeyHeader string
	paths        FieldPaths
	logger       *logrus.Entry
}

// HTTPFetcherConfig configures an HTTPFetcher
type HTTPFetcherConfig struct {
	BaseURL      string
	APIKey       string
	APIKeyHeader string
	Paths        FieldPaths
}

// NewHTTPFetcher creates a new HTTP pool statistics fetcher
func NewHTTPFetcher(client *RateLimitedHTTPClient, cfg HTTPFetcherConfig, logger *logrus.Logger) *HTTPFetcher {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	if cfg.Paths == (FieldPaths{}) {
		cfg.Paths = DefaultFieldPaths()
	}
	if cfg.APIKeyHeader == "" {
		cfg.APIKeyHeader = "X-API-Key"
	}

	return &HTTPFetcher{
		client:       client,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:       cfg.APIKey,
		apiKeyHeader: cfg.APIKeyHeader,
		paths:        cfg.Paths,
		logger:       logger.WithField("source", "http"),
	}
}

// Name returns the name of the data source
func (f *HTTPFetcher) Name() string {
	return "http"
}

// Fetch retrieves the pool's current statistics
func (f *HTTPFetcher) Fetch(ctx context.Context, poolID string) (*models.OddsDataSnapshot, error) {
	endpoint := f.baseURL + "/pools/" + url.PathEscape(poolID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, NewDataSourceError(f.Name(), ErrCodeUnknown, "failed to build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if f.apiKey != "" {
		req.Header.Set(f.apiKeyHeader, f.apiKey)
	}

	resp, err := f.client.Do(ctx, req)
	if err != nil {
		return nil, NewDataSourceError(f.Name(), ErrCodeNetworkError, "request failed", fmt.Errorf("%w: %v", ErrNetworkError, err))
	}
	defer resp.Body.Close()

	if err := f.checkStatus(resp, poolID); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, NewDataSourceError(f.Name(), ErrCodeNetworkError, "failed to read response", fmt.Errorf("%w: %v", ErrNetworkError, err))
	}

	snapshot, err := ParseSnapshot(body, poolID, f.paths)
	if err != nil {
		return nil, NewDataSourceError(f.Name(), ErrCodeInvalidData, "failed to parse pool statistics", err)
	}

	f.logger.WithFields(logrus.Fields{
		"pool_id":          poolID,
		"number_of_prizes": snapshot.NumberOfPrizes,
		"decimals":         snapshot.Decimals,
	}).Debug("Fetched pool statistics")

	return snapshot, nil
}

func (f *HTTPFetcher) checkStatus(resp *http.Response, poolID string) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return NewDataSourceError(f.Name(), ErrCodeNotFound, "pool "+poolID+" not found", ErrNotFound)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return NewDataSourceError(f.Name(), ErrCodeAuthenticationFailed, resp.Status, ErrAuthenticationFailed)
	case resp.StatusCode == http.StatusTooManyRequests:
		return NewDataSourceError(f.Name(), ErrCodeRateLimitExceeded, resp.Status, ErrRateLimitExceeded)
	case resp.StatusCode >= 500:
		return NewDataSourceError(f.Name(), ErrCodeServerError, resp.Status, ErrServerError)
	default:
		return NewDataSourceError(f.Name(), ErrCodeUnknown, resp.Status, errors.New("unexpected status"))
	}
}
