package datasource

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/prize-odds/internal/config"
)

// Factory builds the snapshot provider components described by configuration
type Factory struct {
	logger *logrus.Logger
	config *config.Config
}

// NewFactory creates a new data source factory
func NewFactory(cfg *config.Config, logger *logrus.Logger) *Factory {
	return &Factory{
		logger: logger,
		config: cfg,
	}
}

// NewHTTPClient creates the provider HTTP client
func (f *Factory) NewHTTPClient() *RateLimitedHTTPClient {
	return NewRateLimitedHTTPClient(HTTPClientConfigFromProvider(f.config.Provider), f.logger)
}

// NewFetcher creates the pool statistics fetcher
func (f *Factory) NewFetcher(httpClient *RateLimitedHTTPClient) (Fetcher, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("HTTP client is required")
	}
	if f.config.Provider.BaseURL == "" {
		return nil, fmt.Errorf("provider base URL is required")
	}

	return NewHTTPFetcher(httpClient, HTTPFetcherConfig{
		BaseURL:      f.config.Provider.BaseURL,
		APIKey:       f.config.Provider.APIKey,
		APIKeyHeader: f.config.Provider.APIKeyHeader,
		Paths:        FieldPathsFromConfig(f.config.Provider.Fields),
	}, f.logger), nil
}

// NewStore creates a snapshot store for every configured pool
func (f *Factory) NewStore(fetcher Fetcher) *SnapshotStore {
	return NewSnapshotStore(fetcher, f.config.PoolIDs(), f.logger)
}

// NewStreamSubscriber creates the push subscriber, or returns nil when the stream is disabled
func (f *Factory) NewStreamSubscriber(sink SnapshotSink) (*StreamSubscriber, error) {
	if !f.config.Stream.Enabled {
		return nil, nil
	}
	if f.config.Stream.URL == "" {
		return nil, fmt.Errorf("stream URL is required when the stream is enabled")
	}

	subscriber := NewStreamSubscriber(
		f.config.Stream.URL,
		f.config.PoolIDs(),
		FieldPathsFromConfig(f.config.Provider.Fields),
		sink,
		ReconnectConfigFromStream(f.config.Stream),
		f.logger,
	)
	if f.config.Provider.APIKey != "" {
		header := f.config.Provider.APIKeyHeader
		if header == "" {
			header = "X-API-Key"
		}
		subscriber.SetHeader(header, f.config.Provider.APIKey)
	}

	if f.logger != nil {
		f.logger.WithField("url", f.config.Stream.URL).Info("Created snapshot stream subscriber")
	}
	return subscriber, nil
}
