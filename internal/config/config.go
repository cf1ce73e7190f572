// Package config provides configuration management for the prize odds service.
package config

import (
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app" validate:"required"`
	Provider ProviderConfig `mapstructure:"provider" validate:"required"`
	Stream   StreamConfig   `mapstructure:"stream"`
	Pools    []PoolConfig   `mapstructure:"pools" validate:"required,min=1,dive"`
	Refresh  RefreshConfig  `mapstructure:"refresh" validate:"required"`
	Cache    CacheConfig    `mapstructure:"cache" validate:"required"`
	API      APIConfig      `mapstructure:"api" validate:"required"`
	Health   HealthConfig   `mapstructure:"health" validate:"required"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Display  DisplayConfig  `mapstructure:"display"`
	Secrets  SecretsConfig  `mapstructure:"secrets"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// ProviderConfig represents the pool statistics HTTP provider
type ProviderConfig struct {
	BaseURL           string       `mapstructure:"base_url" validate:"required,url"`
	APIKey            string       `mapstructure:"api_key"`
	APIKeyHeader      string       `mapstructure:"api_key_header"`
	TimeoutSeconds    int          `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxRetries        int          `mapstructure:"max_retries" validate:"gte=0"`
	RetryWaitMinMs    int          `mapstructure:"retry_wait_min_ms" validate:"gte=0"`
	RetryWaitMaxMs    int          `mapstructure:"retry_wait_max_ms" validate:"gtefield=RetryWaitMinMs"`
	RateLimit         float64      `mapstructure:"rate_limit" validate:"required,gt=0"`
	CircuitBreakerMax int          `mapstructure:"circuit_breaker_max" validate:"required,gt=0"`
	Fields            FieldsConfig `mapstructure:"fields"`
}

// FieldsConfig holds gjson paths of snapshot fields in provider responses
type FieldsConfig struct {
	NumberOfPrizes string `mapstructure:"number_of_prizes"`
	Decimals       string `mapstructure:"decimals"`
	TotalSupply    string `mapstructure:"total_supply"`
}

// StreamConfig represents the optional websocket snapshot stream
type StreamConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	URL              string `mapstructure:"url"`
	MaxRetries       int    `mapstructure:"max_retries" validate:"gte=0"`
	InitialBackoffMs int    `mapstructure:"initial_backoff_ms" validate:"gte=0"`
	MaxBackoffMs     int    `mapstructure:"max_backoff_ms" validate:"gte=0"`
}

// PoolConfig represents a prize pool to track
type PoolConfig struct {
	ID   string `mapstructure:"id" validate:"required"`
	Name string `mapstructure:"name"`
}

// RefreshConfig represents snapshot refresh scheduling
type RefreshConfig struct {
	Schedule       string `mapstructure:"schedule" validate:"required,schedule"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	RefreshOnStart bool   `mapstructure:"refresh_on_start"`
}

// CacheConfig represents the estimation memo cache
type CacheConfig struct {
	TTLSeconds int `mapstructure:"ttl_seconds" validate:"required,gt=0"`
	MaxSize    int `mapstructure:"max_size" validate:"required,gt=0"`
}

// APIConfig represents the odds HTTP API
type APIConfig struct {
	Port           int      `mapstructure:"port" validate:"required,min=1,max=65535"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// HealthConfig represents the health check server
type HealthConfig struct {
	Port int `mapstructure:"port" validate:"required,min=1,max=65535"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// DisplayConfig represents odds rendering defaults
type DisplayConfig struct {
	Locale      string `mapstructure:"locale"`
	EmptyString string `mapstructure:"empty_string"`
}

// SecretsConfig represents the AWS Secrets Manager overlay
type SecretsConfig struct {
	AWSEnabled bool   `mapstructure:"aws_enabled"`
	Region     string `mapstructure:"region"`
	SecretName string `mapstructure:"secret_name"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// PoolIDs returns the configured pool identifiers in order
func (c *Config) PoolIDs() []string {
	ids := make([]string, 0, len(c.Pools))
	for _, pool := range c.Pools {
		ids = append(ids, pool.ID)
	}
	return ids
}

// ProviderTimeout returns the provider request timeout
func (c *Config) ProviderTimeout() time.Duration {
	return time.Duration(c.Provider.TimeoutSeconds) * time.Second
}

// RefreshTimeout returns the per-run refresh timeout
func (c *Config) RefreshTimeout() time.Duration {
	return time.Duration(c.Refresh.TimeoutSeconds) * time.Second
}

// CacheTTL returns the estimation cache TTL
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}
