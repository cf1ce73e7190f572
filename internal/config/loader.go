// Package config provides configuration management for the prize odds service.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables overriding configuration keys
const EnvPrefix = "PRIZE_ODDS"

// DefaultConfigPath is used when no path is given
const DefaultConfigPath = "config/config.yaml"

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional fields.
// A missing file is not an error: defaults and environment variables are used instead.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}

	v := newViper()
	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	// PRIZE_ODDS_PROVIDER_BASE_URL overrides provider.base_url
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "prize-odds")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("provider.api_key_header", "X-API-Key")
	v.SetDefault("provider.timeout_seconds", 10)
	v.SetDefault("provider.max_retries", 3)
	v.SetDefault("provider.retry_wait_min_ms", 100)
	v.SetDefault("provider.retry_wait_max_ms", 5000)
	v.SetDefault("provider.rate_limit", 5.0)
	v.SetDefault("provider.circuit_breaker_max", 5)
	v.SetDefault("provider.fields.number_of_prizes", "numberOfPrizes")
	v.SetDefault("provider.fields.decimals", "decimals")
	v.SetDefault("provider.fields.total_supply", "totalSupply")

	v.SetDefault("stream.enabled", false)
	v.SetDefault("stream.initial_backoff_ms", 1000)
	v.SetDefault("stream.max_backoff_ms", 30000)

	v.SetDefault("refresh.schedule", "@every 30s")
	v.SetDefault("refresh.timeout_seconds", 20)
	v.SetDefault("refresh.refresh_on_start", true)

	v.SetDefault("cache.ttl_seconds", 300)
	v.SetDefault("cache.max_size", 10000)

	v.SetDefault("api.port", 8081)
	v.SetDefault("api.allowed_origins", []string{"*"})
	v.SetDefault("health.port", 8080)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("display.locale", "en")
}
