// Package config loads and validates application configuration from a YAML
// file and environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultAPIKeyEnv is the environment variable holding the upstream API key.
const DefaultAPIKeyEnv = "RANSOMWARE_LIVE_API_KEY"

// Config is the root application configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Upstream      UpstreamConfig      `yaml:"upstream"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig describes the identity the gateway advertises to clients.
type ServerConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// UpstreamConfig describes the single upstream REST service.
type UpstreamConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
	// APIKeyEnv names the environment variable holding the API key. The
	// key itself never appears in the config file.
	APIKeyEnv      string               `yaml:"api_key_env"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`
	Retry          RetryConfig          `yaml:"retry"`
}

// APIKey resolves the upstream API key from the environment. An empty
// result is a fatal startup condition for the caller.
func (u UpstreamConfig) APIKey() (string, error) {
	env := u.APIKeyEnv
	if env == "" {
		env = DefaultAPIKeyEnv
	}
	key := os.Getenv(env)
	if key == "" {
		return "", fmt.Errorf("config: %s environment variable not set", env)
	}
	return key, nil
}

// CircuitBreakerConfig describes circuit breaker settings for the upstream.
type CircuitBreakerConfig struct {
	FailureThreshold   int           `yaml:"failure_threshold"`
	SuccessThreshold   int           `yaml:"success_threshold"`
	Timeout            time.Duration `yaml:"timeout"`
	ErrorRateThreshold float64       `yaml:"error_rate_threshold"`
	ErrorRateWindow    time.Duration `yaml:"error_rate_window"`
}

// RetryConfig describes retry settings for the upstream client. The whole
// catalog is read-only GET, so every call is safe to retry at this level.
type RetryConfig struct {
	MaxAttempts       int           `yaml:"max_attempts"`
	BackoffInitial    time.Duration `yaml:"backoff_initial"`
	BackoffMultiplier float64       `yaml:"backoff_multiplier"`
	BackoffMax        time.Duration `yaml:"backoff_max"`
}

// ObservabilityConfig describes logging, tracing, and metrics settings.
type ObservabilityConfig struct {
	LogLevel string        `yaml:"log_level"`
	Tracing  TracingConfig `yaml:"tracing"`
	Metrics  MetricsConfig `yaml:"metrics"`
}

// TracingConfig describes distributed tracing settings.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"sampling_rate"`
}

// MetricsConfig describes the optional ops HTTP listener that serves
// Prometheus metrics and health probes. The MCP wire itself runs on stdio.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Path    string `yaml:"path"`
}

// Defaults returns a Config with sensible default values.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Name:    "leakwatch",
			Version: "dev",
		},
		Upstream: UpstreamConfig{
			BaseURL:   "https://api-pro.ransomware.live",
			Timeout:   30 * time.Second,
			APIKeyEnv: DefaultAPIKeyEnv,
			CircuitBreaker: CircuitBreakerConfig{
				FailureThreshold: 5,
				SuccessThreshold: 2,
				Timeout:          30 * time.Second,
			},
			Retry: RetryConfig{
				MaxAttempts:       1,
				BackoffInitial:    100 * time.Millisecond,
				BackoffMultiplier: 2,
				BackoffMax:        2 * time.Second,
			},
		},
		Observability: ObservabilityConfig{
			LogLevel: "info",
			Tracing: TracingConfig{
				Exporter:     "otlp",
				SamplingRate: 0.1,
			},
			Metrics: MetricsConfig{
				Addr: ":9090",
				Path: "/metrics",
			},
		},
	}
}

// Load reads a YAML config file, applies environment variable overrides,
// and validates required fields. An empty path yields the defaults with
// environment overrides applied.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required fields are present and valid.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Name == "" {
		errs = append(errs, "server.name is required")
	}
	if c.Upstream.BaseURL == "" {
		errs = append(errs, "upstream.base_url is required")
	}
	if !strings.HasPrefix(c.Upstream.BaseURL, "http://") && !strings.HasPrefix(c.Upstream.BaseURL, "https://") {
		errs = append(errs, "upstream.base_url must be an http(s) origin")
	}
	if c.Upstream.Timeout < 0 {
		errs = append(errs, "upstream.timeout must not be negative")
	}
	if c.Observability.Metrics.Enabled && c.Observability.Metrics.Addr == "" {
		errs = append(errs, "observability.metrics.addr is required when metrics are enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// applyEnvOverrides reads LEAKWATCH_* environment variables and overrides
// config values. Only the most commonly overridden fields are supported.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LEAKWATCH_UPSTREAM_BASE_URL"); v != "" {
		cfg.Upstream.BaseURL = v
	}
	if v := os.Getenv("LEAKWATCH_UPSTREAM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Upstream.Timeout = d
		}
	}
	if v := os.Getenv("LEAKWATCH_LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("LEAKWATCH_METRICS_ADDR"); v != "" {
		cfg.Observability.Metrics.Enabled = true
		cfg.Observability.Metrics.Addr = v
	}
	if v := os.Getenv("LEAKWATCH_TRACING_ENDPOINT"); v != "" {
		cfg.Observability.Tracing.Enabled = true
		cfg.Observability.Tracing.Endpoint = v
	}
}
