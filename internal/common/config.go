// Package common provides shared utilities for jira-mcp
package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for jira-mcp
type Config struct {
	Atlassian AtlassianConfig `toml:"atlassian"`
	Retry     RetryConfig     `toml:"retry"`
	Breaker   BreakerConfig   `toml:"breaker"`
	Logging   LoggingConfig   `toml:"logging"`
}

// AtlassianConfig holds the OAuth credentials and endpoints for the
// Atlassian cloud APIs.
type AtlassianConfig struct {
	AccessToken  string `toml:"access_token"`
	RefreshToken string `toml:"refresh_token"`
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	CloudID      string `toml:"cloud_id"`
	BaseURL      string `toml:"base_url"`
	AuthURL      string `toml:"auth_url"`
	Timeout      string `toml:"timeout"`
	RateLimit    int    `toml:"rate_limit"`
}

// GetTimeout parses and returns the per-call timeout duration
func (c *AtlassianConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// RetryConfig holds retry and backoff tuning for the request executor.
type RetryConfig struct {
	MaxRetries   int     `toml:"max_retries"`
	InitialDelay string  `toml:"initial_delay"`
	MaxDelay     string  `toml:"max_delay"`
	MaxJitter    string  `toml:"max_jitter"`
	Multiplier   float64 `toml:"multiplier"`
}

// GetInitialDelay parses the initial backoff delay.
func (c *RetryConfig) GetInitialDelay() time.Duration {
	d, err := time.ParseDuration(c.InitialDelay)
	if err != nil {
		return time.Second
	}
	return d
}

// GetMaxDelay parses the backoff delay cap.
func (c *RetryConfig) GetMaxDelay() time.Duration {
	d, err := time.ParseDuration(c.MaxDelay)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// GetMaxJitter parses the jitter bound.
func (c *RetryConfig) GetMaxJitter() time.Duration {
	d, err := time.ParseDuration(c.MaxJitter)
	if err != nil {
		return time.Second
	}
	return d
}

// BreakerConfig holds circuit breaker tuning.
//
// FailureThreshold counts retry attempts, not logical requests: the executor
// records one failure per attempt, so a threshold of 10 with 3 retries per
// request opens the breaker after roughly 3-4 fully failed requests. Use
// EffectiveRequestsToOpen to see the relationship for a given retry budget.
type BreakerConfig struct {
	Enabled          bool   `toml:"enabled"`
	FailureThreshold int    `toml:"failure_threshold"`
	SuccessThreshold int    `toml:"success_threshold"`
	Timeout          string `toml:"timeout"`
}

// GetTimeout parses the OPEN-state cooldown duration.
func (c *BreakerConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// EffectiveRequestsToOpen returns how many fully failed logical requests it
// takes to open the breaker given the executor's retry budget.
func (c *BreakerConfig) EffectiveRequestsToOpen(maxRetries int) int {
	if maxRetries <= 0 {
		return c.FailureThreshold
	}
	n := c.FailureThreshold / maxRetries
	if c.FailureThreshold%maxRetries != 0 {
		n++
	}
	return n
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `toml:"level"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Atlassian: AtlassianConfig{
			BaseURL:   "https://api.atlassian.com",
			AuthURL:   "https://auth.atlassian.com/oauth/token",
			Timeout:   "30s",
			RateLimit: 10,
		},
		Retry: RetryConfig{
			MaxRetries:   3,
			InitialDelay: "1s",
			MaxDelay:     "10s",
			MaxJitter:    "1s",
			Multiplier:   2,
		},
		Breaker: BreakerConfig{
			Enabled:          true,
			FailureThreshold: 10,
			SuccessThreshold: 2,
			Timeout:          "30s",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// Validate checks that the credentials required at startup are present.
func (c *Config) Validate() error {
	a := &c.Atlassian
	if a.AccessToken == "" || a.RefreshToken == "" {
		return fmt.Errorf("access_token and refresh_token are required")
	}
	if a.ClientID == "" || a.ClientSecret == "" {
		return fmt.Errorf("client_id and client_secret are required")
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("JIRAMCP_ACCESS_TOKEN"); v != "" {
		config.Atlassian.AccessToken = v
	}
	if v := os.Getenv("JIRAMCP_REFRESH_TOKEN"); v != "" {
		config.Atlassian.RefreshToken = v
	}
	if v := os.Getenv("JIRAMCP_CLIENT_ID"); v != "" {
		config.Atlassian.ClientID = v
	}
	if v := os.Getenv("JIRAMCP_CLIENT_SECRET"); v != "" {
		config.Atlassian.ClientSecret = v
	}
	if v := os.Getenv("JIRAMCP_CLOUD_ID"); v != "" {
		config.Atlassian.CloudID = v
	}
	if v := os.Getenv("JIRAMCP_BASE_URL"); v != "" {
		config.Atlassian.BaseURL = v
	}
	if v := os.Getenv("JIRAMCP_AUTH_URL"); v != "" {
		config.Atlassian.AuthURL = v
	}
	if v := os.Getenv("JIRAMCP_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("JIRAMCP_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Retry.MaxRetries = n
		}
	}
	if v := os.Getenv("JIRAMCP_BREAKER_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.Breaker.Enabled = b
		}
	}
}
