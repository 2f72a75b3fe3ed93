// Package config loads tryflow settings from .tryflow.yaml, TRYFLOW_*
// environment variables and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Sumatoshi-tech/tryflow/pkg/gitmetrics"
)

// Sentinel validation errors.
var (
	ErrInvalidLogLevel      = errors.New("invalid log level")
	ErrInvalidPageSize      = errors.New("github page size must be between 1 and 100")
	ErrInvalidMaxPages      = errors.New("github max pages must be positive")
	ErrInvalidSampleSize    = errors.New("github sample size must be positive")
	ErrInvalidTimeout       = errors.New("github timeout must be positive")
	ErrInvalidMemoryEntries = errors.New("cache memory entries must be positive")
	ErrEmptyRepositoryPath  = errors.New("repository path must not be empty")
)

// GitHubTokenEnv is consulted before github.token.
const GitHubTokenEnv = "GITHUB_TOKEN"

// maxPageSize is the largest page the GitHub API serves.
const maxPageSize = 100

// Config holds all configuration for tryflow.
type Config struct {
	Repositories []gitmetrics.Repository `mapstructure:"repositories"`
	GitHub       GitHubConfig            `mapstructure:"github"`
	Cache        CacheConfig             `mapstructure:"cache"`
	Logging      LoggingConfig           `mapstructure:"logging"`
	Telemetry    TelemetryConfig         `mapstructure:"telemetry"`
}

// GitHubConfig configures the remote collector.
type GitHubConfig struct {
	Token      string        `mapstructure:"token"`
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	PageSize   int           `mapstructure:"page_size"`
	MaxPages   int           `mapstructure:"max_pages"`
	SampleSize int           `mapstructure:"sample_size"`
}

// CacheConfig configures where computed documents are kept.
type CacheConfig struct {
	Dir           string `mapstructure:"dir"`
	Compress      bool   `mapstructure:"compress"`
	MemoryEntries int    `mapstructure:"memory_entries"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool   `mapstructure:"otlp_insecure"`
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}

	if c.GitHub.PageSize <= 0 || c.GitHub.PageSize > maxPageSize {
		return fmt.Errorf("%w: %d", ErrInvalidPageSize, c.GitHub.PageSize)
	}

	if c.GitHub.MaxPages <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMaxPages, c.GitHub.MaxPages)
	}

	if c.GitHub.SampleSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSampleSize, c.GitHub.SampleSize)
	}

	if c.GitHub.Timeout <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTimeout, c.GitHub.Timeout)
	}

	if c.Cache.MemoryEntries <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMemoryEntries, c.Cache.MemoryEntries)
	}

	for i, repo := range c.Repositories {
		if strings.TrimSpace(repo.Path) == "" {
			return fmt.Errorf("%w: entry %d", ErrEmptyRepositoryPath, i)
		}
	}

	return nil
}

// GitHubToken returns the API token, preferring the GITHUB_TOKEN environment
// variable over github.token. It returns "" when neither is set.
func (c *Config) GitHubToken(getenv func(string) string) string {
	if token := strings.TrimSpace(getenv(GitHubTokenEnv)); token != "" {
		return token
	}

	return strings.TrimSpace(c.GitHub.Token)
}
