package config

import "time"

// GitHub defaults.
const (
	DefaultGitHubTimeout    = 30 * time.Second
	DefaultGitHubPageSize   = 100
	DefaultGitHubMaxPages   = 50
	DefaultGitHubSampleSize = 20
)

// Cache defaults.
const (
	DefaultCacheDir           = "~/.tryflow/metrics"
	DefaultCacheCompress      = false
	DefaultCacheMemoryEntries = 64
)

// Logging defaults.
const (
	DefaultLogLevel = "info"
	DefaultLogJSON  = false
)
