// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server     ServerConfig
	Collection CollectionConfig
	Upload     UploadConfig
	Lookup     LookupConfig
	Database   DatabaseConfig
	Rate       RateLimitConfig
	Security   SecurityConfig
	Logging    LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 30s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// CollectionConfig controls where the collection export is loaded from.
type CollectionConfig struct {
	// Sources is a comma-separated list of candidate exports: file paths,
	// http(s) URLs, "demo", or "db" for the latest uploaded export.
	// They are fetched concurrently and the first usable one wins.
	Sources []string `env:"COLLECTION_SOURCES" default:"collection.csv,data/collection.csv"`

	// FallbackDemo loads the built-in demo collection when every source fails (default: true)
	FallbackDemo bool `env:"COLLECTION_FALLBACK_DEMO" default:"true"`

	// LoadTimeout bounds one load across all sources (default: 30s)
	LoadTimeout time.Duration `env:"COLLECTION_LOAD_TIMEOUT" default:"30s"`

	// MaxParallel is how many sources are fetched at once (default: 4)
	MaxParallel int `env:"COLLECTION_MAX_PARALLEL" default:"4"`

	// Watch reloads when a file source changes on disk (default: false)
	Watch bool `env:"COLLECTION_WATCH" default:"false"`

	// WatchDebounce collapses bursts of file events (default: 500ms)
	WatchDebounce time.Duration `env:"COLLECTION_WATCH_DEBOUNCE" default:"500ms"`
}

// UploadConfig holds collection upload settings.
type UploadConfig struct {
	// MaxFileSize is the maximum allowed file size in bytes (default: 20MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"20971520"`

	// MaxConcurrent is the maximum number of parallel uploads (default: 2)
	MaxConcurrent int `env:"UPLOAD_MAX_CONCURRENT" default:"2"`

	// MaxWaitTime is how long to wait for an upload slot (default: 15s)
	MaxWaitTime time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"15s"`

	// Timeout is the maximum duration for a single upload operation (default: 2m)
	Timeout time.Duration `env:"UPLOAD_TIMEOUT" default:"2m"`
}

// LookupConfig holds settings for the Wikipedia and Discogs lookups.
type LookupConfig struct {
	// WikipediaURL is the base URL of the Wikipedia API host
	WikipediaURL string `env:"LOOKUP_WIKIPEDIA_URL" default:"https://en.wikipedia.org"`

	// DiscogsURL is the base URL of the Discogs API
	DiscogsURL string `env:"LOOKUP_DISCOGS_URL" default:"https://api.discogs.com"`

	// DiscogsToken is a personal access token; Discogs lookups are disabled without it
	DiscogsToken string `env:"DISCOGS_TOKEN" envAlt:"LOOKUP_DISCOGS_TOKEN"`

	// UserAgent is sent with every lookup request
	UserAgent string `env:"LOOKUP_USER_AGENT" default:"RecordViewer/1.0 (+https://github.com/JonMunkholm/recordviewer)"`

	// Timeout bounds one remote request (default: 10s)
	Timeout time.Duration `env:"LOOKUP_TIMEOUT" default:"10s"`

	// RequestsPerSecond throttles outgoing lookups per service (default: 1)
	RequestsPerSecond float64 `env:"LOOKUP_REQUESTS_PER_SECOND" default:"1"`

	// CacheTTL is how long lookup results are reused (default: 1h)
	CacheTTL time.Duration `env:"LOOKUP_CACHE_TTL" default:"1h"`
}

// DatabaseConfig holds database connection settings.
// The database is optional; without a URL uploads live only in memory.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" default:"4"`

	// MinConns is the minimum number of connections to keep open (default: 0)
	MinConns int `env:"DB_MIN_CONNS" default:"0"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// Enabled reports whether a database is configured.
func (c *DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 120)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`

	// UploadLimit is requests per minute for upload and reload endpoints (default: 10)
	UploadLimit int `env:"RATE_LIMIT_UPLOAD" default:"10"`

	// LookupLimit is requests per minute for lookup endpoints (default: 30)
	LookupLimit int `env:"RATE_LIMIT_LOOKUP" default:"30"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey protects upload and reload with an API key (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
