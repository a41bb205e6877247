package config

import "time"

// Config is the root configuration structure for Hermes.
// It contains all configuration sections for the proxy server, the provider
// and token registries, upstream HTTP behavior, telemetry, auditing, and
// security settings.
type Config struct {
	// Proxy contains HTTP gateway server configuration including listen
	// address, timeouts, and CORS settings.
	Proxy ProxyConfig `yaml:"proxy"`

	// Registry contains locations of the provider and token table files
	// and reload behavior.
	Registry RegistryConfig `yaml:"registry"`

	// Upstream contains HTTP client settings shared by all provider
	// upstream connections.
	Upstream UpstreamConfig `yaml:"upstream"`

	// Telemetry contains observability configuration: logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Audit contains configuration for the request audit trail.
	Audit AuditConfig `yaml:"audit"`

	// Security contains TLS settings for the gateway listener.
	Security SecurityConfig `yaml:"security"`
}

// ProxyConfig contains configuration for the HTTP gateway server.
type ProxyConfig struct {
	// ListenAddress is the address and port for the gateway to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080", "0.0.0.0:8080").
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body. A zero or negative value means no timeout.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. Streaming completions are bounded by this value too, so it
	// should comfortably exceed the upstream timeout.
	// Default: 120s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled. If zero, ReadTimeout is used.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes controls the maximum number of bytes the server will
	// read parsing request headers. It does not limit the request body.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains CORS (Cross-Origin Resource Sharing) configuration.
type CORSConfig struct {
	// Enabled controls whether CORS handling is enabled.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins is a list of allowed origins for CORS requests.
	// Use ["*"] to allow all origins.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods is a list of allowed HTTP methods for CORS requests.
	// Default: ["GET", "POST", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders is a list of allowed HTTP headers for CORS requests.
	// Default: ["Authorization", "Content-Type", "X-Request-ID"]
	AllowedHeaders []string `yaml:"allowed_headers"`

	// MaxAge is the maximum age (in seconds) for preflight request caching.
	// Default: 3600 (1 hour)
	MaxAge int `yaml:"max_age"`
}

// RegistryConfig contains locations of the provider and token tables.
//
// Both files are line-delimited: providers as "name|url|api_key", tokens as
// "description|token". Blank lines and lines starting with '#' are skipped.
type RegistryConfig struct {
	// ProvidersFile is the path to the provider table file.
	// Default: "providers.conf"
	ProvidersFile string `yaml:"providers_file"`

	// TokensFile is the path to the token table file.
	// Default: "tokens.conf"
	TokensFile string `yaml:"tokens_file"`

	// SupportedModels is an optional list of case-insensitive regular
	// expressions. When non-empty, only models matching at least one pattern
	// appear in /v1/models listings. An empty list allows all models.
	SupportedModels []string `yaml:"supported_models"`

	// Watch enables automatic reloading when the table files change on disk.
	// The /v1/reload endpoint works regardless of this setting.
	// Default: false
	Watch bool `yaml:"watch"`

	// WatchDebounce is the time to wait after a file change before
	// reloading, to collapse editor write bursts into a single reload.
	// Default: 100ms
	WatchDebounce time.Duration `yaml:"watch_debounce"`
}

// UpstreamConfig contains HTTP client settings for provider connections.
type UpstreamConfig struct {
	// Timeout is the maximum duration for a single upstream request.
	// Default: 60s
	Timeout time.Duration `yaml:"timeout"`

	// MaxIdleConns is the maximum number of idle connections in the pool.
	// Default: 100
	MaxIdleConns int `yaml:"max_idle_conns"`

	// MaxIdleConnsPerHost is the maximum idle connections per host.
	// Default: 10
	MaxIdleConnsPerHost int `yaml:"max_idle_conns_per_host"`

	// IdleConnTimeout is how long an idle connection remains in the pool.
	// Default: 90s
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", or "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the log output format: "json" or "text".
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log records.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactSecrets enables redaction of bearer tokens and API keys in
	// log output.
	// Default: true
	RedactSecrets bool `yaml:"redact_secrets"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether the /metrics endpoint is exposed.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the Prometheus metric namespace.
	// Default: "hermes"
	Namespace string `yaml:"namespace"`

	// Subsystem is the Prometheus metric subsystem.
	// Default: "gateway"
	Subsystem string `yaml:"subsystem"`

	// RequestDurationBuckets are histogram buckets (seconds) for request
	// duration. Defaults cover sub-second local providers through slow
	// long-generation requests.
	RequestDurationBuckets []float64 `yaml:"request_duration_buckets"`
}

// AuditConfig contains configuration for the request audit trail.
type AuditConfig struct {
	// Enabled controls whether chat completion requests are recorded.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Backend selects the storage backend: "sqlite" or "memory".
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite contains settings for the SQLite backend.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Recorder contains settings for the async recorder.
	Recorder RecorderConfig `yaml:"recorder"`

	// Retention contains settings for audit record pruning.
	Retention RetentionConfig `yaml:"retention"`
}

// SQLiteConfig contains settings for the SQLite audit backend.
type SQLiteConfig struct {
	// Path is the database file path.
	// Default: "data/audit.db"
	Path string `yaml:"path"`

	// MaxOpenConns is the maximum number of open database connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle database connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables Write-Ahead Logging for better concurrency.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is how long to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RecorderConfig contains settings for the async audit recorder.
type RecorderConfig struct {
	// AsyncBuffer is the in-memory record buffer size. Records are dropped
	// (and counted) when the buffer is full rather than blocking requests.
	// Default: 1000
	AsyncBuffer int `yaml:"async_buffer"`

	// WriteTimeout is the maximum duration for a single storage write.
	// Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// RetentionConfig contains settings for audit record pruning.
type RetentionConfig struct {
	// Days is the number of days to retain audit records. Zero disables
	// age-based pruning.
	// Default: 90
	Days int `yaml:"days"`

	// PruneSchedule is a cron expression controlling when pruning runs.
	// Empty disables scheduled pruning.
	// Default: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string `yaml:"prune_schedule"`

	// MaxRecords caps the total number of retained records. Zero means
	// unlimited.
	MaxRecords int64 `yaml:"max_records"`
}

// SecurityConfig contains security-related configuration.
type SecurityConfig struct {
	// TLS contains TLS settings for the gateway listener.
	TLS TLSConfig `yaml:"tls"`
}

// TLSConfig contains TLS listener settings.
type TLSConfig struct {
	// Enabled controls whether the gateway serves TLS.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// CertFile is the path to the PEM certificate file.
	CertFile string `yaml:"cert_file"`

	// KeyFile is the path to the PEM private key file.
	KeyFile string `yaml:"key_file"`
}
