package config

import "time"

// Default values for configuration fields.
const (
	// Proxy defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 120 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB

	// CORS defaults
	DefaultCORSEnabled = true
	DefaultCORSMaxAge  = 3600 // 1 hour

	// Registry defaults
	DefaultProvidersFile = "providers.conf"
	DefaultTokensFile    = "tokens.conf"
	DefaultWatch         = false
	DefaultWatchDebounce = 100 * time.Millisecond

	// Upstream defaults
	DefaultUpstreamTimeout     = 60 * time.Second
	DefaultMaxIdleConns        = 100
	DefaultMaxIdleConnsPerHost = 10
	DefaultIdleConnTimeout     = 90 * time.Second

	// Logging defaults
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "json"
	DefaultRedactSecrets = true

	// Metrics defaults
	DefaultMetricsEnabled   = true
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "hermes"
	DefaultMetricsSubsystem = "gateway"

	// Audit defaults
	DefaultAuditEnabled          = false
	DefaultAuditBackend          = "sqlite"
	DefaultAuditSQLitePath       = "data/audit.db"
	DefaultAuditMaxOpenConns     = 10
	DefaultAuditMaxIdleConns     = 5
	DefaultAuditWALMode          = true
	DefaultAuditBusyTimeout      = 5 * time.Second
	DefaultAuditAsyncBuffer      = 1000
	DefaultAuditWriteTimeout     = 5 * time.Second
	DefaultAuditRetentionDays    = 90
	DefaultAuditPruneSchedule    = "0 3 * * *"
	DefaultAuditRetentionRecords = int64(0)
)

// DefaultCORSAllowedOrigins are the default allowed origins.
var DefaultCORSAllowedOrigins = []string{"*"}

// DefaultCORSAllowedMethods are the default allowed methods.
var DefaultCORSAllowedMethods = []string{"GET", "POST", "OPTIONS"}

// DefaultCORSAllowedHeaders are the default allowed headers.
var DefaultCORSAllowedHeaders = []string{"Authorization", "Content-Type", "X-Request-ID"}

// DefaultRequestDurationBuckets are the default histogram buckets (seconds)
// for request duration metrics. LLM completions are slow compared to typical
// HTTP traffic, so buckets extend to two minutes.
var DefaultRequestDurationBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120}

// ApplyDefaults fills in default values for any zero-valued configuration
// fields. It is called automatically by LoadConfig before validation.
func ApplyDefaults(cfg *Config) {
	// Proxy defaults
	if cfg.Proxy.ListenAddress == "" {
		cfg.Proxy.ListenAddress = DefaultListenAddress
	}
	if cfg.Proxy.ReadTimeout == 0 {
		cfg.Proxy.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Proxy.WriteTimeout == 0 {
		cfg.Proxy.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Proxy.IdleTimeout == 0 {
		cfg.Proxy.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Proxy.ShutdownTimeout == 0 {
		cfg.Proxy.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Proxy.MaxHeaderBytes == 0 {
		cfg.Proxy.MaxHeaderBytes = DefaultMaxHeaderBytes
	}

	// CORS defaults
	if len(cfg.Proxy.CORS.AllowedOrigins) == 0 {
		cfg.Proxy.CORS.AllowedOrigins = DefaultCORSAllowedOrigins
	}
	if len(cfg.Proxy.CORS.AllowedMethods) == 0 {
		cfg.Proxy.CORS.AllowedMethods = DefaultCORSAllowedMethods
	}
	if len(cfg.Proxy.CORS.AllowedHeaders) == 0 {
		cfg.Proxy.CORS.AllowedHeaders = DefaultCORSAllowedHeaders
	}
	if cfg.Proxy.CORS.MaxAge == 0 {
		cfg.Proxy.CORS.MaxAge = DefaultCORSMaxAge
	}

	// Registry defaults
	if cfg.Registry.ProvidersFile == "" {
		cfg.Registry.ProvidersFile = DefaultProvidersFile
	}
	if cfg.Registry.TokensFile == "" {
		cfg.Registry.TokensFile = DefaultTokensFile
	}
	if cfg.Registry.WatchDebounce == 0 {
		cfg.Registry.WatchDebounce = DefaultWatchDebounce
	}

	// Upstream defaults
	if cfg.Upstream.Timeout == 0 {
		cfg.Upstream.Timeout = DefaultUpstreamTimeout
	}
	if cfg.Upstream.MaxIdleConns == 0 {
		cfg.Upstream.MaxIdleConns = DefaultMaxIdleConns
	}
	if cfg.Upstream.MaxIdleConnsPerHost == 0 {
		cfg.Upstream.MaxIdleConnsPerHost = DefaultMaxIdleConnsPerHost
	}
	if cfg.Upstream.IdleConnTimeout == 0 {
		cfg.Upstream.IdleConnTimeout = DefaultIdleConnTimeout
	}

	// Logging defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}

	// Metrics defaults
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(cfg.Telemetry.Metrics.RequestDurationBuckets) == 0 {
		cfg.Telemetry.Metrics.RequestDurationBuckets = DefaultRequestDurationBuckets
	}

	// Audit defaults
	if cfg.Audit.Backend == "" {
		cfg.Audit.Backend = DefaultAuditBackend
	}
	if cfg.Audit.SQLite.Path == "" {
		cfg.Audit.SQLite.Path = DefaultAuditSQLitePath
	}
	if cfg.Audit.SQLite.MaxOpenConns == 0 {
		cfg.Audit.SQLite.MaxOpenConns = DefaultAuditMaxOpenConns
	}
	if cfg.Audit.SQLite.MaxIdleConns == 0 {
		cfg.Audit.SQLite.MaxIdleConns = DefaultAuditMaxIdleConns
	}
	if cfg.Audit.SQLite.BusyTimeout == 0 {
		cfg.Audit.SQLite.BusyTimeout = DefaultAuditBusyTimeout
	}
	if cfg.Audit.Recorder.AsyncBuffer == 0 {
		cfg.Audit.Recorder.AsyncBuffer = DefaultAuditAsyncBuffer
	}
	if cfg.Audit.Recorder.WriteTimeout == 0 {
		cfg.Audit.Recorder.WriteTimeout = DefaultAuditWriteTimeout
	}
	if cfg.Audit.Retention.Days == 0 {
		cfg.Audit.Retention.Days = DefaultAuditRetentionDays
	}
	if cfg.Audit.Retention.PruneSchedule == "" {
		cfg.Audit.Retention.PruneSchedule = DefaultAuditPruneSchedule
	}
}

// NewDefaultConfig returns a configuration populated entirely with defaults.
// Booleans that default to true are set explicitly since ApplyDefaults cannot
// distinguish "false" from "unset".
func NewDefaultConfig() *Config {
	cfg := &Config{}
	cfg.Proxy.CORS.Enabled = DefaultCORSEnabled
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	cfg.Telemetry.Logging.RedactSecrets = DefaultRedactSecrets
	cfg.Audit.SQLite.WALMode = DefaultAuditWALMode
	ApplyDefaults(cfg)
	return cfg
}
