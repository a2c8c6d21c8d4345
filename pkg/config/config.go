package config

import "time"

// Config is the root configuration structure for Saturn.
// It contains all configuration sections for the HTTP server, provider
// discovery, per-provider behavior, probe history, and telemetry.
type Config struct {
	// Server contains HTTP server configuration including listen address,
	// timeouts, and CORS settings.
	Server ServerConfig `yaml:"server"`

	// Discovery contains configuration for credential scanning, candidate
	// verification, and the TTL-cached provider registry.
	Discovery DiscoveryConfig `yaml:"discovery"`

	// Providers contains per-provider-type configuration.
	// Keys are provider type names (e.g., "gemini", "openai").
	Providers map[string]ProviderConfig `yaml:"providers"`

	// History contains configuration for the probe/outcome history store.
	History HistoryConfig `yaml:"history"`

	// Telemetry contains configuration for logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server surface.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port". Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out response writes.
	// Analysis calls can be slow, so this must exceed the probe timeout.
	// Default: 120s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains CORS configuration for the HTTP surface.
type CORSConfig struct {
	// Enabled controls whether CORS headers are emitted.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins is a list of allowed origins. Use ["*"] to allow all.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods is a list of allowed HTTP methods.
	// Default: ["GET", "POST", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders is a list of allowed request headers.
	// Default: ["Authorization", "Content-Type", "X-Request-ID"]
	AllowedHeaders []string `yaml:"allowed_headers"`

	// MaxAge is the preflight cache duration in seconds.
	// Default: 3600
	MaxAge int `yaml:"max_age"`
}

// DiscoveryConfig contains configuration for the discovery engine.
type DiscoveryConfig struct {
	// TTL is how long a discovery snapshot stays fresh. Discovery calls
	// within the TTL return the cached snapshot unless a refresh is forced.
	// Default: 5m
	TTL time.Duration `yaml:"ttl"`

	// Concurrency is the maximum number of simultaneous probes across the
	// whole discovery batch.
	// Default: 5
	Concurrency int `yaml:"concurrency"`

	// ProbeTimeout is the independent timeout for a single probe.
	// Default: 15s
	ProbeTimeout time.Duration `yaml:"probe_timeout"`

	// Eager enables network probing during discovery. When false, entries
	// are marked ASSUMED and verified lazily on first real use, which
	// conserves provider quota.
	// Default: false
	Eager bool `yaml:"eager"`

	// RefreshSchedule is an optional cron expression for periodic forced
	// rediscovery (e.g., "@every 10m"). Empty disables the refresher.
	RefreshSchedule string `yaml:"refresh_schedule"`

	// MaxFallbacks is the maximum number of fallback providers attempted
	// after a rate-limited request. Set to -1 to disable fallback.
	// Default: 2
	MaxFallbacks int `yaml:"max_fallbacks"`

	// ModelOverrides maps a provider type to an additional model identifier
	// appended to that type's candidate catalog.
	ModelOverrides map[string]string `yaml:"model_overrides"`
}

// ProviderConfig contains per-provider-type configuration.
type ProviderConfig struct {
	// EagerConfirm controls whether an ASSUMED entry of this type is
	// confirmed with a probe before its first real call.
	// Default: true for every type except gemini.
	EagerConfirm *bool `yaml:"eager_confirm"`

	// BaseURL overrides the provider's API endpoint. Intended for tests
	// and self-hosted gateways; empty uses the vendor default.
	BaseURL string `yaml:"base_url"`
}

// HistoryConfig contains configuration for the probe history store.
type HistoryConfig struct {
	// Backend selects the history storage backend ("memory" or "sqlite").
	// Default: "memory"
	Backend string `yaml:"backend"`

	// Path is the SQLite database file path (sqlite backend only).
	// Default: "saturn-history.db"
	Path string `yaml:"path"`

	// MaxEntries caps the number of retained observations (memory backend).
	// Default: 1000
	MaxEntries int `yaml:"max_entries"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the log output format ("json", "text").
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file:line in log records.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected and exposed.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Namespace is the Prometheus metric namespace.
	// Default: "saturn"
	Namespace string `yaml:"namespace"`
}

// EagerConfirmFor reports whether verify-on-first-use confirmation is
// required for the given provider type. Unconfigured types default to
// true, except gemini whose minimal probe cannot distinguish a bad key
// from a transient error and is therefore skipped.
func (c *Config) EagerConfirmFor(providerType string) bool {
	if pc, ok := c.Providers[providerType]; ok && pc.EagerConfirm != nil {
		return *pc.EagerConfirm
	}
	return providerType != "gemini"
}

// BaseURLFor returns the configured endpoint override for a provider type,
// or empty when the vendor default should be used.
func (c *Config) BaseURLFor(providerType string) string {
	if pc, ok := c.Providers[providerType]; ok {
		return pc.BaseURL
	}
	return ""
}
