package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/platinummonkey/recordsearch/pkg/executor"
	"github.com/platinummonkey/recordsearch/pkg/observability"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Cache configuration
	Cache CacheConfig

	// Path to the search schema declaration file. Optional; types may
	// also be registered programmatically.
	SchemaFile string

	// Observability configuration
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// DatabaseConfig holds record store connection settings
type DatabaseConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Dialect maps the configured driver to the executor dialect. Only the
// drivers the daemon links are mapped; Validate rejects everything else.
func (c DatabaseConfig) Dialect() executor.Dialect {
	switch c.Driver {
	case "postgres":
		return executor.Postgres
	case "sqlite3":
		return executor.SQLite
	default:
		return executor.Dialect(c.Driver)
	}
}

// CacheConfig holds result cache settings
type CacheConfig struct {
	Enabled  bool
	RedisURL string
	TTL      time.Duration
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Logging
	LogLevel observability.LogLevel

	// Metrics
	MetricsEnabled bool

	// OpenTelemetry
	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool // Use insecure gRPC connection
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server:        loadServerConfig(),
		Database:      loadDatabaseConfig(),
		Cache:         loadCacheConfig(),
		SchemaFile:    getEnv("RECORDSEARCH_SCHEMA_FILE", ""),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadServerConfig loads server configuration from environment
func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("RECORDSEARCH_HOST", "0.0.0.0"),
		Port:            getEnv("RECORDSEARCH_PORT", "8080"),
		ReadTimeout:     getEnvDuration("RECORDSEARCH_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("RECORDSEARCH_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("RECORDSEARCH_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("RECORDSEARCH_SHUTDOWN_TIMEOUT", 30*time.Second),
		HealthPort:      getEnv("RECORDSEARCH_HEALTH_PORT", "9090"),
	}
}

// loadDatabaseConfig loads record store configuration from environment
func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Driver:          getEnv("RECORDSEARCH_DB_DRIVER", "postgres"),
		DSN:             getEnv("RECORDSEARCH_DB_DSN", ""),
		MaxOpenConns:    getEnvInt("RECORDSEARCH_DB_MAX_OPEN_CONNS", 20),
		MaxIdleConns:    getEnvInt("RECORDSEARCH_DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvDuration("RECORDSEARCH_DB_CONN_MAX_LIFETIME", 30*time.Minute),
	}
}

// loadCacheConfig loads result cache configuration from environment
func loadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:  getEnvBool("RECORDSEARCH_CACHE_ENABLED", false),
		RedisURL: getEnv("RECORDSEARCH_REDIS_URL", "redis://localhost:6379"),
		TTL:      getEnvDuration("RECORDSEARCH_CACHE_TTL", executor.DefaultCacheTTL),
	}
}

// loadObservabilityConfig loads observability configuration from environment
func loadObservabilityConfig() ObservabilityConfig {
	// Unknown log level tokens fall back to info.
	logLevel, _ := observability.ParseLogLevel(getEnv("RECORDSEARCH_LOG_LEVEL", "info"))
	return ObservabilityConfig{
		LogLevel:           logLevel,
		MetricsEnabled:     getEnvBool("RECORDSEARCH_METRICS_ENABLED", true),
		OTelEnabled:        getEnvBool("RECORDSEARCH_OTEL_ENABLED", false),
		OTelEndpoint:       getEnv("RECORDSEARCH_OTEL_ENDPOINT", "localhost:4317"),
		OTelServiceName:    getEnv("RECORDSEARCH_OTEL_SERVICE_NAME", "recordsearch"),
		OTelServiceVersion: getEnv("RECORDSEARCH_OTEL_SERVICE_VERSION", "1.0.0"),
		OTelInsecure:       getEnvBool("RECORDSEARCH_OTEL_INSECURE", true),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	switch c.Database.Driver {
	case "postgres", "sqlite3":
	default:
		return fmt.Errorf("invalid database driver: %s (must be postgres or sqlite3)", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database DSN is required")
	}

	if c.Cache.Enabled && c.Cache.RedisURL == "" {
		return fmt.Errorf("redis URL is required when the result cache is enabled")
	}

	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
