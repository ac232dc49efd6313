// Package config provides application configuration management from environment variables.
//
// # Overview
//
// This package loads and validates configuration from environment variables with
// sensible defaults for all settings.
//
// # Configuration Structure
//
// Server settings:
//
//	RECORDSEARCH_HOST="0.0.0.0"
//	RECORDSEARCH_PORT="8080"
//	RECORDSEARCH_HEALTH_PORT="9090"
//	RECORDSEARCH_READ_TIMEOUT="15s"
//	RECORDSEARCH_WRITE_TIMEOUT="15s"
//
// Database settings:
//
//	RECORDSEARCH_DB_DRIVER="postgres"  # postgres, sqlite3
//	RECORDSEARCH_DB_DSN="postgres://localhost/records"
//	RECORDSEARCH_DB_MAX_OPEN_CONNS="20"
//
// Search schema declaration:
//
//	RECORDSEARCH_SCHEMA_FILE="/etc/recordsearch/schemas.yaml"
//
// Cache settings:
//
//	RECORDSEARCH_CACHE_ENABLED="true"
//	RECORDSEARCH_REDIS_URL="redis://localhost:6379"
//	RECORDSEARCH_CACHE_TTL="5m"
//
// Observability settings:
//
//	RECORDSEARCH_LOG_LEVEL="info"  # debug, info, warn, error
//	RECORDSEARCH_METRICS_ENABLED="true"
//	RECORDSEARCH_OTEL_ENABLED="true"
//	RECORDSEARCH_OTEL_ENDPOINT="otel-collector:4317"
//
// # Usage Example
//
// Load configuration:
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Printf("Server: %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//	fmt.Printf("Database: %s\n", cfg.Database.Driver)
//
// # Related Packages
//
//   - pkg/executor: Uses database and cache configuration
//   - pkg/observability: Uses observability configuration
package config
