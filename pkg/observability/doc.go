// Package observability provides structured logging, Prometheus metrics,
// OpenTelemetry provider bootstrap, and health checks for the search server.
//
// The condition-compilation engine itself never logs or retries: every
// failure there is a caller-input defect surfaced directly. This package
// instruments the surfaces around it: the HTTP handlers, the SQL executor,
// and the result cache.
package observability
