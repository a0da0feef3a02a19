// Package observability groups the worker's logging, metrics and tracing
// helpers. Each concern lives in its own subpackage:
//
//   - logging: slog JSON logger and context-scoped loggers
//   - metrics: Prometheus collectors for the crawl pipeline and HTTP API
//   - tracing: OpenTelemetry provider, crawl spans and HTTP middleware
package observability
