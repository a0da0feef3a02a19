// Package tracing provides OpenTelemetry tracing integration.
//
// The worker creates a "crawl.job" span per processed watch item and a
// "crawl.source" child span per crawled source. The HTTP API is wrapped by
// Middleware, which continues any incoming W3C trace context.
//
// InitTracerProvider installs a sampling SDK provider without an exporter:
// trace IDs reach logs and the X-Trace-Id header, and an exporter can be
// added to the provider when a collector is available.
//
// Example usage:
//
//	ctx, span := tracing.StartCrawlJob(ctx, watch.ID.String(), watch.Symbol().String())
//	defer span.End()
package tracing
