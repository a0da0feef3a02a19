// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes the crawl pipeline metrics:
//   - HTTP API request metrics (duration, count)
//   - Crawl job and per-source metrics (duration, errors, rate-limit waits, robots.txt)
//   - Ingestion metrics (persisted and skipped news items)
//   - Scheduler queue metrics
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint.
//
// Example usage:
//
//	import "stocknews-notifier/internal/observability/metrics"
//
//	func crawlSource(source string) {
//	    start := time.Now()
//	    err := crawl()
//	    metrics.RecordSourceCrawl(source, time.Since(start), err != nil)
//	}
package metrics
