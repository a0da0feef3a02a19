// Package logging provides structured logging utilities with context propagation.
//
// This package wraps the standard library's log/slog package with helper functions
// for the logging patterns used by the worker, the crawl orchestrator and the HTTP API.
//
// Example usage:
//
//	import "stocknews-notifier/internal/observability/logging"
//
//	func main() {
//	    logger := logging.NewLogger()
//	    slog.SetDefault(logger)
//	}
//
//	func processJob(ctx context.Context, watch *entity.WatchItem) {
//	    logger := logging.WithJob(slog.Default(), watch.ID.String(), watch.Symbol().String())
//	    ctx = logging.WithLogger(ctx, logger)
//	    logging.FromContext(ctx).Info("crawl started")
//	}
package logging
