package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "stocknews-notifier"

// tracer resolves through the global provider on every call, so spans follow
// whichever provider InitTracerProvider (or a test) installed last.
func tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

// StartCrawlJob starts the root span of one crawl job.
func StartCrawlJob(ctx context.Context, watchID, ticker string) (context.Context, trace.Span) {
	return tracer().Start(ctx, "crawl.job",
		trace.WithAttributes(
			attribute.String("watch.id", watchID),
			attribute.String("watch.ticker", ticker),
		),
	)
}

// StartCrawlSource starts a child span for crawling one source within a job.
func StartCrawlSource(ctx context.Context, source string, sourceID int64) (context.Context, trace.Span) {
	return tracer().Start(ctx, "crawl.source",
		trace.WithAttributes(
			attribute.String("source.name", source),
			attribute.Int64("source.id", sourceID),
		),
	)
}

// RecordError marks the span as failed. A nil error is a no-op.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
