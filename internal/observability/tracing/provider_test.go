package tracing

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestInitTracerProvider_SamplesSpans(t *testing.T) {
	tp := InitTracerProvider("stocknews-notifier-test")
	defer func() {
		_ = Shutdown(context.Background(), tp)
		otel.SetTracerProvider(sdktrace.NewTracerProvider())
	}()

	_, span := otel.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	if !span.SpanContext().IsSampled() {
		t.Error("expected span to be sampled")
	}
	if !span.SpanContext().TraceID().IsValid() {
		t.Error("expected a valid trace ID")
	}
}

func TestShutdown_NilProvider(t *testing.T) {
	if err := Shutdown(context.Background(), nil); err != nil {
		t.Errorf("Shutdown(nil) = %v", err)
	}
}
