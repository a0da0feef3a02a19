package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
)

func TestStartCrawlJob_NestsSourceSpans(t *testing.T) {
	rec := useRecorder(t)

	ctx, job := StartCrawlJob(context.Background(), "5f0c", "NASDAQ:MSFT")
	_, src := StartCrawlSource(ctx, "YahooFinance", 1)
	RecordError(src, errors.New("status 503"))
	src.End()
	job.End()

	spans := rec.Ended()
	require.Len(t, spans, 2)

	// 子スパンが先に終了する
	source, root := spans[0], spans[1]
	assert.Equal(t, "crawl.source", source.Name())
	assert.Equal(t, "crawl.job", root.Name())
	assert.Equal(t, root.SpanContext().SpanID(), source.Parent().SpanID())

	assert.Equal(t, codes.Error, source.Status().Code)
	assert.Equal(t, "status 503", source.Status().Description)
	assert.NotEqual(t, codes.Error, root.Status().Code, "job span should not inherit the source error")

	assert.Equal(t, "NASDAQ:MSFT", attrMap(root.Attributes())["watch.ticker"].AsString())
	assert.Equal(t, int64(1), attrMap(source.Attributes())["source.id"].AsInt64())
}

func TestRecordError_NilIsNoop(t *testing.T) {
	rec := useRecorder(t)

	_, span := StartCrawlSource(context.Background(), "GoogleFinance", 3)
	RecordError(span, nil)
	span.End()

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Empty(t, spans[0].Events())
}
