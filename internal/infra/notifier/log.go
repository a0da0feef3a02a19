package notifier

import (
	"context"
	"log/slog"

	"stocknews-notifier/internal/domain/entity"
)

// LogNotifier writes each news item as a structured log record.
// It is always available and is the only channel when no webhook is configured.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier. A nil logger uses slog.Default.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// Notify logs "TICKER - title" at info level.
func (l *LogNotifier) Notify(ctx context.Context, watch *entity.WatchItem, item *entity.NewsItem) error {
	if watch == nil || item == nil {
		return entity.ErrInvalidInput
	}
	l.logger.InfoContext(ctx, watch.Symbol().String()+" - "+item.Title,
		slog.String("news_id", item.ID.String()),
		slog.String("watch_id", watch.ID.String()),
		slog.String("url", item.URL),
		slog.Time("published_at", item.SortTime()))
	return nil
}
