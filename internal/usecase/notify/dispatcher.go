package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"stocknews-notifier/internal/domain/entity"
	"stocknews-notifier/internal/infra/notifier"
	"stocknews-notifier/internal/repository"
)

// Result is the outcome of one DispatchPending run.
type Result struct {
	Sent   int
	Failed int
}

// Dispatcher delivers unsent news items of a watch item and flags the ones
// that went out.
type Dispatcher struct {
	news     repository.NewsRepository
	notifier notifier.Notifier
	logger   *slog.Logger
}

func NewDispatcher(news repository.NewsRepository, n notifier.Notifier, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{news: news, notifier: n, logger: logger}
}

// DispatchPending notifies up to limit unsent items of watch, newest first.
//
// A delivery failure leaves the item unsent for a later sweep and does not
// stop the run. Only the selection query and cancellation return an error.
func (d *Dispatcher) DispatchPending(ctx context.Context, watch *entity.WatchItem, limit int) (Result, error) {
	var res Result
	if watch == nil {
		return res, ErrInvalidWatch
	}
	if limit <= 0 {
		return res, nil
	}

	items, err := d.news.ListUnsent(ctx, watch.ID, limit)
	if err != nil {
		return res, fmt.Errorf("DispatchPending: %w", err)
	}

	logger := d.logger.With(
		slog.String("watch_id", watch.ID.String()),
		slog.String("ticker", watch.Symbol().String()))

	defer func() { RecordPendingResult(res) }()

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		if err := d.notifier.Notify(ctx, watch, item); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				if ctx.Err() != nil {
					return res, ctx.Err()
				}
			}
			res.Failed++
			logger.Warn("notification failed, item left unsent",
				slog.String("news_id", item.ID.String()),
				slog.Any("error", err))
			continue
		}

		// 送信済みフラグの更新は呼び出し元のキャンセルに巻き込まない
		if err := d.news.MarkSent(context.WithoutCancel(ctx), item.ID); err != nil {
			res.Failed++
			logger.Error("failed to mark news item as sent",
				slog.String("news_id", item.ID.String()),
				slog.Any("error", err))
			continue
		}
		res.Sent++
	}

	if len(items) > 0 {
		logger.Info("pending notifications dispatched",
			slog.Int("sent", res.Sent),
			slog.Int("failed", res.Failed))
	}
	return res, nil
}
