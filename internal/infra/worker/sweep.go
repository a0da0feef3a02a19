package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"stocknews-notifier/internal/domain/entity"
	"stocknews-notifier/internal/usecase/notify"
)

// UnsentWatchLister lists alert-enabled watch items that have undelivered news.
type UnsentWatchLister interface {
	ListAlertEnabledWithUnsent(ctx context.Context) ([]*entity.WatchItem, error)
}

// PendingDispatcher delivers unsent news of one watch item.
type PendingDispatcher interface {
	DispatchPending(ctx context.Context, watch *entity.WatchItem, limit int) (notify.Result, error)
}

// SweepStats summarizes one sweep run.
type SweepStats struct {
	Watches  int
	Sent     int
	Failed   int
	Errors   int
	Duration time.Duration
}

// NotificationSweep retries delivery of unsent news so that failed
// notifications go out even when no new articles arrive.
type NotificationSweep struct {
	watches    UnsentWatchLister
	dispatcher PendingDispatcher
	limit      int
	timeout    time.Duration
	logger     *slog.Logger
	metrics    *WorkerMetrics

	running atomic.Bool
}

// NewNotificationSweep creates a sweep notifying at most limit items per
// watch item per run. Each run is bounded by timeout when positive.
func NewNotificationSweep(watches UnsentWatchLister, dispatcher PendingDispatcher, limit int, timeout time.Duration, logger *slog.Logger, metrics *WorkerMetrics) *NotificationSweep {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationSweep{
		watches:    watches,
		dispatcher: dispatcher,
		limit:      limit,
		timeout:    timeout,
		logger:     logger,
		metrics:    metrics,
	}
}

// Run performs one sweep. A run that starts while another is in progress
// is skipped and returns zero stats.
func (s *NotificationSweep) Run(ctx context.Context) (SweepStats, error) {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn("notification sweep already running, skipping")
		s.recordRun("skipped")
		return SweepStats{}, nil
	}
	defer s.running.Store(false)

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	var stats SweepStats

	watches, err := s.watches.ListAlertEnabledWithUnsent(ctx)
	if err != nil {
		s.recordRun("failure")
		return stats, fmt.Errorf("list watches with unsent news: %w", err)
	}
	stats.Watches = len(watches)

	for _, w := range watches {
		if ctx.Err() != nil {
			break
		}
		res, err := s.dispatcher.DispatchPending(ctx, w, s.limit)
		stats.Sent += res.Sent
		stats.Failed += res.Failed
		if err != nil {
			stats.Errors++
			s.logger.Warn("sweep dispatch failed",
				slog.String("watch_id", w.ID.String()),
				slog.String("ticker", w.Symbol().String()),
				slog.Any("error", err))
		}
	}
	stats.Duration = time.Since(start)

	if s.metrics != nil {
		s.metrics.RecordSweepDuration(stats.Duration.Seconds())
		s.metrics.RecordSweepNotifications(stats.Sent, stats.Failed)
	}

	switch {
	case ctx.Err() != nil:
		s.recordRun("failure")
		return stats, fmt.Errorf("notification sweep interrupted: %w", ctx.Err())
	case stats.Errors > 0 || stats.Failed > 0:
		s.recordRun("partial")
	default:
		s.recordRun("success")
		if s.metrics != nil {
			s.metrics.RecordLastSuccess()
		}
	}

	s.logger.Info("notification sweep completed",
		slog.Int("watches", stats.Watches),
		slog.Int("sent", stats.Sent),
		slog.Int("failed", stats.Failed),
		slog.Int("errors", stats.Errors),
		slog.Duration("duration", stats.Duration))
	return stats, nil
}

func (s *NotificationSweep) recordRun(status string) {
	if s.metrics != nil {
		s.metrics.RecordSweepRun(status)
	}
}

// StartSweepCron schedules sweep on the cron expression in the given IANA
// timezone and starts the scheduler. Jobs run with ctx; stop the returned
// cron and wait on its Stop context during shutdown.
func StartSweepCron(ctx context.Context, sweep *NotificationSweep, schedule, timezone string, logger *slog.Logger) (*cron.Cron, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", timezone), slog.Any("error", err))
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))

	_, err = c.AddFunc(schedule, func() {
		if _, err := sweep.Run(ctx); err != nil {
			logger.Error("notification sweep failed", slog.Any("error", err))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("add sweep job: %w", err)
	}
	c.Start()

	logger.Info("notification sweep scheduled",
		slog.String("schedule", schedule),
		slog.String("timezone", loc.String()))
	return c, nil
}
