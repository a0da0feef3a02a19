package crawl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"stocknews-notifier/internal/domain/entity"
	"stocknews-notifier/internal/observability/logging"
	"stocknews-notifier/internal/observability/metrics"
	"stocknews-notifier/internal/observability/tracing"
	"stocknews-notifier/internal/repository"
	"stocknews-notifier/internal/usecase/notify"
	"stocknews-notifier/internal/usecase/schedule"
)

// DefaultUserAgent identifies the crawler in robots.txt matching.
const DefaultUserAgent = "StockNewsNotifier"

// JobQueue is the consumer side of the scheduler.
type JobQueue interface {
	Next(ctx context.Context) (uuid.UUID, error)
	MarkCompleted(id uuid.UUID)
}

// WatchLoader loads a watch item with its source associations.
// A missing item is reported as (nil, nil).
type WatchLoader interface {
	GetWithSources(ctx context.Context, id uuid.UUID) (*entity.WatchItem, error)
}

// Ingester stores new articles and returns how many were new.
type Ingester interface {
	Ingest(ctx context.Context, watch *entity.WatchItem, sourceID int64, raws []entity.RawArticle) (int, error)
}

// PendingDispatcher notifies unsent items of a watch item.
type PendingDispatcher interface {
	DispatchPending(ctx context.Context, watch *entity.WatchItem, limit int) (notify.Result, error)
}

// Config tunes the orchestrator.
type Config struct {
	// RobotsCacheTTL is how long a fetched robots.txt is trusted.
	RobotsCacheTTL time.Duration
	// RespectRobots skips URLs disallowed by the cached robots.txt.
	RespectRobots bool
	UserAgent     string
	// JobTimeout bounds one ProcessJob call. Zero means no limit.
	JobTimeout time.Duration
}

// DefaultConfig returns a 24h robots cache with enforcement off.
func DefaultConfig() Config {
	return Config{
		RobotsCacheTTL: 24 * time.Hour,
		UserAgent:      DefaultUserAgent,
		JobTimeout:     5 * time.Minute,
	}
}

// Deps groups the collaborators of an Orchestrator.
type Deps struct {
	Jobs       JobQueue
	Watches    WatchLoader
	States     repository.CrawlStateRepository
	Crawlers   CrawlerLookup
	News       Ingester
	Dispatcher PendingDispatcher
	RateLimits RateLimitSource
	Robots     RobotsFetcher
}

// Orchestrator is the single consumer of crawl jobs. Jobs run one at a time
// and the sources of a job run sequentially.
type Orchestrator struct {
	jobs       JobQueue
	watches    WatchLoader
	states     repository.CrawlStateRepository
	crawlers   CrawlerLookup
	news       Ingester
	dispatcher PendingDispatcher
	rateLimits RateLimitSource
	robots     RobotsFetcher
	cfg        Config
	logger     *slog.Logger

	// テスト用に差し替え可能
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewOrchestrator(deps Deps, cfg Config, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RobotsCacheTTL <= 0 {
		cfg.RobotsCacheTTL = 24 * time.Hour
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if deps.RateLimits == nil {
		deps.RateLimits = StaticRateLimits(DefaultRateLimits())
	}
	return &Orchestrator{
		jobs:       deps.Jobs,
		watches:    deps.Watches,
		states:     deps.States,
		crawlers:   deps.Crawlers,
		news:       deps.News,
		dispatcher: deps.Dispatcher,
		rateLimits: deps.RateLimits,
		robots:     deps.Robots,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
		sleep:      sleepContext,
	}
}

// Run processes jobs in FIFO order until ctx is canceled or the queue is
// closed. Both are clean exits and return nil.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.logger.Info("crawl orchestrator started")
	defer o.logger.Info("crawl orchestrator stopped")

	for {
		id, err := o.jobs.Next(ctx)
		if err != nil {
			if errors.Is(err, schedule.ErrSchedulerClosed) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("next crawl job: %w", err)
		}

		if err := o.ProcessJob(ctx, id); err != nil {
			switch {
			case ctx.Err() != nil:
				return nil
			case errors.Is(err, ErrWatchItemNotFound):
				// ログ出力済み
			case isCancellation(err):
				o.logger.Warn("crawl job timed out",
					slog.String("watch_id", id.String()),
					slog.Duration("timeout", o.cfg.JobTimeout))
			default:
				o.logger.Error("error processing crawl job",
					slog.String("watch_id", id.String()),
					slog.Any("error", err))
			}
		}
	}
}

// ProcessJob crawls every enabled source of watch item id, then notifies
// on new items when alerts are on. The id is always released from the
// scheduler on return.
//
// A source failure is recorded in its CrawlState and does not stop the
// remaining sources. Cancellation stops the job and is never recorded as a
// failure.
func (o *Orchestrator) ProcessJob(ctx context.Context, id uuid.UUID) error {
	defer o.jobs.MarkCompleted(id)

	if o.cfg.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.JobTimeout)
		defer cancel()
	}

	watch, err := o.watches.GetWithSources(ctx, id)
	if err != nil {
		if ctx.Err() != nil {
			metrics.RecordCrawlJob("canceled")
			return ctx.Err()
		}
		return fmt.Errorf("load watch item %s: %w", id, err)
	}
	if watch == nil {
		o.logger.Warn("watch item not found when processing crawl job",
			slog.String("watch_id", id.String()))
		metrics.RecordCrawlJob("not_found")
		return ErrWatchItemNotFound
	}

	ticker := watch.Symbol().String()
	ctx, span := tracing.StartCrawlJob(ctx, id.String(), ticker)
	defer span.End()
	logger := logging.WithJob(o.logger, id.String(), ticker)

	limits, err := o.rateLimits.RateLimits(ctx)
	if err != nil {
		logger.Warn("failed to load rate limit overrides, using defaults", slog.Any("error", err))
		limits = DefaultRateLimits()
	}

	totalNew, failed := 0, 0
	for _, ws := range watch.EnabledSources() {
		src := ws.Source

		crawler, ok := o.crawlers.Lookup(src.Name)
		if !ok {
			logger.Warn("crawler not registered, skipping source",
				slog.String("source", src.Name))
			continue
		}

		n, err := o.crawlSource(ctx, watch, src, crawler, limits, logger)
		totalNew += n
		if err != nil {
			if ctx.Err() != nil {
				metrics.RecordCrawlJob("canceled")
				return ctx.Err()
			}
			failed++
		}
	}

	if totalNew > 0 && watch.AlertsEnabled && o.dispatcher != nil {
		res, err := o.dispatcher.DispatchPending(ctx, watch, totalNew)
		if err != nil {
			if ctx.Err() != nil {
				metrics.RecordCrawlJob("canceled")
				return ctx.Err()
			}
			tracing.RecordError(span, err)
			logger.Error("failed to dispatch notifications", slog.Any("error", err))
		} else {
			logger.Info("notifications dispatched",
				slog.Int("sent", res.Sent),
				slog.Int("failed", res.Failed))
		}
	}

	if failed > 0 {
		metrics.RecordCrawlJob("partial")
	} else {
		metrics.RecordCrawlJob("success")
	}
	return nil
}

// crawlSource runs one source of a job and persists its CrawlState.
// The returned count includes items stored before a failure.
func (o *Orchestrator) crawlSource(
	ctx context.Context,
	watch *entity.WatchItem,
	src *entity.Source,
	crawler SourceCrawler,
	limits RateLimits,
	logger *slog.Logger,
) (n int, err error) {
	ctx, span := tracing.StartCrawlSource(ctx, src.Name, src.ID)
	defer span.End()
	logger = logger.With(slog.String("source", src.Name))

	state, err := o.states.Get(ctx, src.ID)
	if err != nil {
		tracing.RecordError(span, err)
		return 0, fmt.Errorf("load crawl state: %w", err)
	}
	if state == nil {
		state = entity.NewCrawlState(src.ID)
	}

	// リクエスト先のホストを優先 (GoogleFinance は news.google.com を叩く)
	host := crawler.BaseHost()
	if host == "" {
		host = src.Host()
	}
	settings := limits.For(host)
	state.RequestsPerSecond = settings.RequestsPerSecond
	state.RequestsPerMinute = settings.RequestsPerMinute

	// シャットダウン中でも行を書き切る
	defer func() {
		if saveErr := o.states.Save(context.WithoutCancel(ctx), state); saveErr != nil {
			logger.Error("failed to save crawl state", slog.Any("error", saveErr))
		}
	}()

	o.refreshRobots(ctx, state, host, logger)

	if wait := RateLimitWait(state, o.now()); wait > 0 {
		metrics.RecordRateLimitWait(wait)
		logger.Debug("waiting for rate limit", slog.Duration("wait", wait))
		if err := o.sleep(ctx, wait); err != nil {
			return 0, err
		}
	}

	start := o.now()
	n, err = o.fetchAndIngest(ctx, watch, src, crawler, state, logger)
	duration := o.now().Sub(start)
	metrics.RecordNewsIngested(src.Name, n)

	if err != nil {
		if isCancellation(err) && ctx.Err() != nil {
			return n, err
		}
		state.RecordFailure(o.now(), err)
		metrics.RecordSourceCrawl(src.Name, duration, true)
		tracing.RecordError(span, err)
		logger.Error("error crawling source",
			slog.Int("consecutive_errors", state.ConsecutiveErrors),
			slog.Any("error", err))
		return n, err
	}

	state.RecordSuccess(o.now())
	metrics.RecordSourceCrawl(src.Name, duration, false)
	return n, nil
}

func (o *Orchestrator) fetchAndIngest(
	ctx context.Context,
	watch *entity.WatchItem,
	src *entity.Source,
	crawler SourceCrawler,
	state *entity.CrawlState,
	logger *slog.Logger,
) (int, error) {
	total := 0
	for _, u := range crawler.BuildQueryURLs(watch) {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		if o.cfg.RespectRobots && !robotsAllowed(state, u, o.cfg.UserAgent) {
			metrics.RecordRobotsDisallowed(src.Name)
			logger.Info("url disallowed by robots.txt, skipping", slog.String("url", u))
			continue
		}

		raws, err := crawler.Fetch(ctx, u)
		if err != nil {
			return total, fmt.Errorf("fetch %s: %w", u, err)
		}

		n, err := o.news.Ingest(ctx, watch, src.ID, raws)
		total += n
		if err != nil {
			return total, fmt.Errorf("ingest %s: %w", u, err)
		}

		logger.Info("crawl completed",
			slog.String("url", u),
			slog.Int("fetched", len(raws)),
			slog.Int("new", n))
	}
	return total, nil
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
