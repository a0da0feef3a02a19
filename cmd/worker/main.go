// Command worker runs the stock news pipeline: it polls the watchlist, crawls
// news sources, stores new articles, sends alerts and serves the HTTP API.
package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	apihttp "stocknews-notifier/internal/handler/http"
	pgRepo "stocknews-notifier/internal/infra/adapter/persistence/postgres"
	"stocknews-notifier/internal/infra/db"
	"stocknews-notifier/internal/infra/notifier"
	"stocknews-notifier/internal/infra/scraper"
	workerPkg "stocknews-notifier/internal/infra/worker"
	"stocknews-notifier/internal/observability/logging"
	"stocknews-notifier/internal/observability/tracing"
	"stocknews-notifier/internal/usecase/crawl"
	newsUC "stocknews-notifier/internal/usecase/news"
	"stocknews-notifier/internal/usecase/notify"
	"stocknews-notifier/internal/usecase/schedule"
	"stocknews-notifier/internal/usecase/watchlist"
)

const (
	serviceName     = "stocknews-notifier"
	shutdownTimeout = 10 * time.Second
)

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("worker exited with error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker stopped")
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp := tracing.InitTracerProvider(serviceName)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := tracing.Shutdown(shutdownCtx, tp); err != nil {
			logger.Error("failed to shut down tracer provider", slog.Any("error", err))
		}
	}()

	// 設定値が不正でもデフォルトにフォールバックして起動を続ける
	workerMetrics := workerPkg.NewWorkerMetrics()
	cfg, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		return fmt.Errorf("load worker configuration: %w", err)
	}
	logger.Info("worker configuration loaded",
		slog.Int("poll_interval_seconds", cfg.PollInterval),
		slog.Int("poll_jitter_seconds", cfg.PollJitter),
		slog.Float64("default_rps", cfg.DefaultRequestsPerSecond),
		slog.Int("default_rpm", cfg.DefaultRequestsPerMinute),
		slog.Bool("respect_robots", cfg.RespectRobots),
		slog.String("sweep_schedule", cfg.SweepSchedule),
		slog.String("timezone", cfg.Timezone),
		slog.Any("default_sources", cfg.DefaultSources))

	database, err := initDatabase(ctx, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	watchRepo := pgRepo.NewWatchRepo(database)
	sourceRepo := pgRepo.NewSourceRepo(database)
	newsRepo := pgRepo.NewNewsRepo(database)
	stateRepo := pgRepo.NewCrawlStateRepo(database)

	httpClient := createHTTPClient()
	crawlers := scraper.NewRegistry(
		scraper.NewYahooFinanceCrawler(httpClient, logger),
		scraper.NewGoogleNewsCrawler(httpClient, logger),
	)
	crawlCfg := cfg.CrawlConfig()
	robots := scraper.NewRobotsClient(httpClient, crawlCfg.UserAgent)
	rateLimits := workerPkg.NewFileRateLimits(cfg.RateLimitOverridesFile, cfg.RateLimitDefaults())

	multiNotifier := initNotifier(logger)
	dispatcher := notify.NewDispatcher(newsRepo, multiNotifier, logger)
	newsService := newsUC.NewService(newsRepo, logger)

	scheduler := schedule.NewScheduler(logger)
	watchService := watchlist.NewService(watchRepo, sourceRepo, scheduler, logger)
	watchService.DefaultSources = cfg.DefaultSources

	poller := schedule.NewPoller(watchRepo, scheduler, workerPkg.EnvPollSettings{Fallback: cfg.PollSettings()}, logger)
	orchestrator := crawl.NewOrchestrator(crawl.Deps{
		Jobs:       scheduler,
		Watches:    watchRepo,
		States:     stateRepo,
		Crawlers:   crawlers,
		News:       newsService,
		Dispatcher: dispatcher,
		RateLimits: rateLimits,
		Robots:     robots,
	}, crawlCfg, logger)

	sweep := workerPkg.NewNotificationSweep(watchRepo, dispatcher, cfg.SweepLimit, cfg.CrawlJobTimeout, logger, workerMetrics)
	sweepCron, err := workerPkg.StartSweepCron(ctx, sweep, cfg.SweepSchedule, cfg.Timezone, logger)
	if err != nil {
		return fmt.Errorf("start notification sweep: %w", err)
	}

	healthServer := workerPkg.NewHealthServer(fmt.Sprintf(":%d", cfg.HealthPort), logger)
	healthServer.AddCheck("database", database.PingContext)

	apiHandler := apihttp.NewRouter(apihttp.RouterConfig{
		Watches:     watchService,
		News:        newsService,
		Logger:      logger,
		RateLimiter: apihttp.NewIPRateLimiter(5, 20, 10*time.Minute),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return ignoreClosed(healthServer.Start(gctx))
	})
	g.Go(func() error {
		return serveHTTP(gctx, logger, "metrics", newMetricsServer(cfg.MetricsPort, multiNotifier))
	})
	g.Go(func() error {
		return serveHTTP(gctx, logger, "api", newAPIServer(cfg.APIPort, apiHandler))
	})
	g.Go(func() error { return poller.Run(gctx) })
	g.Go(func() error { return orchestrator.Run(gctx) })

	healthServer.SetReady(true)
	logger.Info("worker started",
		slog.Int("api_port", cfg.APIPort),
		slog.Int("metrics_port", cfg.MetricsPort),
		slog.Int("health_port", cfg.HealthPort))

	err = g.Wait()

	logger.Info("shutting down worker")
	healthServer.SetReady(false)
	scheduler.Close()
	stopCron(logger, sweepCron)

	return err
}

// initDatabase opens the connection pool and applies the schema and source seed.
func initDatabase(ctx context.Context, logger *slog.Logger) (*sql.DB, error) {
	database, err := db.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.MigrateUp(ctx, database); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	logger.Info("database schema ready")
	return database, nil
}

// initNotifier builds the fan-out notifier. The log channel is always on;
// Discord and Slack are added when their webhooks are configured.
func initNotifier(logger *slog.Logger) *notify.MultiNotifier {
	channels := []notify.Channel{
		notify.NewChannel(notify.LogChannelName, notifier.NewLogNotifier(logger), true),
	}

	if discordConfig := workerPkg.LoadDiscordConfig(logger); discordConfig.Enabled {
		channels = append(channels, notify.NewDiscordChannel(discordConfig))
		logger.Info("Discord channel initialized", slog.String("status", "enabled"))
	} else {
		logger.Info("Discord channel disabled")
	}

	if slackConfig := workerPkg.LoadSlackConfig(logger); slackConfig.Enabled {
		channels = append(channels, notify.NewSlackChannel(slackConfig))
		logger.Info("Slack channel initialized", slog.String("status", "enabled"))
	} else {
		logger.Info("Slack channel disabled")
	}

	return notify.NewMultiNotifier(logger, channels...)
}

// createHTTPClient creates the crawler HTTP client with timeouts and connection pooling.
// TLS 1.2+ is enforced.
func createHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
}

func stopCron(logger *slog.Logger, c *cron.Cron) {
	select {
	case <-c.Stop().Done():
		logger.Info("notification sweep stopped")
	case <-time.After(shutdownTimeout):
		logger.Warn("notification sweep did not stop in time")
	}
}

func ignoreClosed(err error) error {
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
