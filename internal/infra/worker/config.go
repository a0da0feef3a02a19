package worker

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"stocknews-notifier/internal/domain/entity"
	"stocknews-notifier/internal/pkg/config"
	"stocknews-notifier/internal/usecase/crawl"
	"stocknews-notifier/internal/usecase/schedule"
)

// WorkerConfig holds the configuration for the worker process.
//
// Configuration sources:
//   - Environment variables (loaded via LoadConfigFromEnv)
//   - Default values (provided by DefaultConfig)
//
// Invalid values never stop the worker: LoadConfigFromEnv falls back to the
// default for that field, logs a warning and records a fallback metric.
type WorkerConfig struct {
	// PollInterval is the seconds between two poll cycles.
	// Validation: 30-86400. Default: 240
	PollInterval int

	// PollJitter is the maximum random offset in seconds added to PollInterval.
	// Validation: 0-3600. Default: 30
	PollJitter int

	// DefaultRequestsPerSecond and DefaultRequestsPerMinute are the crawl
	// budget for hosts without an override. Both must be positive.
	DefaultRequestsPerSecond float64
	DefaultRequestsPerMinute int

	// RateLimitOverridesFile is an optional YAML file with per-host budgets.
	RateLimitOverridesFile string

	// RobotsCacheTTL is how long a fetched robots.txt is reused.
	// Loaded from ROBOTS_CACHE_HOURS. Default: 24h
	RobotsCacheTTL time.Duration

	// RespectRobots enables robots.txt enforcement. Default: false
	RespectRobots bool

	// CrawlJobTimeout bounds the processing of one watch item.
	// Validation: 10s-1h. Default: 5m
	CrawlJobTimeout time.Duration

	// SweepSchedule is the cron expression of the notification sweep.
	// Default: "*/15 * * * *"
	SweepSchedule string

	// SweepLimit is the maximum items notified per watch item per sweep.
	// Validation: 1-500. Default: 20
	SweepLimit int

	// Timezone is the IANA timezone name used by the cron scheduler.
	// Default: "UTC"
	Timezone string

	// HealthPort serves /health and /health/ready.
	// Validation: 1024-65535. Default: 9091
	HealthPort int

	// MetricsPort serves /metrics and /health/channels. Default: 9090
	MetricsPort int

	// APIPort serves the watchlist HTTP API. Default: 8080
	APIPort int

	// DefaultSources are attached to every newly added watch item.
	// Loaded from WATCH_DEFAULT_SOURCES as a comma separated list.
	DefaultSources []string
}

// DefaultConfig returns a WorkerConfig with default values.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		PollInterval:             schedule.DefaultPollInterval,
		PollJitter:               schedule.DefaultPollJitter,
		DefaultRequestsPerSecond: entity.DefaultRequestsPerSecond,
		DefaultRequestsPerMinute: entity.DefaultRequestsPerMinute,
		RobotsCacheTTL:           24 * time.Hour,
		RespectRobots:            false,
		CrawlJobTimeout:          5 * time.Minute,
		SweepSchedule:            "*/15 * * * *",
		SweepLimit:               20,
		Timezone:                 "UTC",
		HealthPort:               9091,
		MetricsPort:              9090,
		APIPort:                  8080,
		DefaultSources:           []string{entity.SourceYahooFinance, entity.SourceGoogleFinance},
	}
}

// Validate checks every field and returns all failures joined together.
func (c *WorkerConfig) Validate() error {
	var errs []error

	if err := config.ValidateIntRange(c.PollInterval, 30, 86400); err != nil {
		errs = append(errs, fmt.Errorf("poll interval: %w", err))
	}
	if err := config.ValidateIntRange(c.PollJitter, 0, 3600); err != nil {
		errs = append(errs, fmt.Errorf("poll jitter: %w", err))
	}
	if err := config.ValidatePositiveFloat(c.DefaultRequestsPerSecond); err != nil {
		errs = append(errs, fmt.Errorf("default requests per second: %w", err))
	}
	if err := config.ValidatePositiveInt(c.DefaultRequestsPerMinute); err != nil {
		errs = append(errs, fmt.Errorf("default requests per minute: %w", err))
	}
	if err := config.ValidatePositiveDuration(c.RobotsCacheTTL); err != nil {
		errs = append(errs, fmt.Errorf("robots cache ttl: %w", err))
	}
	if err := config.ValidateDuration(c.CrawlJobTimeout, 10*time.Second, time.Hour); err != nil {
		errs = append(errs, fmt.Errorf("crawl job timeout: %w", err))
	}
	if err := config.ValidateCronSchedule(c.SweepSchedule); err != nil {
		errs = append(errs, fmt.Errorf("sweep schedule: %w", err))
	}
	if err := config.ValidateIntRange(c.SweepLimit, 1, 500); err != nil {
		errs = append(errs, fmt.Errorf("sweep limit: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}
	if err := config.ValidateIntRange(c.MetricsPort, 1, 65535); err != nil {
		errs = append(errs, fmt.Errorf("metrics port: %w", err))
	}
	if err := config.ValidateIntRange(c.APIPort, 1, 65535); err != nil {
		errs = append(errs, fmt.Errorf("api port: %w", err))
	}
	if err := validateSourceList(c.DefaultSources); err != nil {
		errs = append(errs, fmt.Errorf("default sources: %w", err))
	}

	return errors.Join(errs...)
}

// PollSettings implements schedule.SettingsProvider.
func (c *WorkerConfig) PollSettings() schedule.PollSettings {
	return schedule.PollSettings{Interval: c.PollInterval, Jitter: c.PollJitter}
}

// RateLimitDefaults returns the budget applied to hosts without an override.
func (c *WorkerConfig) RateLimitDefaults() crawl.RateLimitSettings {
	return crawl.RateLimitSettings{
		RequestsPerSecond: c.DefaultRequestsPerSecond,
		RequestsPerMinute: c.DefaultRequestsPerMinute,
	}
}

// CrawlConfig returns the orchestrator settings.
func (c *WorkerConfig) CrawlConfig() crawl.Config {
	cfg := crawl.DefaultConfig()
	cfg.RobotsCacheTTL = c.RobotsCacheTTL
	cfg.RespectRobots = c.RespectRobots
	cfg.JobTimeout = c.CrawlJobTimeout
	return cfg
}

// LoadConfigFromEnv loads the worker configuration from environment
// variables. It never fails: each invalid value falls back to its default.
//
// Environment variables:
//   - POLL_INTERVAL_SECONDS, POLL_JITTER_SECONDS
//   - CRAWL_DEFAULT_RPS, CRAWL_DEFAULT_RPM, RATE_LIMIT_OVERRIDES_FILE
//   - ROBOTS_CACHE_HOURS, ROBOTS_RESPECT
//   - CRAWL_JOB_TIMEOUT (Go duration, e.g. "5m")
//   - NOTIFY_SWEEP_SCHEDULE, NOTIFY_SWEEP_LIMIT, TIMEZONE
//   - HEALTH_PORT, METRICS_PORT, API_PORT
//   - WATCH_DEFAULT_SOURCES (e.g. "YahooFinance,GoogleFinance")
//
// Warning log format:
//
//	logger.Warn("Configuration fallback applied",
//	    slog.String("field", "SweepLimit"),
//	    slog.String("warning", "Invalid NOTIFY_SWEEP_LIMIT='0': ..."))
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) (*WorkerConfig, error) {
	cfg := DefaultConfig()
	l := &envLoader{logger: logger, metrics: metrics}

	cfg.PollInterval = l.load("PollInterval", config.LoadEnvInt("POLL_INTERVAL_SECONDS", cfg.PollInterval, func(v int) error {
		return config.ValidateIntRange(v, 30, 86400)
	})).(int)
	cfg.PollJitter = l.load("PollJitter", config.LoadEnvInt("POLL_JITTER_SECONDS", cfg.PollJitter, func(v int) error {
		return config.ValidateIntRange(v, 0, 3600)
	})).(int)

	cfg.DefaultRequestsPerSecond = l.load("DefaultRequestsPerSecond",
		config.LoadEnvFloat("CRAWL_DEFAULT_RPS", cfg.DefaultRequestsPerSecond, config.ValidatePositiveFloat)).(float64)
	cfg.DefaultRequestsPerMinute = l.load("DefaultRequestsPerMinute",
		config.LoadEnvInt("CRAWL_DEFAULT_RPM", cfg.DefaultRequestsPerMinute, config.ValidatePositiveInt)).(int)
	cfg.RateLimitOverridesFile = config.LoadEnvString("RATE_LIMIT_OVERRIDES_FILE", "")

	hours := l.load("RobotsCacheTTL", config.LoadEnvInt("ROBOTS_CACHE_HOURS", int(cfg.RobotsCacheTTL/time.Hour), config.ValidatePositiveInt)).(int)
	cfg.RobotsCacheTTL = time.Duration(hours) * time.Hour
	cfg.RespectRobots = l.load("RespectRobots", config.LoadEnvBool("ROBOTS_RESPECT", cfg.RespectRobots)).(bool)

	cfg.CrawlJobTimeout = l.load("CrawlJobTimeout", config.LoadEnvDuration("CRAWL_JOB_TIMEOUT", cfg.CrawlJobTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, 10*time.Second, time.Hour)
	})).(time.Duration)

	cfg.SweepSchedule = l.load("SweepSchedule",
		config.LoadEnvWithFallback("NOTIFY_SWEEP_SCHEDULE", cfg.SweepSchedule, config.ValidateCronSchedule)).(string)
	cfg.SweepLimit = l.load("SweepLimit", config.LoadEnvInt("NOTIFY_SWEEP_LIMIT", cfg.SweepLimit, func(v int) error {
		return config.ValidateIntRange(v, 1, 500)
	})).(int)
	cfg.Timezone = l.load("Timezone",
		config.LoadEnvWithFallback("TIMEZONE", cfg.Timezone, config.ValidateTimezone)).(string)

	cfg.HealthPort = l.load("HealthPort", config.LoadEnvInt("HEALTH_PORT", cfg.HealthPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})).(int)
	cfg.MetricsPort = l.load("MetricsPort", config.LoadEnvInt("METRICS_PORT", cfg.MetricsPort, func(v int) error {
		return config.ValidateIntRange(v, 1, 65535)
	})).(int)
	cfg.APIPort = l.load("APIPort", config.LoadEnvInt("API_PORT", cfg.APIPort, func(v int) error {
		return config.ValidateIntRange(v, 1, 65535)
	})).(int)

	sources := l.load("DefaultSources", config.LoadEnvWithFallback("WATCH_DEFAULT_SOURCES",
		strings.Join(cfg.DefaultSources, ","), func(s string) error {
			return validateSourceList(splitList(s))
		})).(string)
	cfg.DefaultSources = splitList(sources)

	metrics.SetFallbackActive(l.fallbackApplied)
	metrics.RecordLoadTimestamp()

	return &cfg, nil
}

// envLoader records fallbacks while unpacking loader results.
type envLoader struct {
	logger          *slog.Logger
	metrics         *WorkerMetrics
	fallbackApplied bool
}

func (l *envLoader) load(field string, r config.ConfigLoadResult) interface{} {
	r = l.metrics.Observe(field, r)
	if r.FallbackApplied {
		l.fallbackApplied = true
		for _, warning := range r.Warnings {
			l.logger.Warn("Configuration fallback applied",
				slog.String("field", field),
				slog.String("warning", warning))
		}
	}
	return r.Value
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// validateSourceList accepts names of the built-in source catalog only.
func validateSourceList(names []string) error {
	if len(names) == 0 {
		return fmt.Errorf("at least one source is required")
	}
	for _, name := range names {
		if _, ok := entity.FindDefaultSource(name); !ok {
			return fmt.Errorf("unknown source %q", name)
		}
	}
	return nil
}
