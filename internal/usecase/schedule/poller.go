package schedule

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"stocknews-notifier/internal/domain/entity"
)

const (
	// DefaultPollInterval and DefaultPollJitter are in seconds.
	DefaultPollInterval = 240
	DefaultPollJitter   = 30

	minPollInterval = 30
	minPollDelay    = 10 * time.Second
	errorBackoff    = 30 * time.Second
)

// PollSettings controls the poll cadence. Values are in seconds.
type PollSettings struct {
	Interval int
	Jitter   int
}

// SettingsProvider returns the current poll settings. It is called every cycle
// so changes take effect without a restart.
type SettingsProvider interface {
	PollSettings() PollSettings
}

// StaticSettings is a SettingsProvider with fixed values.
type StaticSettings PollSettings

func (s StaticSettings) PollSettings() PollSettings { return PollSettings(s) }

// WatchLister lists every watched ticker.
type WatchLister interface {
	List(ctx context.Context) ([]*entity.WatchItem, error)
}

// Enqueuer accepts crawl jobs.
type Enqueuer interface {
	Enqueue(id uuid.UUID) bool
}

// Poller periodically enqueues every watched ticker.
type Poller struct {
	watches  WatchLister
	queue    Enqueuer
	settings SettingsProvider
	logger   *slog.Logger

	// テスト用に差し替え可能
	randIntN func(n int) int
	sleep    func(ctx context.Context, d time.Duration) error
}

func NewPoller(watches WatchLister, queue Enqueuer, settings SettingsProvider, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	if settings == nil {
		settings = StaticSettings{Interval: DefaultPollInterval, Jitter: DefaultPollJitter}
	}
	return &Poller{
		watches:  watches,
		queue:    queue,
		settings: settings,
		logger:   logger,
		randIntN: rand.IntN,
		sleep:    sleepContext,
	}
}

// Run enqueues all watch items, sleeps for NextDelay and repeats until ctx
// is canceled. Listing errors are logged and retried after 30 seconds.
// Cancellation is a clean exit and returns nil.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("news poller started")
	defer p.logger.Info("news poller stopped")

	for {
		if ctx.Err() != nil {
			return nil
		}

		delay, err := p.poll(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			p.logger.Error("error while enqueuing watch items", slog.Any("error", err))
			delay = errorBackoff
		} else {
			p.logger.Debug("poll loop sleeping", slog.Duration("delay", delay))
		}

		if err := p.sleep(ctx, delay); err != nil {
			return nil
		}
	}
}

func (p *Poller) poll(ctx context.Context) (time.Duration, error) {
	watches, err := p.watches.List(ctx)
	if err != nil {
		return 0, err
	}

	queued := 0
	for _, w := range watches {
		if p.queue.Enqueue(w.ID) {
			queued++
		}
	}
	p.logger.Debug("watch items enqueued",
		slog.Int("total", len(watches)),
		slog.Int("queued", queued))

	return p.NextDelay(), nil
}

// NextDelay returns interval ± uniform jitter with the configured values
// clamped: the interval to at least 30 s, the jitter to at least 0, and the
// resulting delay to at least 10 s.
func (p *Poller) NextDelay() time.Duration {
	s := p.settings.PollSettings()
	interval := max(minPollInterval, s.Interval)
	jitter := max(0, s.Jitter)

	offset := 0
	if jitter > 0 {
		offset = p.randIntN(2*jitter+1) - jitter
	}

	return max(minPollDelay, time.Duration(interval+offset)*time.Second)
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
