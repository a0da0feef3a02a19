package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"stocknews-notifier/internal/domain/entity"
	"stocknews-notifier/internal/handler/http/requestid"
	"stocknews-notifier/internal/resilience/circuitbreaker"
)

// ChannelHealthStatus is the health of one channel as reported by /health/channels.
type ChannelHealthStatus struct {
	Name               string
	Enabled            bool
	CircuitBreakerOpen bool
	State              string // closed|half-open|open
}

type guardedChannel struct {
	channel Channel
	breaker *circuitbreaker.Breaker
}

// LogChannelName names the local log channel. It only counts as delivery
// when no webhook channel is enabled.
const LogChannelName = "log"

// MultiNotifier delivers each item to every enabled channel in turn.
// Delivery succeeds when at least one webhook channel accepts the item, or
// the log channel does when it is the only one enabled.
type MultiNotifier struct {
	channels []guardedChannel
	logger   *slog.Logger
}

// NewMultiNotifier creates a MultiNotifier over channels. Each channel gets
// its own circuit breaker so a dead webhook stops being called without
// affecting the others.
func NewMultiNotifier(logger *slog.Logger, channels ...Channel) *MultiNotifier {
	if logger == nil {
		logger = slog.Default()
	}

	m := &MultiNotifier{logger: logger}
	enabled := 0
	for _, ch := range channels {
		if ch == nil {
			continue
		}
		if ch.IsEnabled() {
			enabled++
		}
		name := ch.Name()
		policy := circuitbreaker.ForChannel(name)
		policy.OnOpen = func(string) {
			RecordCircuitBreakerOpen(name)
			logger.Error("notification channel circuit breaker opened",
				slog.String("channel", name))
		}
		m.channels = append(m.channels, guardedChannel{
			channel: ch,
			breaker: circuitbreaker.New(policy),
		})
	}
	SetChannelsEnabled(enabled)

	return m
}

// Notify implements notifier.Notifier.
//
// Channels run sequentially in registration order. If no channel counting as
// delivery succeeds, the per-channel errors are joined and returned. Cancellation aborts
// the fan-out and returns the context error.
func (m *MultiNotifier) Notify(ctx context.Context, watch *entity.WatchItem, item *entity.NewsItem) error {
	if watch == nil {
		return ErrInvalidWatch
	}
	if item == nil {
		return ErrInvalidNewsItem
	}

	ctx, reqID := requestid.Ensure(ctx)

	var (
		errs      []error
		attempted int
		delivered int
		remote    int
		remoteOK  int
	)
	for _, gc := range m.channels {
		if !gc.channel.IsEnabled() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		attempted++
		isRemote := gc.channel.Name() != LogChannelName
		if isRemote {
			remote++
		}

		err := m.send(ctx, gc, watch, item)
		if err == nil {
			delivered++
			if isRemote {
				remoteOK++
			}
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		errs = append(errs, fmt.Errorf("%s: %w", gc.channel.Name(), err))
	}

	if attempted == 0 {
		return ErrNoChannels
	}
	// Webhook が有効ならログ出力だけでは送信済みにしない
	if delivered == 0 || (remote > 0 && remoteOK == 0) {
		return errors.Join(errs...)
	}
	if len(errs) > 0 {
		m.logger.Warn("notification partially delivered",
			slog.String("request_id", reqID),
			slog.String("news_id", item.ID.String()),
			slog.Int("delivered", delivered),
			slog.Any("error", errors.Join(errs...)))
	}
	return nil
}

func (m *MultiNotifier) send(ctx context.Context, gc guardedChannel, watch *entity.WatchItem, item *entity.NewsItem) error {
	name := gc.channel.Name()
	RecordDispatch(name)

	start := time.Now()
	err := gc.breaker.Do(func() error {
		return gc.channel.Send(ctx, watch, item)
	})
	duration := time.Since(start)

	switch {
	case err == nil:
		RecordSuccess(name, duration)
		return nil
	case circuitbreaker.IsRejected(err):
		RecordDropped(name, "circuit_open")
		return fmt.Errorf("%w: %v", ErrCircuitBreakerOpen, err)
	case errors.Is(err, ErrInvalidNewsItem), errors.Is(err, ErrInvalidWatch):
		RecordDropped(name, "invalid")
		return err
	}

	RecordFailure(name, duration)
	m.logger.Warn("notification channel failed",
		slog.String("request_id", requestid.FromContext(ctx)),
		slog.String("channel", name),
		slog.String("ticker", watch.Symbol().String()),
		slog.Duration("duration", duration),
		slog.Any("error", err))
	return err
}

// ChannelHealth returns the health of every registered channel.
func (m *MultiNotifier) ChannelHealth() []ChannelHealthStatus {
	out := make([]ChannelHealthStatus, 0, len(m.channels))
	for _, gc := range m.channels {
		out = append(out, ChannelHealthStatus{
			Name:               gc.channel.Name(),
			Enabled:            gc.channel.IsEnabled(),
			CircuitBreakerOpen: gc.breaker.IsOpen(),
			State:              gc.breaker.State(),
		})
	}
	return out
}
