// Package notify provides use cases for delivering news alerts.
// It fans a news item out to every enabled delivery channel (log, Discord, Slack),
// each guarded by its own circuit breaker, and drains the unsent items of a
// watched ticker through that fan-out.
package notify

import (
	"context"

	"stocknews-notifier/internal/domain/entity"
	"stocknews-notifier/internal/infra/notifier"
)

// Channel is one notification delivery channel.
// Implementations handle their own rate limiting and retries and must be
// safe for concurrent use.
type Channel interface {
	// Name is the lower-case identifier used in logs, metrics labels and health output.
	Name() string

	// IsEnabled reports whether the channel is switched on by configuration.
	IsEnabled() bool

	// Send delivers one item. It returns ErrChannelDisabled when called on a
	// disabled channel and ErrInvalidNewsItem for a nil or incomplete item.
	Send(ctx context.Context, watch *entity.WatchItem, item *entity.NewsItem) error
}

// notifierChannel adapts an infrastructure Notifier to Channel.
type notifierChannel struct {
	name     string
	notifier notifier.Notifier
	enabled  bool
}

// NewChannel wraps n as a Channel named name.
func NewChannel(name string, n notifier.Notifier, enabled bool) Channel {
	return &notifierChannel{name: name, notifier: n, enabled: enabled}
}

// NewDiscordChannel builds the Discord channel from its webhook configuration.
func NewDiscordChannel(cfg notifier.DiscordConfig) Channel {
	return NewChannel("discord", notifier.NewDiscordNotifier(cfg), cfg.Enabled)
}

// NewSlackChannel builds the Slack channel from its webhook configuration.
func NewSlackChannel(cfg notifier.SlackConfig) Channel {
	return NewChannel("slack", notifier.NewSlackNotifier(cfg), cfg.Enabled)
}

func (c *notifierChannel) Name() string { return c.name }

func (c *notifierChannel) IsEnabled() bool { return c.enabled }

func (c *notifierChannel) Send(ctx context.Context, watch *entity.WatchItem, item *entity.NewsItem) error {
	if !c.enabled {
		return ErrChannelDisabled
	}
	if watch == nil {
		return ErrInvalidWatch
	}
	if item == nil || item.Title == "" || item.URL == "" {
		return ErrInvalidNewsItem
	}
	return c.notifier.Notify(ctx, watch, item)
}
