package worker

import (
	"log/slog"
	"time"

	"stocknews-notifier/internal/infra/notifier"
	"stocknews-notifier/internal/pkg/config"
)

const webhookTimeout = 30 * time.Second

// LoadDiscordConfig reads DISCORD_ENABLED and DISCORD_WEBHOOK_URL.
// An invalid webhook URL disables the channel instead of failing startup.
func LoadDiscordConfig(logger *slog.Logger) notifier.DiscordConfig {
	url, ok := loadWebhook(logger, "discord", "DISCORD_ENABLED", "DISCORD_WEBHOOK_URL", "discord.com", "/api/webhooks/")
	if !ok {
		return notifier.DiscordConfig{Enabled: false}
	}
	return notifier.DiscordConfig{
		Enabled:    true,
		WebhookURL: url,
		Timeout:    webhookTimeout,
	}
}

// LoadSlackConfig reads SLACK_ENABLED and SLACK_WEBHOOK_URL.
func LoadSlackConfig(logger *slog.Logger) notifier.SlackConfig {
	url, ok := loadWebhook(logger, "slack", "SLACK_ENABLED", "SLACK_WEBHOOK_URL", "hooks.slack.com", "/services/")
	if !ok {
		return notifier.SlackConfig{Enabled: false}
	}
	return notifier.SlackConfig{
		Enabled:    true,
		WebhookURL: url,
		Timeout:    webhookTimeout,
	}
}

func loadWebhook(logger *slog.Logger, channel, enabledKey, urlKey, host, pathPrefix string) (string, bool) {
	enabled := config.LoadEnvBool(enabledKey, false)
	for _, w := range enabled.Warnings {
		logger.Warn("Configuration fallback applied",
			slog.String("channel", channel),
			slog.String("warning", w))
	}
	if !enabled.Value.(bool) {
		return "", false
	}

	webhookURL := config.LoadEnvString(urlKey, "")
	if err := config.ValidateWebhookURL(webhookURL, host, pathPrefix); err != nil {
		// URL はシークレットを含むのでログに出さない
		logger.Warn("invalid webhook URL, disabling notifications",
			slog.String("channel", channel),
			slog.String("error", err.Error()))
		return "", false
	}
	return webhookURL, true
}
