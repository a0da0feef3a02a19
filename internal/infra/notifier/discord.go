package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"stocknews-notifier/internal/domain/entity"
)

// DiscordConfig holds configuration for Discord webhook notifications.
type DiscordConfig struct {
	// Enabled controls whether Discord notifications are active.
	Enabled bool

	// WebhookURL is the Discord webhook URL.
	// Format: https://discord.com/api/webhooks/{id}/{token}
	WebhookURL string

	// Timeout is the HTTP request timeout. Zero means 10 seconds.
	Timeout time.Duration
}

// discordWebhookPayload represents the JSON payload sent to Discord webhook API.
type discordWebhookPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

// discordEmbed represents a Discord rich embed object.
// See: https://discord.com/developers/docs/resources/channel#embed-object
type discordEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	URL         string         `json:"url"`
	Color       int            `json:"color"`
	Author      *discordAuthor `json:"author,omitempty"`
	Footer      discordFooter  `json:"footer"`
	Timestamp   string         `json:"timestamp"`
}

type discordAuthor struct {
	Name    string `json:"name"`
	IconURL string `json:"icon_url,omitempty"`
}

type discordFooter struct {
	Text string `json:"text"`
}

// discordRateLimitResponse is the body Discord returns with a 429.
type discordRateLimitResponse struct {
	RetryAfter float64 `json:"retry_after"`
}

const (
	maxTitleLength       = 256
	maxDescriptionLength = 4096
	maxAuthorNameLength  = 256

	// Discord の blurple
	discordBlueColor = 5793266

	discordMaxAttempts = 2
)

// DiscordNotifier posts news items to a Discord channel via webhook.
//
// Discord allows roughly 30 webhook requests per minute per channel;
// the limiter stays well below that at 0.5 req/s with a burst of 3.
type DiscordNotifier struct {
	config      DiscordConfig
	httpClient  *http.Client
	rateLimiter *RateLimiter
	retryDelay  time.Duration
}

// NewDiscordNotifier creates a DiscordNotifier.
func NewDiscordNotifier(config DiscordConfig) *DiscordNotifier {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &DiscordNotifier{
		config: config,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		rateLimiter: NewRateLimiter(0.5, 3),
		retryDelay:  5 * time.Second,
	}
}

// Notify sends one embed describing item. Disabled notifiers return nil.
func (d *DiscordNotifier) Notify(ctx context.Context, watch *entity.WatchItem, item *entity.NewsItem) error {
	if !d.config.Enabled {
		return nil
	}
	if watch == nil || item == nil {
		return fmt.Errorf("discord notify: %w", entity.ErrInvalidInput)
	}

	if err := d.rateLimiter.Allow(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	payload := d.buildEmbedPayload(watch, item)

	err := sendWithRetry(ctx, "discord", discordMaxAttempts, d.retryDelay, func(ctx context.Context) error {
		return postJSON(ctx, d.httpClient, "Discord", d.config.WebhookURL, payload, discordRetryAfter)
	})
	if err != nil {
		return err
	}

	slog.Debug("discord notification sent",
		slog.String("ticker", watch.Symbol().String()),
		slog.String("news_id", item.ID.String()))
	return nil
}

func (d *DiscordNotifier) buildEmbedPayload(watch *entity.WatchItem, item *entity.NewsItem) discordWebhookPayload {
	description := ""
	if item.Summary != nil {
		description = truncate(*item.Summary, maxDescriptionLength, truncationSuffix)
	}

	footer := watch.Symbol().String()

	var author *discordAuthor
	if watch.CompanyName != nil && *watch.CompanyName != "" {
		author = &discordAuthor{Name: truncate(*watch.CompanyName, maxAuthorNameLength, truncationSuffix)}
		if watch.IconURL != nil {
			author.IconURL = *watch.IconURL
		}
	}

	return discordWebhookPayload{
		Embeds: []discordEmbed{
			{
				Title:       truncate(item.Title, maxTitleLength, truncationSuffix),
				Description: description,
				URL:         item.URL,
				Color:       discordBlueColor,
				Author:      author,
				Footer:      discordFooter{Text: footer},
				Timestamp:   item.SortTime().UTC().Format(time.RFC3339),
			},
		},
	}
}

// discordRetryAfter prefers the JSON retry_after (seconds, fractional),
// then the Retry-After header, then a 5 second default.
func discordRetryAfter(resp *http.Response, body []byte) time.Duration {
	var rl discordRateLimitResponse
	if err := json.Unmarshal(body, &rl); err == nil && rl.RetryAfter > 0 {
		return time.Duration(rl.RetryAfter * float64(time.Second))
	}
	if d, ok := retryAfterHeader(resp); ok {
		return d
	}
	return defaultRetryAfter
}
