package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"stocknews-notifier/internal/domain/entity"
)

// SlackConfig holds configuration for Slack incoming-webhook notifications.
type SlackConfig struct {
	Enabled bool

	// WebhookURL format: https://hooks.slack.com/services/{T}/{B}/{X}
	WebhookURL string

	// Timeout is the HTTP request timeout. Zero means 10 seconds.
	Timeout time.Duration
}

// slackWebhookPayload is a Block Kit message.
// Text is the fallback shown in notifications and clients without block support.
type slackWebhookPayload struct {
	Text   string       `json:"text"`
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type     string      `json:"type"`
	Text     *slackText  `json:"text,omitempty"`
	Elements []slackText `json:"elements,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

const (
	maxSectionTextLength = 3000
	maxFallbackLength    = 150

	slackMaxAttempts = 2
)

// SlackNotifier posts news items to Slack via an incoming webhook.
// Slack allows about one message per second per webhook.
type SlackNotifier struct {
	config      SlackConfig
	httpClient  *http.Client
	rateLimiter *RateLimiter
	retryDelay  time.Duration
}

// NewSlackNotifier creates a SlackNotifier.
func NewSlackNotifier(config SlackConfig) *SlackNotifier {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SlackNotifier{
		config: config,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		rateLimiter: NewRateLimiter(1.0, 1),
		retryDelay:  5 * time.Second,
	}
}

// Notify sends one Block Kit message describing item. Disabled notifiers return nil.
func (s *SlackNotifier) Notify(ctx context.Context, watch *entity.WatchItem, item *entity.NewsItem) error {
	if !s.config.Enabled {
		return nil
	}
	if watch == nil || item == nil {
		return fmt.Errorf("slack notify: %w", entity.ErrInvalidInput)
	}

	if err := s.rateLimiter.Allow(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	payload := s.buildBlockKitPayload(watch, item)

	err := sendWithRetry(ctx, "slack", slackMaxAttempts, s.retryDelay, func(ctx context.Context) error {
		return postJSON(ctx, s.httpClient, "Slack", s.config.WebhookURL, payload, slackRetryAfter)
	})
	if err != nil {
		return err
	}

	slog.Debug("slack notification sent",
		slog.String("ticker", watch.Symbol().String()),
		slog.String("news_id", item.ID.String()))
	return nil
}

func (s *SlackNotifier) buildBlockKitPayload(watch *entity.WatchItem, item *entity.NewsItem) slackWebhookPayload {
	ticker := watch.Symbol().String()

	section := fmt.Sprintf("*<%s|%s>*", item.URL, escapeSlack(item.Title))
	if item.Summary != nil && *item.Summary != "" {
		section += "\n" + escapeSlack(*item.Summary)
	}

	contextText := ticker
	if watch.CompanyName != nil && *watch.CompanyName != "" {
		contextText = fmt.Sprintf("%s (%s)", ticker, escapeSlack(*watch.CompanyName))
	}
	contextText += " | " + item.SortTime().UTC().Format("2006-01-02 15:04 UTC")

	return slackWebhookPayload{
		Text: truncate(ticker+": "+item.Title, maxFallbackLength, truncationSuffix),
		Blocks: []slackBlock{
			{
				Type: "section",
				Text: &slackText{Type: "mrkdwn", Text: truncate(section, maxSectionTextLength, truncationSuffix)},
			},
			{
				Type:     "context",
				Elements: []slackText{{Type: "mrkdwn", Text: contextText}},
			},
		},
	}
}

var slackEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// escapeSlack escapes the three characters Slack mrkdwn treats as control sequences.
func escapeSlack(s string) string {
	return slackEscaper.Replace(s)
}

// Slack returns a plain-text body with 429; only the header carries the delay.
func slackRetryAfter(resp *http.Response, _ []byte) time.Duration {
	if d, ok := retryAfterHeader(resp); ok {
		return d
	}
	return defaultRetryAfter
}
