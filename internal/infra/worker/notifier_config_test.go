package worker

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestLoadDiscordConfig(t *testing.T) {
	tests := []struct {
		name        string
		enabled     string
		url         string
		wantEnabled bool
	}{
		{"disabled", "false", "https://discord.com/api/webhooks/1/abc", false},
		{"unset", "", "", false},
		{"valid", "true", "https://discord.com/api/webhooks/1/abc", true},
		{"empty url", "true", "", false},
		{"http scheme", "true", "http://discord.com/api/webhooks/1/abc", false},
		{"wrong host", "true", "https://evil.example.com/api/webhooks/1/abc", false},
		{"wrong path", "true", "https://discord.com/webhooks/1/abc", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DISCORD_ENABLED", tt.enabled)
			t.Setenv("DISCORD_WEBHOOK_URL", tt.url)

			var buf bytes.Buffer
			cfg := LoadDiscordConfig(slog.New(slog.NewJSONHandler(&buf, nil)))

			if cfg.Enabled != tt.wantEnabled {
				t.Errorf("Enabled = %v, want %v", cfg.Enabled, tt.wantEnabled)
			}
			if tt.wantEnabled {
				if cfg.WebhookURL != tt.url {
					t.Errorf("WebhookURL = %q", cfg.WebhookURL)
				}
				if cfg.Timeout != 30*time.Second {
					t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
				}
			}
			if tt.url != "" && strings.Contains(buf.String(), tt.url) {
				t.Error("webhook URL leaked into logs")
			}
		})
	}
}

func TestLoadSlackConfig(t *testing.T) {
	tests := []struct {
		name        string
		enabled     string
		url         string
		wantEnabled bool
	}{
		{"valid", "true", "https://hooks.slack.com/services/T0/B0/X0", true},
		{"numeric flag", "1", "https://hooks.slack.com/services/T0/B0/X0", true},
		{"garbage flag", "yes please", "https://hooks.slack.com/services/T0/B0/X0", false},
		{"wrong host", "true", "https://slack.com/services/T0/B0/X0", false},
		{"wrong path", "true", "https://hooks.slack.com/api/T0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SLACK_ENABLED", tt.enabled)
			t.Setenv("SLACK_WEBHOOK_URL", tt.url)

			var buf bytes.Buffer
			cfg := LoadSlackConfig(slog.New(slog.NewJSONHandler(&buf, nil)))

			if cfg.Enabled != tt.wantEnabled {
				t.Errorf("Enabled = %v, want %v", cfg.Enabled, tt.wantEnabled)
			}
			if tt.wantEnabled && cfg.WebhookURL != tt.url {
				t.Errorf("WebhookURL = %q", cfg.WebhookURL)
			}
			if strings.Contains(buf.String(), tt.url) {
				t.Error("webhook URL leaked into logs")
			}
		})
	}
}
