package crawl

import (
	"testing"
	"time"

	"stocknews-notifier/internal/domain/entity"
)

func TestMinInterval(t *testing.T) {
	tests := []struct {
		name string
		rps  float64
		rpm  int
		want time.Duration
	}{
		{"rps dominates", 0.5, 60, 2 * time.Second},
		{"rpm dominates", 1, 10, 6 * time.Second},
		{"equal", 1, 60, time.Second},
		{"zero rps", 0, 30, 2 * time.Second},
		{"negative rpm", 4, -1, 250 * time.Millisecond},
		{"both non-positive", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MinInterval(tt.rps, tt.rpm); got != tt.want {
				t.Errorf("MinInterval(%v, %d) = %v, want %v", tt.rps, tt.rpm, got, tt.want)
			}
		})
	}
}

func TestRateLimitWait(t *testing.T) {
	now := time.Date(2025, 11, 16, 12, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time {
		ts := now.Add(-d)
		return &ts
	}

	tests := []struct {
		name  string
		state *entity.CrawlState
		want  time.Duration
	}{
		{"never crawled", &entity.CrawlState{RequestsPerSecond: 1, RequestsPerMinute: 60}, 0},
		{"200ms ago at 1 rps", &entity.CrawlState{RequestsPerSecond: 1, RequestsPerMinute: 60, LastCrawlAt: at(200 * time.Millisecond)}, 800 * time.Millisecond},
		{"interval elapsed", &entity.CrawlState{RequestsPerSecond: 1, RequestsPerMinute: 10, LastCrawlAt: at(10 * time.Second)}, 0},
		{"defaults 6s spacing", &entity.CrawlState{RequestsPerSecond: 1, RequestsPerMinute: 10, LastCrawlAt: at(time.Second)}, 5 * time.Second},
		{"nil state", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RateLimitWait(tt.state, now); got != tt.want {
				t.Errorf("RateLimitWait() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRateLimits_For(t *testing.T) {
	limits := RateLimits{
		Default: RateLimitSettings{RequestsPerSecond: 1, RequestsPerMinute: 10},
		Hosts: map[string]RateLimitSettings{
			"finance.yahoo.com": {RequestsPerSecond: 0.5, RequestsPerMinute: 20},
			"news.google.com":   {RequestsPerSecond: -1, RequestsPerMinute: 30},
			"www.wsj.com":       {RequestsPerSecond: 2},
		},
	}

	tests := []struct {
		host string
		want RateLimitSettings
	}{
		{"finance.yahoo.com", RateLimitSettings{0.5, 20}},
		{"FINANCE.YAHOO.COM", RateLimitSettings{0.5, 20}},
		{"news.google.com", RateLimitSettings{1, 30}},
		{"www.wsj.com", RateLimitSettings{2, 10}},
		{"unknown.example", RateLimitSettings{1, 10}},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			if got := limits.For(tt.host); got != tt.want {
				t.Errorf("For(%q) = %+v, want %+v", tt.host, got, tt.want)
			}
		})
	}
}
