package crawl

import (
	"context"
	"math"
	"strings"
	"time"

	"stocknews-notifier/internal/domain/entity"
)

// RateLimitSettings is the request budget for one host.
type RateLimitSettings struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	RequestsPerMinute int     `yaml:"requests_per_minute"`
}

// RateLimits holds the global defaults and per-host overrides.
type RateLimits struct {
	Default RateLimitSettings
	Hosts   map[string]RateLimitSettings
}

// DefaultRateLimits returns 1 request per second and 10 per minute for every host.
func DefaultRateLimits() RateLimits {
	return RateLimits{
		Default: RateLimitSettings{
			RequestsPerSecond: entity.DefaultRequestsPerSecond,
			RequestsPerMinute: entity.DefaultRequestsPerMinute,
		},
	}
}

// For returns the settings for host. Each field of a host override replaces
// the default only when positive.
func (r RateLimits) For(host string) RateLimitSettings {
	out := r.Default
	override, ok := r.Hosts[strings.ToLower(host)]
	if !ok {
		return out
	}
	if override.RequestsPerSecond > 0 {
		out.RequestsPerSecond = override.RequestsPerSecond
	}
	if override.RequestsPerMinute > 0 {
		out.RequestsPerMinute = override.RequestsPerMinute
	}
	return out
}

// RateLimitSource supplies the current rate limits. It is consulted once per
// job so edits apply without a restart.
type RateLimitSource interface {
	RateLimits(ctx context.Context) (RateLimits, error)
}

// StaticRateLimits is a RateLimitSource with fixed values.
type StaticRateLimits RateLimits

func (s StaticRateLimits) RateLimits(context.Context) (RateLimits, error) {
	return RateLimits(s), nil
}

// MinInterval is the minimum spacing between two crawls of a source:
// the larger of 1/rps seconds and 60/rpm seconds. A non-positive rate
// contributes nothing.
func MinInterval(rps float64, rpm int) time.Duration {
	var perSecond, perMinute float64
	if rps > 0 {
		perSecond = 1 / rps
	}
	if rpm > 0 {
		perMinute = 60 / float64(rpm)
	}
	return time.Duration(math.Max(perSecond, perMinute) * float64(time.Second))
}

// RateLimitWait is how long to wait at now before crawling the source of
// state again. It is zero when the source was never crawled or the minimum
// interval has already passed.
func RateLimitWait(state *entity.CrawlState, now time.Time) time.Duration {
	if state == nil || state.LastCrawlAt == nil {
		return 0
	}
	wait := MinInterval(state.RequestsPerSecond, state.RequestsPerMinute) - now.Sub(*state.LastCrawlAt)
	if wait < 0 {
		return 0
	}
	return wait
}
