package crawl

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/temoto/robotstxt"

	"stocknews-notifier/internal/domain/entity"
	"stocknews-notifier/internal/observability/metrics"
)

// RobotsFetcher downloads https://{host}/robots.txt.
// found is false when the server answered with a 4xx, which means every
// path is allowed. err is non-nil for 5xx and transport failures.
type RobotsFetcher interface {
	FetchRobots(ctx context.Context, host string) (body string, found bool, err error)
}

// refreshRobots re-fetches robots.txt into state when the cached copy is
// missing or stale. Failures are logged and leave the cache untouched.
func (o *Orchestrator) refreshRobots(ctx context.Context, state *entity.CrawlState, host string, logger *slog.Logger) {
	if o.robots == nil || host == "" {
		return
	}
	now := o.now()
	if !state.RobotsStale(now, o.cfg.RobotsCacheTTL) {
		return
	}

	body, found, err := o.robots.FetchRobots(ctx, host)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		metrics.RecordRobotsFetch("failure")
		logger.Warn("failed to fetch robots.txt",
			slog.String("host", host),
			slog.Any("error", err))
		return
	}

	if !found {
		metrics.RecordRobotsFetch("missing")
		state.SetRobotsTxt("", now)
		return
	}
	metrics.RecordRobotsFetch("success")
	state.SetRobotsTxt(body, now)
}

// robotsAllowed reports whether the cached robots.txt allows agent to fetch
// rawURL. A missing or unparsable robots.txt allows everything.
func robotsAllowed(state *entity.CrawlState, rawURL, agent string) bool {
	if state == nil || state.RobotsTxt == nil || *state.RobotsTxt == "" {
		return true
	}
	robots, err := robotstxt.FromString(*state.RobotsTxt)
	if err != nil {
		return true
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return robots.TestAgent(path, agent)
}
