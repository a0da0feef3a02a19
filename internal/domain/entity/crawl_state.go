package entity

import "time"

const (
	// DefaultRequestsPerSecond is applied to freshly created crawl states.
	DefaultRequestsPerSecond = 1.0
	// DefaultRequestsPerMinute is applied to freshly created crawl states.
	DefaultRequestsPerMinute = 10
	// MaxRobotsTxtLength caps the cached robots.txt body in characters.
	MaxRobotsTxtLength = 10000
	// maxLastErrorLength keeps error messages within a sane column size.
	maxLastErrorLength = 2000
)

// CrawlState is the per-source crawl bookkeeping: rate limits, robots.txt
// cache and recent error history. One row exists per Source.
type CrawlState struct {
	SourceID           int64
	LastCrawlAt        *time.Time
	RequestsPerSecond  float64
	RequestsPerMinute  int
	RobotsTxt          *string
	RobotsTxtFetchedAt *time.Time
	ConsecutiveErrors  int
	LastError          *string
	LastErrorAt        *time.Time
}

// NewCrawlState returns a state with default rate limits.
func NewCrawlState(sourceID int64) *CrawlState {
	return &CrawlState{
		SourceID:          sourceID,
		RequestsPerSecond: DefaultRequestsPerSecond,
		RequestsPerMinute: DefaultRequestsPerMinute,
	}
}

// RecordSuccess marks a completed crawl and clears the error history.
func (c *CrawlState) RecordSuccess(now time.Time) {
	c.LastCrawlAt = &now
	c.ConsecutiveErrors = 0
	c.LastError = nil
	c.LastErrorAt = nil
}

// RecordFailure increments the error counter and stores the message.
func (c *CrawlState) RecordFailure(now time.Time, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	if r := []rune(msg); len(r) > maxLastErrorLength {
		msg = string(r[:maxLastErrorLength])
	}
	c.ConsecutiveErrors++
	c.LastError = &msg
	c.LastErrorAt = &now
}

// RobotsStale reports whether robots.txt is missing or older than ttl.
func (c *CrawlState) RobotsStale(now time.Time, ttl time.Duration) bool {
	if c.RobotsTxt == nil || c.RobotsTxtFetchedAt == nil {
		return true
	}
	return now.Sub(*c.RobotsTxtFetchedAt) > ttl
}

// SetRobotsTxt stores body truncated to MaxRobotsTxtLength characters.
func (c *CrawlState) SetRobotsTxt(body string, now time.Time) {
	if r := []rune(body); len(r) > MaxRobotsTxtLength {
		body = string(r[:MaxRobotsTxtLength])
	}
	c.RobotsTxt = &body
	c.RobotsTxtFetchedAt = &now
}
