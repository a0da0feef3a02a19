package metrics

import (
	"time"
)

// RecordCrawlJob records the outcome of one crawl job.
// Status is one of "success", "partial", "not_found" or "canceled".
func RecordCrawlJob(status string) {
	CrawlJobsTotal.WithLabelValues(status).Inc()
}

// RecordSourceCrawl records the duration of a single source crawl and,
// when it failed, increments the per-source error counter.
func RecordSourceCrawl(source string, duration time.Duration, failed bool) {
	CrawlSourceDuration.WithLabelValues(source).Observe(duration.Seconds())
	if failed {
		CrawlSourceErrors.WithLabelValues(source).Inc()
	}
}

// RecordRateLimitWait records a politeness sleep. Zero waits are not observed.
func RecordRateLimitWait(wait time.Duration) {
	if wait <= 0 {
		return
	}
	CrawlRateLimitWait.Observe(wait.Seconds())
}

// RecordRobotsFetch records a robots.txt fetch outcome.
func RecordRobotsFetch(status string) {
	RobotsFetchTotal.WithLabelValues(status).Inc()
}

// RecordRobotsDisallowed records a query URL skipped by robots.txt rules.
func RecordRobotsDisallowed(source string) {
	RobotsDisallowedTotal.WithLabelValues(source).Inc()
}

// RecordNewsIngested records news items persisted for a source.
func RecordNewsIngested(source string, count int) {
	if count <= 0 {
		return
	}
	NewsItemsIngestedTotal.WithLabelValues(source).Add(float64(count))
}

// RecordNewsSkipped records one fetched item that was not persisted.
func RecordNewsSkipped(reason string) {
	NewsItemsSkippedTotal.WithLabelValues(reason).Inc()
}

// SetSchedulerQueueDepth updates the queued job gauge.
func SetSchedulerQueueDepth(depth int) {
	SchedulerQueueDepth.Set(float64(depth))
}

// RecordEnqueue records an enqueue attempt.
// Result is one of "accepted", "duplicate" or "closed".
func RecordEnqueue(result string) {
	SchedulerEnqueueTotal.WithLabelValues(result).Inc()
}
