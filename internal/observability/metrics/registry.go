// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track API request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// Crawl metrics track the per-job and per-source pipeline
var (
	// CrawlJobsTotal counts processed crawl jobs by outcome
	CrawlJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawl_jobs_total",
			Help: "Total number of crawl jobs processed",
		},
		[]string{"status"}, // status: success, partial, not_found, canceled
	)

	// CrawlSourceDuration measures time spent crawling one source for one watch item
	CrawlSourceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crawl_source_duration_seconds",
			Help:    "Time taken to crawl a single source for a watch item",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"source"},
	)

	// CrawlSourceErrors counts failed source crawls
	CrawlSourceErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawl_source_errors_total",
			Help: "Total number of failed source crawls",
		},
		[]string{"source"},
	)

	// CrawlRateLimitWait measures how long the orchestrator slept for politeness
	CrawlRateLimitWait = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "crawl_rate_limit_wait_seconds",
			Help:    "Time spent waiting on per-source rate limits",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 6, 10},
		},
	)

	// RobotsFetchTotal counts robots.txt fetches by outcome
	RobotsFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "robots_fetch_total",
			Help: "Total number of robots.txt fetches",
		},
		[]string{"status"}, // status: success, missing, failure
	)

	// RobotsDisallowedTotal counts query URLs skipped because robots.txt disallowed them
	RobotsDisallowedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "robots_disallowed_total",
			Help: "Total number of crawl URLs skipped by robots.txt rules",
		},
		[]string{"source"},
	)
)

// Ingestion metrics track the dedup engine
var (
	// NewsItemsIngestedTotal counts persisted news items by source
	NewsItemsIngestedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "news_items_ingested_total",
			Help: "Total number of news items persisted",
		},
		[]string{"source"},
	)

	// NewsItemsSkippedTotal counts fetched items that were not persisted
	NewsItemsSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "news_items_skipped_total",
			Help: "Total number of fetched news items skipped",
		},
		[]string{"reason"}, // reason: invalid, duplicate_url, duplicate_title, duplicate_batch, conflict
	)
)

// Scheduler metrics track the crawl job queue
var (
	// SchedulerQueueDepth tracks the number of queued (not yet started) jobs
	SchedulerQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scheduler_queue_depth",
			Help: "Number of crawl jobs waiting in the scheduler queue",
		},
	)

	// SchedulerEnqueueTotal counts enqueue attempts by result
	SchedulerEnqueueTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_enqueue_total",
			Help: "Total number of enqueue attempts",
		},
		[]string{"result"}, // result: accepted, duplicate, closed
	)
)

// RecordHTTPRequest records an HTTP request with its metadata
func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}
