package worker

import (
	"stocknews-notifier/internal/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WorkerMetrics provides Prometheus metrics for the worker process.
// It embeds the standard ConfigMetrics for configuration monitoring and adds
// metrics for the notification sweep cron job.
//
// Embedded metrics (from ConfigMetrics):
//   - worker_config_load_timestamp
//   - worker_config_validation_errors_total{field}
//   - worker_config_fallbacks_total{field}
//   - worker_config_fallback_active
//
// Sweep metrics:
//   - worker_sweep_runs_total{status}: success, partial, failure or skipped
//   - worker_sweep_duration_seconds
//   - worker_sweep_notifications_total{result}: sent or failed
//   - worker_sweep_last_success_timestamp
type WorkerMetrics struct {
	*config.ConfigMetrics

	SweepRunsTotal            *prometheus.CounterVec
	SweepDurationSeconds      prometheus.Histogram
	SweepNotificationsTotal   *prometheus.CounterVec
	SweepLastSuccessTimestamp prometheus.Gauge
}

// NewWorkerMetrics creates and registers the worker metrics with the
// default registry. Call it once per process.
func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetrics("worker"),

		SweepRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_sweep_runs_total",
			Help: "Total number of notification sweep runs by status",
		}, []string{"status"}),

		SweepDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_sweep_duration_seconds",
			Help:    "Duration of notification sweep runs in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300},
		}),

		SweepNotificationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_sweep_notifications_total",
			Help: "Total number of notifications attempted by the sweep by result",
		}, []string{"result"}),

		SweepLastSuccessTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "worker_sweep_last_success_timestamp",
			Help: "Unix timestamp of the last successful notification sweep",
		}),
	}
}

// RecordSweepRun increments the sweep run counter for status.
func (m *WorkerMetrics) RecordSweepRun(status string) {
	m.SweepRunsTotal.WithLabelValues(status).Inc()
}

// RecordSweepDuration observes the duration of a sweep in seconds.
func (m *WorkerMetrics) RecordSweepDuration(seconds float64) {
	m.SweepDurationSeconds.Observe(seconds)
}

// RecordSweepNotifications adds the per-run sent and failed counts.
func (m *WorkerMetrics) RecordSweepNotifications(sent, failed int) {
	if sent > 0 {
		m.SweepNotificationsTotal.WithLabelValues("sent").Add(float64(sent))
	}
	if failed > 0 {
		m.SweepNotificationsTotal.WithLabelValues("failed").Add(float64(failed))
	}
}

// RecordLastSuccess records the current time as the last successful sweep.
func (m *WorkerMetrics) RecordLastSuccess() {
	m.SweepLastSuccessTimestamp.SetToCurrentTime()
}
