package worker

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewWorkerMetrics(t *testing.T) {
	// globalTestMetrics avoids a duplicate registration with the default registry
	m := globalTestMetrics

	if m.ConfigMetrics == nil {
		t.Error("ConfigMetrics is nil")
	}
	if m.SweepRunsTotal == nil || m.SweepDurationSeconds == nil ||
		m.SweepNotificationsTotal == nil || m.SweepLastSuccessTimestamp == nil {
		t.Error("sweep metrics are not initialized")
	}
}

func TestWorkerMetrics_RecordSweepRun(t *testing.T) {
	m := &WorkerMetrics{
		SweepRunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "test_worker_sweep_runs_total",
			Help: "Test counter",
		}, []string{"status"}),
	}

	m.RecordSweepRun("success")
	m.RecordSweepRun("success")
	m.RecordSweepRun("partial")

	if got := testutil.ToFloat64(m.SweepRunsTotal.WithLabelValues("success")); got != 2 {
		t.Errorf("success count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.SweepRunsTotal.WithLabelValues("partial")); got != 1 {
		t.Errorf("partial count = %v, want 1", got)
	}
}

func TestWorkerMetrics_RecordSweepNotifications(t *testing.T) {
	m := &WorkerMetrics{
		SweepNotificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "test_worker_sweep_notifications_total",
			Help: "Test counter",
		}, []string{"result"}),
	}

	m.RecordSweepNotifications(3, 0)
	m.RecordSweepNotifications(1, 2)
	m.RecordSweepNotifications(0, 0)

	if got := testutil.ToFloat64(m.SweepNotificationsTotal.WithLabelValues("sent")); got != 4 {
		t.Errorf("sent = %v, want 4", got)
	}
	if got := testutil.ToFloat64(m.SweepNotificationsTotal.WithLabelValues("failed")); got != 2 {
		t.Errorf("failed = %v, want 2", got)
	}
}

func TestWorkerMetrics_RecordSweepDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	hist := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "test_worker_sweep_duration_seconds",
		Help:    "Test histogram",
		Buckets: []float64{1, 5},
	})
	reg.MustRegister(hist)
	m := &WorkerMetrics{SweepDurationSeconds: hist}

	m.RecordSweepDuration(0.5)
	m.RecordSweepDuration(3)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	if len(families) != 1 {
		t.Fatalf("families = %d, want 1", len(families))
	}
	h := families[0].GetMetric()[0].GetHistogram()
	if h.GetSampleCount() != 2 {
		t.Errorf("sample count = %d, want 2", h.GetSampleCount())
	}
	if h.GetSampleSum() != 3.5 {
		t.Errorf("sample sum = %v, want 3.5", h.GetSampleSum())
	}
}

func TestWorkerMetrics_RecordLastSuccess(t *testing.T) {
	m := &WorkerMetrics{
		SweepLastSuccessTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "test_worker_sweep_last_success_timestamp",
			Help: "Test gauge",
		}),
	}

	m.RecordLastSuccess()
	if got := testutil.ToFloat64(m.SweepLastSuccessTimestamp); got <= 0 {
		t.Errorf("timestamp = %v, want > 0", got)
	}
}
