package http

import (
	"net/http"
	"strconv"
	"time"

	"stocknews-notifier/internal/handler/http/pathutil"
	"stocknews-notifier/internal/handler/http/responsewriter"
	"stocknews-notifier/internal/observability/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// http_requests_total and the latency histogram are shared with the rest of
// the process and live in the observability registry.
var (
	apiInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "api_requests_in_flight",
		Help: "Watchlist API requests currently being served",
	})

	// direction: request|response
	apiPayloadBytes = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "api_payload_bytes",
		Help:    "Watchlist API body sizes in bytes",
		Buckets: []float64{64, 256, 1024, 4096, 16384, 65536, 262144, 1048576},
	}, []string{"method", "path", "direction"})
)

// MetricsMiddleware records per-route counters, latency and body sizes.
// Watch and news IDs are folded into ":id" so they never become labels.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiInFlight.Inc()
		defer apiInFlight.Dec()

		path := pathutil.NormalizePath(r.URL.Path)
		if r.ContentLength > 0 {
			apiPayloadBytes.WithLabelValues(r.Method, path, "request").Observe(float64(r.ContentLength))
		}

		rw := responsewriter.Wrap(w)
		start := time.Now()
		next.ServeHTTP(rw, r)

		metrics.RecordHTTPRequest(r.Method, path, strconv.Itoa(rw.StatusCode()), time.Since(start))
		if n := rw.BytesWritten(); n > 0 {
			apiPayloadBytes.WithLabelValues(r.Method, path, "response").Observe(float64(n))
		}
	})
}
