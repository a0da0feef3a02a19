package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stocknews-notifier/internal/usecase/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubReporter []notify.ChannelHealthStatus

func (s stubReporter) ChannelHealth() []notify.ChannelHealthStatus { return s }

func TestChannelHealthHandler(t *testing.T) {
	tests := []struct {
		name        string
		statuses    stubReporter
		wantCode    int
		wantHealthy bool
	}{
		{
			name: "all closed",
			statuses: stubReporter{
				{Name: "log", Enabled: true, State: "closed"},
				{Name: "discord", Enabled: true, State: "closed"},
			},
			wantCode:    http.StatusOK,
			wantHealthy: true,
		},
		{
			name: "enabled channel open",
			statuses: stubReporter{
				{Name: "log", Enabled: true, State: "closed"},
				{Name: "slack", Enabled: true, CircuitBreakerOpen: true, State: "open"},
			},
			wantCode:    http.StatusServiceUnavailable,
			wantHealthy: false,
		},
		{
			name: "disabled channel open is ignored",
			statuses: stubReporter{
				{Name: "slack", Enabled: false, CircuitBreakerOpen: true, State: "open"},
			},
			wantCode:    http.StatusOK,
			wantHealthy: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newMetricsServer(0, tt.statuses)
			rr := httptest.NewRecorder()
			srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health/channels", nil))

			assert.Equal(t, tt.wantCode, rr.Code)
			var body ChannelHealthResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
			assert.Equal(t, tt.wantHealthy, body.Healthy)
			assert.Len(t, body.Channels, len(tt.statuses))
		})
	}
}

func TestMetricsServer_Endpoints(t *testing.T) {
	srv := newMetricsServer(9090, stubReporter{})
	assert.Equal(t, ":9090", srv.Addr)

	for _, path := range []string{"/metrics", "/health"} {
		rr := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}
}

func TestServeHTTP_ShutsDownOnCancel(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serveHTTP(ctx, logger, "test", srv) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serveHTTP did not return after cancel")
	}
}

func TestServeHTTP_ListenError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := &http.Server{Addr: "invalid-address", Handler: http.NotFoundHandler()}

	err := serveHTTP(context.Background(), logger, "bad", srv)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad server")
}
