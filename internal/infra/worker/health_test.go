package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestHealthServer() *HealthServer {
	return NewHealthServer(":0", slog.New(slog.NewJSONHandler(io.Discard, nil)))
}

func getHealth(t *testing.T, h http.Handler, path string) (int, healthResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return rec.Code, body
}

func TestHealthServer_Liveness(t *testing.T) {
	server := newTestHealthServer()

	code, body := getHealth(t, server.Handler(), "/health")
	if code != http.StatusOK {
		t.Errorf("expected status 200, got %d", code)
	}
	if body.Status != "ok" {
		t.Errorf("expected status 'ok', got '%s'", body.Status)
	}
}

func TestHealthServer_Readiness(t *testing.T) {
	errDown := errors.New("connection refused")

	tests := []struct {
		name       string
		ready      bool
		checks     map[string]ReadinessCheck
		wantCode   int
		wantStatus string
		wantChecks map[string]string
	}{
		{
			name:       "not ready",
			ready:      false,
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "not ready",
		},
		{
			name:       "ready without checks",
			ready:      true,
			wantCode:   http.StatusOK,
			wantStatus: "ok",
		},
		{
			name:  "ready with passing check",
			ready: true,
			checks: map[string]ReadinessCheck{
				"database": func(context.Context) error { return nil },
			},
			wantCode:   http.StatusOK,
			wantStatus: "ok",
			wantChecks: map[string]string{"database": "ok"},
		},
		{
			name:  "ready with failing check",
			ready: true,
			checks: map[string]ReadinessCheck{
				"database":  func(context.Context) error { return errDown },
				"scheduler": func(context.Context) error { return nil },
			},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "not ready",
			wantChecks: map[string]string{"database": "failing", "scheduler": "ok"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestHealthServer()
			for name, check := range tt.checks {
				server.AddCheck(name, check)
			}
			server.SetReady(tt.ready)

			code, body := getHealth(t, server.Handler(), "/health/ready")
			if code != tt.wantCode {
				t.Errorf("expected status %d, got %d", tt.wantCode, code)
			}
			if body.Status != tt.wantStatus {
				t.Errorf("expected status '%s', got '%s'", tt.wantStatus, body.Status)
			}
			if len(body.Checks) != len(tt.wantChecks) {
				t.Fatalf("checks = %v, want %v", body.Checks, tt.wantChecks)
			}
			for name, want := range tt.wantChecks {
				if body.Checks[name] != want {
					t.Errorf("check %s = %q, want %q", name, body.Checks[name], want)
				}
			}
		})
	}
}

func TestHealthServer_Readiness_Transition(t *testing.T) {
	server := newTestHealthServer()
	h := server.Handler()

	if code, _ := getHealth(t, h, "/health/ready"); code != http.StatusServiceUnavailable {
		t.Errorf("initial status = %d, want 503", code)
	}
	server.SetReady(true)
	if code, _ := getHealth(t, h, "/health/ready"); code != http.StatusOK {
		t.Errorf("status after SetReady(true) = %d, want 200", code)
	}
	server.SetReady(false)
	if code, _ := getHealth(t, h, "/health/ready"); code != http.StatusServiceUnavailable {
		t.Errorf("status after SetReady(false) = %d, want 503", code)
	}
}

func TestHealthServer_CheckReceivesDeadline(t *testing.T) {
	server := newTestHealthServer()
	var hadDeadline bool
	server.AddCheck("database", func(ctx context.Context) error {
		_, hadDeadline = ctx.Deadline()
		return nil
	})
	server.SetReady(true)

	getHealth(t, server.Handler(), "/health/ready")
	if !hadDeadline {
		t.Error("readiness check context has no deadline")
	}
}

func TestHealthServer_GracefulShutdown(t *testing.T) {
	server := NewHealthServer("localhost:19095", slog.New(slog.NewJSONHandler(io.Discard, nil)))

	ctx, cancel := context.WithCancel(context.Background())

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(ctx)
	}()

	// Wait for server to start
	time.Sleep(100 * time.Millisecond)

	resp, err := http.Get("http://localhost:19095/health")
	if err != nil {
		t.Fatalf("server not running: %v", err)
	}
	if err := resp.Body.Close(); err != nil {
		t.Errorf("failed to close response body: %v", err)
	}

	cancel()

	select {
	case err := <-errChan:
		if err != http.ErrServerClosed {
			t.Errorf("expected http.ErrServerClosed, got %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("shutdown timeout")
	}

	if _, err := http.Get("http://localhost:19095/health"); err == nil {
		t.Error("expected connection error after shutdown, but got success")
	}
}

func TestNewHealthServer(t *testing.T) {
	server := NewHealthServer(":9091", nil)

	if server.addr != ":9091" {
		t.Errorf("expected addr ':9091', got '%s'", server.addr)
	}
	if server.logger == nil {
		t.Error("expected default logger to be set")
	}
	if server.isReady.Load() {
		t.Error("expected isReady to be false initially")
	}
}
