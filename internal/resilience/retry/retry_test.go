package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fast = Config{Attempts: 3, Base: time.Millisecond, Cap: 2 * time.Millisecond, Factor: 2}

func TestDo(t *testing.T) {
	transient := &StatusError{Code: 503, Status: "503 Service Unavailable"}
	permanent := &StatusError{Code: 404, Status: "404 Not Found"}

	tests := []struct {
		name      string
		results   []error
		wantCalls int
		wantErr   error
	}{
		{"first call succeeds", []error{nil}, 1, nil},
		{"succeeds on third call", []error{transient, transient, nil}, 3, nil},
		{"gives up", []error{transient, transient, transient}, 3, transient},
		{"permanent error stops", []error{permanent}, 1, permanent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Do(context.Background(), fast, func() error {
				err := tt.results[calls]
				calls++
				return err
			})
			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDo_GaveUpMessage(t *testing.T) {
	err := Do(context.Background(), fast, func() error { return &StatusError{Code: 500} })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gave up after 3 attempts")
	assert.Contains(t, err.Error(), "unexpected status 500")
}

func TestDo_ZeroAttemptsStillCallsOnce(t *testing.T) {
	calls := 0
	_ = Do(context.Background(), Config{}, func() error { calls++; return io.ErrUnexpectedEOF })
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCanceledWhileWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := Config{Attempts: 5, Base: time.Hour, Factor: 1}

	calls := 0
	err := Do(ctx, cfg, func() error {
		calls++
		cancel()
		return &StatusError{Code: 502}
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestConfig_Delay(t *testing.T) {
	c := Config{Base: 2 * time.Second, Cap: 8 * time.Second, Factor: 2}
	assert.Equal(t, 2*time.Second, c.delay(1))
	assert.Equal(t, 4*time.Second, c.delay(2))
	assert.Equal(t, 8*time.Second, c.delay(3))
	assert.Equal(t, 8*time.Second, c.delay(4), "capped")

	c.Jitter = 0.25
	for i := 0; i < 50; i++ {
		d := c.delay(1)
		assert.GreaterOrEqual(t, d, 2*time.Second)
		assert.LessOrEqual(t, d, 2500*time.Millisecond)
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("parse error"), false},
		{context.Canceled, false},
		{fmt.Errorf("wrapped: %w", context.DeadlineExceeded), false},
		{timeoutErr{}, true},
		{io.ErrUnexpectedEOF, true},
		{syscall.ECONNRESET, true},
		{fmt.Errorf("dial: %w", syscall.ECONNREFUSED), true},
		{&url.Error{Op: "Get", URL: "https://example.com", Err: errors.New("no such host")}, true},
		{&StatusError{Code: 500}, true},
		{&StatusError{Code: 429}, true},
		{&StatusError{Code: 408}, true},
		{&StatusError{Code: 403}, false},
		{&StatusError{Code: 404}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsRetryable(tt.err), "%v", tt.err)
	}
}

func TestPresets(t *testing.T) {
	c := CrawlerConfig()
	assert.Equal(t, 4, c.Attempts)
	assert.Equal(t, 8*time.Second, c.Cap)
	assert.Equal(t, 2, RobotsConfig().Attempts)
}
