package notifier

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"cut", "hello world", 8, "hello..."},
		{"multibyte", "日本語のニュース", 5, "日本..."},
		{"max smaller than suffix", "abcdef", 2, "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncate(tt.in, tt.max, truncationSuffix); got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"server error", &ServerError{StatusCode: 500}, true},
		{"wrapped server error", fmt.Errorf("x: %w", &ServerError{StatusCode: 503}), true},
		{"client error", &ClientError{StatusCode: 400}, false},
		{"rate limit", &RateLimitError{RetryAfter: time.Second}, false},
		{"network", errors.New("connection refused"), true},
		{"canceled", context.Canceled, false},
		{"deadline", fmt.Errorf("do: %w", context.DeadlineExceeded), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryableError(tt.err); got != tt.want {
				t.Errorf("isRetryableError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRateLimitError_Error(t *testing.T) {
	err := &RateLimitError{RetryAfter: 2 * time.Second, Message: "Slack rate limit exceeded"}
	if got := err.Error(); got != "Slack rate limit exceeded (retry after 2s)" {
		t.Errorf("Error() = %q", got)
	}
	if got := (&RateLimitError{RetryAfter: time.Second}).Error(); got != "rate limit exceeded (retry after 1s)" {
		t.Errorf("Error() = %q", got)
	}
}

func TestSendWithRetry(t *testing.T) {
	t.Run("stops on non-retryable", func(t *testing.T) {
		calls := 0
		err := sendWithRetry(context.Background(), "test", 3, time.Millisecond, func(context.Context) error {
			calls++
			return &ClientError{StatusCode: 400, Message: "bad"}
		})
		if err == nil || calls != 1 {
			t.Errorf("err = %v, calls = %d", err, calls)
		}
	})

	t.Run("retries to max attempts", func(t *testing.T) {
		calls := 0
		err := sendWithRetry(context.Background(), "test", 3, time.Millisecond, func(context.Context) error {
			calls++
			return &ServerError{StatusCode: 502, Message: "bad gateway"}
		})
		if err == nil || calls != 3 {
			t.Errorf("err = %v, calls = %d", err, calls)
		}
	})
}
