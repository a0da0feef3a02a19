// Package retry re-runs transient failures with capped exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net"
	"net/http"
	"net/url"
	"syscall"
	"time"
)

// Config describes a backoff schedule. The delay before retry n (1-based)
// is Base*Factor^(n-1), capped at Cap, plus up to Jitter*delay of noise.
type Config struct {
	Attempts int // total calls including the first
	Base     time.Duration
	Cap      time.Duration
	Factor   float64
	Jitter   float64 // 0..1
}

// CrawlerConfig is used for source page fetches: three retries after the
// first call, waiting roughly 2s, 4s and 8s.
func CrawlerConfig() Config {
	return Config{Attempts: 4, Base: 2 * time.Second, Cap: 8 * time.Second, Factor: 2, Jitter: 0.25}
}

// RobotsConfig is used for robots.txt. A stale cache is acceptable, so one
// quick retry is enough.
func RobotsConfig() Config {
	return Config{Attempts: 2, Base: 500 * time.Millisecond, Cap: time.Second, Factor: 2, Jitter: 0.1}
}

// StatusError is a non-2xx HTTP answer.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	if e.Status == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return "unexpected status: " + e.Status
}

// Do calls fn until it succeeds, returns an error IsRetryable rejects, or
// cfg.Attempts calls have been made. Waiting between calls honours ctx.
func Do(ctx context.Context, cfg Config, fn func() error) error {
	attempts := max(cfg.Attempts, 1)

	var err error
	for n := 1; ; n++ {
		if err = fn(); err == nil {
			if n > 1 {
				slog.Debug("retry succeeded", slog.Int("attempt", n))
			}
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		if n == attempts {
			return fmt.Errorf("gave up after %d attempts: %w", attempts, err)
		}

		wait := cfg.delay(n)
		slog.Warn("transient failure, retrying",
			slog.Int("attempt", n),
			slog.Int("attempts", attempts),
			slog.Duration("wait", wait),
			slog.Any("error", err))

		t := time.NewTimer(wait)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return fmt.Errorf("retry canceled: %w", ctx.Err())
		}
	}
}

// delay returns the wait before retry n.
func (c Config) delay(n int) time.Duration {
	d := float64(c.Base)
	for i := 1; i < n; i++ {
		d *= c.Factor
	}
	if c.Cap > 0 && d > float64(c.Cap) {
		d = float64(c.Cap)
	}
	if j := min(c.Jitter, 1); j > 0 {
		d += rand.Float64() * d * j // #nosec G404 -- backoff jitter
	}
	return time.Duration(d)
}

// IsRetryable reports whether err looks transient: timeouts, refused or
// reset connections, truncated bodies, 5xx, 408 and 429.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= 500 ||
			se.Code == http.StatusTooManyRequests ||
			se.Code == http.StatusRequestTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ETIMEDOUT) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return true
	}

	// DNS, TLS and dial failures surface from net/http as *url.Error
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
