package notifier

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiter_Allow(t *testing.T) {
	t.Run("burst is served immediately", func(t *testing.T) {
		limiter := NewRateLimiter(2.0, 5)
		ctx := context.Background()

		start := time.Now()
		for i := 0; i < 5; i++ {
			if err := limiter.Allow(ctx); err != nil {
				t.Fatalf("request %d: unexpected error %v", i, err)
			}
		}
		if elapsed := time.Since(start); elapsed > 200*time.Millisecond {
			t.Errorf("burst took %v, want near zero", elapsed)
		}
	})

	t.Run("blocks past burst until deadline", func(t *testing.T) {
		limiter := NewRateLimiter(1.0, 1)
		if err := limiter.Allow(context.Background()); err != nil {
			t.Fatalf("first request: %v", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		if err := limiter.Allow(ctx); err == nil {
			t.Error("expected error once bucket is empty and deadline is short")
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		limiter := NewRateLimiter(0.01, 1)
		_ = limiter.Allow(context.Background())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if err := limiter.Allow(ctx); err == nil {
			t.Error("expected error for canceled context")
		}
	})
}

func TestNewRateLimiter(t *testing.T) {
	tests := []struct {
		name  string
		rps   float64
		burst int
	}{
		{"discord", 0.5, 3},
		{"slack", 1.0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewRateLimiter(tt.rps, tt.burst)
			if l.Limit() != tt.rps {
				t.Errorf("Limit() = %v, want %v", l.Limit(), tt.rps)
			}
			if l.Burst() != tt.burst {
				t.Errorf("Burst() = %d, want %d", l.Burst(), tt.burst)
			}
		})
	}
}
