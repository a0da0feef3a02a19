// Package http wires the watchlist and news API onto a ServeMux together
// with the shared middleware stack.
package http

import (
	"log/slog"
	"net/http"

	"stocknews-notifier/internal/handler/http/news"
	"stocknews-notifier/internal/handler/http/requestid"
	"stocknews-notifier/internal/handler/http/watch"
	"stocknews-notifier/internal/observability/tracing"
)

// DefaultMaxBodyBytes caps API request bodies.
const DefaultMaxBodyBytes int64 = 1 << 20 // 1MB

// RouterConfig holds the dependencies of the API router.
type RouterConfig struct {
	Watches watch.Service
	News    news.Service
	Logger  *slog.Logger

	// RateLimiter is optional.
	RateLimiter  *IPRateLimiter
	MaxBodyBytes int64
}

// NewRouter returns the API handler.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}

	mux := http.NewServeMux()
	watch.Register(mux, cfg.Watches)
	news.Register(mux, cfg.News)

	// tracing より内側では r.WithContext しないこと (r.Pattern を参照するため)
	mws := []Middleware{
		requestid.Middleware,
		tracing.Middleware,
		Logging(logger),
		Recover(logger),
		MetricsMiddleware,
	}
	if cfg.RateLimiter != nil {
		mws = append(mws, cfg.RateLimiter.Limit)
	}
	mws = append(mws, LimitRequestBody(maxBody))

	return Chain(mux, mws...)
}
