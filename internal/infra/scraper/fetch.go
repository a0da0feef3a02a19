// Package scraper implements the news source crawlers and the robots.txt fetcher.
package scraper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"stocknews-notifier/internal/resilience/circuitbreaker"
	"stocknews-notifier/internal/resilience/retry"
)

const (
	maxBodySize = 10 * 1024 * 1024 // 10MB
)

// pageFetcher performs GET requests through a circuit breaker with retries.
type pageFetcher struct {
	client      *http.Client
	breaker     *circuitbreaker.Breaker
	retryConfig retry.Config
	setHeaders  func(*http.Request)
}

func newPageFetcher(client *http.Client, source string, setHeaders func(*http.Request)) *pageFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &pageFetcher{
		client:      client,
		breaker:     circuitbreaker.New(circuitbreaker.ForSource(source)),
		retryConfig: retry.CrawlerConfig(),
		setHeaders:  setHeaders,
	}
}

// get returns the response body of rawURL, capped at maxBodySize.
func (f *pageFetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	var body []byte

	retryErr := retry.Do(ctx, f.retryConfig, func() error {
		err := f.breaker.Do(func() error {
			b, err := f.doGet(ctx, rawURL)
			body = b
			return err
		})
		if circuitbreaker.IsRejected(err) {
			slog.Warn("crawler circuit breaker open, request rejected",
				slog.String("service", f.breaker.Name()),
				slog.String("url", rawURL),
				slog.String("state", f.breaker.State()))
		}
		return err
	})
	if retryErr != nil {
		return nil, retryErr
	}

	return body, nil
}

func (f *pageFetcher) doGet(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if f.setHeaders != nil {
		f.setHeaders(req)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		// 404 はブラウザ以外のリクエストをブロックしている場合もある
		if resp.StatusCode == http.StatusNotFound {
			slog.Warn("source returned 404, requests may be blocked",
				slog.String("url", rawURL))
		}
		return nil, &retry.StatusError{
			Code:   resp.StatusCode,
			Status: resp.Status,
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}
