package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"stocknews-notifier/internal/resilience/retry"
)

const maxRobotsBodySize = 512 * 1024

// errRobotsNotFound marks a 4xx answer so the retry loop stops early.
var errRobotsNotFound = errors.New("robots.txt not found")

// RobotsClient downloads robots.txt files. It implements crawl.RobotsFetcher.
type RobotsClient struct {
	client      *http.Client
	userAgent   string
	retryConfig retry.Config

	// Scheme defaults to https.
	Scheme string
}

// NewRobotsClient creates a RobotsClient identifying itself as userAgent.
func NewRobotsClient(client *http.Client, userAgent string) *RobotsClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &RobotsClient{
		client:      client,
		userAgent:   userAgent,
		retryConfig: retry.RobotsConfig(),
		Scheme:      "https",
	}
}

// FetchRobots returns the robots.txt body of host. found is false when the
// server answered 4xx. 5xx answers and transport failures are errors.
func (r *RobotsClient) FetchRobots(ctx context.Context, host string) (string, bool, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return "", false, errors.New("robots: host is empty")
	}
	robotsURL := fmt.Sprintf("%s://%s/robots.txt", r.Scheme, host)

	var body string
	err := retry.Do(ctx, r.retryConfig, func() error {
		b, err := r.doFetch(ctx, robotsURL)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if errors.Is(err, errRobotsNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("fetch %s: %w", robotsURL, err)
	}
	return body, true, nil
}

func (r *RobotsClient) doFetch(ctx context.Context, robotsURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}
	req.Header.Set("Accept", "text/plain")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
	case resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests:
		return "", errRobotsNotFound
	default:
		return "", &retry.StatusError{
			Code:   resp.StatusCode,
			Status: resp.Status,
		}
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBodySize))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(b), nil
}
