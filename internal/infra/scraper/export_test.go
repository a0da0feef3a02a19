package scraper

import (
	"time"

	"stocknews-notifier/internal/resilience/retry"
)

func (c *YahooFinanceCrawler) SetRetryConfig(cfg retry.Config) { c.fetcher.retryConfig = cfg }
func (c *YahooFinanceCrawler) SetNow(now func() time.Time)     { c.now = now }
func (c *GoogleNewsCrawler) SetRetryConfig(cfg retry.Config)   { c.fetcher.retryConfig = cfg }
func (r *RobotsClient) SetRetryConfig(cfg retry.Config)        { r.retryConfig = cfg }
