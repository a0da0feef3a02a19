package scraper

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"stocknews-notifier/internal/domain/entity"
)

const (
	yahooHost     = "finance.yahoo.com"
	yahooBaseURL  = "https://finance.yahoo.com"
	yahooReferrer = "https://finance.yahoo.com/"

	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// YahooFinanceCrawler scrapes the news tab of a Yahoo Finance quote page.
type YahooFinanceCrawler struct {
	fetcher *pageFetcher
	logger  *slog.Logger
	now     func() time.Time
}

// NewYahooFinanceCrawler creates a crawler using client for all requests.
func NewYahooFinanceCrawler(client *http.Client, logger *slog.Logger) *YahooFinanceCrawler {
	if logger == nil {
		logger = slog.Default()
	}
	return &YahooFinanceCrawler{
		fetcher: newPageFetcher(client, entity.SourceYahooFinance, setBrowserHeaders),
		logger:  logger,
		now:     time.Now,
	}
}

func (c *YahooFinanceCrawler) Name() string     { return entity.SourceYahooFinance }
func (c *YahooFinanceCrawler) BaseHost() string { return yahooHost }

// BuildQueryURLs returns the quote news page for the watch item's symbol.
func (c *YahooFinanceCrawler) BuildQueryURLs(watch *entity.WatchItem) []string {
	if watch == nil {
		return nil
	}
	symbol := strings.ToUpper(strings.TrimSpace(watch.Ticker))
	if symbol == "" {
		c.logger.Warn("cannot build Yahoo Finance URL, ticker is blank",
			slog.String("watch_id", watch.ID.String()))
		return nil
	}

	escaped := url.PathEscape(symbol)
	return []string{fmt.Sprintf("%s/quote/%s/news?p=%s", yahooBaseURL, escaped, url.QueryEscape(symbol))}
}

// Fetch downloads and parses one news page.
func (c *YahooFinanceCrawler) Fetch(ctx context.Context, pageURL string) ([]entity.RawArticle, error) {
	body, err := c.fetcher.get(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch yahoo finance page: %w", err)
	}

	articles, err := ParseYahooFinanceHTML(bytes.NewReader(body), c.now())
	if err != nil {
		return nil, err
	}

	c.logger.Debug("fetched yahoo finance articles",
		slog.String("url", pageURL),
		slog.Int("count", len(articles)))
	return articles, nil
}

func setBrowserHeaders(req *http.Request) {
	h := req.Header
	h.Set("User-Agent", browserUserAgent)
	h.Set("Referer", yahooReferrer)
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8")
	h.Set("Accept-Language", "en-US,en;q=0.9")
	h.Set("Cache-Control", "no-cache")
	h.Set("Pragma", "no-cache")
	h.Set("Sec-Ch-Ua", `"Not A(Brand";v="8", "Chromium";v="120", "Google Chrome";v="120"`)
	h.Set("Sec-Ch-Ua-Mobile", "?0")
	h.Set("Sec-Ch-Ua-Platform", `"Windows"`)
	h.Set("Sec-Fetch-Dest", "document")
	h.Set("Sec-Fetch-Mode", "navigate")
	h.Set("Sec-Fetch-Site", "same-origin")
	h.Set("Sec-Fetch-User", "?1")
	h.Set("Upgrade-Insecure-Requests", "1")
}
