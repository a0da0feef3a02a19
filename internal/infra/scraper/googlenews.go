package scraper

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"stocknews-notifier/internal/domain/entity"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

const (
	googleNewsHost    = "news.google.com"
	googleNewsBaseURL = "https://news.google.com/rss/search"

	feedUserAgent = "StockNewsNotifier/1.0"
)

// GoogleNewsCrawler reads the Google News RSS search feed for a ticker pair.
// It backs the GoogleFinance source.
type GoogleNewsCrawler struct {
	fetcher *pageFetcher
	logger  *slog.Logger
}

// NewGoogleNewsCrawler creates a crawler using client for all requests.
func NewGoogleNewsCrawler(client *http.Client, logger *slog.Logger) *GoogleNewsCrawler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GoogleNewsCrawler{
		fetcher: newPageFetcher(client, entity.SourceGoogleFinance, func(req *http.Request) {
			req.Header.Set("User-Agent", feedUserAgent)
			req.Header.Set("Accept", "application/rss+xml, application/xml;q=0.9, */*;q=0.8")
		}),
		logger: logger,
	}
}

func (c *GoogleNewsCrawler) Name() string     { return entity.SourceGoogleFinance }
func (c *GoogleNewsCrawler) BaseHost() string { return googleNewsHost }

// BuildQueryURLs returns the RSS search URL for "EXCHANGE:SYMBOL".
func (c *GoogleNewsCrawler) BuildQueryURLs(watch *entity.WatchItem) []string {
	if watch == nil {
		return nil
	}
	symbol := strings.ToUpper(strings.TrimSpace(watch.Ticker))
	if symbol == "" {
		return nil
	}
	q := symbol
	if exchange := strings.ToUpper(strings.TrimSpace(watch.Exchange)); exchange != "" {
		q = exchange + ":" + symbol
	}

	v := url.Values{}
	v.Set("q", q)
	v.Set("hl", "en-US")
	v.Set("gl", "US")
	v.Set("ceid", "US:en")
	return []string{googleNewsBaseURL + "?" + v.Encode()}
}

// Fetch downloads and parses one RSS feed.
func (c *GoogleNewsCrawler) Fetch(ctx context.Context, feedURL string) ([]entity.RawArticle, error) {
	body, err := c.fetcher.get(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("fetch google news feed: %w", err)
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	articles := make([]entity.RawArticle, 0, len(feed.Items))
	for _, it := range feed.Items {
		title := strings.TrimSpace(it.Title)
		link := strings.TrimSpace(it.Link)
		if title == "" || link == "" {
			continue
		}

		a := entity.RawArticle{Title: title, URL: link}
		if it.PublishedParsed != nil {
			t := it.PublishedParsed.UTC()
			a.PublishedAt = &t
		} else if it.UpdatedParsed != nil {
			t := it.UpdatedParsed.UTC()
			a.PublishedAt = &t
		}
		// Descriptionは HTML 断片なのでテキストだけ取り出す
		if summary := htmlText(it.Description); summary != "" {
			a.Summary = &summary
		}
		articles = append(articles, a)
	}

	c.logger.Debug("fetched google news articles",
		slog.String("url", feedURL),
		slog.Int("count", len(articles)))
	return articles, nil
}

func htmlText(fragment string) string {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
