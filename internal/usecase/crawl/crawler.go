// Package crawl drains the crawl scheduler: for every queued watch item it
// crawls each enabled source under per-source rate limits and a cached
// robots.txt, ingests what it finds and alerts on new items.
package crawl

import (
	"context"
	"errors"

	"stocknews-notifier/internal/domain/entity"
)

// ErrWatchItemNotFound is returned by ProcessJob when the queued watch item
// no longer exists.
var ErrWatchItemNotFound = errors.New("watch item not found")

// SourceCrawler fetches raw articles about a watch item from one source.
type SourceCrawler interface {
	// Name matches Source.Name, compared case-insensitively.
	Name() string
	BaseHost() string
	BuildQueryURLs(watch *entity.WatchItem) []string
	Fetch(ctx context.Context, url string) ([]entity.RawArticle, error)
}

// CrawlerLookup resolves a crawler by source name.
type CrawlerLookup interface {
	Lookup(name string) (SourceCrawler, bool)
}
