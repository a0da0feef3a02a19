package scraper

import (
	"strings"

	"stocknews-notifier/internal/usecase/crawl"
)

// Registry resolves source crawlers by source name, ignoring case.
type Registry struct {
	crawlers map[string]crawl.SourceCrawler
}

// NewRegistry indexes crawlers by name. A later crawler with the same
// name replaces an earlier one.
func NewRegistry(crawlers ...crawl.SourceCrawler) *Registry {
	r := &Registry{crawlers: make(map[string]crawl.SourceCrawler, len(crawlers))}
	for _, c := range crawlers {
		if c == nil {
			continue
		}
		r.crawlers[strings.ToLower(c.Name())] = c
	}
	return r
}

// Lookup implements crawl.CrawlerLookup.
func (r *Registry) Lookup(name string) (crawl.SourceCrawler, bool) {
	c, ok := r.crawlers[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

// Names returns the registered source names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.crawlers))
	for _, c := range r.crawlers {
		names = append(names, c.Name())
	}
	return names
}
