package scraper

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"stocknews-notifier/internal/domain/entity"

	"github.com/PuerkitoBio/goquery"
)

var yahooAnchorSelectors = []string{"a.titles", "h3 a", "a[data-ylk]", "a"}

// ParseYahooFinanceHTML extracts articles from a Yahoo Finance news page.
// Relative publication times ("2h ago") are resolved against anchor.
func ParseYahooFinanceHTML(r io.Reader, anchor time.Time) ([]entity.RawArticle, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	items := doc.Find("[data-testid='storyitem']")
	if items.Length() == 0 {
		items = doc.Find("li.js-stream-content")
	}

	articles := make([]entity.RawArticle, 0, items.Length())
	items.Each(func(i int, item *goquery.Selection) {
		if a, ok := parseYahooItem(item, anchor); ok {
			articles = append(articles, a)
		} else {
			slog.Debug("skipping yahoo finance item", slog.Int("index", i))
		}
	})
	return articles, nil
}

func parseYahooItem(item *goquery.Selection, anchor time.Time) (entity.RawArticle, bool) {
	var link *goquery.Selection
	for _, sel := range yahooAnchorSelectors {
		if s := item.Find(sel).First(); s.Length() > 0 {
			link = s
			break
		}
	}
	if link == nil {
		return entity.RawArticle{}, false
	}

	titleEl := link.Find("h3").First()
	if titleEl.Length() == 0 {
		titleEl = link
	}
	title := strings.TrimSpace(titleEl.Text())
	if title == "" {
		return entity.RawArticle{}, false
	}

	href, _ := link.Attr("href")
	href = strings.TrimSpace(href)
	if href == "" {
		return entity.RawArticle{}, false
	}
	switch {
	case strings.HasPrefix(href, "//"):
		href = "https:" + href
	case strings.HasPrefix(href, "/"):
		href = yahooBaseURL + href
	}

	return entity.RawArticle{
		Title:       title,
		URL:         href,
		PublishedAt: parsePublishing(item.Find("div.publishing").First().Text(), anchor),
	}, true
}

// parsePublishing reads "Reuters • 2h ago" style bylines.
func parsePublishing(text string, anchor time.Time) *time.Time {
	var parts []string
	for _, p := range strings.Split(text, "•") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) < 2 {
		return nil
	}
	return ParseTime(parts[len(parts)-1], anchor)
}
