package entity

import (
	"net/url"
	"strings"
)

// Source is a named external origin of news articles.
// Sources form a global catalog shared by every WatchItem.
type Source struct {
	ID          int64
	Name        string
	DisplayName *string
	BaseURL     string
	Enabled     bool
}

// Host returns the lower-cased host of BaseURL. A bare host name is accepted as well.
func (s *Source) Host() string {
	raw := strings.TrimSpace(s.BaseURL)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// SourceSeed describes a catalog entry created on first start.
type SourceSeed struct {
	Name        string
	DisplayName string
	BaseURL     string
	Enabled     bool
}

// Well-known source names. Crawlers register under these names.
const (
	SourceYahooFinance  = "YahooFinance"
	SourceGoogleFinance = "GoogleFinance"
)

// DefaultSources is the catalog seeded into an empty database.
var DefaultSources = []SourceSeed{
	{Name: SourceYahooFinance, DisplayName: "Yahoo Finance", BaseURL: "https://finance.yahoo.com", Enabled: true},
	{Name: "Reuters", DisplayName: "Reuters", BaseURL: "https://www.reuters.com/"},
	{Name: SourceGoogleFinance, DisplayName: "Google Finance", BaseURL: "https://www.google.com/finance/", Enabled: true},
	{Name: "Investing", DisplayName: "Investing.com", BaseURL: "https://www.investing.com/"},
	{Name: "WSJ", DisplayName: "Wall Street Journal", BaseURL: "https://www.wsj.com/"},
}

// FindDefaultSource returns the seed with the given name (case-insensitive).
func FindDefaultSource(name string) (SourceSeed, bool) {
	for _, s := range DefaultSources {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return SourceSeed{}, false
}
