package scraper_test

import (
	"sort"
	"testing"

	"stocknews-notifier/internal/infra/scraper"

	"github.com/google/go-cmp/cmp"
)

func TestRegistry_Lookup(t *testing.T) {
	yahoo := scraper.NewYahooFinanceCrawler(nil, nil)
	google := scraper.NewGoogleNewsCrawler(nil, nil)
	r := scraper.NewRegistry(yahoo, google)

	tests := []struct {
		name   string
		lookup string
		want   string
		ok     bool
	}{
		{"exact", "YahooFinance", "YahooFinance", true},
		{"lower case", "yahoofinance", "YahooFinance", true},
		{"padded", " GOOGLEFINANCE ", "GoogleFinance", true},
		{"unknown", "Reuters", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := r.Lookup(tt.lookup)
			if ok != tt.ok {
				t.Fatalf("Lookup(%q) ok = %v, want %v", tt.lookup, ok, tt.ok)
			}
			if ok && c.Name() != tt.want {
				t.Errorf("Lookup(%q).Name() = %q, want %q", tt.lookup, c.Name(), tt.want)
			}
		})
	}

	names := r.Names()
	sort.Strings(names)
	if diff := cmp.Diff([]string{"GoogleFinance", "YahooFinance"}, names); diff != "" {
		t.Errorf("Names mismatch (-want +got):\n%s", diff)
	}
}
