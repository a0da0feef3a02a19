// Package entity defines the core domain entities and validation logic for the application.
// It contains the fundamental business objects such as WatchItem, Source and NewsItem,
// along with their validation rules and domain-specific errors.
package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Ticker identifies a listed instrument as an exchange and symbol pair.
// Its textual form is "EXCHANGE:SYMBOL".
type Ticker struct {
	Exchange string
	Symbol   string
}

// ParseTicker parses "EXCHANGE:SYMBOL" into a Ticker.
// Both parts are trimmed and upper-cased.
func ParseTicker(s string) (Ticker, error) {
	exchange, symbol, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return Ticker{}, &ValidationError{Field: "ticker", Message: "must be in EXCHANGE:SYMBOL form"}
	}
	t := Ticker{
		Exchange: strings.ToUpper(strings.TrimSpace(exchange)),
		Symbol:   strings.ToUpper(strings.TrimSpace(symbol)),
	}
	if err := t.Validate(); err != nil {
		return Ticker{}, err
	}
	return t, nil
}

// Validate checks that both parts are present and free of separators.
func (t Ticker) Validate() error {
	if t.Exchange == "" {
		return &ValidationError{Field: "exchange", Message: "is required"}
	}
	if t.Symbol == "" {
		return &ValidationError{Field: "symbol", Message: "is required"}
	}
	if strings.ContainsAny(t.Exchange+t.Symbol, ": /") {
		return &ValidationError{Field: "ticker", Message: fmt.Sprintf("has invalid characters in %q", t.String())}
	}
	return nil
}

func (t Ticker) String() string {
	return t.Exchange + ":" + t.Symbol
}

// WatchItem is a watched ticker. News is polled for every WatchItem
// from each of its enabled sources.
type WatchItem struct {
	ID            uuid.UUID
	Exchange      string
	Ticker        string
	CompanyName   *string
	IconURL       *string
	AlertsEnabled bool
	CreatedAt     time.Time

	// Sources is only populated by repository methods that load associations.
	Sources []WatchSource
}

// Symbol returns the ticker pair of the watch item.
func (w *WatchItem) Symbol() Ticker {
	return Ticker{Exchange: w.Exchange, Symbol: w.Ticker}
}

// EnabledSources returns associations that are enabled at both the
// association and the source level.
func (w *WatchItem) EnabledSources() []WatchSource {
	out := make([]WatchSource, 0, len(w.Sources))
	for _, ws := range w.Sources {
		if !ws.Enabled || ws.Source == nil || !ws.Source.Enabled {
			continue
		}
		out = append(out, ws)
	}
	return out
}

// WatchSource links a WatchItem to a Source.
type WatchSource struct {
	WatchItemID uuid.UUID
	SourceID    int64
	CustomQuery *string
	Enabled     bool
	Source      *Source
}
