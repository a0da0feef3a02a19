package entity

import (
	"time"

	"github.com/google/uuid"
)

// TitleHashLength is the length of a hex encoded SHA-256 title hash.
const TitleHashLength = 64

// NewsItem is a persisted article about a WatchItem.
//
// CanonicalURL is unique across all items and (TitleHash, WatchItemID) is
// unique per watch item. SimHash64 is reserved for near-duplicate detection
// and is currently always zero.
type NewsItem struct {
	ID               uuid.UUID
	WatchItemID      uuid.UUID
	SourceID         int64
	Title            string
	URL              string
	CanonicalURL     string
	Summary          *string
	TitleHash        string
	SimHash64        int64
	PublishedAt      *time.Time
	FetchedAt        time.Time
	IsRead           bool
	NotificationSent bool
}

// SortTime is the published time when known, otherwise the fetch time.
func (n *NewsItem) SortTime() time.Time {
	if n.PublishedAt != nil {
		return *n.PublishedAt
	}
	return n.FetchedAt
}

// RawArticle is an article as returned by a source crawler, before dedup.
type RawArticle struct {
	Title       string
	URL         string
	PublishedAt *time.Time
	Summary     *string
}
