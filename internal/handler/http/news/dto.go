// Package news provides HTTP handlers for reading collected news items.
package news

import (
	"time"

	"stocknews-notifier/internal/domain/entity"
)

// DTO is the JSON form of a news item.
type DTO struct {
	ID               string     `json:"id"`
	WatchItemID      string     `json:"watch_item_id"`
	SourceID         int64      `json:"source_id"`
	Title            string     `json:"title"`
	URL              string     `json:"url"`
	Summary          *string    `json:"summary,omitempty"`
	PublishedAt      *time.Time `json:"published_at,omitempty"`
	FetchedAt        time.Time  `json:"fetched_at"`
	IsRead           bool       `json:"is_read"`
	NotificationSent bool       `json:"notification_sent"`
}

// ToDTO converts a news item.
func ToDTO(n *entity.NewsItem) DTO {
	return DTO{
		ID:               n.ID.String(),
		WatchItemID:      n.WatchItemID.String(),
		SourceID:         n.SourceID,
		Title:            n.Title,
		URL:              n.URL,
		Summary:          n.Summary,
		PublishedAt:      n.PublishedAt,
		FetchedAt:        n.FetchedAt,
		IsRead:           n.IsRead,
		NotificationSent: n.NotificationSent,
	}
}

type readRequest struct {
	Read *bool `json:"read"`
}
