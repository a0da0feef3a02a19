// Package watch provides HTTP handlers for managing the watchlist.
package watch

import (
	"time"

	"stocknews-notifier/internal/domain/entity"
)

// DTO is the JSON form of a watch item.
type DTO struct {
	ID            string    `json:"id"`
	Ticker        string    `json:"ticker"`
	Exchange      string    `json:"exchange"`
	Symbol        string    `json:"symbol"`
	CompanyName   *string   `json:"company_name,omitempty"`
	IconURL       *string   `json:"icon_url,omitempty"`
	AlertsEnabled bool      `json:"alerts_enabled"`
	CreatedAt     time.Time `json:"created_at"`
	Sources       []string  `json:"sources,omitempty"`
}

// ToDTO converts a watch item. Source names are included when the
// associations were loaded.
func ToDTO(w *entity.WatchItem) DTO {
	dto := DTO{
		ID:            w.ID.String(),
		Ticker:        w.Symbol().String(),
		Exchange:      w.Exchange,
		Symbol:        w.Ticker,
		CompanyName:   w.CompanyName,
		IconURL:       w.IconURL,
		AlertsEnabled: w.AlertsEnabled,
		CreatedAt:     w.CreatedAt,
	}
	for _, ws := range w.Sources {
		if ws.Source != nil && ws.Enabled {
			dto.Sources = append(dto.Sources, ws.Source.Name)
		}
	}
	return dto
}

type createRequest struct {
	Ticker string `json:"ticker"`
}

type alertsRequest struct {
	Enabled *bool `json:"enabled"`
}

type refreshResponse struct {
	Queued bool `json:"queued"`
}
