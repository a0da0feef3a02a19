package repository

import (
	"context"

	"stocknews-notifier/internal/domain/entity"
)

type CrawlStateRepository interface {
	// Get returns nil, nil when the source has no state yet.
	Get(ctx context.Context, sourceID int64) (*entity.CrawlState, error)
	// Save inserts or updates the state row of state.SourceID.
	Save(ctx context.Context, state *entity.CrawlState) error
}
