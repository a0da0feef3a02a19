package repository

import (
	"context"

	"github.com/google/uuid"

	"stocknews-notifier/internal/domain/entity"
)

type WatchRepository interface {
	List(ctx context.Context) ([]*entity.WatchItem, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.WatchItem, error)
	// GetWithSources loads the item together with its source associations.
	GetWithSources(ctx context.Context, id uuid.UUID) (*entity.WatchItem, error)
	GetByTicker(ctx context.Context, exchange, ticker string) (*entity.WatchItem, error)
	Create(ctx context.Context, item *entity.WatchItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	SetAlerts(ctx context.Context, id uuid.UUID, enabled bool) error
	AttachSource(ctx context.Context, link *entity.WatchSource) error
	// ListAlertEnabledWithUnsent returns alert-enabled items that still have unsent news.
	ListAlertEnabledWithUnsent(ctx context.Context) ([]*entity.WatchItem, error)
}
