package watch

import (
	"context"

	"stocknews-notifier/internal/domain/entity"

	"github.com/google/uuid"
)

// Service is the watchlist use case consumed by the handlers.
type Service interface {
	Add(ctx context.Context, ticker string) (*entity.WatchItem, bool, error)
	Remove(ctx context.Context, id uuid.UUID) error
	SetAlerts(ctx context.Context, id uuid.UUID, enabled bool) error
	List(ctx context.Context) ([]*entity.WatchItem, error)
	Refresh(ctx context.Context, id uuid.UUID) (bool, error)
}
