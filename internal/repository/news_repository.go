package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"stocknews-notifier/internal/domain/entity"
)

type NewsRepository interface {
	ExistsByCanonicalURL(ctx context.Context, canonicalURL string) (bool, error)
	ExistsByTitleHash(ctx context.Context, titleHash string, watchItemID uuid.UUID) (bool, error)
	// Create returns entity.ErrDuplicate when a uniqueness constraint rejects the row.
	Create(ctx context.Context, item *entity.NewsItem) error
	// ListUnsent returns up to limit unsent items, newest first by
	// COALESCE(published_at, fetched_at).
	ListUnsent(ctx context.Context, watchItemID uuid.UUID, limit int) ([]*entity.NewsItem, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, watchItemID uuid.UUID, since time.Time, unreadOnly bool) ([]*entity.NewsItem, error)
	MarkRead(ctx context.Context, id uuid.UUID, read bool) error
}
