package repository

import (
	"context"

	"stocknews-notifier/internal/domain/entity"
)

type SourceRepository interface {
	List(ctx context.Context) ([]*entity.Source, error)
	GetByName(ctx context.Context, name string) (*entity.Source, error)
	// EnsureSeed inserts the seed unless a source with the same name exists,
	// and returns the stored row either way.
	EnsureSeed(ctx context.Context, seed entity.SourceSeed) (*entity.Source, error)
}
