package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"stocknews-notifier/internal/domain/entity"
	"stocknews-notifier/internal/repository"
)

type SourceRepo struct{ db *sql.DB }

func NewSourceRepo(db *sql.DB) repository.SourceRepository {
	return &SourceRepo{db: db}
}

const sourceColumns = `id, name, display_name, base_url, enabled`

func scanSource(sc interface{ Scan(...any) error }) (*entity.Source, error) {
	var s entity.Source
	if err := sc.Scan(&s.ID, &s.Name, &s.DisplayName, &s.BaseURL, &s.Enabled); err != nil {
		return nil, err
	}
	return &s, nil
}

func (repo *SourceRepo) List(ctx context.Context) ([]*entity.Source, error) {
	const query = `
SELECT ` + sourceColumns + `
FROM sources
ORDER BY id ASC`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	sources := make([]*entity.Source, 0, 8)
	for rows.Next() {
		s, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("List: %w", err)
		}
		sources = append(sources, s)
	}
	return sources, rows.Err()
}

func (repo *SourceRepo) GetByName(ctx context.Context, name string) (*entity.Source, error) {
	const query = `
SELECT ` + sourceColumns + `
FROM sources
WHERE lower(name) = lower($1)
LIMIT 1`
	s, err := scanSource(repo.db.QueryRowContext(ctx, query, name))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetByName: %w", err)
	}
	return s, nil
}

func (repo *SourceRepo) EnsureSeed(ctx context.Context, seed entity.SourceSeed) (*entity.Source, error) {
	// DO UPDATE keeps RETURNING populated on conflict without touching user edits.
	const query = `
INSERT INTO sources (name, display_name, base_url, enabled)
VALUES ($1, $2, $3, $4)
ON CONFLICT (name) DO UPDATE SET name = sources.name
RETURNING ` + sourceColumns
	s, err := scanSource(repo.db.QueryRowContext(ctx, query,
		seed.Name, seed.DisplayName, seed.BaseURL, seed.Enabled,
	))
	if err != nil {
		return nil, fmt.Errorf("EnsureSeed: %w", err)
	}
	return s, nil
}
