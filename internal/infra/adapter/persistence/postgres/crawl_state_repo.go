package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"stocknews-notifier/internal/domain/entity"
	"stocknews-notifier/internal/repository"
)

type CrawlStateRepo struct{ db *sql.DB }

func NewCrawlStateRepo(db *sql.DB) repository.CrawlStateRepository {
	return &CrawlStateRepo{db: db}
}

func (repo *CrawlStateRepo) Get(ctx context.Context, sourceID int64) (*entity.CrawlState, error) {
	const query = `
SELECT source_id, last_crawl_at, requests_per_second, requests_per_minute,
       robots_txt, robots_txt_fetched_at, consecutive_errors, last_error, last_error_at
FROM crawl_states
WHERE source_id = $1`
	var s entity.CrawlState
	err := repo.db.QueryRowContext(ctx, query, sourceID).Scan(
		&s.SourceID, &s.LastCrawlAt, &s.RequestsPerSecond, &s.RequestsPerMinute,
		&s.RobotsTxt, &s.RobotsTxtFetchedAt, &s.ConsecutiveErrors, &s.LastError, &s.LastErrorAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &s, nil
}

func (repo *CrawlStateRepo) Save(ctx context.Context, s *entity.CrawlState) error {
	const query = `
INSERT INTO crawl_states (source_id, last_crawl_at, requests_per_second, requests_per_minute,
                          robots_txt, robots_txt_fetched_at, consecutive_errors, last_error, last_error_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (source_id) DO UPDATE SET
       last_crawl_at         = EXCLUDED.last_crawl_at,
       requests_per_second   = EXCLUDED.requests_per_second,
       requests_per_minute   = EXCLUDED.requests_per_minute,
       robots_txt            = EXCLUDED.robots_txt,
       robots_txt_fetched_at = EXCLUDED.robots_txt_fetched_at,
       consecutive_errors    = EXCLUDED.consecutive_errors,
       last_error            = EXCLUDED.last_error,
       last_error_at         = EXCLUDED.last_error_at`
	_, err := repo.db.ExecContext(ctx, query,
		s.SourceID, s.LastCrawlAt, s.RequestsPerSecond, s.RequestsPerMinute,
		s.RobotsTxt, s.RobotsTxtFetchedAt, s.ConsecutiveErrors, s.LastError, s.LastErrorAt,
	)
	if err != nil {
		return fmt.Errorf("Save: %w", err)
	}
	return nil
}
