package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"stocknews-notifier/internal/domain/entity"
	"stocknews-notifier/internal/repository"
)

type NewsRepo struct{ db *sql.DB }

func NewNewsRepo(db *sql.DB) repository.NewsRepository {
	return &NewsRepo{db: db}
}

const newsColumns = `id, watch_item_id, source_id, title, url, canonical_url, summary,
       title_hash, sim_hash64, published_at, fetched_at, is_read, notification_sent`

func scanNews(sc interface{ Scan(...any) error }) (*entity.NewsItem, error) {
	var n entity.NewsItem
	if err := sc.Scan(
		&n.ID, &n.WatchItemID, &n.SourceID, &n.Title, &n.URL, &n.CanonicalURL, &n.Summary,
		&n.TitleHash, &n.SimHash64, &n.PublishedAt, &n.FetchedAt, &n.IsRead, &n.NotificationSent,
	); err != nil {
		return nil, err
	}
	return &n, nil
}

func (repo *NewsRepo) ExistsByCanonicalURL(ctx context.Context, canonicalURL string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM news_items WHERE canonical_url = $1)`
	var exists bool
	if err := repo.db.QueryRowContext(ctx, query, canonicalURL).Scan(&exists); err != nil {
		return false, fmt.Errorf("ExistsByCanonicalURL: %w", err)
	}
	return exists, nil
}

func (repo *NewsRepo) ExistsByTitleHash(ctx context.Context, titleHash string, watchItemID uuid.UUID) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM news_items WHERE title_hash = $1 AND watch_item_id = $2)`
	var exists bool
	if err := repo.db.QueryRowContext(ctx, query, titleHash, watchItemID).Scan(&exists); err != nil {
		return false, fmt.Errorf("ExistsByTitleHash: %w", err)
	}
	return exists, nil
}

func (repo *NewsRepo) Create(ctx context.Context, item *entity.NewsItem) error {
	const query = `
INSERT INTO news_items (id, watch_item_id, source_id, title, url, canonical_url, summary,
                        title_hash, sim_hash64, published_at, fetched_at, is_read, notification_sent)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := repo.db.ExecContext(ctx, query,
		item.ID, item.WatchItemID, item.SourceID,
		item.Title, item.URL, item.CanonicalURL, item.Summary,
		item.TitleHash, item.SimHash64,
		item.PublishedAt, item.FetchedAt,
		item.IsRead, item.NotificationSent,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("Create: %w", entity.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *NewsRepo) queryList(ctx context.Context, op, query string, args ...any) ([]*entity.NewsItem, error) {
	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]*entity.NewsItem, 0, 32)
	for rows.Next() {
		n, err := scanNews(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}

func (repo *NewsRepo) ListUnsent(ctx context.Context, watchItemID uuid.UUID, limit int) ([]*entity.NewsItem, error) {
	const query = `
SELECT ` + newsColumns + `
FROM news_items
WHERE watch_item_id = $1 AND notification_sent = FALSE
ORDER BY COALESCE(published_at, fetched_at) DESC
LIMIT $2`
	return repo.queryList(ctx, "ListUnsent", query, watchItemID, limit)
}

func (repo *NewsRepo) MarkSent(ctx context.Context, id uuid.UUID) error {
	const query = `UPDATE news_items SET notification_sent = TRUE WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("MarkSent: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("MarkSent: %w", entity.ErrNotFound)
	}
	return nil
}

func (repo *NewsRepo) List(ctx context.Context, watchItemID uuid.UUID, since time.Time, unreadOnly bool) ([]*entity.NewsItem, error) {
	const query = `
SELECT ` + newsColumns + `
FROM news_items
WHERE watch_item_id = $1
  AND fetched_at >= $2
  AND ($3 = FALSE OR is_read = FALSE)
ORDER BY COALESCE(published_at, fetched_at) DESC`
	return repo.queryList(ctx, "List", query, watchItemID, since, unreadOnly)
}

func (repo *NewsRepo) MarkRead(ctx context.Context, id uuid.UUID, read bool) error {
	const query = `UPDATE news_items SET is_read = $1 WHERE id = $2`
	res, err := repo.db.ExecContext(ctx, query, read, id)
	if err != nil {
		return fmt.Errorf("MarkRead: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("MarkRead: %w", entity.ErrNotFound)
	}
	return nil
}
