package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"stocknews-notifier/internal/domain/entity"
	"stocknews-notifier/internal/repository"
)

type WatchRepo struct{ db *sql.DB }

func NewWatchRepo(db *sql.DB) repository.WatchRepository {
	return &WatchRepo{db: db}
}

const watchColumns = `id, exchange, ticker, company_name, icon_url, alerts_enabled, created_at`

func scanWatch(sc interface{ Scan(...any) error }) (*entity.WatchItem, error) {
	var w entity.WatchItem
	if err := sc.Scan(
		&w.ID, &w.Exchange, &w.Ticker, &w.CompanyName, &w.IconURL,
		&w.AlertsEnabled, &w.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &w, nil
}

func (repo *WatchRepo) queryList(ctx context.Context, op, query string, args ...any) ([]*entity.WatchItem, error) {
	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]*entity.WatchItem, 0, 16)
	for rows.Next() {
		w, err := scanWatch(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		items = append(items, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}

func (repo *WatchRepo) List(ctx context.Context) ([]*entity.WatchItem, error) {
	const query = `
SELECT ` + watchColumns + `
FROM watch_items
ORDER BY exchange ASC, ticker ASC`
	return repo.queryList(ctx, "List", query)
}

func (repo *WatchRepo) ListAlertEnabledWithUnsent(ctx context.Context) ([]*entity.WatchItem, error) {
	const query = `
SELECT ` + watchColumns + `
FROM watch_items w
WHERE w.alerts_enabled = TRUE
  AND EXISTS (
        SELECT 1 FROM news_items n
        WHERE n.watch_item_id = w.id AND n.notification_sent = FALSE)
ORDER BY exchange ASC, ticker ASC`
	return repo.queryList(ctx, "ListAlertEnabledWithUnsent", query)
}

func (repo *WatchRepo) Get(ctx context.Context, id uuid.UUID) (*entity.WatchItem, error) {
	const query = `
SELECT ` + watchColumns + `
FROM watch_items
WHERE id = $1
LIMIT 1`
	w, err := scanWatch(repo.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return w, nil
}

func (repo *WatchRepo) GetWithSources(ctx context.Context, id uuid.UUID) (*entity.WatchItem, error) {
	w, err := repo.Get(ctx, id)
	if err != nil || w == nil {
		return w, err
	}

	const query = `
SELECT ws.watch_item_id, ws.source_id, ws.custom_query, ws.enabled,
       s.id, s.name, s.display_name, s.base_url, s.enabled
FROM watch_item_sources ws
JOIN sources s ON s.id = ws.source_id
WHERE ws.watch_item_id = $1
ORDER BY ws.source_id ASC`
	rows, err := repo.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("GetWithSources: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			ws  entity.WatchSource
			src entity.Source
		)
		if err := rows.Scan(
			&ws.WatchItemID, &ws.SourceID, &ws.CustomQuery, &ws.Enabled,
			&src.ID, &src.Name, &src.DisplayName, &src.BaseURL, &src.Enabled,
		); err != nil {
			return nil, fmt.Errorf("GetWithSources: %w", err)
		}
		ws.Source = &src
		w.Sources = append(w.Sources, ws)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetWithSources: %w", err)
	}
	return w, nil
}

func (repo *WatchRepo) GetByTicker(ctx context.Context, exchange, ticker string) (*entity.WatchItem, error) {
	const query = `
SELECT ` + watchColumns + `
FROM watch_items
WHERE exchange = $1 AND ticker = $2
LIMIT 1`
	w, err := scanWatch(repo.db.QueryRowContext(ctx, query, exchange, ticker))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetByTicker: %w", err)
	}
	return w, nil
}

func (repo *WatchRepo) Create(ctx context.Context, item *entity.WatchItem) error {
	const query = `
INSERT INTO watch_items (id, exchange, ticker, company_name, icon_url, alerts_enabled, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := repo.db.ExecContext(ctx, query,
		item.ID, item.Exchange, item.Ticker,
		item.CompanyName, item.IconURL,
		item.AlertsEnabled, item.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("Create: %w", entity.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *WatchRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM watch_items WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: %w", entity.ErrNotFound)
	}
	return nil
}

func (repo *WatchRepo) SetAlerts(ctx context.Context, id uuid.UUID, enabled bool) error {
	const query = `UPDATE watch_items SET alerts_enabled = $1 WHERE id = $2`
	res, err := repo.db.ExecContext(ctx, query, enabled, id)
	if err != nil {
		return fmt.Errorf("SetAlerts: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("SetAlerts: %w", entity.ErrNotFound)
	}
	return nil
}

func (repo *WatchRepo) AttachSource(ctx context.Context, link *entity.WatchSource) error {
	const query = `
INSERT INTO watch_item_sources (watch_item_id, source_id, custom_query, enabled)
VALUES ($1, $2, $3, $4)
ON CONFLICT (watch_item_id, source_id) DO UPDATE
SET custom_query = EXCLUDED.custom_query,
    enabled      = EXCLUDED.enabled`
	_, err := repo.db.ExecContext(ctx, query,
		link.WatchItemID, link.SourceID, link.CustomQuery, link.Enabled,
	)
	if err != nil {
		return fmt.Errorf("AttachSource: %w", err)
	}
	return nil
}
