package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
)

//go:embed seeds/sources.sql
var seedSourcesSQL string

// schema is applied in order; every statement is idempotent.
var schema = []string{
	`
CREATE TABLE IF NOT EXISTS sources (
    id           SERIAL PRIMARY KEY,
    name         TEXT NOT NULL UNIQUE,
    display_name TEXT,
    base_url     TEXT NOT NULL,
    enabled      BOOLEAN NOT NULL DEFAULT FALSE
)`,
	`
CREATE TABLE IF NOT EXISTS watch_items (
    id             UUID PRIMARY KEY,
    exchange       TEXT NOT NULL,
    ticker         TEXT NOT NULL,
    company_name   TEXT,
    icon_url       TEXT,
    alerts_enabled BOOLEAN NOT NULL DEFAULT TRUE,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (exchange, ticker)
)`,
	`
CREATE TABLE IF NOT EXISTS watch_item_sources (
    watch_item_id UUID    NOT NULL REFERENCES watch_items(id) ON DELETE CASCADE,
    source_id     INTEGER NOT NULL REFERENCES sources(id) ON DELETE CASCADE,
    custom_query  TEXT,
    enabled       BOOLEAN NOT NULL DEFAULT TRUE,
    PRIMARY KEY (watch_item_id, source_id)
)`,
	`
CREATE TABLE IF NOT EXISTS news_items (
    id                UUID PRIMARY KEY,
    watch_item_id     UUID    NOT NULL REFERENCES watch_items(id) ON DELETE CASCADE,
    source_id         INTEGER NOT NULL REFERENCES sources(id) ON DELETE CASCADE,
    title             TEXT NOT NULL,
    url               TEXT NOT NULL,
    canonical_url     TEXT NOT NULL UNIQUE,
    summary           TEXT,
    title_hash        CHAR(64) NOT NULL,
    sim_hash64        BIGINT NOT NULL DEFAULT 0,
    published_at      TIMESTAMPTZ,
    fetched_at        TIMESTAMPTZ NOT NULL,
    is_read           BOOLEAN NOT NULL DEFAULT FALSE,
    notification_sent BOOLEAN NOT NULL DEFAULT FALSE,
    UNIQUE (title_hash, watch_item_id)
)`,
	`
CREATE TABLE IF NOT EXISTS crawl_states (
    source_id             INTEGER PRIMARY KEY REFERENCES sources(id) ON DELETE CASCADE,
    last_crawl_at         TIMESTAMPTZ,
    requests_per_second   DOUBLE PRECISION NOT NULL DEFAULT 1.0,
    requests_per_minute   INTEGER NOT NULL DEFAULT 10,
    robots_txt            TEXT,
    robots_txt_fetched_at TIMESTAMPTZ,
    consecutive_errors    INTEGER NOT NULL DEFAULT 0,
    last_error            TEXT,
    last_error_at         TIMESTAMPTZ
)`,
	// 未通知記事の抽出用
	`CREATE INDEX IF NOT EXISTS idx_news_items_unsent ON news_items(watch_item_id) WHERE notification_sent = FALSE`,
	// 一覧表示(期間指定)用
	`CREATE INDEX IF NOT EXISTS idx_news_items_watch_fetched ON news_items(watch_item_id, fetched_at DESC)`,
}

// MigrateUp creates the schema and seeds the default source catalog.
// Seeding skips sources that already exist.
func MigrateUp(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("MigrateUp: statement %d: %w", i, err)
		}
	}

	if _, err := db.ExecContext(ctx, seedSourcesSQL); err != nil {
		return fmt.Errorf("MigrateUp: seed sources: %w", err)
	}
	return nil
}

// MigrateDown drops every table created by MigrateUp.
// Use with caution: this deletes all data.
func MigrateDown(ctx context.Context, db *sql.DB) error {
	dropStatements := []string{
		`DROP TABLE IF EXISTS crawl_states`,
		`DROP TABLE IF EXISTS news_items`,
		`DROP TABLE IF EXISTS watch_item_sources`,
		`DROP TABLE IF EXISTS watch_items`,
		`DROP TABLE IF EXISTS sources`,
	}
	for _, stmt := range dropStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("MigrateDown: %w", err)
		}
	}
	return nil
}
