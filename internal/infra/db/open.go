// Package db opens the PostgreSQL pool through pgx's database/sql driver and
// applies the embedded schema migrations.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"stocknews-notifier/internal/pkg/config"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// ErrMissingDSN is returned when DATABASE_URL is not set.
var ErrMissingDSN = errors.New("DATABASE_URL not set")

const pingTimeout = 5 * time.Second

// PoolConfig sizes the connection pool. The worker runs one crawl consumer
// plus the API, so a small pool is plenty.
type PoolConfig struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
	MaxIdleTime time.Duration
}

// DefaultPoolConfig is used for every variable that is unset or invalid.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxOpen:     10,
		MaxIdle:     5,
		MaxLifetime: time.Hour,
		MaxIdleTime: 30 * time.Minute,
	}
}

// PoolConfigFromEnv reads DB_MAX_OPEN_CONNS, DB_MAX_IDLE_CONNS,
// DB_CONN_MAX_LIFETIME and DB_CONN_MAX_IDLE_TIME. Bad values fall back to
// the default with a warning. MaxIdle never exceeds MaxOpen.
func PoolConfigFromEnv() (PoolConfig, []string) {
	def := DefaultPoolConfig()
	var warnings []string
	take := func(r config.ConfigLoadResult) interface{} {
		warnings = append(warnings, r.Warnings...)
		return r.Value
	}

	cfg := PoolConfig{
		MaxOpen:     take(config.LoadEnvInt("DB_MAX_OPEN_CONNS", def.MaxOpen, config.ValidatePositiveInt)).(int),
		MaxIdle:     take(config.LoadEnvInt("DB_MAX_IDLE_CONNS", def.MaxIdle, config.ValidatePositiveInt)).(int),
		MaxLifetime: take(config.LoadEnvDuration("DB_CONN_MAX_LIFETIME", def.MaxLifetime, config.ValidatePositiveDuration)).(time.Duration),
		MaxIdleTime: take(config.LoadEnvDuration("DB_CONN_MAX_IDLE_TIME", def.MaxIdleTime, config.ValidatePositiveDuration)).(time.Duration),
	}
	if cfg.MaxIdle > cfg.MaxOpen {
		cfg.MaxIdle = cfg.MaxOpen
	}
	return cfg, warnings
}

// Open connects to DATABASE_URL, sizes the pool from the environment and
// pings the server before returning.
func Open(ctx context.Context) (*sql.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return nil, ErrMissingDSN
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pool, warnings := PoolConfigFromEnv()
	for _, w := range warnings {
		slog.Warn("database pool configuration fallback", slog.String("warning", w))
	}
	pool.apply(db)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Info("database connected",
		slog.Int("max_open_conns", pool.MaxOpen),
		slog.Int("max_idle_conns", pool.MaxIdle),
		slog.Duration("conn_max_lifetime", pool.MaxLifetime),
		slog.Duration("conn_max_idle_time", pool.MaxIdleTime))
	return db, nil
}

func (p PoolConfig) apply(db *sql.DB) {
	db.SetMaxOpenConns(p.MaxOpen)
	db.SetMaxIdleConns(p.MaxIdle)
	db.SetConnMaxLifetime(p.MaxLifetime)
	db.SetConnMaxIdleTime(p.MaxIdleTime)
}
