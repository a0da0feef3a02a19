// Package watchlist provides use cases for managing watched tickers.
// Adding or refreshing a ticker queues an immediate crawl.
package watchlist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"stocknews-notifier/internal/domain/entity"
	"stocknews-notifier/internal/repository"
)

// Enqueuer queues crawl jobs.
type Enqueuer interface {
	Enqueue(id uuid.UUID) bool
}

// Service provides watchlist use cases.
type Service struct {
	Watches   repository.WatchRepository
	Sources   repository.SourceRepository
	Scheduler Enqueuer
	Logger    *slog.Logger

	// DefaultSources are attached to new watch items. Names missing from the
	// catalog are seeded from entity.DefaultSources when known and skipped
	// otherwise.
	DefaultSources []string
}

func NewService(watches repository.WatchRepository, sources repository.SourceRepository, scheduler Enqueuer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		Watches:        watches,
		Sources:        sources,
		Scheduler:      scheduler,
		Logger:         logger,
		DefaultSources: []string{entity.SourceYahooFinance},
	}
}

// Add watches ticker ("EXCHANGE:SYMBOL"). When the pair is already watched
// the existing item is returned with created=false. If the default sources
// cannot be attached the new item is deleted again.
func (s *Service) Add(ctx context.Context, ticker string) (item *entity.WatchItem, created bool, err error) {
	t, err := entity.ParseTicker(ticker)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.Watches.GetByTicker(ctx, t.Exchange, t.Symbol)
	if err != nil {
		return nil, false, fmt.Errorf("get watch by ticker: %w", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	item = &entity.WatchItem{
		ID:            uuid.New(),
		Exchange:      t.Exchange,
		Ticker:        t.Symbol,
		AlertsEnabled: true,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.Watches.Create(ctx, item); err != nil {
		if errors.Is(err, entity.ErrDuplicate) {
			// 同時追加: 先に作られた方を返す
			existing, getErr := s.Watches.GetByTicker(ctx, t.Exchange, t.Symbol)
			if getErr == nil && existing != nil {
				return existing, false, nil
			}
		}
		return nil, false, fmt.Errorf("create watch: %w", err)
	}

	if err := s.attachDefaults(ctx, item); err != nil {
		// ソースなしの銘柄は残さない
		if delErr := s.Watches.Delete(context.WithoutCancel(ctx), item.ID); delErr != nil {
			s.Logger.Error("failed to roll back watch item",
				slog.String("watch_id", item.ID.String()),
				slog.Any("error", delErr))
		}
		return nil, false, err
	}

	s.Logger.Info("watch item added",
		slog.String("watch_id", item.ID.String()),
		slog.String("ticker", t.String()))
	s.enqueue(item.ID)

	return item, true, nil
}

func (s *Service) attachDefaults(ctx context.Context, item *entity.WatchItem) error {
	for _, name := range s.DefaultSources {
		src, err := s.resolveSource(ctx, name)
		if err != nil {
			return err
		}
		if src == nil {
			s.Logger.Warn("default source not in catalog, skipping", slog.String("source", name))
			continue
		}
		link := &entity.WatchSource{WatchItemID: item.ID, SourceID: src.ID, Enabled: true, Source: src}
		if err := s.Watches.AttachSource(ctx, link); err != nil {
			return fmt.Errorf("attach source %s: %w", name, err)
		}
		item.Sources = append(item.Sources, *link)
	}
	return nil
}

func (s *Service) resolveSource(ctx context.Context, name string) (*entity.Source, error) {
	src, err := s.Sources.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("get source %s: %w", name, err)
	}
	if src != nil {
		return src, nil
	}

	seed, ok := entity.FindDefaultSource(name)
	if !ok {
		return nil, nil
	}
	src, err = s.Sources.EnsureSeed(ctx, seed)
	if err != nil {
		return nil, fmt.Errorf("seed source %s: %w", name, err)
	}
	return src, nil
}

// Remove deletes a watch item and, by cascade, its news and associations.
func (s *Service) Remove(ctx context.Context, id uuid.UUID) error {
	if err := s.Watches.Delete(ctx, id); err != nil {
		return fmt.Errorf("remove watch: %w", err)
	}
	return nil
}

// SetAlerts toggles notifications for a watch item.
func (s *Service) SetAlerts(ctx context.Context, id uuid.UUID, enabled bool) error {
	if err := s.Watches.SetAlerts(ctx, id, enabled); err != nil {
		return fmt.Errorf("set alerts: %w", err)
	}
	return nil
}

// List returns all watch items ordered by exchange and ticker.
func (s *Service) List(ctx context.Context) ([]*entity.WatchItem, error) {
	items, err := s.Watches.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list watches: %w", err)
	}
	return items, nil
}

// Refresh queues an immediate crawl. It reports whether a new job was queued;
// false means one is already pending.
func (s *Service) Refresh(ctx context.Context, id uuid.UUID) (bool, error) {
	item, err := s.Watches.Get(ctx, id)
	if err != nil {
		return false, fmt.Errorf("get watch: %w", err)
	}
	if item == nil {
		return false, fmt.Errorf("refresh watch: %w", entity.ErrNotFound)
	}
	return s.enqueue(id), nil
}

func (s *Service) enqueue(id uuid.UUID) bool {
	if s.Scheduler == nil {
		return false
	}
	return s.Scheduler.Enqueue(id)
}
