// Package news provides use cases for stored news items: deduplicating
// ingestion of crawled articles, listing and read-state updates.
package news

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"stocknews-notifier/internal/domain/entity"
	"stocknews-notifier/internal/observability/metrics"
	"stocknews-notifier/internal/repository"
	"stocknews-notifier/pkg/dedupe"
)

// Service provides news item use cases.
type Service struct {
	Repo   repository.NewsRepository
	Logger *slog.Logger

	now func() time.Time
}

func NewService(repo repository.NewsRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{Repo: repo, Logger: logger, now: time.Now}
}

// Ingest persists the articles in raws that are new for watch and returns
// how many were stored.
//
// An article is a duplicate when its canonical URL is already stored for any
// watch item, or its title hash is already stored for this watch item, or an
// earlier accepted article in the same batch had the same canonical URL or
// title hash.
// Articles with a blank title or a non-http(s) URL are skipped. A unique-constraint
// violation on insert counts as a duplicate.
func (s *Service) Ingest(ctx context.Context, watch *entity.WatchItem, sourceID int64, raws []entity.RawArticle) (int, error) {
	if watch == nil {
		return 0, fmt.Errorf("Ingest: %w", entity.ErrInvalidInput)
	}

	now := s.clock()
	seenURLs := make(map[string]struct{}, len(raws))
	seenHashes := make(map[string]struct{}, len(raws))
	created := 0

	for _, raw := range raws {
		if err := ctx.Err(); err != nil {
			return created, err
		}

		if err := raw.Validate(); err != nil {
			metrics.RecordNewsSkipped("invalid")
			s.Logger.Debug("skipping unusable article",
				slog.String("url", raw.URL),
				slog.Any("error", err))
			continue
		}
		title := strings.TrimSpace(raw.Title)
		link := strings.TrimSpace(raw.URL)

		canonical := dedupe.CanonicalURL(link)
		hash := dedupe.TitleHash(title)

		_, dupURL := seenURLs[canonical]
		_, dupHash := seenHashes[hash]
		if dupURL || dupHash {
			metrics.RecordNewsSkipped("duplicate_batch")
			continue
		}

		exists, err := s.Repo.ExistsByCanonicalURL(ctx, canonical)
		if err != nil {
			return created, fmt.Errorf("Ingest: %w", err)
		}
		if exists {
			metrics.RecordNewsSkipped("duplicate_url")
			continue
		}

		exists, err = s.Repo.ExistsByTitleHash(ctx, hash, watch.ID)
		if err != nil {
			return created, fmt.Errorf("Ingest: %w", err)
		}
		if exists {
			metrics.RecordNewsSkipped("duplicate_title")
			continue
		}
		// 保存済みで弾かれた記事はバッチ内の重複判定に含めない
		seenURLs[canonical] = struct{}{}
		seenHashes[hash] = struct{}{}

		item := &entity.NewsItem{
			ID:           uuid.New(),
			WatchItemID:  watch.ID,
			SourceID:     sourceID,
			Title:        title,
			URL:          link,
			CanonicalURL: canonical,
			Summary:      raw.Summary,
			TitleHash:    hash,
			SimHash64:    dedupe.SimHash64(title),
			PublishedAt:  raw.PublishedAt,
			FetchedAt:    now,
		}
		if err := s.Repo.Create(ctx, item); err != nil {
			if errors.Is(err, entity.ErrDuplicate) {
				// 並行挿入との競合
				metrics.RecordNewsSkipped("conflict")
				continue
			}
			return created, fmt.Errorf("Ingest: %w", err)
		}
		created++
	}

	return created, nil
}

// List returns items of watchID fetched within the last days days, newest first.
func (s *Service) List(ctx context.Context, watchID uuid.UUID, days int, unreadOnly bool) ([]*entity.NewsItem, error) {
	if days <= 0 {
		return nil, fmt.Errorf("list news: days must be positive: %w", entity.ErrInvalidInput)
	}
	since := s.clock().Add(-time.Duration(days) * 24 * time.Hour)

	items, err := s.Repo.List(ctx, watchID, since, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("list news: %w", err)
	}
	return items, nil
}

// MarkRead sets the read flag of one item.
func (s *Service) MarkRead(ctx context.Context, id uuid.UUID, read bool) error {
	if err := s.Repo.MarkRead(ctx, id, read); err != nil {
		return fmt.Errorf("mark news read: %w", err)
	}
	return nil
}

func (s *Service) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}
