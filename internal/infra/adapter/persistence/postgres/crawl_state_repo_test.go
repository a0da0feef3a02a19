package postgres_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"

	"stocknews-notifier/internal/domain/entity"
	"stocknews-notifier/internal/infra/adapter/persistence/postgres"
)

var crawlStateCols = []string{
	"source_id", "last_crawl_at", "requests_per_second", "requests_per_minute",
	"robots_txt", "robots_txt_fetched_at", "consecutive_errors", "last_error", "last_error_at",
}

func TestCrawlStateRepo_Get(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Date(2025, 11, 16, 10, 0, 0, 0, time.UTC)
	robots := "User-agent: *\nDisallow: /private"
	want := &entity.CrawlState{
		SourceID:           1,
		LastCrawlAt:        &now,
		RequestsPerSecond:  0.5,
		RequestsPerMinute:  20,
		RobotsTxt:          &robots,
		RobotsTxtFetchedAt: &now,
	}

	mock.ExpectQuery(regexp.QuoteMeta(`FROM crawl_states`)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(crawlStateCols).
			AddRow(int64(1), now, 0.5, 20, robots, now, 0, nil, nil))

	got, err := postgres.NewCrawlStateRepo(db).Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("Get err=%v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestCrawlStateRepo_Get_Missing(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM crawl_states`)).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(crawlStateCols))

	got, err := postgres.NewCrawlStateRepo(db).Get(context.Background(), 9)
	if err != nil || got != nil {
		t.Fatalf("got=%v err=%v, want nil nil", got, err)
	}
}

func TestCrawlStateRepo_Save(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Date(2025, 11, 16, 10, 0, 0, 0, time.UTC)
	s := entity.NewCrawlState(2)
	s.RecordFailure(now, errors.New("HTTP 503"))

	mock.ExpectExec(regexp.QuoteMeta(`ON CONFLICT (source_id) DO UPDATE`)).
		WithArgs(int64(2), nil, 1.0, 10, nil, nil, 1, "HTTP 503", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := postgres.NewCrawlStateRepo(db).Save(context.Background(), s); err != nil {
		t.Fatalf("Save err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
