package postgres_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"stocknews-notifier/internal/domain/entity"
	"stocknews-notifier/internal/infra/adapter/persistence/postgres"
)

var sourceCols = []string{"id", "name", "display_name", "base_url", "enabled"}

func TestSourceRepo_GetByName(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE lower(name) = lower($1)`)).
		WithArgs("yahoofinance").
		WillReturnRows(sqlmock.NewRows(sourceCols).
			AddRow(int64(1), "YahooFinance", "Yahoo Finance", "https://finance.yahoo.com", true))

	got, err := postgres.NewSourceRepo(db).GetByName(context.Background(), "yahoofinance")
	if err != nil {
		t.Fatalf("GetByName err=%v", err)
	}
	if got.ID != 1 || got.Name != "YahooFinance" || got.Host() != "finance.yahoo.com" {
		t.Fatalf("got %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSourceRepo_GetByName_NotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM sources`)).
		WithArgs("Bloomberg").
		WillReturnRows(sqlmock.NewRows(sourceCols))

	got, err := postgres.NewSourceRepo(db).GetByName(context.Background(), "Bloomberg")
	if err != nil || got != nil {
		t.Fatalf("got=%v err=%v, want nil nil", got, err)
	}
}

func TestSourceRepo_EnsureSeed(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	seed := entity.DefaultSources[0]
	mock.ExpectQuery(regexp.QuoteMeta(`ON CONFLICT (name) DO UPDATE`)).
		WithArgs(seed.Name, seed.DisplayName, seed.BaseURL, seed.Enabled).
		WillReturnRows(sqlmock.NewRows(sourceCols).
			AddRow(int64(3), seed.Name, seed.DisplayName, seed.BaseURL, seed.Enabled))

	got, err := postgres.NewSourceRepo(db).EnsureSeed(context.Background(), seed)
	if err != nil {
		t.Fatalf("EnsureSeed err=%v", err)
	}
	if got.ID != 3 || !got.Enabled {
		t.Fatalf("got %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSourceRepo_List(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	rows := sqlmock.NewRows(sourceCols)
	for i, s := range entity.DefaultSources {
		rows.AddRow(int64(i+1), s.Name, s.DisplayName, s.BaseURL, s.Enabled)
	}
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY id ASC`)).WillReturnRows(rows)

	got, err := postgres.NewSourceRepo(db).List(context.Background())
	if err != nil || len(got) != len(entity.DefaultSources) {
		t.Fatalf("List err=%v len=%d", err, len(got))
	}
}
