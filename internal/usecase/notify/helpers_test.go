package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"stocknews-notifier/internal/domain/entity"
)

type mockChannel struct {
	name    string
	enabled bool
	err     error

	mu    sync.Mutex
	calls int
	sent  []*entity.NewsItem
}

func (m *mockChannel) Name() string    { return m.name }
func (m *mockChannel) IsEnabled() bool { return m.enabled }

func (m *mockChannel) Send(_ context.Context, _ *entity.WatchItem, item *entity.NewsItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, item)
	return nil
}

func (m *mockChannel) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type stubNotifier struct {
	fail map[uuid.UUID]error
	got  []uuid.UUID
}

func (s *stubNotifier) Notify(_ context.Context, _ *entity.WatchItem, item *entity.NewsItem) error {
	s.got = append(s.got, item.ID)
	if err, ok := s.fail[item.ID]; ok {
		return err
	}
	return nil
}

type stubNewsRepo struct {
	unsent     []*entity.NewsItem
	listErr    error
	markErr    error
	gotLimit   int
	markedSent []uuid.UUID
}

func (r *stubNewsRepo) ExistsByCanonicalURL(context.Context, string) (bool, error) {
	return false, nil
}

func (r *stubNewsRepo) ExistsByTitleHash(context.Context, string, uuid.UUID) (bool, error) {
	return false, nil
}

func (r *stubNewsRepo) Create(context.Context, *entity.NewsItem) error {
	return errors.New("not implemented")
}

func (r *stubNewsRepo) ListUnsent(_ context.Context, _ uuid.UUID, limit int) ([]*entity.NewsItem, error) {
	r.gotLimit = limit
	if r.listErr != nil {
		return nil, r.listErr
	}
	if len(r.unsent) > limit {
		return r.unsent[:limit], nil
	}
	return r.unsent, nil
}

func (r *stubNewsRepo) MarkSent(_ context.Context, id uuid.UUID) error {
	if r.markErr != nil {
		return r.markErr
	}
	r.markedSent = append(r.markedSent, id)
	return nil
}

func (r *stubNewsRepo) List(context.Context, uuid.UUID, time.Time, bool) ([]*entity.NewsItem, error) {
	return nil, nil
}

func (r *stubNewsRepo) MarkRead(context.Context, uuid.UUID, bool) error {
	return nil
}

func newWatch() *entity.WatchItem {
	return &entity.WatchItem{
		ID:            uuid.New(),
		Exchange:      "NASDAQ",
		Ticker:        "MSFT",
		AlertsEnabled: true,
	}
}

func newItem(title string) *entity.NewsItem {
	return &entity.NewsItem{
		ID:        uuid.New(),
		Title:     title,
		URL:       "https://example.com/" + title,
		FetchedAt: time.Now(),
	}
}
