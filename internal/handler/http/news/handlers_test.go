package news_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"stocknews-notifier/internal/domain/entity"
	"stocknews-notifier/internal/handler/http/news"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

type listCall struct {
	watchID uuid.UUID
	days    int
	unread  bool
}

type stubService struct {
	items []*entity.NewsItem
	err   error

	listCalls []listCall
	readID    uuid.UUID
	readValue *bool
}

func (s *stubService) List(_ context.Context, watchID uuid.UUID, days int, unreadOnly bool) ([]*entity.NewsItem, error) {
	s.listCalls = append(s.listCalls, listCall{watchID, days, unreadOnly})
	return s.items, s.err
}

func (s *stubService) MarkRead(_ context.Context, id uuid.UUID, read bool) error {
	s.readID = id
	s.readValue = &read
	return s.err
}

var (
	watchID = uuid.MustParse("0b7f7a8e-3c55-4c0e-9f57-1a2b3c4d5e6f")
	newsID  = uuid.MustParse("a3d4f0c2-5b6e-4f7a-8b9c-0d1e2f3a4b5c")
)

func do(svc news.Service, method, target, body string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	news.Register(mux, svc)
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func TestListHandler_QueryParameters(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantCall   *listCall
	}{
		{name: "defaults", query: "", wantStatus: http.StatusOK, wantCall: &listCall{watchID, 7, false}},
		{name: "explicit", query: "?days=30&unread=true", wantStatus: http.StatusOK, wantCall: &listCall{watchID, 30, true}},
		{name: "days zero", query: "?days=0", wantStatus: http.StatusBadRequest},
		{name: "days too large", query: "?days=1000", wantStatus: http.StatusBadRequest},
		{name: "days not a number", query: "?days=week", wantStatus: http.StatusBadRequest},
		{name: "unread invalid", query: "?unread=maybe", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{}

			rr := do(svc, http.MethodGet, "/watches/"+watchID.String()+"/news"+tt.query, "")

			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rr.Code, tt.wantStatus, rr.Body.String())
			}
			if tt.wantCall == nil {
				if len(svc.listCalls) != 0 {
					t.Errorf("service called on invalid request: %+v", svc.listCalls)
				}
				return
			}
			if diff := cmp.Diff([]listCall{*tt.wantCall}, svc.listCalls, cmp.AllowUnexported(listCall{})); diff != "" {
				t.Errorf("List calls mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestListHandler_Body(t *testing.T) {
	published := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	fetched := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	summary := "Record quarter"
	svc := &stubService{items: []*entity.NewsItem{{
		ID:           newsID,
		WatchItemID:  watchID,
		SourceID:     3,
		Title:        "Apple beats estimates",
		URL:          "https://example.com/a",
		CanonicalURL: "https://example.com/a",
		Summary:      &summary,
		PublishedAt:  &published,
		FetchedAt:    fetched,
	}}}

	rr := do(svc, http.MethodGet, "/watches/"+watchID.String()+"/news", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var got []news.DTO
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []news.DTO{{
		ID:          newsID.String(),
		WatchItemID: watchID.String(),
		SourceID:    3,
		Title:       "Apple beats estimates",
		URL:         "https://example.com/a",
		Summary:     &summary,
		PublishedAt: &published,
		FetchedAt:   fetched,
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestListHandler_InvalidWatchID(t *testing.T) {
	rr := do(&stubService{}, http.MethodGet, "/watches/not-a-uuid/news", "")

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestReadHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantRead   bool
	}{
		{name: "mark read", body: `{"read":true}`, wantStatus: http.StatusNoContent, wantRead: true},
		{name: "mark unread", body: `{"read":false}`, wantStatus: http.StatusNoContent, wantRead: false},
		{name: "missing field", body: `{}`, wantStatus: http.StatusBadRequest},
		{name: "invalid json", body: `read`, wantStatus: http.StatusBadRequest},
		{name: "unknown item", body: `{"read":true}`, err: fmt.Errorf("mark news read: MarkRead: %w", entity.ErrNotFound), wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{err: tt.err}

			rr := do(svc, http.MethodPut, "/news/"+newsID.String()+"/read", tt.body)

			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rr.Code, tt.wantStatus, rr.Body.String())
			}
			if tt.wantStatus != http.StatusNoContent {
				return
			}
			if svc.readID != newsID {
				t.Errorf("MarkRead id = %v, want %v", svc.readID, newsID)
			}
			if svc.readValue == nil || *svc.readValue != tt.wantRead {
				t.Errorf("MarkRead read = %v, want %v", svc.readValue, tt.wantRead)
			}
		})
	}
}
