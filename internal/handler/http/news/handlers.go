package news

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"stocknews-notifier/internal/domain/entity"
	"stocknews-notifier/internal/handler/http/pathutil"
	"stocknews-notifier/internal/handler/http/respond"

	"github.com/google/uuid"
)

const (
	defaultDays = 7
	maxDays     = 365
)

// Service is the news use case consumed by the handlers.
type Service interface {
	List(ctx context.Context, watchID uuid.UUID, days int, unreadOnly bool) ([]*entity.NewsItem, error)
	MarkRead(ctx context.Context, id uuid.UUID, read bool) error
}

// ListHandler serves GET /watches/{id}/news?days=7&unread=true.
type ListHandler struct{ Svc Service }

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	watchID, err := pathutil.ParseID(r.PathValue("id"))
	if err != nil {
		respond.DomainError(w, err)
		return
	}

	q := r.URL.Query()
	days := defaultDays
	if v := q.Get("days"); v != "" {
		days, err = strconv.Atoi(v)
		if err != nil || days < 1 || days > maxDays {
			respond.SafeError(w, http.StatusBadRequest, errors.New("days must be between 1 and 365"))
			return
		}
	}
	unread := false
	if v := q.Get("unread"); v != "" {
		unread, err = strconv.ParseBool(v)
		if err != nil {
			respond.SafeError(w, http.StatusBadRequest, errors.New("unread must be true or false"))
			return
		}
	}

	items, err := h.Svc.List(r.Context(), watchID, days, unread)
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	out := make([]DTO, 0, len(items))
	for _, n := range items {
		out = append(out, ToDTO(n))
	}
	respond.JSON(w, http.StatusOK, out)
}

// ReadHandler serves PUT /news/{id}/read with body {"read": bool}.
type ReadHandler struct{ Svc Service }

func (h ReadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ParseID(r.PathValue("id"))
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	var req readRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	if req.Read == nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("read is required"))
		return
	}
	if err := h.Svc.MarkRead(r.Context(), id, *req.Read); err != nil {
		respond.DomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Register registers the news routes with mux.
func Register(mux *http.ServeMux, svc Service) {
	mux.Handle("GET /watches/{id}/news", ListHandler{svc})
	mux.Handle("PUT /news/{id}/read", ReadHandler{svc})
}
