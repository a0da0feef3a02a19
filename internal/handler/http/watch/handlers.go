package watch

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"stocknews-notifier/internal/handler/http/pathutil"
	"stocknews-notifier/internal/handler/http/respond"
)

type ListHandler struct{ Svc Service }

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	items, err := h.Svc.List(r.Context())
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	out := make([]DTO, 0, len(items))
	for _, item := range items {
		out = append(out, ToDTO(item))
	}
	respond.JSON(w, http.StatusOK, out)
}

// CreateHandler adds a ticker. 201 when a new item is created, 200 with the
// existing item when the ticker is already watched.
type CreateHandler struct{ Svc Service }

func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	if strings.TrimSpace(req.Ticker) == "" {
		respond.SafeError(w, http.StatusBadRequest, errors.New("ticker is required"))
		return
	}

	item, created, err := h.Svc.Add(r.Context(), req.Ticker)
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}
	respond.JSON(w, code, ToDTO(item))
}

type DeleteHandler struct{ Svc Service }

func (h DeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ParseID(r.PathValue("id"))
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	if err := h.Svc.Remove(r.Context(), id); err != nil {
		respond.DomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type AlertsHandler struct{ Svc Service }

func (h AlertsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ParseID(r.PathValue("id"))
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	var req alertsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	if req.Enabled == nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("enabled is required"))
		return
	}
	if err := h.Svc.SetAlerts(r.Context(), id, *req.Enabled); err != nil {
		respond.DomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RefreshHandler queues an immediate crawl. The body reports whether a new
// job was queued; false means one was already pending.
type RefreshHandler struct{ Svc Service }

func (h RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ParseID(r.PathValue("id"))
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	queued, err := h.Svc.Refresh(r.Context(), id)
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.JSON(w, http.StatusAccepted, refreshResponse{Queued: queued})
}
