package watch

import "net/http"

// Register registers the watchlist routes with mux.
func Register(mux *http.ServeMux, svc Service) {
	mux.Handle("GET /watches", ListHandler{svc})
	mux.Handle("POST /watches", CreateHandler{svc})
	mux.Handle("DELETE /watches/{id}", DeleteHandler{svc})
	mux.Handle("PUT /watches/{id}/alerts", AlertsHandler{svc})
	mux.Handle("POST /watches/{id}/refresh", RefreshHandler{svc})
}
