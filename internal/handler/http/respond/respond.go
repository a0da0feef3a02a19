// Package respond writes JSON responses for the API handlers. Error bodies
// are sanitized so that storage or webhook details never reach clients.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"stocknews-notifier/internal/domain/entity"
	"stocknews-notifier/internal/handler/http/pathutil"
)

const internalErrorMessage = "internal server error"

// safeFragments mark messages that describe the caller's mistake and can be
// returned verbatim for 4xx responses.
var safeFragments = []string{
	"required",
	"invalid",
	"not found",
	"already exists",
	"must be",
	"cannot be",
	"too long",
	"too short",
}

// JSON writes a JSON response with the given status code and data.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// ヘッダー送信済みなのでログのみ
		slog.Default().Error("failed to encode JSON response",
			slog.Int("status_code", code),
			slog.Any("error", err))
	}
}

// Error writes {"error": err.Error()} with the given status code.
func Error(w http.ResponseWriter, code int, err error) {
	JSON(w, code, map[string]string{"error": err.Error()})
}

// SafeError writes err when it is a client-facing 4xx message and a generic
// body otherwise. 5xx responses never carry the underlying message.
func SafeError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}
	if code < 500 && isSafeMessage(err.Error()) {
		Error(w, code, err)
		return
	}

	slog.Default().Error("internal server error",
		slog.String("status", http.StatusText(code)),
		slog.Int("code", code),
		slog.String("error", SanitizeError(err)))
	JSON(w, code, map[string]string{"error": internalErrorMessage})
}

func isSafeMessage(msg string) bool {
	lower := strings.ToLower(msg)
	for _, frag := range safeFragments {
		if strings.Contains(lower, frag) {
			return true
		}
	}
	return false
}

// DomainError maps a use case error to its HTTP status: validation and
// malformed input become 400, missing entities 404 and everything else a
// sanitized 500.
func DomainError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}

	var vErr *entity.ValidationError
	switch {
	case errors.As(err, &vErr):
		Error(w, http.StatusBadRequest, vErr)
	case errors.Is(err, pathutil.ErrInvalidID):
		JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
	case errors.Is(err, entity.ErrInvalidInput), errors.Is(err, entity.ErrValidationFailed):
		JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid input"})
	case errors.Is(err, entity.ErrNotFound):
		JSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	default:
		SafeError(w, http.StatusInternalServerError, err)
	}
}
