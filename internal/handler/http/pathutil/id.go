package pathutil

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidID is returned when the ID in the URL path is invalid.
var ErrInvalidID = errors.New("invalid id")

// ParseID parses a UUID path segment such as the value of r.PathValue("id").
// The nil UUID is rejected.
func ParseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, ErrInvalidID
	}
	return id, nil
}

// ExtractID parses the UUID that follows prefix in path.
//
// Example:
//
//	id, err := ExtractID("/watches/6f1c...", "/watches/")
func ExtractID(path, prefix string) (uuid.UUID, error) {
	if !strings.HasPrefix(path, prefix) {
		return uuid.Nil, ErrInvalidID
	}
	return ParseID(strings.TrimPrefix(path, prefix))
}
