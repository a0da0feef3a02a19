package entity

import "errors"

// Repositories and services wrap these with fmt.Errorf("...: %w"); the HTTP
// layer maps them to status codes with errors.Is.
var (
	ErrNotFound         = errors.New("entity not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrValidationFailed = errors.New("validation failed")
	// ErrDuplicate is returned when a unique constraint rejects a write
	// (ticker already watched, canonical URL or title hash already stored).
	ErrDuplicate = errors.New("duplicate entity")
)

// ValidationError names the offending field. Its message is safe to return
// to API clients verbatim.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Message
}

// Unwrap makes every ValidationError match ErrValidationFailed.
func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}
