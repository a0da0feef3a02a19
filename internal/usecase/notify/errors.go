package notify

import "errors"

// Sentinel errors for notify use case operations.
var (
	// ErrChannelDisabled indicates that Send was called on a disabled channel.
	ErrChannelDisabled = errors.New("channel is disabled")

	// ErrInvalidNewsItem is returned for a nil item or one missing its title or URL.
	ErrInvalidNewsItem = errors.New("invalid news item")

	// ErrInvalidWatch is returned when the watch item is nil.
	ErrInvalidWatch = errors.New("invalid watch item")

	// ErrCircuitBreakerOpen indicates that the channel's circuit breaker rejected
	// the call. The breaker half-opens again after its timeout.
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open for this channel")

	// ErrNoChannels is returned when no channel is enabled.
	ErrNoChannels = errors.New("no notification channel enabled")
)
