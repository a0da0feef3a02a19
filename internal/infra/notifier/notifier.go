// Package notifier provides delivery mechanisms for news alerts.
// It defines the Notifier interface which allows different notification mechanisms
// (Discord, Slack, structured log output) to be used interchangeably through dependency injection.
package notifier

import (
	"context"

	"stocknews-notifier/internal/domain/entity"
)

// Notifier delivers one news item about one watched ticker.
// Implementations handle their own rate limiting and retries; a returned
// error means the item was not delivered and should stay unsent.
type Notifier interface {
	Notify(ctx context.Context, watch *entity.WatchItem, item *entity.NewsItem) error
}
