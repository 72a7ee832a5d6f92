// internal/repository/feed_repository.go
package repository

import (
	"context"

	agingrisk "github.com/andresuchdata/agingrisk/internal/pipeline/aging_risk"
)

// FeedRepository loads the current shipment, batch and price rows as a
// column-keyed feed. It never writes.
type FeedRepository interface {
	LoadFeed(ctx context.Context) (agingrisk.Feed, error)
}
