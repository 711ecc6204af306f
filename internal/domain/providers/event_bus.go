package providers

import (
	"context"

	"github.com/zatekoja/facilities-collector/internal/domain/entities"
)

// EventChannelCollectionRuns is the channel of every collection event
const EventChannelCollectionRuns = "collector:runs"

// EventBus carries collection run events from the collector to stream
// clients and cache invalidation.
type EventBus interface {
	// Publish delivers the event to live subscribers and keeps it in the
	// channel's recent history.
	Publish(ctx context.Context, channel string, event *entities.CollectionEvent) error

	// Subscribe streams a channel until ctx is done. The returned channel
	// is closed when the subscription ends.
	Subscribe(ctx context.Context, channel string) (<-chan *entities.CollectionEvent, error)

	// Recent returns up to limit of the newest events, oldest first.
	Recent(ctx context.Context, channel string, limit int) ([]*entities.CollectionEvent, error)

	Close() error
}
