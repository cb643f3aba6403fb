package providers

import (
	"context"

	"github.com/soterohealth/medscribe/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to pipeline
// run events. The bus is optional infrastructure: the pipeline runs fine
// without one.
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.RunEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.RunEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannel constants for pipeline run events
const (
	// EventChannelRuns is the channel carrying every run's stage events
	EventChannelRuns = "pipeline:runs"

	// EventChannelRunPrefix is the prefix for per-run channels
	EventChannelRunPrefix = "pipeline:run:"
)

// GetRunChannel returns the channel name for a specific pipeline run.
func GetRunChannel(correlationID string) string {
	return EventChannelRunPrefix + correlationID
}
