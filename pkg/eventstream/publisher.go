package eventstream

import "context"

// Publisher publishes link lifecycle events to an event stream backend.
type Publisher interface {
	PublishLinkProcessed(ctx context.Context, event *LinkProcessedEvent) error
	Close() error
}
