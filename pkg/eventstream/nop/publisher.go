// Package nop provides a no-op eventstream publisher for tests and disabled
// mode.
package nop

import (
	"context"

	"github.com/daylogco/linkdex/pkg/eventstream"
)

// Publisher is a no-op eventstream publisher.
type Publisher struct{}

// NewPublisher creates a new no-op eventstream publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// PublishLinkProcessed validates input and otherwise does nothing.
func (p *Publisher) PublishLinkProcessed(_ context.Context, event *eventstream.LinkProcessedEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}

	return nil
}

// Close is a no-op.
func (p *Publisher) Close() error {
	return nil
}
