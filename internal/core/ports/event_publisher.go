package ports

import (
	"context"

	"partialdelivery/internal/core/domain/events"
)

// EventPublisher delivers coordination events to the subscribers of a
// partial delivery's room. Delivery is best effort and at most once:
// publishing to a room nobody has joined is not an error, and a failed send
// to one subscriber never blocks the others.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}
