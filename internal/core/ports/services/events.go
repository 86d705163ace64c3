package services

import "context"

// Event describes a state change worth announcing after commit.
type Event struct {
	Entity   string
	EntityID string
	Action   string
	ActorID  string
}

// EventPublisher publishes domain events best effort. Publish must never
// fail the business operation that emitted the event.
type EventPublisher interface {
	Publish(ctx context.Context, event Event)
}
