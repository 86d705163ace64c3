// Package events delivers domain events to the log stream. Publishing is
// best effort: a failed or dropped event never affects the business
// operation that emitted it.
package events

import (
	"context"
	"log/slog"

	portssvc "github.com/fintrak/fintrak/internal/core/ports/services"
	"github.com/fintrak/fintrak/internal/middleware"
)

// LogPublisher writes events to the request-scoped structured logger.
type LogPublisher struct{}

// NewLogPublisher creates a new LogPublisher.
func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

var _ portssvc.EventPublisher = (*LogPublisher)(nil)

// Publish logs the event.
func (p *LogPublisher) Publish(ctx context.Context, event portssvc.Event) {
	middleware.GetLoggerFromCtx(ctx).Info("domain event",
		slog.String("entity", event.Entity),
		slog.String("entity_id", event.EntityID),
		slog.String("action", event.Action),
		slog.String("actor_id", event.ActorID),
	)
}
