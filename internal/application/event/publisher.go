package event

import (
	"context"

	"github.com/scg/portal/internal/domain/shared"
	"go.uber.org/zap"
)

// PublishPending publishes the buffered events of each aggregate and clears them.
// The write that raised the events has already committed, so a failed publish is
// logged and never returned to the caller.
func PublishPending(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, aggregates ...shared.AggregateRoot) {
	for _, agg := range aggregates {
		if agg == nil {
			continue
		}
		events := agg.GetDomainEvents()
		agg.ClearDomainEvents()
		if publisher == nil || len(events) == 0 {
			continue
		}
		if err := publisher.Publish(ctx, events...); err != nil && logger != nil {
			logger.Warn("Failed to publish domain events",
				zap.String("aggregate_id", agg.GetID().String()),
				zap.Int("event_count", len(events)),
				zap.Error(err))
		}
	}
}
