package shared

import "context"

// EventHandler reacts to portal events after the change that raised them is
// committed, e.g. account mails or the portal metrics counters
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes lists the event types the handler subscribes to when
	// Subscribe is called without explicit types
	EventTypes() []string
}

// EventPublisher delivers the pending events of saved aggregates
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventSubscriber manages the handlers of an event bus
type EventSubscriber interface {
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
}

// EventBus is wired once at startup and stopped on shutdown
type EventBus interface {
	EventPublisher
	EventSubscriber
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// NoopEventPublisher drops every event. Services fall back to it when no bus is wired.
type NoopEventPublisher struct{}

// Publish implements EventPublisher
func (NoopEventPublisher) Publish(context.Context, ...DomainEvent) error { return nil }
