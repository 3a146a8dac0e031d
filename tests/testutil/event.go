package testutil

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/scg/portal/internal/domain/shared"
)

// RecordingHandler is a shared.EventHandler that keeps every event it receives
type RecordingHandler struct {
	mu         sync.Mutex
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
}

// NewRecordingHandler subscribes to eventTypes; none means every event
func NewRecordingHandler(eventTypes ...string) *RecordingHandler {
	return &RecordingHandler{eventTypes: eventTypes}
}

func (h *RecordingHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *RecordingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

// FailWith makes Handle return err after recording
func (h *RecordingHandler) FailWith(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.err = err
}

// Handled returns a copy of the received events
func (h *RecordingHandler) Handled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.handled...)
}

// Types lists the event types received, in order
func (h *RecordingHandler) Types() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	types := make([]string, len(h.handled))
	for i, e := range h.handled {
		types[i] = e.EventType()
	}
	return types
}

// TestEvent is a bare domain event
type TestEvent struct {
	shared.BaseDomainEvent
	Data string
}

// NewTestEvent creates an event of eventType owned by customerID
func NewTestEvent(eventType string, customerID uuid.UUID) *TestEvent {
	return &TestEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New(), customerID),
		Data:            "test-data",
	}
}
