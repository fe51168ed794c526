package testutil

import (
	"context"
	"sync"

	"github.com/erp/returns/internal/domain/returns"
	"github.com/erp/returns/internal/domain/shared"
)

// RecordingHandler subscribes to every lifecycle event and keeps them in order
type RecordingHandler struct {
	mu     sync.Mutex
	events []returns.LifecycleEvent
}

func NewRecordingHandler() *RecordingHandler {
	return &RecordingHandler{}
}

func (h *RecordingHandler) EventTypes() []string {
	return returns.LifecycleEventTypes()
}

func (h *RecordingHandler) Handle(_ context.Context, evt shared.DomainEvent) error {
	if le, ok := evt.(returns.LifecycleEvent); ok {
		h.mu.Lock()
		h.events = append(h.events, le)
		h.mu.Unlock()
	}
	return nil
}

// Types returns the recorded event types in delivery order
func (h *RecordingHandler) Types() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.events))
	for i, e := range h.events {
		out[i] = e.EventType()
	}
	return out
}

// Statuses returns the status each recorded event left the record in
func (h *RecordingHandler) Statuses() []returns.ReturnStatus {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]returns.ReturnStatus, len(h.events))
	for i, e := range h.events {
		out[i] = e.Snapshot().Status
	}
	return out
}

func (h *RecordingHandler) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.events)
}
