package event

import "github.com/erp/returns/internal/domain/returns"

// RegisterReturnEvents registers the return lifecycle events with the serializer
func RegisterReturnEvents(serializer *EventSerializer) {
	serializer.Register(returns.EventTypeReturnCreated, &returns.ReturnCreatedEvent{})
	serializer.Register(returns.EventTypeReturnInspected, &returns.ReturnInspectedEvent{})
	serializer.Register(returns.EventTypeReturnApproved, &returns.ReturnApprovedEvent{})
	serializer.Register(returns.EventTypeReturnRejected, &returns.ReturnRejectedEvent{})
	serializer.Register(returns.EventTypeReturnProcessed, &returns.ReturnProcessedEvent{})
	serializer.Register(returns.EventTypeReturnCancelled, &returns.ReturnCancelledEvent{})
}

// NewReturnEventSerializer returns a serializer that knows every lifecycle event
func NewReturnEventSerializer() *EventSerializer {
	s := NewEventSerializer()
	RegisterReturnEvents(s)
	return s
}
