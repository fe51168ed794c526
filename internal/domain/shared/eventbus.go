package shared

import "context"

// EventHandler reacts to events published after an aggregate is saved.
// A returned error is logged by the bus and never reaches the command that
// raised the event, because the state change is already durable by then.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes lists the types the handler wants when subscribed without
	// explicit types. Empty means every event.
	EventTypes() []string
}

// EventPublisher is the port the application services publish through
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventBus is an EventPublisher that handlers can subscribe to
type EventBus interface {
	EventPublisher
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
