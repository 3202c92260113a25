package shared

import "context"

// EventHandler consumes domain events off the bus. Handlers run on bus workers,
// so a returned error is logged and never reaches the publisher.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes lists the types the handler wants; empty means every type
	EventTypes() []string
}

// EventPublisher enqueues events. It does not wait for handlers to finish.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventBus routes published events to subscribed handlers
type EventBus interface {
	EventPublisher
	// Subscribe registers handler for eventTypes, or for handler.EventTypes() when none are given
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
