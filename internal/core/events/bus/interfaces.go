package bus

// EventBus is an in-process pub/sub bus for simulation notifications.
//
//   - Type-based fan-out: handlers subscribe by Event.Type().
//   - Synchronous delivery in the publisher's goroutine, in subscription order,
//     so a replay with the same inputs delivers events identically.
//   - Handler errors are joined and returned from Publish/PublishBatch.
//   - Observers see every publish; metrics are collected only while observed.
type EventBus interface {
	// Publish delivers the event to all active subscribers of event.Type().
	Publish(event Event) error
	// PublishBatch publishes events in order and aggregates errors across them.
	PublishBatch(events ...Event) error
	// Subscribe registers a handler and returns a handle that can cancel it.
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe cancels the given Subscription. Safe to call with nil.
	Unsubscribe(Subscription) error

	AddObserver(obs EventBusObserver)
	RemoveObserver(obs EventBusObserver)
	GetMetrics() EventBusMetrics
}

// Event is an immutable notification. Tick is the simulation tick that raised it.
type Event interface {
	Type() string
	Source() string
	Tick() uint64
	Data() any
}

type (
	EventHandler func(event Event) error
)

// Subscription represents a registered handler bound to an event type.
type Subscription interface {
	ID() string
	EventType() string
	IsActive() bool
	// Cancel de-registers the handler. Multiple calls are safe.
	Cancel() error
}

// EventBusObserver is notified about every publish and its delivery outcome.
type EventBusObserver interface {
	OnPublish(eventType string, event Event)
	OnDelivered(eventType string, handlers int, err error)
}

// EventBusMetrics is updated only when at least one observer is registered.
type EventBusMetrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	SubscribersActive uint64
}
