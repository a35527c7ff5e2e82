package bus

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// simpleEvent is the default Event implementation.
type simpleEvent struct {
	typeStr string
	source  string
	tick    uint64
	data    any
}

func (e simpleEvent) Type() string   { return e.typeStr }
func (e simpleEvent) Source() string { return e.source }
func (e simpleEvent) Tick() uint64   { return e.tick }
func (e simpleEvent) Data() any      { return e.data }

// NewEvent creates a simple Event implementation.
func NewEvent(typ, src string, tick uint64, data any) Event {
	return simpleEvent{typeStr: typ, source: src, tick: tick, data: data}
}

type subscription struct {
	id        string
	eventType string
	handler   EventHandler
	active    bool
	cancel    func()
}

func (s *subscription) ID() string        { return s.id }
func (s *subscription) EventType() string { return s.eventType }
func (s *subscription) IsActive() bool    { return s.active }
func (s *subscription) Cancel() error {
	if s.cancel != nil {
		s.cancel()
	}
	s.active = false
	return nil
}

// inMemoryBus keeps subscribers per event type in subscription order.
type inMemoryBus struct {
	mu        sync.RWMutex
	handlers  map[string][]*subscription
	metrics   EventBusMetrics
	observers []EventBusObserver
}

// New creates a new EventBus instance.
func New() EventBus {
	return &inMemoryBus{
		handlers: make(map[string][]*subscription),
	}
}

func (b *inMemoryBus) Publish(event Event) error {
	return b.deliver(event)
}

func (b *inMemoryBus) PublishBatch(events ...Event) error {
	var all error
	for _, e := range events {
		if err := b.Publish(e); err != nil {
			all = errors.Join(all, err)
		}
	}
	return all
}

func (b *inMemoryBus) Subscribe(eventType string, handler EventHandler) (Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	s := &subscription{id: uuid.NewString(), eventType: eventType, handler: handler, active: true}
	s.cancel = func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.handlers[eventType]
		for i, existing := range subs {
			if existing == s {
				b.handlers[eventType] = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
		s.active = false
	}
	b.handlers[eventType] = append(b.handlers[eventType], s)
	return s, nil
}

func (b *inMemoryBus) Unsubscribe(sub Subscription) error {
	if sub == nil {
		return nil
	}
	return sub.Cancel()
}

func (b *inMemoryBus) AddObserver(obs EventBusObserver) {
	b.mu.Lock()
	b.observers = append(b.observers, obs)
	b.mu.Unlock()
}

func (b *inMemoryBus) RemoveObserver(obs EventBusObserver) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, o := range b.observers {
		if o == obs {
			b.observers = append(b.observers[:i:i], b.observers[i+1:]...)
			return
		}
	}
}

func (b *inMemoryBus) GetMetrics() EventBusMetrics {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.metrics
}

func (b *inMemoryBus) deliver(event Event) error {
	if event == nil {
		return ErrNilEvent
	}

	etype := event.Type()

	b.mu.RLock()
	subs := append([]*subscription(nil), b.handlers[etype]...)
	observers := append([]EventBusObserver(nil), b.observers...)
	b.mu.RUnlock()

	for _, obs := range observers {
		obs.OnPublish(etype, event)
	}

	var all error
	for _, s := range subs {
		if !s.active {
			continue
		}
		if err := s.handler(event); err != nil {
			all = errors.Join(all, err)
		}
	}

	if len(observers) > 0 {
		for _, obs := range observers {
			obs.OnDelivered(etype, len(subs), all)
		}
		b.mu.Lock()
		b.metrics.Published++
		b.metrics.DeliveredHandlers += uint64(len(subs))
		if all != nil {
			b.metrics.Errors++
		}
		var active uint64
		for _, m := range b.handlers {
			active += uint64(len(m))
		}
		b.metrics.SubscribersActive = active
		b.mu.Unlock()
	}
	return all
}
