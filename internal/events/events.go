// Package events provides in-process pub/sub used to fan out
// schedule-change notifications (cache invalidation, metrics).
package events

import (
	"sync"
	"time"
)

// Event types published by the service.
const (
	TypeScheduleSaved   = "schedule.saved"
	TypeScheduleDeleted = "schedule.deleted"
)

// ScheduleEvent identifies the month a change applies to.
type ScheduleEvent struct {
	UserID     string
	PublicSlug string
	Month      int
	Year       int
}

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Schedule  ScheduleEvent
	CreatedAt time.Time
}

// Handler reacts to an event.
type Handler func(event Event)

// Bus provides in-process pub/sub for events.
type Bus struct {
	subscribers map[string][]Handler
	mu          sync.RWMutex
}

// NewBus constructs an empty bus.
func NewBus() *Bus {
	return &Bus{subscribers: make(map[string][]Handler)}
}

// Subscribe registers a handler for a given event type.
func (b *Bus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type. Handlers run
// synchronously; the caller decides the concurrency model.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		handler(event)
	}
}
