package events

import (
	"log"
	"sync"
	"time"
)

// Type identifies what kind of store change happened
type Type string

const (
	RequestCreated Type = "request_created"
	RequestUpdated Type = "request_updated"
	ReviewCreated  Type = "review_created"
	UserUpdated    Type = "user_updated"
	UserDeleted    Type = "user_deleted"
)

// Event is published after each successful store write. Consumers observe
// committed state only, never partial rows.
type Event struct {
	Type       Type        `json:"type"`
	RequestID  uint        `json:"request_id,omitempty"`
	UserID     uint        `json:"user_id,omitempty"`
	WorkerID   uint        `json:"worker_id,omitempty"`
	CustomerID uint        `json:"customer_id,omitempty"`
	Status     string      `json:"status,omitempty"`
	Payload    interface{} `json:"payload,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
}

// Bus fans out store-change events to subscribers. Publishing never blocks a
// write path: a subscriber whose buffer is full drops the event.
type Bus struct {
	mu   sync.RWMutex
	subs []chan Event
}

// NewBus creates an event bus
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe returns a buffered channel receiving all future events
func (b *Bus) Subscribe(buffer int) <-chan Event {
	ch := make(chan Event, buffer)
	b.mu.Lock()
	b.subs = append(b.subs, ch)
	b.mu.Unlock()
	return ch
}

// Publish delivers the event to every subscriber
func (b *Bus) Publish(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
			log.Printf("⚠️ Event subscriber buffer full, dropping %s event", e.Type)
		}
	}
}
