package events

import (
	"testing"
	"time"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	bus := NewBus()
	a := bus.Subscribe(4)
	b := bus.Subscribe(4)

	bus.Publish(Event{Type: RequestCreated, RequestID: 1})

	for _, ch := range []<-chan Event{a, b} {
		select {
		case e := <-ch:
			if e.Type != RequestCreated || e.RequestID != 1 {
				t.Fatalf("unexpected event: %+v", e)
			}
			if e.Timestamp.IsZero() {
				t.Fatal("timestamp not stamped on publish")
			}
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive the event")
		}
	}
}

func TestPublishNeverBlocksOnFullSubscriber(t *testing.T) {
	bus := NewBus()
	slow := bus.Subscribe(1)
	fast := bus.Subscribe(8)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			bus.Publish(Event{Type: RequestUpdated, RequestID: uint(i + 1)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}

	// The slow subscriber kept its buffered event; the rest were dropped
	if len(slow) != 1 {
		t.Fatalf("slow subscriber buffer = %d, want 1", len(slow))
	}
	if len(fast) != 5 {
		t.Fatalf("fast subscriber buffer = %d, want 5", len(fast))
	}
}
