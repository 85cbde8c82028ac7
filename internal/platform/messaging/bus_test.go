package messaging

import (
	"context"
	"sync"
	"testing"
	"time"

	"electora/contexts/election-core/lpv-engine/ports"
)

func TestBusDeliversToSubscribers(t *testing.T) {
	bus := NewBus(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	received := make([]string, 0, 2)
	done := make(chan struct{}, 2)
	err := bus.Subscribe(ctx, "vote.cast", "results", func(_ context.Context, event ports.EventEnvelope) error {
		mu.Lock()
		received = append(received, event.EventID)
		mu.Unlock()
		done <- struct{}{}
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	for _, id := range []string{"event-1", "event-2"} {
		if err := bus.Publish(ctx, "vote.cast", ports.EventEnvelope{EventID: id, EventType: "vote.cast"}); err != nil {
			t.Fatalf("publish %s failed: %v", id, err)
		}
	}

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for delivery %d", i)
		}
	}
	mu.Lock()
	defer mu.Unlock()
	if len(received) != 2 || received[0] != "event-1" || received[1] != "event-2" {
		t.Fatalf("unexpected delivery order: %v", received)
	}
}

func TestBusIgnoresUnrelatedTopics(t *testing.T) {
	bus := NewBus(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hits := make(chan string, 1)
	if err := bus.Subscribe(ctx, "tally.completed", "results", func(_ context.Context, event ports.EventEnvelope) error {
		hits <- event.EventID
		return nil
	}); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	if err := bus.Publish(ctx, "vote.cast", ports.EventEnvelope{EventID: "event-other"}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if err := bus.Publish(ctx, "tally.completed", ports.EventEnvelope{EventID: "event-match"}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case id := <-hits:
		if id != "event-match" {
			t.Fatalf("expected only the matching topic, got %s", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for delivery")
	}
}
