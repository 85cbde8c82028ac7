package workers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"electora/contexts/election-core/lpv-engine/adapters/memory"
	"electora/contexts/election-core/lpv-engine/ports"
)

type capturePublisher struct {
	topics []string
	events []ports.EventEnvelope
	fail   error
}

func (p *capturePublisher) Publish(_ context.Context, topic string, event ports.EventEnvelope) error {
	if p.fail != nil {
		return p.fail
	}
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

func appendTestEnvelope(t *testing.T, store *memory.Store, eventID string, eventType string, occurredAt time.Time) {
	t.Helper()
	err := store.AppendOutbox(context.Background(), ports.EventEnvelope{
		EventID:       eventID,
		EventType:     eventType,
		SourceService: "lpv-engine",
		OccurredAt:    occurredAt,
		SchemaVersion: 1,
		PartitionKey:  "ballot-1",
		Data:          json.RawMessage(`{}`),
	})
	if err != nil {
		t.Fatalf("append outbox failed: %v", err)
	}
}

func TestOutboxRelayPublishesAndMarks(t *testing.T) {
	store := memory.NewStore()
	base := time.Date(2026, 6, 20, 8, 0, 0, 0, time.UTC)
	appendTestEnvelope(t, store, "event-1", "ballot.issued", base)
	appendTestEnvelope(t, store, "event-2", "vote.cast", base.Add(time.Second))

	publisher := &capturePublisher{}
	relay := OutboxRelay{Outbox: store, Publisher: publisher, Clock: store}
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("relay run failed: %v", err)
	}

	if len(publisher.events) != 2 {
		t.Fatalf("expected 2 published events, got %d", len(publisher.events))
	}
	if publisher.topics[0] != "ballot.issued" || publisher.topics[1] != "vote.cast" {
		t.Fatalf("events must publish in creation order on their type topic, got %v", publisher.topics)
	}

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending rows after relay, got %d", len(pending))
	}
}

func TestOutboxRelayStopsOnPublishFailure(t *testing.T) {
	store := memory.NewStore()
	appendTestEnvelope(t, store, "event-1", "vote.cast", time.Date(2026, 6, 20, 8, 0, 0, 0, time.UTC))

	wantErr := errors.New("broker unavailable")
	relay := OutboxRelay{Outbox: store, Publisher: &capturePublisher{fail: wantErr}, Clock: store}
	if err := relay.RunOnce(context.Background()); !errors.Is(err, wantErr) {
		t.Fatalf("expected publish error, got %v", err)
	}

	// Failed rows stay pending for the next cycle.
	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected the row to stay pending, got %d", len(pending))
	}
}

func TestOutboxRelayNoopOnEmptyOutbox(t *testing.T) {
	store := memory.NewStore()
	publisher := &capturePublisher{}
	relay := OutboxRelay{Outbox: store, Publisher: publisher, Clock: store}
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("relay run failed: %v", err)
	}
	if len(publisher.events) != 0 {
		t.Fatalf("expected no publishes, got %d", len(publisher.events))
	}
}
