package commands

import (
	"encoding/json"
	"time"

	"electora/contexts/election-core/lpv-engine/ports"
)

func newLPVEnvelope(
	eventID string,
	eventType string,
	ballotID string,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	// Command-side events are partitioned by ballot so ballot-scoped
	// consumers observe issue/cast/status in order. Payloads never carry a
	// raw voter id.
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:       eventID,
		EventType:     eventType,
		SourceService: "lpv-engine",
		OccurredAt:    occurredAt.UTC(),
		SchemaVersion: 1,
		PartitionKey:  ballotID,
		Data:          payload,
	}, nil
}
