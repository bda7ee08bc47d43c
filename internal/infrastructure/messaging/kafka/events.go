// Package kafka publishes obligation lifecycle events.  Delivery is
// best-effort: the engine's correctness never depends on the bus, so publish
// failures are logged and dropped.
package kafka

import (
	"encoding/json"
	"time"

	"github.com/complyhq/compliance-engine/pkg/types/common"
)

// Topics carrying engine events.
const (
	TopicObligationEvents = "compliance.obligation.events"
	TopicGenerationRuns   = "compliance.generation.runs"
)

// Event types inside TopicObligationEvents.
const (
	EventObligationGenerated = "obligation.generated"
	EventObligationCompleted = "obligation.completed"
	EventGenerationRun       = "generation.run"
)

// EventEnvelope is the wire format shared by all published events.
type EventEnvelope struct {
	EventID    common.ID       `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

func newEnvelope(eventType string, payload interface{}) (EventEnvelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return EventEnvelope{}, err
	}
	return EventEnvelope{
		EventID:    common.NewID(),
		EventType:  eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    raw,
	}, nil
}
