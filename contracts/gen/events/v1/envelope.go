package v1

import (
	"encoding/json"
	"fmt"
	"time"
)

// SchemaVersion is bumped only on breaking changes to an event payload.
const SchemaVersion = 1

// Envelope is the canonical, versioned event envelope shared by the API and
// worker processes. This package must stay backward compatible.
type Envelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	OccurredAt       time.Time       `json:"occurred_at"`
	SourceService    string          `json:"source_service"`
	TraceID          string          `json:"trace_id"`
	SchemaVersion    int             `json:"schema_version"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	Data             json.RawMessage `json:"data"`
}

// NewEnvelope marshals data and wraps it. The partition key is the tenant or
// subject id that consumers use for ordering.
func NewEnvelope(eventID string, eventType string, source string, partitionKey string, occurredAt time.Time, data any) (Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Envelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    source,
		SchemaVersion:    SchemaVersion,
		PartitionKeyPath: "data.tenant_id",
		PartitionKey:     partitionKey,
		Data:             raw,
	}, nil
}

// Decode unmarshals the payload into out.
func (e Envelope) Decode(out any) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("event %s has no payload", e.EventID)
	}
	return json.Unmarshal(e.Data, out)
}
