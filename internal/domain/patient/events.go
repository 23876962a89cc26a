package patient

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType identifies a record change event.
type EventType string

const (
	EventRecordCreated EventType = "patient.record.created"
	EventRecordUpdated EventType = "patient.record.updated"
	EventRecordDeleted EventType = "patient.record.deleted"
)

// ChangeEvent is the envelope emitted after a successful mutating
// operation. Record carries the post-change snapshot and is nil for
// deletions.
type ChangeEvent struct {
	EventID    string    `json:"event_id"`
	Type       EventType `json:"type"`
	RecordID   string    `json:"record_id"`
	Record     *Record   `json:"record,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher delivers change events to downstream consumers. Publishing is
// best-effort: the store logs and counts failures but never surfaces them
// to the caller of a CRUD operation.
type Publisher interface {
	PublishChange(ctx context.Context, event ChangeEvent) error
}

func newChangeEvent(t EventType, recordID string, snapshot *Record) ChangeEvent {
	return ChangeEvent{
		EventID:    uuid.New().String(),
		Type:       t,
		RecordID:   recordID,
		Record:     snapshot,
		OccurredAt: time.Now().UTC(),
	}
}
