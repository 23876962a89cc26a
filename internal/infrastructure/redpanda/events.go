package redpanda

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vitalcare/patient-registry/internal/domain/patient"
)

// ChangePublisher adapts the producer to the record store's Publisher
// interface. Events are keyed by record ID so changes to one record stay
// ordered within a partition.
type ChangePublisher struct {
	producer *Producer
}

// NewChangePublisher wraps a producer.
func NewChangePublisher(p *Producer) *ChangePublisher {
	return &ChangePublisher{producer: p}
}

// PublishChange publishes one change event to the patient events topic.
func (c *ChangePublisher) PublishChange(ctx context.Context, event patient.ChangeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode change event: %w", err)
	}
	return c.producer.ProduceMessage(ctx, TopicPatientEvents, event.RecordID, payload)
}
