// Package publisher emits vetting pipeline events to NATS.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	natsio "github.com/nats-io/nats.go"

	"github.com/google/uuid"
	"github.com/vetboard/clientvet/internal/nats"
)

// NATSClient interface to allow mocking
type NATSClient interface {
	Publish(subject string, data []byte) error
}

// VettingCompletedEvent announces a freshly generated vetting report.
type VettingCompletedEvent struct {
	ClientID       uuid.UUID `json:"client_id"`
	TrustScore     int       `json:"trust_score"`
	Recommendation string    `json:"recommendation"`
	RedFlagCount   int       `json:"red_flag_count"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// NATSPublisher publishes vetting events.
type NATSPublisher struct {
	js NATSClient
}

// NewNATSPublisher creates a new publisher
func NewNATSPublisher(conn *natsio.Conn) *NATSPublisher {
	return &NATSPublisher{js: conn}
}

// PublishVettingCompleted publishes a vetting.completed event.
func (p *NATSPublisher) PublishVettingCompleted(ctx context.Context, event VettingCompletedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := p.js.Publish(nats.SubjectVettingCompleted, data); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	return nil
}
