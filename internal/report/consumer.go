package report

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vetboard/clientvet/internal/nats"
)

// Consumer re-vets clients when their profiles change.
type Consumer struct {
	client  *nats.Client
	service *Service
	log     *zerolog.Logger
}

// NewConsumer creates a NATS consumer for the report service.
func NewConsumer(client *nats.Client, service *Service, log *zerolog.Logger) *Consumer {
	return &Consumer{
		client:  client,
		service: service,
		log:     log,
	}
}

// Start subscribes to clients.updated and starts processing.
func (c *Consumer) Start(ctx context.Context) error {
	c.log.Info().Msg("starting vetting consumer")
	return c.client.Subscribe(ctx, nats.StreamVetting, "vetting_reporter", nats.SubjectClientsUpdated, c.handleMessage)
}

// handleMessage processes a single clients.updated event.
func (c *Consumer) handleMessage(data []byte) error {
	var event struct {
		ClientID uuid.UUID `json:"client_id"`
	}
	if err := json.Unmarshal(data, &event); err != nil {
		c.log.Error().Err(err).Msg("invalid nats message format, skipping")
		return nil // Ack and move on (poison message)
	}
	if event.ClientID == uuid.Nil {
		c.log.Error().Msg("clients.updated event without client_id, skipping")
		return nil
	}

	c.log.Debug().Str("client_id", event.ClientID.String()).Msg("received client update")

	ctx := context.Background()
	if _, err := c.service.Generate(ctx, event.ClientID); err != nil {
		if errors.Is(err, ErrClientNotFound) {
			// client was deleted between the event and now; nothing to retry
			c.log.Warn().Str("client_id", event.ClientID.String()).Msg("client vanished before vetting")
			return nil
		}
		c.log.Error().Str("client_id", event.ClientID.String()).Err(err).Msg("failed to vet client")
		// Nak and trigger redelivery
		return err
	}

	return nil
}
