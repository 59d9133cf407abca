package api

import (
	"github.com/google/uuid"
)

// WebSocket event types
const (
	EventVettingCompleted  = "vetting.completed"
	EventTrustScoreUpdated = "trust_score.updated"
)

// WSEvent represents a structured WebSocket message
type WSEvent struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// VettingCompletedPayload is the payload for EventVettingCompleted
type VettingCompletedPayload struct {
	ClientID       string `json:"client_id"`
	TrustScore     int    `json:"trust_score"`
	Recommendation string `json:"recommendation"`
}

// TrustScoreUpdatedPayload is the payload for EventTrustScoreUpdated
type TrustScoreUpdatedPayload struct {
	ClientID string `json:"client_id"`
	Score    int    `json:"score"`
	Label    string `json:"label"`
}

// VettingCompletedEvent creates a message announcing a finished vetting run.
func VettingCompletedEvent(clientID uuid.UUID, score int, recommendation string) WSEvent {
	return WSEvent{
		Type: EventVettingCompleted,
		Payload: VettingCompletedPayload{
			ClientID:       clientID.String(),
			TrustScore:     score,
			Recommendation: recommendation,
		},
	}
}

// TrustScoreUpdatedEvent creates a message announcing a recalculated score.
func TrustScoreUpdatedEvent(clientID uuid.UUID, score int, label string) WSEvent {
	return WSEvent{
		Type: EventTrustScoreUpdated,
		Payload: TrustScoreUpdatedPayload{
			ClientID: clientID.String(),
			Score:    score,
			Label:    label,
		},
	}
}
