package models

import (
	"time"

	"github.com/google/uuid"
)

// ClientReview represents a single freelancer review of a client.
// SentimentScore and KeyThemes are produced by the enricher; a review that
// has not been enriched yet carries nil for both.
type ClientReview struct {
	ID       uuid.UUID `json:"id" db:"id"`
	ClientID uuid.UUID `json:"client_id" db:"client_id"`

	FreelancerName *string    `json:"freelancer_name,omitempty" db:"freelancer_name"`
	Rating         int        `json:"rating" db:"rating"` // 1-5
	ReviewText     string     `json:"review_text" db:"review_text"`
	ProjectTitle   *string    `json:"project_title,omitempty" db:"project_title"`
	ProjectValue   *float64   `json:"project_value,omitempty" db:"project_value"`
	ReviewDate     *time.Time `json:"review_date,omitempty" db:"review_date"`

	// ai-derived signals
	SentimentScore *float64 `json:"sentiment_score,omitempty" db:"sentiment_score"` // -1..1
	KeyThemes      []string `json:"key_themes,omitempty" db:"key_themes"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NeedsEnrichment reports whether the review still lacks AI-derived signals.
func (r *ClientReview) NeedsEnrichment() bool {
	return r.ReviewText != "" && (r.SentimentScore == nil || len(r.KeyThemes) == 0)
}
