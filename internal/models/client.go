// Package models contains the domain records shared across services.
package models

import (
	"time"

	"github.com/google/uuid"
)

// ClientProfile represents a snapshot of a freelance-platform client.
// Optional fields are pointers; scoring degrades gracefully when they are nil.
type ClientProfile struct {
	ID         uuid.UUID `json:"id" db:"id"`
	PlatformID uuid.UUID `json:"platform_id" db:"platform_id"`

	// identification
	ExternalClientID string  `json:"external_client_id" db:"external_client_id"`
	Name             *string `json:"name,omitempty" db:"name"`
	CompanyName      *string `json:"company_name,omitempty" db:"company_name"`
	ProfileURL       *string `json:"profile_url,omitempty" db:"profile_url"`
	Location         *string `json:"location,omitempty" db:"location"`

	// account metadata
	AccountCreatedDate *time.Time `json:"account_created_date,omitempty" db:"account_created_date"`
	VerifiedPayment    bool       `json:"verified_payment" db:"verified_payment"`
	LastActive         *time.Time `json:"last_active,omitempty" db:"last_active"`

	// hiring history
	TotalJobsPosted int      `json:"total_jobs_posted" db:"total_jobs_posted"`
	TotalHires      int      `json:"total_hires" db:"total_hires"`
	TotalSpent      float64  `json:"total_spent" db:"total_spent"`
	HireRate        *float64 `json:"hire_rate,omitempty" db:"hire_rate"`

	// reputation
	AverageRating            *float64 `json:"average_rating,omitempty" db:"average_rating"`
	ReviewCount              int      `json:"review_count" db:"review_count"`
	AverageResponseTimeHours *float64 `json:"average_response_time_hours,omitempty" db:"average_response_time_hours"`

	// derived score (persisted so list views can filter without recomputing)
	TrustScore          *int       `json:"trust_score,omitempty" db:"trust_score"`
	TrustScoreUpdatedAt *time.Time `json:"trust_score_updated_at,omitempty" db:"trust_score_updated_at"`

	// timestamps
	ScrapedAt   time.Time `json:"scraped_at" db:"scraped_at"`
	LastUpdated time.Time `json:"last_updated" db:"last_updated"`
}

// EffectiveHireRate returns the stored hire rate, deriving it from the
// hiring history when absent. Returns nil when no jobs were ever posted.
func (c *ClientProfile) EffectiveHireRate() *float64 {
	if c.HireRate != nil {
		return c.HireRate
	}
	if c.TotalJobsPosted > 0 {
		rate := float64(c.TotalHires) / float64(c.TotalJobsPosted) * 100
		return &rate
	}
	return nil
}

// DisplayName returns the company name if set, falling back to the
// contact name and finally the external id.
func (c *ClientProfile) DisplayName() string {
	if c.CompanyName != nil && *c.CompanyName != "" {
		return *c.CompanyName
	}
	if c.Name != nil && *c.Name != "" {
		return *c.Name
	}
	return c.ExternalClientID
}
