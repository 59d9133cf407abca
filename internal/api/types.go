package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/vetboard/clientvet/internal/models"
)

// ============================================================================
// Common Types
// ============================================================================

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error   string `json:"error" description:"Error message"`
	Details string `json:"details,omitempty" description:"Additional error details"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string `json:"status" example:"ok" description:"Health status"`
	Version string `json:"version" example:"dev" description:"Application version"`
}

// ============================================================================
// Clients Types
// ============================================================================

// ClientResponse represents a client profile in API responses.
type ClientResponse struct {
	ID                  uuid.UUID  `json:"id" description:"Client unique identifier"`
	ExternalClientID    string     `json:"external_client_id" description:"Platform-side client identifier"`
	Name                *string    `json:"name,omitempty" description:"Contact name"`
	CompanyName         *string    `json:"company_name,omitempty" description:"Company name"`
	Location            *string    `json:"location,omitempty" description:"Client location"`
	AccountCreatedDate  *time.Time `json:"account_created_date,omitempty" description:"When the platform account was created"`
	VerifiedPayment     bool       `json:"verified_payment" description:"Whether the payment method is verified"`
	TotalJobsPosted     int        `json:"total_jobs_posted" description:"Lifetime number of job postings"`
	TotalHires          int        `json:"total_hires" description:"Lifetime number of hires"`
	TotalSpent          float64    `json:"total_spent" description:"Lifetime platform spend in USD"`
	HireRate            *float64   `json:"hire_rate,omitempty" description:"Share of postings that led to a hire, 0-100"`
	AverageRating       *float64   `json:"average_rating,omitempty" description:"Average freelancer rating, 1-5"`
	ReviewCount         int        `json:"review_count" description:"Number of reviews on record"`
	TrustScore          *int       `json:"trust_score,omitempty" description:"Last calculated trust score, 0-100"`
	TrustScoreUpdatedAt *time.Time `json:"trust_score_updated_at,omitempty" description:"When the trust score was last calculated"`
	LastActive          *time.Time `json:"last_active,omitempty" description:"Client's last platform activity"`
	LastUpdated         time.Time  `json:"last_updated" description:"Last profile update timestamp"`
}

// ClientsListResponse contains a paginated list of clients.
type ClientsListResponse struct {
	Clients []ClientResponse `json:"clients" description:"List of clients"`
	Total   int              `json:"total" description:"Total number of matching clients"`
	Page    int              `json:"page" description:"Current page number"`
	Limit   int              `json:"limit" description:"Items per page"`
	Pages   int              `json:"pages" description:"Total number of pages"`
}

// ClientFromModel converts a domain profile into the API shape.
func ClientFromModel(c *models.ClientProfile) ClientResponse {
	return ClientResponse{
		ID:                  c.ID,
		ExternalClientID:    c.ExternalClientID,
		Name:                c.Name,
		CompanyName:         c.CompanyName,
		Location:            c.Location,
		AccountCreatedDate:  c.AccountCreatedDate,
		VerifiedPayment:     c.VerifiedPayment,
		TotalJobsPosted:     c.TotalJobsPosted,
		TotalHires:          c.TotalHires,
		TotalSpent:          c.TotalSpent,
		HireRate:            c.EffectiveHireRate(),
		AverageRating:       c.AverageRating,
		ReviewCount:         c.ReviewCount,
		TrustScore:          c.TrustScore,
		TrustScoreUpdatedAt: c.TrustScoreUpdatedAt,
		LastActive:          c.LastActive,
		LastUpdated:         c.LastUpdated,
	}
}

// ClientsFromModels converts a slice of profiles.
func ClientsFromModels(clients []*models.ClientProfile) []ClientResponse {
	out := make([]ClientResponse, 0, len(clients))
	for _, c := range clients {
		out = append(out, ClientFromModel(c))
	}
	return out
}

// ============================================================================
// Trust Score Types
// ============================================================================

// TrustScoreResponse represents a client's trust score with its breakdown label.
type TrustScoreResponse struct {
	ClientID  uuid.UUID  `json:"client_id" description:"Client unique identifier"`
	Score     int        `json:"score" description:"Trust score, 0-100"`
	Label     string     `json:"label" description:"Recommendation band label for the score"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" description:"When the score was calculated"`
}

// ============================================================================
// Vetting Report Types
// ============================================================================

// VettingReportResponse is the full report in API responses.
type VettingReportResponse struct {
	models.VettingReport
}

// ============================================================================
// Reviews and Red Flags Types
// ============================================================================

// ReviewsListResponse contains a client's reviews.
type ReviewsListResponse struct {
	Reviews []models.ClientReview `json:"reviews" description:"Client reviews, most recent first"`
	Total   int                   `json:"total" description:"Number of reviews"`
}

// RedFlagsListResponse contains a client's active red flags.
type RedFlagsListResponse struct {
	RedFlags []models.RedFlag `json:"red_flags" description:"Active red flags"`
	Total    int              `json:"total" description:"Number of active flags"`
}

// RedFlagDeactivatedResponse confirms a flag was resolved.
type RedFlagDeactivatedResponse struct {
	ClientID uuid.UUID `json:"client_id" description:"Client unique identifier"`
	FlagID   uuid.UUID `json:"flag_id" description:"Deactivated flag identifier"`
	Status   string    `json:"status" example:"deactivated" description:"Operation result"`
}

// ============================================================================
// Company Research Types
// ============================================================================

// ResearchUpsertRequest carries raw company research findings for a client.
// Verification booleans and presence scores are derived server-side.
type ResearchUpsertRequest struct {
	CompanyName               string  `json:"company_name" description:"Company name the research covers"`
	LinkedInURL               *string `json:"linkedin_url,omitempty" description:"LinkedIn company page URL"`
	LinkedInEmployeeCount     *int    `json:"linkedin_employee_count,omitempty" description:"Employee count from LinkedIn"`
	WebsiteURL                *string `json:"website_url,omitempty" description:"Company website URL"`
	TwitterURL                *string `json:"twitter_url,omitempty" description:"Twitter/X profile URL"`
	FacebookURL               *string `json:"facebook_url,omitempty" description:"Facebook page URL"`
	InstagramURL              *string `json:"instagram_url,omitempty" description:"Instagram profile URL"`
	BusinessRegistrationFound bool    `json:"business_registration_found" description:"Whether a business registration was found"`
	RecentNewsCount           int     `json:"recent_news_count" description:"Number of recent news mentions"`
}

// ToModel converts the request into the domain record for a client.
func (r ResearchUpsertRequest) ToModel(clientID uuid.UUID) *models.CompanyResearch {
	return &models.CompanyResearch{
		ClientID:                  clientID,
		CompanyName:               r.CompanyName,
		LinkedInURL:               r.LinkedInURL,
		LinkedInEmployeeCount:     r.LinkedInEmployeeCount,
		WebsiteURL:                r.WebsiteURL,
		TwitterURL:                r.TwitterURL,
		FacebookURL:               r.FacebookURL,
		InstagramURL:              r.InstagramURL,
		BusinessRegistrationFound: r.BusinessRegistrationFound,
		RecentNewsCount:           r.RecentNewsCount,
	}
}
