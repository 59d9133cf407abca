package models

import (
	"time"

	"github.com/google/uuid"
)

// FactorScore is one row of the trust score breakdown.
type FactorScore struct {
	FactorName    string  `json:"factor_name"`
	RawScore      int     `json:"raw_score"` // 0-100
	Weight        float64 `json:"weight"`    // fraction, all weights sum to 1.0
	WeightedScore float64 `json:"weighted_score"`
}

// ReviewsSummary aggregates a client's reviews.
// AverageSentiment is the mean over reviews that carry a sentiment score;
// reviews without one are excluded from the mean, not counted as zero.
type ReviewsSummary struct {
	TotalReviews     int     `json:"total_reviews"`
	AverageRating    float64 `json:"average_rating"`
	AverageSentiment float64 `json:"average_sentiment"`
	PositiveCount    int     `json:"positive_count"`
	NegativeCount    int     `json:"negative_count"`
	NeutralCount     int     `json:"neutral_count"`
}

// VettingReport is the full composite vetting output for one client.
// It is constructed fresh from current inputs and never mutated afterwards;
// callers may cache it with a bounded TTL.
type VettingReport struct {
	ClientID    uuid.UUID `json:"client_id"`
	GeneratedAt time.Time `json:"generated_at"`

	TrustScore          int           `json:"trust_score"` // 0-100
	TrustScoreBreakdown []FactorScore `json:"trust_score_breakdown"`

	Strengths []string  `json:"strengths"`
	Concerns  []string  `json:"concerns"`
	RedFlags  []RedFlag `json:"red_flags"` // active only, severity desc then recency

	ReviewsSummary ReviewsSummary `json:"reviews_summary"`
	CommonThemes   []string       `json:"common_themes"`

	CompanyResearch *CompanyResearch `json:"company_research,omitempty"`

	Recommendation string `json:"recommendation"`
}

// HasSevereFlags reports whether the report carries any active
// high or critical severity flag.
func (r *VettingReport) HasSevereFlags() bool {
	for _, f := range r.RedFlags {
		if f.Severity.IsSevere() {
			return true
		}
	}
	return false
}
