package models

import (
	"time"

	"github.com/google/uuid"
)

// Severity classifies how serious a red flag is.
type Severity string

// Severity levels, ordered from least to most serious.
const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank returns a sortable rank for the severity. Higher is more serious.
// Unknown severities rank below low so malformed data never outranks real flags.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// IsValid reports whether the severity is one of the known levels.
func (s Severity) IsValid() bool {
	return s.Rank() > 0
}

// IsSevere reports whether the severity is high or critical.
// Severe flags downgrade the report recommendation.
func (s Severity) IsSevere() bool {
	return s == SeverityHigh || s == SeverityCritical
}

// FlagTypeAIDetected marks flags contributed by the enricher rather than
// platform rules or manual review.
const FlagTypeAIDetected = "ai_detected"

// RedFlag is a discrete risk indicator attached to a client,
// independent of the numeric trust score.
type RedFlag struct {
	ID       uuid.UUID `json:"id" db:"id"`
	ClientID uuid.UUID `json:"client_id" db:"client_id"`

	// FlagType is an open enum: "new_account", "off_platform_payment_request",
	// "unrealistic_budget", "ai_detected", ...
	FlagType    string   `json:"flag_type" db:"flag_type"`
	Severity    Severity `json:"severity" db:"severity"`
	Description string   `json:"description" db:"description"`

	DetectedAt time.Time `json:"detected_at" db:"detected_at"`
	IsActive   bool      `json:"is_active" db:"is_active"`
}
