// Package vetting implements the client trust scoring and vetting report engine.
//
// The package has two components: Calculator turns a client profile into a
// bounded 0-100 trust score with a per-factor breakdown, and Assembler
// composes the score with reviews, red flags and company research into a
// complete vetting report. Both are pure: no I/O, no clocks, no shared state.
package vetting

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Factor names in their fixed breakdown order.
const (
	FactorAccountAge          = "account_age"
	FactorPaymentVerification = "payment_verification"
	FactorTotalSpent          = "total_spent"
	FactorHireRate            = "hire_rate"
	FactorAverageRating       = "average_rating"
	FactorResponseTime        = "response_time"
	FactorCompletionRate      = "completion_rate"
)

// FactorWeight binds one factor to its weight.
// The slice order in ScoringConfig is the breakdown order.
type FactorWeight struct {
	Name   string  `yaml:"name"`
	Weight float64 `yaml:"weight"`
}

// Band maps a minimum trust score to a recommendation label.
// Bands must be ordered by descending Min and the last band must start at 0.
type Band struct {
	Label string `yaml:"label"`
	Min   int    `yaml:"min"`
}

// ScoringConfig is the full tuning surface of the engine.
// It is supplied at construction time; nothing reads ambient state.
type ScoringConfig struct {
	Weights []FactorWeight `yaml:"weights"`
	Bands   []Band         `yaml:"bands"`

	// NeutralScore is the raw score used for a factor whose underlying
	// data is absent, chosen so missing data neither penalizes nor rewards.
	NeutralScore int `yaml:"neutral_score"`

	// StalenessMonths is how long a client may be inactive before the
	// report raises a staleness concern.
	StalenessMonths int `yaml:"staleness_months"`

	// TopThemes caps how many common themes the report carries.
	TopThemes int `yaml:"top_themes"`

	// MaxReviews bounds review aggregation for pathologically large inputs.
	MaxReviews int `yaml:"max_reviews"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() *ScoringConfig {
	return &ScoringConfig{
		Weights: []FactorWeight{
			{Name: FactorAccountAge, Weight: 0.20},
			{Name: FactorPaymentVerification, Weight: 0.15},
			{Name: FactorTotalSpent, Weight: 0.15},
			{Name: FactorHireRate, Weight: 0.15},
			{Name: FactorAverageRating, Weight: 0.20},
			{Name: FactorResponseTime, Weight: 0.10},
			{Name: FactorCompletionRate, Weight: 0.05},
		},
		Bands: []Band{
			{Label: "Excellent", Min: 80},
			{Label: "Good", Min: 60},
			{Label: "Fair", Min: 40},
			{Label: "Poor", Min: 20},
			{Label: "Very Poor", Min: 0},
		},
		NeutralScore:    50,
		StalenessMonths: 6,
		TopThemes:       5,
		MaxReviews:      1000,
	}
}

// LoadConfig reads a scoring configuration from a YAML file.
// Missing optional fields fall back to the defaults; the result is validated.
func LoadConfig(path string) (*ScoringConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scoring config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse scoring config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// weightsEpsilon tolerates floating-point drift when checking the weight sum.
const weightsEpsilon = 1e-9

// Validate checks configuration integrity. Any error here is fatal at startup.
func (c *ScoringConfig) Validate() error {
	if len(c.Weights) == 0 {
		return &ConfigError{Field: "weights", Reason: "at least one factor is required"}
	}

	sum := 0.0
	seen := make(map[string]bool, len(c.Weights))
	for _, fw := range c.Weights {
		if fw.Name == "" {
			return &ConfigError{Field: "weights", Reason: "factor name cannot be empty"}
		}
		if seen[fw.Name] {
			return &ConfigError{Field: "weights", Reason: fmt.Sprintf("duplicate factor %q", fw.Name)}
		}
		seen[fw.Name] = true
		if fw.Weight < 0 || fw.Weight > 1 {
			return &ConfigError{Field: "weights", Reason: fmt.Sprintf("factor %q weight %v out of [0,1]", fw.Name, fw.Weight)}
		}
		sum += fw.Weight
	}
	if math.Abs(sum-1.0) > weightsEpsilon {
		return &ConfigError{Field: "weights", Reason: fmt.Sprintf("must sum to 1.0, got %v", sum)}
	}

	if len(c.Bands) == 0 {
		return &ConfigError{Field: "bands", Reason: "at least one band is required"}
	}
	for i, b := range c.Bands {
		if b.Label == "" {
			return &ConfigError{Field: "bands", Reason: "band label cannot be empty"}
		}
		if i > 0 && b.Min >= c.Bands[i-1].Min {
			return &ConfigError{Field: "bands", Reason: fmt.Sprintf("thresholds must strictly decrease, got %d after %d", b.Min, c.Bands[i-1].Min)}
		}
	}
	if c.Bands[len(c.Bands)-1].Min != 0 {
		return &ConfigError{Field: "bands", Reason: "last band must start at 0"}
	}

	if c.NeutralScore < 0 || c.NeutralScore > 100 {
		return &ConfigError{Field: "neutral_score", Reason: fmt.Sprintf("%d out of [0,100]", c.NeutralScore)}
	}
	if c.StalenessMonths <= 0 {
		return &ConfigError{Field: "staleness_months", Reason: "must be positive"}
	}
	if c.TopThemes <= 0 {
		return &ConfigError{Field: "top_themes", Reason: "must be positive"}
	}
	if c.MaxReviews <= 0 {
		return &ConfigError{Field: "max_reviews", Reason: "must be positive"}
	}

	return nil
}

// bandIndex returns the index of the band a score falls into.
func (c *ScoringConfig) bandIndex(score int) int {
	for i, b := range c.Bands {
		if score >= b.Min {
			return i
		}
	}
	return len(c.Bands) - 1
}

// Label returns the recommendation band label for a trust score.
func (c *ScoringConfig) Label(score int) string {
	return c.Bands[c.bandIndex(score)].Label
}
