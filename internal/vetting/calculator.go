package vetting

import (
	"math"
	"time"

	"github.com/vetboard/clientvet/internal/models"
)

// scoreFunc derives one factor's raw 0-100 score from a profile.
// now is the request time; scorers never read the wall clock themselves.
type scoreFunc func(cfg *ScoringConfig, p *models.ClientProfile, now time.Time) int

// scorers maps factor names to their derivation rules.
// Adding a factor means adding an entry here and a weight in the config.
var scorers = map[string]scoreFunc{
	FactorAccountAge:          scoreAccountAge,
	FactorPaymentVerification: scorePaymentVerification,
	FactorTotalSpent:          scoreTotalSpent,
	FactorHireRate:            scoreHireRate,
	FactorAverageRating:       scoreAverageRating,
	FactorResponseTime:        scoreResponseTime,
	FactorCompletionRate:      scoreCompletionRate,
}

// Calculator computes bounded trust scores from client profiles.
// It is stateless and safe for concurrent use.
type Calculator struct {
	cfg *ScoringConfig
}

// NewCalculator validates the configuration and returns a calculator.
// Every configured factor must have a known derivation rule.
func NewCalculator(cfg *ScoringConfig) (*Calculator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for _, fw := range cfg.Weights {
		if _, ok := scorers[fw.Name]; !ok {
			return nil, &ConfigError{Field: "weights", Reason: "unknown factor " + fw.Name}
		}
	}
	return &Calculator{cfg: cfg}, nil
}

// Calculate returns the trust score and the per-factor breakdown.
// The breakdown keeps the configured factor order regardless of magnitude so
// consumers can render a stable table. Identical inputs always reproduce
// identical output.
func (c *Calculator) Calculate(p *models.ClientProfile, now time.Time) (int, []models.FactorScore, error) {
	if p == nil {
		return 0, nil, ErrNilProfile
	}
	if p.TotalHires > p.TotalJobsPosted {
		return 0, nil, &InvariantError{Field: "total_hires", Value: p.TotalHires, Limit: p.TotalJobsPosted}
	}

	breakdown := make([]models.FactorScore, 0, len(c.cfg.Weights))
	total := 0.0
	for _, fw := range c.cfg.Weights {
		raw := clampScore(scorers[fw.Name](c.cfg, p, now))
		weighted := float64(raw) * fw.Weight
		total += weighted
		breakdown = append(breakdown, models.FactorScore{
			FactorName:    fw.Name,
			RawScore:      raw,
			Weight:        fw.Weight,
			WeightedScore: weighted,
		})
	}

	score := clampScore(int(math.Round(total)))
	return score, breakdown, nil
}

// Label returns the recommendation band label for a score.
func (c *Calculator) Label(score int) string {
	return c.cfg.Label(score)
}

func clampScore(s int) int {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

// scoreAccountAge scores account longevity on a stepped saturating curve.
// An absent creation date is the highest-risk case and scores 0, not neutral.
func scoreAccountAge(_ *ScoringConfig, p *models.ClientProfile, now time.Time) int {
	if p.AccountCreatedDate == nil {
		return 0
	}
	days := int(now.Sub(*p.AccountCreatedDate).Hours() / 24)
	switch {
	case days < 30:
		return 20
	case days < 90:
		return 40
	case days < 180:
		return 60
	case days < 365:
		return 80
	default:
		return 100
	}
}

func scorePaymentVerification(_ *ScoringConfig, p *models.ClientProfile, _ time.Time) int {
	if p.VerifiedPayment {
		return 100
	}
	return 0
}

// scoreTotalSpent scores platform spend on a stepped saturating curve,
// saturating at $50k.
func scoreTotalSpent(_ *ScoringConfig, p *models.ClientProfile, _ time.Time) int {
	spent := p.TotalSpent
	switch {
	case spent < 500:
		return 20
	case spent < 2000:
		return 40
	case spent < 10000:
		return 60
	case spent < 50000:
		return 80
	default:
		return 100
	}
}

// scoreHireRate uses the hire percentage directly, clamped to [0,100].
// A client with no postings yet has an undefined rate and scores neutral,
// so the lack of history is not punished as a zero.
func scoreHireRate(cfg *ScoringConfig, p *models.ClientProfile, _ time.Time) int {
	rate := p.EffectiveHireRate()
	if rate == nil {
		return cfg.NeutralScore
	}
	return clampScore(int(math.Round(*rate)))
}

// scoreAverageRating converts the 0-5 rating to 0-100.
// No rating with no reviews is neutral; no rating despite reviews scores 0.
func scoreAverageRating(cfg *ScoringConfig, p *models.ClientProfile, _ time.Time) int {
	if p.AverageRating == nil {
		if p.ReviewCount == 0 {
			return cfg.NeutralScore
		}
		return 0
	}
	return clampScore(int(math.Round(*p.AverageRating / 5.0 * 100)))
}

// scoreResponseTime scores responsiveness on an inverse stepped curve:
// faster responses score higher. Absent data is neutral.
func scoreResponseTime(cfg *ScoringConfig, p *models.ClientProfile, _ time.Time) int {
	if p.AverageResponseTimeHours == nil {
		return cfg.NeutralScore
	}
	hours := *p.AverageResponseTimeHours
	switch {
	case hours < 1:
		return 100
	case hours < 6:
		return 80
	case hours < 24:
		return 60
	case hours < 48:
		return 40
	default:
		return 20
	}
}

// scoreCompletionRate scores the hires-to-postings ratio on a stepped curve.
// Without postings the rate is undefined and scores neutral.
func scoreCompletionRate(cfg *ScoringConfig, p *models.ClientProfile, _ time.Time) int {
	if p.TotalJobsPosted == 0 {
		return cfg.NeutralScore
	}
	completion := float64(p.TotalHires) / float64(p.TotalJobsPosted) * 100
	switch {
	case completion >= 90:
		return 100
	case completion >= 70:
		return 80
	case completion >= 50:
		return 60
	case completion >= 30:
		return 40
	default:
		return 20
	}
}
