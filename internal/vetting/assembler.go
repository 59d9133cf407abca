package vetting

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/vetboard/clientvet/internal/models"
)

// Thresholds for the rule-based strengths and concerns.
// These mirror the platform's vetting guidelines.
const (
	strongSpendThreshold  = 50000
	notableSpendThreshold = 10000
	lowSpendThreshold     = 500
	strongHiresThreshold  = 20
	fewHiresThreshold     = 5
	highRatingThreshold   = 4.5
	lowRatingThreshold    = 3.5
	highHireRateThreshold = 70
	lowHireRateThreshold  = 30
	fastResponseHours     = 6
	slowResponseHours     = 48
)

// Sentiment thresholds for classifying reviews as positive or negative.
const (
	positiveSentiment = 0.3
	negativeSentiment = -0.3
)

// Recommendation sentences per band. The flagged variants are used when
// active high or critical flags downgrade the recommendation; a flagged
// client can never receive the top-band sentence regardless of score.
var (
	recommendations = map[string]string{
		"Excellent": "Excellent client with a strong track record across all signals. Safe to engage.",
		"Good":      "Good client with a solid history. Standard precautions apply.",
		"Fair":      "Fair client with mixed signals. Review the concerns before committing.",
		"Poor":      "Poor client history. Proceed with caution and secure payment terms upfront.",
		"Very Poor": "Very poor client history. Engaging with this client is not recommended.",
	}
	flaggedRecommendations = map[string]string{
		"Good":      "Solid numbers, but active red flags were detected. Verify the flagged issues before engaging.",
		"Fair":      "Fair standing with active red flags. Treat the flagged issues as blockers until resolved.",
		"Poor":      "Poor standing with active red flags. Engaging carries significant risk.",
		"Very Poor": "Active red flags on an already weak profile. Do not engage.",
	}
)

// Assembler builds complete vetting reports. Like the Calculator it is
// stateless, deterministic and safe for concurrent use; the request time is
// passed explicitly so time-relative derivations are reproducible.
type Assembler struct {
	cfg  *ScoringConfig
	calc *Calculator
}

// NewAssembler validates the configuration and returns an assembler.
func NewAssembler(cfg *ScoringConfig) (*Assembler, error) {
	calc, err := NewCalculator(cfg)
	if err != nil {
		return nil, err
	}
	return &Assembler{cfg: cfg, calc: calc}, nil
}

// BuildReport assembles the vetting report for one client.
//
// Reviews are expected to carry any AI-derived signals already and flags to
// include any AI-suggested entries; the assembler never calls a model. Absent
// company research or signals reduce the report, they never fail it. The only
// hard failures are a nil profile and the hires-exceed-postings invariant.
func (a *Assembler) BuildReport(
	profile *models.ClientProfile,
	reviews []models.ClientReview,
	flags []models.RedFlag,
	research *models.CompanyResearch,
	now time.Time,
) (*models.VettingReport, error) {
	score, breakdown, err := a.calc.Calculate(profile, now)
	if err != nil {
		return nil, err
	}

	active := activeFlagsSorted(flags)
	strengths, concerns := a.strengthsAndConcerns(profile, active, now)

	// bound aggregation for pathologically large review sets
	recent := recentReviews(reviews, a.cfg.MaxReviews)

	report := &models.VettingReport{
		ClientID:            profile.ID,
		GeneratedAt:         now,
		TrustScore:          score,
		TrustScoreBreakdown: breakdown,
		Strengths:           strengths,
		Concerns:            concerns,
		RedFlags:            active,
		ReviewsSummary:      summarizeReviews(recent, len(reviews)),
		CommonThemes:        a.commonThemes(recent),
		CompanyResearch:     research,
	}
	report.Recommendation = a.recommend(score, report.HasSevereFlags())

	return report, nil
}

// strengthsAndConcerns evaluates the fixed rule set against the profile.
// Rules are independent; every matching rule contributes exactly one line.
func (a *Assembler) strengthsAndConcerns(p *models.ClientProfile, active []models.RedFlag, now time.Time) ([]string, []string) {
	strengths := []string{}
	concerns := []string{}

	if p.VerifiedPayment {
		strengths = append(strengths, "Verified payment method")
	} else {
		concerns = append(concerns, "Payment method not verified")
	}

	switch {
	case p.TotalSpent >= strongSpendThreshold:
		strengths = append(strengths, fmt.Sprintf("$%s+ total spent", formatAmount(p.TotalSpent)))
	case p.TotalSpent >= notableSpendThreshold:
		strengths = append(strengths, fmt.Sprintf("$%s total spent", formatAmount(p.TotalSpent)))
	case p.TotalSpent < lowSpendThreshold:
		concerns = append(concerns, "Low total spending on platform")
	}

	if p.TotalHires >= strongHiresThreshold {
		strengths = append(strengths, fmt.Sprintf("%d successful hires", p.TotalHires))
	} else if p.TotalHires < fewHiresThreshold {
		concerns = append(concerns, "Few successful hires")
	}

	if p.AverageRating != nil {
		rating := *p.AverageRating
		if rating >= highRatingThreshold {
			strengths = append(strengths, fmt.Sprintf("%.1f/5 average rating", rating))
		} else if rating < lowRatingThreshold {
			concerns = append(concerns, fmt.Sprintf("Low average rating (%.1f/5)", rating))
		}
	}

	if p.AccountCreatedDate != nil {
		days := int(now.Sub(*p.AccountCreatedDate).Hours() / 24)
		years := days / 365
		if years >= 1 {
			plural := ""
			if years >= 2 {
				plural = "s"
			}
			strengths = append(strengths, fmt.Sprintf("Active for %d year%s", years, plural))
		} else if days < 30 {
			concerns = append(concerns, "New account (less than 1 month)")
		}
	}

	if rate := p.EffectiveHireRate(); rate != nil {
		if *rate >= highHireRateThreshold {
			strengths = append(strengths, fmt.Sprintf("%d%% hire rate", int(*rate)))
		} else if *rate < lowHireRateThreshold {
			concerns = append(concerns, fmt.Sprintf("Low hire rate (%d%%)", int(*rate)))
		}
	}

	if p.AverageResponseTimeHours != nil {
		hours := *p.AverageResponseTimeHours
		if hours < fastResponseHours {
			strengths = append(strengths, fmt.Sprintf("Fast response time (%.0fh avg)", hours))
		} else if hours > slowResponseHours {
			concerns = append(concerns, fmt.Sprintf("Slow response time (%.0fh avg)", hours))
		}
	}

	if p.LastActive != nil {
		months := monthsBetween(*p.LastActive, now)
		if months >= a.cfg.StalenessMonths {
			concerns = append(concerns, fmt.Sprintf("Last active %d months ago", months))
		}
	}

	// sparse feedback: an established poster with almost no reviews
	if p.TotalJobsPosted >= 10 && p.ReviewCount < p.TotalJobsPosted/4 {
		concerns = append(concerns, fmt.Sprintf("Only %d reviews across %d posted jobs", p.ReviewCount, p.TotalJobsPosted))
	}

	for _, f := range active {
		if f.Severity.IsSevere() {
			desc := f.Description
			if desc == "" {
				desc = f.FlagType
			}
			concerns = append(concerns, fmt.Sprintf("%s severity flag: %s", string(f.Severity), desc))
		}
	}

	return strengths, concerns
}

// activeFlagsSorted filters to active flags and orders them by severity
// rank descending, ties broken by most recent detection first.
func activeFlagsSorted(flags []models.RedFlag) []models.RedFlag {
	active := []models.RedFlag{}
	for _, f := range flags {
		if f.IsActive {
			active = append(active, f)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		ri, rj := active[i].Severity.Rank(), active[j].Severity.Rank()
		if ri != rj {
			return ri > rj
		}
		return active[i].DetectedAt.After(active[j].DetectedAt)
	})
	return active
}

// recentReviews returns up to limit reviews ordered by review date descending.
// Reviews without a date sort last.
func recentReviews(reviews []models.ClientReview, limit int) []models.ClientReview {
	sorted := make([]models.ClientReview, len(reviews))
	copy(sorted, reviews)
	sort.SliceStable(sorted, func(i, j int) bool {
		di, dj := reviewTime(sorted[i]), reviewTime(sorted[j])
		return di.After(dj)
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

func reviewTime(r models.ClientReview) time.Time {
	if r.ReviewDate != nil {
		return *r.ReviewDate
	}
	return time.Time{}
}

// summarizeReviews aggregates ratings and sentiment. Zero reviews produce a
// well-defined zero summary, never a division by zero. The sentiment mean
// only covers reviews that carry a score.
func summarizeReviews(reviews []models.ClientReview, total int) models.ReviewsSummary {
	summary := models.ReviewsSummary{TotalReviews: total}
	if len(reviews) == 0 {
		return summary
	}

	ratingSum := 0
	sentimentSum := 0.0
	sentimentCount := 0
	for _, r := range reviews {
		ratingSum += r.Rating
		if r.SentimentScore == nil {
			continue
		}
		s := *r.SentimentScore
		sentimentSum += s
		sentimentCount++
		switch {
		case s > positiveSentiment:
			summary.PositiveCount++
		case s < negativeSentiment:
			summary.NegativeCount++
		}
	}
	summary.NeutralCount = len(reviews) - summary.PositiveCount - summary.NegativeCount

	summary.AverageRating = round2(float64(ratingSum) / float64(len(reviews)))
	if sentimentCount > 0 {
		summary.AverageSentiment = round2(sentimentSum / float64(sentimentCount))
	}
	return summary
}

// commonThemes frequency-counts key themes across reviews and returns the
// top-K by descending frequency. Ties keep first-seen order, with reviews
// visited most recent first, so the result is stable across runs.
func (a *Assembler) commonThemes(reviews []models.ClientReview) []string {
	counts := map[string]int{}
	firstSeen := map[string]int{}
	order := 0
	for _, r := range reviews {
		for _, theme := range r.KeyThemes {
			if theme == "" {
				continue
			}
			if _, ok := counts[theme]; !ok {
				firstSeen[theme] = order
				order++
			}
			counts[theme]++
		}
	}

	themes := make([]string, 0, len(counts))
	for theme := range counts {
		themes = append(themes, theme)
	}
	sort.SliceStable(themes, func(i, j int) bool {
		if counts[themes[i]] != counts[themes[j]] {
			return counts[themes[i]] > counts[themes[j]]
		}
		return firstSeen[themes[i]] < firstSeen[themes[j]]
	})

	if len(themes) > a.cfg.TopThemes {
		themes = themes[:a.cfg.TopThemes]
	}
	return themes
}

// recommend maps the score to its band sentence. Severe active flags
// downgrade the recommendation by one band regardless of the numeric score;
// the score itself is reported unchanged so the two can legitimately disagree.
func (a *Assembler) recommend(score int, severe bool) string {
	idx := a.cfg.bandIndex(score)
	if severe && idx < len(a.cfg.Bands)-1 {
		idx++
	}
	label := a.cfg.Bands[idx].Label

	if severe {
		if s, ok := flaggedRecommendations[label]; ok {
			return s
		}
	} else if s, ok := recommendations[label]; ok {
		return s
	}
	// custom band labels fall back to a generic sentence
	return fmt.Sprintf("%s standing (trust score %d/100). Review the full report before engaging.", label, score)
}

// formatAmount renders a dollar amount with thousands separators.
func formatAmount(amount float64) string {
	s := strconv.Itoa(int(amount))
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if neg {
		return "-" + s
	}
	return s
}

func monthsBetween(from, to time.Time) int {
	if to.Before(from) {
		return 0
	}
	return int(to.Sub(from).Hours() / (24 * 30))
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5*sign(v))) / 100
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
