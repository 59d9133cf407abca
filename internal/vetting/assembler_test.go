package vetting

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vetboard/clientvet/internal/models"
)

func newAssembler(t *testing.T) *Assembler {
	t.Helper()
	a, err := NewAssembler(DefaultConfig())
	require.NoError(t, err)
	return a
}

func review(daysAgo int, rating int, sentiment *float64, themes ...string) models.ClientReview {
	d := testNow.AddDate(0, 0, -daysAgo)
	return models.ClientReview{
		ID:             uuid.New(),
		Rating:         rating,
		ReviewText:     "review text",
		ReviewDate:     &d,
		SentimentScore: sentiment,
		KeyThemes:      themes,
	}
}

func flag(severity models.Severity, daysAgo int, active bool) models.RedFlag {
	return models.RedFlag{
		ID:          uuid.New(),
		FlagType:    "test_flag",
		Severity:    severity,
		Description: "flag description",
		DetectedAt:  testNow.AddDate(0, 0, -daysAgo),
		IsActive:    active,
	}
}

// TestBuildReport_ExcellentClient checks the happy-path scenario.
func TestBuildReport_ExcellentClient(t *testing.T) {
	a := newAssembler(t)
	p := excellentProfile()

	report, err := a.BuildReport(p, nil, nil, nil, testNow)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, report.TrustScore, 75)
	assert.LessOrEqual(t, report.TrustScore, 95)
	assert.Equal(t, recommendations["Excellent"], report.Recommendation, "no flags, score in top band")
	assert.Empty(t, report.Concerns)
	assert.Contains(t, report.Strengths, "Verified payment method")
	assert.Contains(t, report.Strengths, "45 successful hires")
	assert.Contains(t, report.Strengths, "$125,000+ total spent")
	assert.Contains(t, report.Strengths, "4.8/5 average rating")
	assert.Contains(t, report.Strengths, "90% hire rate")
	assert.Len(t, report.TrustScoreBreakdown, 7)
}

// TestBuildReport_CriticalFlagDowngrade checks that an active critical flag
// downgrades the recommendation without touching the numeric score.
func TestBuildReport_CriticalFlagDowngrade(t *testing.T) {
	a := newAssembler(t)
	p := excellentProfile()

	clean, err := a.BuildReport(p, nil, nil, nil, testNow)
	require.NoError(t, err)

	flagged, err := a.BuildReport(p, nil, []models.RedFlag{flag(models.SeverityCritical, 1, true)}, nil, testNow)
	require.NoError(t, err)

	assert.Equal(t, clean.TrustScore, flagged.TrustScore, "numeric score must not change")
	assert.NotEqual(t, recommendations["Excellent"], flagged.Recommendation)
	assert.NotContains(t, flagged.Recommendation, "Safe to engage")
	require.Len(t, flagged.RedFlags, 1)
	assert.Equal(t, models.SeverityCritical, flagged.RedFlags[0].Severity)
	// the severe flag also contributes a concern line
	assert.NotEmpty(t, flagged.Concerns)
}

// TestBuildReport_FlagOrdering checks severity-desc, recency-desc ordering
// and that inactive flags are dropped.
func TestBuildReport_FlagOrdering(t *testing.T) {
	a := newAssembler(t)

	flags := []models.RedFlag{
		flag(models.SeverityLow, 1, true),
		flag(models.SeverityHigh, 10, true),
		flag(models.SeverityCritical, 30, false), // inactive, must not appear
		flag(models.SeverityHigh, 2, true),
		flag(models.SeverityMedium, 5, true),
		flag(models.SeverityCritical, 20, true),
	}

	report, err := a.BuildReport(excellentProfile(), nil, flags, nil, testNow)
	require.NoError(t, err)

	require.Len(t, report.RedFlags, 5)
	assert.Equal(t, models.SeverityCritical, report.RedFlags[0].Severity)
	assert.Equal(t, models.SeverityHigh, report.RedFlags[1].Severity)
	assert.Equal(t, models.SeverityHigh, report.RedFlags[2].Severity)
	assert.Equal(t, models.SeverityMedium, report.RedFlags[3].Severity)
	assert.Equal(t, models.SeverityLow, report.RedFlags[4].Severity)
	// within equal severity, most recent detection first
	assert.True(t, report.RedFlags[1].DetectedAt.After(report.RedFlags[2].DetectedAt))
}

// TestBuildReport_ZeroReviews checks the degenerate zero-review case.
func TestBuildReport_ZeroReviews(t *testing.T) {
	a := newAssembler(t)

	report, err := a.BuildReport(excellentProfile(), []models.ClientReview{}, nil, nil, testNow)
	require.NoError(t, err)

	assert.Equal(t, 0, report.ReviewsSummary.TotalReviews)
	assert.Zero(t, report.ReviewsSummary.AverageRating)
	assert.Zero(t, report.ReviewsSummary.AverageSentiment)
	assert.Empty(t, report.CommonThemes)
}

// TestBuildReport_SentimentExcludesUnscored checks reviews without a
// sentiment score are excluded from the mean, not treated as zero.
func TestBuildReport_SentimentExcludesUnscored(t *testing.T) {
	a := newAssembler(t)

	reviews := []models.ClientReview{
		review(1, 5, floatPtr(0.8)),
		review(2, 4, floatPtr(0.4)),
		review(3, 3, nil), // unscored, excluded from the mean
		review(4, 1, floatPtr(-0.6)),
	}

	report, err := a.BuildReport(excellentProfile(), reviews, nil, nil, testNow)
	require.NoError(t, err)

	summary := report.ReviewsSummary
	assert.Equal(t, 4, summary.TotalReviews)
	assert.InDelta(t, 3.25, summary.AverageRating, 0.001)
	// (0.8 + 0.4 - 0.6) / 3, not / 4
	assert.InDelta(t, 0.2, summary.AverageSentiment, 0.001)
	assert.Equal(t, 2, summary.PositiveCount)
	assert.Equal(t, 1, summary.NegativeCount)
	assert.Equal(t, 1, summary.NeutralCount)
}

// TestBuildReport_CommonThemes checks frequency ranking, the top-K cap and
// the first-seen tie-break over date-descending reviews.
func TestBuildReport_CommonThemes(t *testing.T) {
	a := newAssembler(t)

	reviews := []models.ClientReview{
		review(30, 5, nil, "slow payment", "clear specs"),
		review(1, 5, nil, "great communication", "clear specs"),
		review(10, 4, nil, "great communication", "fair budget"),
		review(5, 4, nil, "great communication"),
	}

	report, err := a.BuildReport(excellentProfile(), reviews, nil, nil, testNow)
	require.NoError(t, err)

	require.NotEmpty(t, report.CommonThemes)
	assert.Equal(t, "great communication", report.CommonThemes[0], "highest frequency first")
	// clear specs (2) beats the singles; among singles, fair budget was first
	// seen in a more recent review than slow payment
	assert.Equal(t, []string{"great communication", "clear specs", "fair budget", "slow payment"}, report.CommonThemes)
}

// TestBuildReport_ThemesTopK checks the configured cap is honored.
func TestBuildReport_ThemesTopK(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TopThemes = 2
	a, err := NewAssembler(cfg)
	require.NoError(t, err)

	reviews := []models.ClientReview{
		review(1, 5, nil, "a", "b", "c", "d", "e"),
	}
	report, err := a.BuildReport(excellentProfile(), reviews, nil, nil, testNow)
	require.NoError(t, err)

	assert.Len(t, report.CommonThemes, 2)
}

// TestBuildReport_CompanyResearchPassthrough checks the snapshot is attached
// unchanged when present and omitted when absent.
func TestBuildReport_CompanyResearchPassthrough(t *testing.T) {
	a := newAssembler(t)

	research := &models.CompanyResearch{
		ID:                       uuid.New(),
		CompanyName:              "Acme Corp",
		LinkedInVerified:         true,
		WebsiteVerified:          true,
		SocialMediaPresenceScore: 65,
		DigitalFootprintScore:    70,
	}

	withResearch, err := a.BuildReport(excellentProfile(), nil, nil, research, testNow)
	require.NoError(t, err)
	assert.Equal(t, research, withResearch.CompanyResearch)

	withoutResearch, err := a.BuildReport(excellentProfile(), nil, nil, nil, testNow)
	require.NoError(t, err)
	assert.Nil(t, withoutResearch.CompanyResearch)
}

// TestBuildReport_Deterministic checks repeated assembly with the same
// inputs and request time serializes byte-identically.
func TestBuildReport_Deterministic(t *testing.T) {
	a := newAssembler(t)

	p := excellentProfile()
	reviews := []models.ClientReview{
		review(1, 5, floatPtr(0.9), "great communication"),
		review(7, 4, floatPtr(0.2), "fair budget", "great communication"),
	}
	flags := []models.RedFlag{flag(models.SeverityMedium, 3, true)}

	first, err := a.BuildReport(p, reviews, flags, nil, testNow)
	require.NoError(t, err)
	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		next, err := a.BuildReport(p, reviews, flags, nil, testNow)
		require.NoError(t, err)
		nextJSON, err := json.Marshal(next)
		require.NoError(t, err)
		assert.Equal(t, string(firstJSON), string(nextJSON))
	}
}

// TestBuildReport_StalenessConcern checks inactivity raises a concern based
// on the request time, not the wall clock.
func TestBuildReport_StalenessConcern(t *testing.T) {
	a := newAssembler(t)

	p := excellentProfile()
	p.LastActive = timePtr(testNow.AddDate(0, -8, 0))

	report, err := a.BuildReport(p, nil, nil, nil, testNow)
	require.NoError(t, err)

	require.Len(t, report.Concerns, 1)
	assert.Contains(t, report.Concerns[0], "Last active")
}

// TestBuildReport_ConcernRules exercises the negative rule set.
func TestBuildReport_ConcernRules(t *testing.T) {
	a := newAssembler(t)

	created := testNow.AddDate(0, 0, -10)
	p := &models.ClientProfile{
		ID:                 uuid.New(),
		VerifiedPayment:    false,
		TotalSpent:         100,
		TotalHires:         1,
		TotalJobsPosted:    20,
		ReviewCount:        1,
		AverageRating:      floatPtr(2.8),
		AccountCreatedDate: &created,
		HireRate:           floatPtr(5),
	}

	report, err := a.BuildReport(p, nil, nil, nil, testNow)
	require.NoError(t, err)

	assert.Contains(t, report.Concerns, "Payment method not verified")
	assert.Contains(t, report.Concerns, "Low total spending on platform")
	assert.Contains(t, report.Concerns, "Few successful hires")
	assert.Contains(t, report.Concerns, "Low average rating (2.8/5)")
	assert.Contains(t, report.Concerns, "New account (less than 1 month)")
	assert.Contains(t, report.Concerns, "Low hire rate (5%)")
	assert.Contains(t, report.Concerns, "Only 1 reviews across 20 posted jobs")
	assert.Empty(t, report.Strengths)
}

// TestBuildReport_BottomBandWithFlags checks the downgrade rule at the
// bottom band keeps the flagged wording.
func TestBuildReport_BottomBandWithFlags(t *testing.T) {
	a := newAssembler(t)

	p := &models.ClientProfile{ID: uuid.New()}
	report, err := a.BuildReport(p, nil, []models.RedFlag{flag(models.SeverityCritical, 1, true)}, nil, testNow)
	require.NoError(t, err)

	assert.NotEqual(t, recommendations["Excellent"], report.Recommendation)
	assert.Contains(t, []string{
		flaggedRecommendations["Poor"],
		flaggedRecommendations["Very Poor"],
		flaggedRecommendations["Fair"],
	}, report.Recommendation)
}

// TestBuildReport_NilProfile checks a missing profile is the one hard failure.
func TestBuildReport_NilProfile(t *testing.T) {
	a := newAssembler(t)

	_, err := a.BuildReport(nil, nil, nil, nil, testNow)
	assert.ErrorIs(t, err, ErrNilProfile)
}

// TestBuildReport_InvariantPropagates checks calculator errors surface.
func TestBuildReport_InvariantPropagates(t *testing.T) {
	a := newAssembler(t)

	p := &models.ClientProfile{TotalJobsPosted: 1, TotalHires: 2}
	_, err := a.BuildReport(p, nil, nil, nil, testNow)
	require.Error(t, err)

	var inv *InvariantError
	assert.ErrorAs(t, err, &inv)
}
