package enricher

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vetboard/clientvet/internal/models"
)

const (
	// cap on reviews fed to the red flag prompt; the most recent carry the signal
	maxDigestReviews = 20
	// cap on review text length inside prompts
	maxDigestChars = 500
)

// LLMClient abstracts the LLM provider
type LLMClient interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ReviewsStore defines the review persistence the enricher needs.
type ReviewsStore interface {
	UpdateSignals(ctx context.Context, id uuid.UUID, sentiment float64, themes []string) error
}

// FlagsStore defines the red flag persistence the enricher needs.
type FlagsStore interface {
	ExistsActive(ctx context.Context, clientID uuid.UUID, flagType string) (bool, error)
	Create(ctx context.Context, f *models.RedFlag) error
}

// Service runs LLM enrichment over reviews and detects review-derived red flags.
// All enrichment is best-effort: a provider failure never fails the caller,
// it just leaves the review unenriched.
type Service struct {
	llm           LLMClient
	reviews       ReviewsStore
	flags         FlagsStore
	signalsPrompt *PromptConfig
	flagsPrompt   *PromptConfig
	log           *zerolog.Logger
}

// NewService creates an enrichment service.
func NewService(
	llm LLMClient,
	reviews ReviewsStore,
	flags FlagsStore,
	signalsPrompt *PromptConfig,
	flagsPrompt *PromptConfig,
	log *zerolog.Logger,
) *Service {
	return &Service{
		llm:           llm,
		reviews:       reviews,
		flags:         flags,
		signalsPrompt: signalsPrompt,
		flagsPrompt:   flagsPrompt,
		log:           log,
	}
}

// reviewSignals is the JSON shape the signals prompt asks the model for.
type reviewSignals struct {
	SentimentScore float64  `json:"sentiment_score"`
	KeyThemes      []string `json:"key_themes"`
}

// EnrichReviews fills in sentiment and themes for reviews that lack them.
// Returns the input slice with enriched copies swapped in; reviews the
// provider failed on are returned unchanged.
func (s *Service) EnrichReviews(ctx context.Context, reviews []models.ClientReview) []models.ClientReview {
	for i := range reviews {
		rev := &reviews[i]
		if !rev.NeedsEnrichment() {
			continue
		}

		signals, err := s.extractSignals(ctx, rev.ReviewText)
		if err != nil {
			s.log.Warn().Err(err).Str("review_id", rev.ID.String()).Msg("review enrichment skipped")
			continue
		}

		if err := s.reviews.UpdateSignals(ctx, rev.ID, signals.SentimentScore, signals.KeyThemes); err != nil {
			s.log.Warn().Err(err).Str("review_id", rev.ID.String()).Msg("failed to persist review signals")
			continue
		}

		score := signals.SentimentScore
		rev.SentimentScore = &score
		rev.KeyThemes = signals.KeyThemes
	}
	return reviews
}

func (s *Service) extractSignals(ctx context.Context, reviewText string) (*reviewSignals, error) {
	userPrompt := s.signalsPrompt.BuildUserPrompt(truncate(reviewText, maxDigestChars))

	raw, err := s.llm.Complete(ctx, s.signalsPrompt.System, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("signals completion: %w", err)
	}

	var signals reviewSignals
	if err := json.Unmarshal([]byte(cleanJSON(raw)), &signals); err != nil {
		return nil, fmt.Errorf("parse signals json: %w", err)
	}

	signals.SentimentScore = clampSentiment(signals.SentimentScore)
	return &signals, nil
}

// flagSuggestion is one element of the JSON array the flags prompt asks for.
type flagSuggestion struct {
	FlagType    string `json:"flag_type"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// DetectFlags asks the LLM for risk indicators in the client's reviews and
// persists new ones. Flags of a type the client already carries active are
// skipped so repeated vetting runs never stack duplicates.
func (s *Service) DetectFlags(ctx context.Context, profile *models.ClientProfile, reviews []models.ClientReview) ([]models.RedFlag, error) {
	if len(reviews) == 0 {
		return nil, nil
	}

	userPrompt := s.flagsPrompt.BuildUserPrompt(clientDigest(profile, reviews))

	raw, err := s.llm.Complete(ctx, s.flagsPrompt.System, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("flags completion: %w", err)
	}

	var suggestions []flagSuggestion
	if err := json.Unmarshal([]byte(cleanJSON(raw)), &suggestions); err != nil {
		return nil, fmt.Errorf("parse flags json: %w", err)
	}

	var created []models.RedFlag
	for _, sug := range suggestions {
		if sug.Description == "" {
			continue
		}

		flagType := sug.FlagType
		if flagType == "" {
			flagType = models.FlagTypeAIDetected
		}

		severity := models.Severity(sug.Severity)
		if !severity.IsValid() {
			severity = models.SeverityMedium
		}

		exists, err := s.flags.ExistsActive(ctx, profile.ID, flagType)
		if err != nil {
			return created, fmt.Errorf("check existing flag: %w", err)
		}
		if exists {
			continue
		}

		flag := models.RedFlag{
			ClientID:    profile.ID,
			FlagType:    flagType,
			Severity:    severity,
			Description: sug.Description,
			IsActive:    true,
		}
		if err := s.flags.Create(ctx, &flag); err != nil {
			return created, fmt.Errorf("create flag: %w", err)
		}
		created = append(created, flag)
	}

	if len(created) > 0 {
		s.log.Info().
			Str("client_id", profile.ID.String()).
			Int("flags", len(created)).
			Msg("red flags detected")
	}
	return created, nil
}

// clientDigest renders the profile and recent reviews as prompt content.
func clientDigest(profile *models.ClientProfile, reviews []models.ClientReview) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Client: %s\n", profile.DisplayName())
	fmt.Fprintf(&b, "Jobs posted: %d, hires: %d, total spent: $%.0f\n",
		profile.TotalJobsPosted, profile.TotalHires, profile.TotalSpent)
	fmt.Fprintf(&b, "Payment verified: %t\n\n", profile.VerifiedPayment)

	n := len(reviews)
	if n > maxDigestReviews {
		n = maxDigestReviews
	}
	for i := 0; i < n; i++ {
		rev := reviews[i]
		fmt.Fprintf(&b, "Review (rating %d/5): %s\n", rev.Rating, truncate(rev.ReviewText, maxDigestChars))
	}

	return b.String()
}

// cleanJSON removes markdown code blocks if present
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func clampSentiment(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
