// Package report orchestrates vetting report generation: it loads the
// client's data, runs best-effort enrichment, assembles the report and
// fans the result out to persistence and the event stream.
package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vetboard/clientvet/internal/models"
	"github.com/vetboard/clientvet/internal/publisher"
	"github.com/vetboard/clientvet/internal/vetting"
)

// ErrClientNotFound is returned when no client exists for the requested id.
var ErrClientNotFound = errors.New("client not found")

// ClientsStore defines the client persistence the service needs.
type ClientsStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.ClientProfile, error)
	UpdateTrustScore(ctx context.Context, id uuid.UUID, score int, at time.Time) error
}

// ReviewsStore defines review access.
type ReviewsStore interface {
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.ClientReview, error)
}

// FlagsStore defines red flag access.
type FlagsStore interface {
	ListActive(ctx context.Context, clientID uuid.UUID) ([]models.RedFlag, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

// ResearchStore defines company research access.
type ResearchStore interface {
	GetByClient(ctx context.Context, clientID uuid.UUID) (*models.CompanyResearch, error)
}

// ReportsCache caches finished reports with a TTL.
type ReportsCache interface {
	Get(ctx context.Context, clientID uuid.UUID, now time.Time) (*models.VettingReport, error)
	Put(ctx context.Context, report *models.VettingReport) error
	Invalidate(ctx context.Context, clientID uuid.UUID) error
}

// Enricher runs LLM enrichment. Both operations are best-effort from the
// service's point of view; their absence degrades the report, never fails it.
type Enricher interface {
	EnrichReviews(ctx context.Context, reviews []models.ClientReview) []models.ClientReview
	DetectFlags(ctx context.Context, profile *models.ClientProfile, reviews []models.ClientReview) ([]models.RedFlag, error)
}

// EventPublisher announces finished reports.
type EventPublisher interface {
	PublishVettingCompleted(ctx context.Context, event publisher.VettingCompletedEvent) error
}

// Service generates vetting reports.
type Service struct {
	clients   ClientsStore
	reviews   ReviewsStore
	flags     FlagsStore
	research  ResearchStore
	cache     ReportsCache
	enricher  Enricher
	events    EventPublisher
	assembler *vetting.Assembler
	log       *zerolog.Logger

	// injectable clock; reports are deterministic given now
	now func() time.Time
}

// NewService creates a report service. enricher, events and cache may be nil;
// the service degrades gracefully without them.
func NewService(
	clients ClientsStore,
	reviews ReviewsStore,
	flags FlagsStore,
	research ResearchStore,
	cache ReportsCache,
	enricher Enricher,
	events EventPublisher,
	assembler *vetting.Assembler,
	log *zerolog.Logger,
) *Service {
	return &Service{
		clients:   clients,
		reviews:   reviews,
		flags:     flags,
		research:  research,
		cache:     cache,
		enricher:  enricher,
		events:    events,
		assembler: assembler,
		log:       log,
		now:       time.Now,
	}
}

// GetReport returns the vetting report for a client, serving a cached copy
// when one is fresh. Set refresh to bypass the cache.
func (s *Service) GetReport(ctx context.Context, clientID uuid.UUID, refresh bool) (*models.VettingReport, error) {
	if !refresh && s.cache != nil {
		cached, err := s.cache.Get(ctx, clientID, s.now())
		if err != nil {
			s.log.Warn().Err(err).Str("client_id", clientID.String()).Msg("report cache lookup failed")
		} else if cached != nil {
			return cached, nil
		}
	}
	return s.Generate(ctx, clientID)
}

// Generate builds a fresh vetting report and fans it out: the trust score is
// persisted on the client, the report is cached and a vetting.completed
// event is published.
func (s *Service) Generate(ctx context.Context, clientID uuid.UUID) (*models.VettingReport, error) {
	profile, err := s.clients.GetByID(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("load client: %w", err)
	}
	if profile == nil {
		return nil, ErrClientNotFound
	}

	reviews, err := s.reviews.ListByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("load reviews: %w", err)
	}

	if s.enricher != nil {
		reviews = s.enricher.EnrichReviews(ctx, reviews)
		if _, err := s.enricher.DetectFlags(ctx, profile, reviews); err != nil {
			// detection feeds the flag table; a failure only means this run
			// sees whatever flags already exist
			s.log.Warn().Err(err).Str("client_id", clientID.String()).Msg("red flag detection failed")
		}
	}

	flags, err := s.flags.ListActive(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("load red flags: %w", err)
	}

	research, err := s.research.GetByClient(ctx, clientID)
	if err != nil {
		s.log.Warn().Err(err).Str("client_id", clientID.String()).Msg("company research lookup failed")
		research = nil
	}

	report, err := s.assembler.BuildReport(profile, reviews, flags, research, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("build report: %w", err)
	}

	if err := s.clients.UpdateTrustScore(ctx, clientID, report.TrustScore, report.GeneratedAt); err != nil {
		return nil, fmt.Errorf("persist trust score: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Put(ctx, report); err != nil {
			s.log.Warn().Err(err).Str("client_id", clientID.String()).Msg("failed to cache report")
		}
	}

	if s.events != nil {
		event := publisher.VettingCompletedEvent{
			ClientID:       report.ClientID,
			TrustScore:     report.TrustScore,
			Recommendation: report.Recommendation,
			RedFlagCount:   len(report.RedFlags),
			GeneratedAt:    report.GeneratedAt,
		}
		if err := s.events.PublishVettingCompleted(ctx, event); err != nil {
			s.log.Warn().Err(err).Str("client_id", clientID.String()).Msg("failed to publish vetting event")
		}
	}

	s.log.Info().
		Str("client_id", clientID.String()).
		Int("trust_score", report.TrustScore).
		Int("red_flags", len(report.RedFlags)).
		Msg("vetting report generated")

	return report, nil
}

// DeactivateFlag resolves a red flag and drops the client's cached report,
// since the flag set feeds both the concerns and the recommendation.
func (s *Service) DeactivateFlag(ctx context.Context, clientID, flagID uuid.UUID) error {
	if err := s.flags.Deactivate(ctx, flagID); err != nil {
		return fmt.Errorf("deactivate flag: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, clientID); err != nil {
			s.log.Warn().Err(err).Str("client_id", clientID.String()).Msg("failed to invalidate cached report")
		}
	}
	return nil
}

// TrustScore recalculates just the trust score for a client without
// assembling the full report.
func (s *Service) TrustScore(ctx context.Context, clientID uuid.UUID, refresh bool) (*models.ClientProfile, error) {
	profile, err := s.clients.GetByID(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("load client: %w", err)
	}
	if profile == nil {
		return nil, ErrClientNotFound
	}

	if !refresh && profile.TrustScore != nil {
		return profile, nil
	}

	report, err := s.Generate(ctx, clientID)
	if err != nil {
		return nil, err
	}

	profile.TrustScore = &report.TrustScore
	profile.TrustScoreUpdatedAt = &report.GeneratedAt
	return profile, nil
}
