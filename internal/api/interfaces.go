package api

import (
	"context"

	"github.com/google/uuid"

	"github.com/vetboard/clientvet/internal/models"
	"github.com/vetboard/clientvet/internal/repository"
)

// ClientsRepository defines the interface for client data access.
type ClientsRepository interface {
	List(ctx context.Context, filter repository.ClientFilter) ([]*models.ClientProfile, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.ClientProfile, error)
}

// ReviewsRepository defines the interface for review data access.
type ReviewsRepository interface {
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.ClientReview, error)
}

// FlagsRepository defines the interface for red flag data access.
type FlagsRepository interface {
	ListActive(ctx context.Context, clientID uuid.UUID) ([]models.RedFlag, error)
}

// ResearchRepository defines the interface for company research data access.
type ResearchRepository interface {
	Upsert(ctx context.Context, research *models.CompanyResearch) error
}

// StatsRepository defines the interface for stats data access.
type StatsRepository interface {
	GetStats(ctx context.Context) (*repository.DashboardStats, error)
}

// ReportService defines the interface for vetting report generation.
type ReportService interface {
	GetReport(ctx context.Context, clientID uuid.UUID, refresh bool) (*models.VettingReport, error)
	TrustScore(ctx context.Context, clientID uuid.UUID, refresh bool) (*models.ClientProfile, error)
	DeactivateFlag(ctx context.Context, clientID, flagID uuid.UUID) error
}

// ScoreLabeler maps a numeric trust score onto its recommendation band label.
type ScoreLabeler interface {
	Label(score int) string
}

// HubBroadcaster defines the interface for WebSocket broadcasting.
type HubBroadcaster interface {
	Broadcast(message interface{})
}
