package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vetboard/clientvet/internal/models"
)

// ResearchRepository handles the company_research table (one row per client).
type ResearchRepository struct {
	pool *pgxpool.Pool
}

// NewResearchRepository creates a new research repository.
func NewResearchRepository(pool *pgxpool.Pool) *ResearchRepository {
	return &ResearchRepository{pool: pool}
}

// GetByClient returns the research record for a client, or nil when none exists.
func (r *ResearchRepository) GetByClient(ctx context.Context, clientID uuid.UUID) (*models.CompanyResearch, error) {
	var cr models.CompanyResearch
	err := r.pool.QueryRow(ctx, `
		SELECT id, client_id, company_name,
		       linkedin_url, linkedin_verified, linkedin_employee_count,
		       website_url, website_verified,
		       twitter_url, facebook_url, instagram_url,
		       social_media_presence_score, digital_footprint_score,
		       business_registration_found, recent_news_count, last_updated
		FROM company_research
		WHERE client_id = $1
	`, clientID).Scan(
		&cr.ID, &cr.ClientID, &cr.CompanyName,
		&cr.LinkedInURL, &cr.LinkedInVerified, &cr.LinkedInEmployeeCount,
		&cr.WebsiteURL, &cr.WebsiteVerified,
		&cr.TwitterURL, &cr.FacebookURL, &cr.InstagramURL,
		&cr.SocialMediaPresenceScore, &cr.DigitalFootprintScore,
		&cr.BusinessRegistrationFound, &cr.RecentNewsCount, &cr.LastUpdated,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company research: %w", err)
	}
	return &cr, nil
}

// Upsert creates or replaces the research record for a client.
func (r *ResearchRepository) Upsert(ctx context.Context, cr *models.CompanyResearch) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO company_research (
			client_id, company_name,
			linkedin_url, linkedin_verified, linkedin_employee_count,
			website_url, website_verified,
			twitter_url, facebook_url, instagram_url,
			social_media_presence_score, digital_footprint_score,
			business_registration_found, recent_news_count, last_updated
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW())
		ON CONFLICT (client_id) DO UPDATE SET
			company_name = EXCLUDED.company_name,
			linkedin_url = EXCLUDED.linkedin_url,
			linkedin_verified = EXCLUDED.linkedin_verified,
			linkedin_employee_count = EXCLUDED.linkedin_employee_count,
			website_url = EXCLUDED.website_url,
			website_verified = EXCLUDED.website_verified,
			twitter_url = EXCLUDED.twitter_url,
			facebook_url = EXCLUDED.facebook_url,
			instagram_url = EXCLUDED.instagram_url,
			social_media_presence_score = EXCLUDED.social_media_presence_score,
			digital_footprint_score = EXCLUDED.digital_footprint_score,
			business_registration_found = EXCLUDED.business_registration_found,
			recent_news_count = EXCLUDED.recent_news_count,
			last_updated = NOW()
		RETURNING id, last_updated
	`,
		cr.ClientID, cr.CompanyName,
		cr.LinkedInURL, cr.LinkedInVerified, cr.LinkedInEmployeeCount,
		cr.WebsiteURL, cr.WebsiteVerified,
		cr.TwitterURL, cr.FacebookURL, cr.InstagramURL,
		cr.SocialMediaPresenceScore, cr.DigitalFootprintScore,
		cr.BusinessRegistrationFound, cr.RecentNewsCount,
	).Scan(&cr.ID, &cr.LastUpdated)
	if err != nil {
		return fmt.Errorf("upsert company research: %w", err)
	}
	return nil
}
