// Package repository provides postgresql data access for the vetting domain.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vetboard/clientvet/internal/models"
)

const clientColumns = `
	id, platform_id, external_client_id, name, company_name, profile_url, location,
	account_created_date, verified_payment, last_active,
	total_jobs_posted, total_hires, total_spent, hire_rate,
	average_rating, review_count, average_response_time_hours,
	trust_score, trust_score_updated_at, scraped_at, last_updated`

// ClientFilter narrows client listings.
type ClientFilter struct {
	MinScore int    // 0 disables the filter
	Flagged  bool   // only clients with active red flags
	Query    string // substring match on name/company
	Page     int
	Limit    int
}

// ClientsRepository handles the clients table.
type ClientsRepository struct {
	pool *pgxpool.Pool
}

// NewClientsRepository creates a new clients repository.
func NewClientsRepository(pool *pgxpool.Pool) *ClientsRepository {
	return &ClientsRepository{pool: pool}
}

// GetByID returns a client profile, or nil when not found.
func (r *ClientsRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ClientProfile, error) {
	row := r.pool.QueryRow(ctx, `SELECT`+clientColumns+` FROM clients WHERE id = $1`, id)
	c, err := scanClient(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get client by id: %w", err)
	}
	return c, nil
}

// List returns clients matching the filter plus the total match count.
func (r *ClientsRepository) List(ctx context.Context, filter ClientFilter) ([]*models.ClientProfile, int, error) {
	where := `WHERE 1=1`
	args := []any{}
	n := 0

	if filter.MinScore > 0 {
		n++
		where += fmt.Sprintf(" AND trust_score >= $%d", n)
		args = append(args, filter.MinScore)
	}
	if filter.Flagged {
		where += ` AND EXISTS (SELECT 1 FROM client_red_flags f WHERE f.client_id = clients.id AND f.is_active = true)`
	}
	if filter.Query != "" {
		n++
		where += fmt.Sprintf(" AND (name ILIKE $%d OR company_name ILIKE $%d)", n, n)
		args = append(args, "%"+filter.Query+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM clients `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count clients: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}
	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT%s FROM clients %s ORDER BY last_updated DESC LIMIT $%d OFFSET $%d`,
		clientColumns, where, n+1, n+2)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var clients []*models.ClientProfile
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, total, nil
}

// UpdateTrustScore persists a freshly calculated score with its timestamp.
func (r *ClientsRepository) UpdateTrustScore(ctx context.Context, id uuid.UUID, score int, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE clients
		SET trust_score = $2, trust_score_updated_at = $3, last_updated = NOW()
		WHERE id = $1
	`, id, score, at)
	if err != nil {
		return fmt.Errorf("update trust score: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update trust score: client %s not found", id)
	}
	return nil
}

func scanClient(row pgx.Row) (*models.ClientProfile, error) {
	var c models.ClientProfile
	err := row.Scan(
		&c.ID, &c.PlatformID, &c.ExternalClientID, &c.Name, &c.CompanyName, &c.ProfileURL, &c.Location,
		&c.AccountCreatedDate, &c.VerifiedPayment, &c.LastActive,
		&c.TotalJobsPosted, &c.TotalHires, &c.TotalSpent, &c.HireRate,
		&c.AverageRating, &c.ReviewCount, &c.AverageResponseTimeHours,
		&c.TrustScore, &c.TrustScoreUpdatedAt, &c.ScrapedAt, &c.LastUpdated,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
