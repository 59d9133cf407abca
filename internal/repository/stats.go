package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DashboardStats contains aggregated vetting statistics for the dashboard.
type DashboardStats struct {
	TotalClients   int     `json:"total_clients"`
	ScoredClients  int     `json:"scored_clients"`
	FlaggedClients int     `json:"flagged_clients"`
	AverageScore   float64 `json:"average_score"`
	ReportsToday   int     `json:"reports_today"`
	ActiveRedFlags int     `json:"active_red_flags"`
	CriticalFlags  int     `json:"critical_flags"`
}

// StatsRepository provides access to aggregate statistics.
type StatsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository creates a new StatsRepository.
func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

// GetStats retrieves aggregated statistics for the dashboard.
func (r *StatsRepository) GetStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}

	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) AS total,
			COUNT(trust_score) AS scored,
			COALESCE(AVG(trust_score), 0) AS avg_score
		FROM clients
	`).Scan(&stats.TotalClients, &stats.ScoredClients, &stats.AverageScore)
	if err != nil {
		return nil, fmt.Errorf("get client stats: %w", err)
	}

	err = r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) AS active,
			COUNT(CASE WHEN severity = 'critical' THEN 1 END) AS critical,
			COUNT(DISTINCT client_id) AS flagged_clients
		FROM client_red_flags
		WHERE is_active = true
	`).Scan(&stats.ActiveRedFlags, &stats.CriticalFlags, &stats.FlaggedClients)
	if err != nil {
		return nil, fmt.Errorf("get red flag stats: %w", err)
	}

	err = r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM vetting_reports WHERE generated_at >= CURRENT_DATE
	`).Scan(&stats.ReportsToday)
	if err != nil {
		return nil, fmt.Errorf("get report stats: %w", err)
	}

	return stats, nil
}
