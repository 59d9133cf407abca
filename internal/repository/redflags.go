package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vetboard/clientvet/internal/models"
)

// RedFlagsRepository handles the client_red_flags table.
type RedFlagsRepository struct {
	pool *pgxpool.Pool
}

// NewRedFlagsRepository creates a new red flags repository.
func NewRedFlagsRepository(pool *pgxpool.Pool) *RedFlagsRepository {
	return &RedFlagsRepository{pool: pool}
}

// ListActive returns the active flags for a client.
// Ordering for the report is the assembler's job, not the query's.
func (r *RedFlagsRepository) ListActive(ctx context.Context, clientID uuid.UUID) ([]models.RedFlag, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, client_id, flag_type, severity, description, detected_at, is_active
		FROM client_red_flags
		WHERE client_id = $1 AND is_active = true
	`, clientID)
	if err != nil {
		return nil, fmt.Errorf("list active red flags: %w", err)
	}
	defer rows.Close()

	var flags []models.RedFlag
	for rows.Next() {
		var f models.RedFlag
		if err := rows.Scan(&f.ID, &f.ClientID, &f.FlagType, &f.Severity, &f.Description, &f.DetectedAt, &f.IsActive); err != nil {
			return nil, fmt.Errorf("scan red flag: %w", err)
		}
		flags = append(flags, f)
	}
	return flags, nil
}

// Create inserts a new flag.
func (r *RedFlagsRepository) Create(ctx context.Context, f *models.RedFlag) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO client_red_flags (client_id, flag_type, severity, description, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, detected_at
	`, f.ClientID, f.FlagType, f.Severity, f.Description, f.IsActive).Scan(&f.ID, &f.DetectedAt)
	if err != nil {
		return fmt.Errorf("create red flag: %w", err)
	}
	return nil
}

// ExistsActive checks whether the client already has an active flag of the given type.
// The enricher uses this to avoid stacking duplicate AI detections.
func (r *RedFlagsRepository) ExistsActive(ctx context.Context, clientID uuid.UUID, flagType string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM client_red_flags
			WHERE client_id = $1 AND flag_type = $2 AND is_active = true
		)
	`, clientID, flagType).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check red flag exists: %w", err)
	}
	return exists, nil
}

// Deactivate marks a flag as resolved.
func (r *RedFlagsRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE client_red_flags SET is_active = false WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("deactivate red flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("deactivate red flag: %s not found", id)
	}
	return nil
}
