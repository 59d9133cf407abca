package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vetboard/clientvet/internal/models"
)

// ReviewsRepository handles the client_reviews table.
type ReviewsRepository struct {
	pool *pgxpool.Pool
}

// NewReviewsRepository creates a new reviews repository.
func NewReviewsRepository(pool *pgxpool.Pool) *ReviewsRepository {
	return &ReviewsRepository{pool: pool}
}

// ListByClient returns all reviews for a client, most recent first.
func (r *ReviewsRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.ClientReview, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, client_id, freelancer_name, rating, review_text,
		       project_title, project_value, review_date,
		       sentiment_score, key_themes, created_at
		FROM client_reviews
		WHERE client_id = $1
		ORDER BY review_date DESC NULLS LAST, created_at DESC
	`, clientID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []models.ClientReview
	for rows.Next() {
		var rev models.ClientReview
		if err := rows.Scan(
			&rev.ID, &rev.ClientID, &rev.FreelancerName, &rev.Rating, &rev.ReviewText,
			&rev.ProjectTitle, &rev.ProjectValue, &rev.ReviewDate,
			&rev.SentimentScore, &rev.KeyThemes, &rev.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, rev)
	}
	return reviews, nil
}

// UpdateSignals stores AI-derived sentiment and themes on a review.
func (r *ReviewsRepository) UpdateSignals(ctx context.Context, id uuid.UUID, sentiment float64, themes []string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE client_reviews
		SET sentiment_score = $2, key_themes = $3
		WHERE id = $1
	`, id, sentiment, themes)
	if err != nil {
		return fmt.Errorf("update review signals: %w", err)
	}
	return nil
}
