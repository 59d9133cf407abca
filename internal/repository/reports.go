package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vetboard/clientvet/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReportRecord is the persisted form of a finished vetting report.
// The report itself is stored as JSON; only the cache key fields are columns.
type ReportRecord struct {
	ClientID    uuid.UUID `gorm:"primaryKey;column:client_id"`
	Payload     []byte    `gorm:"column:payload"`
	TrustScore  int       `gorm:"column:trust_score"`
	GeneratedAt time.Time `gorm:"column:generated_at"`
}

// TableName maps the record onto the vetting_reports table.
func (ReportRecord) TableName() string { return "vetting_reports" }

// ReportsStore caches finished vetting reports with a bounded TTL.
// The engine itself is cache-agnostic; this store is the deployment's cache.
type ReportsStore struct {
	db  *gorm.DB
	ttl time.Duration
}

// NewReportsStore creates a reports store with the given TTL.
func NewReportsStore(db *gorm.DB, ttl time.Duration) *ReportsStore {
	return &ReportsStore{db: db, ttl: ttl}
}

// Migrate creates the backing table. Used by tests and the sqlite dev mode;
// production schemas come from the SQL migrations.
func (s *ReportsStore) Migrate() error {
	return s.db.AutoMigrate(&ReportRecord{})
}

// Get returns a cached report for the client if one exists and is fresh
// relative to now. A stale or missing report returns nil.
func (s *ReportsStore) Get(ctx context.Context, clientID uuid.UUID, now time.Time) (*models.VettingReport, error) {
	var rec ReportRecord
	err := s.db.WithContext(ctx).First(&rec, "client_id = ?", clientID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cached report: %w", err)
	}

	if now.Sub(rec.GeneratedAt) > s.ttl {
		return nil, nil
	}

	var report models.VettingReport
	if err := json.Unmarshal(rec.Payload, &report); err != nil {
		// corrupt cache entry behaves like a miss
		return nil, nil
	}
	return &report, nil
}

// Put stores a finished report, replacing any previous one for the client.
func (s *ReportsStore) Put(ctx context.Context, report *models.VettingReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	rec := ReportRecord{
		ClientID:    report.ClientID,
		Payload:     payload,
		TrustScore:  report.TrustScore,
		GeneratedAt: report.GeneratedAt,
	}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "client_id"}},
			UpdateAll: true,
		}).
		Create(&rec).Error
	if err != nil {
		return fmt.Errorf("store report: %w", err)
	}
	return nil
}

// Invalidate drops the cached report for a client.
func (s *ReportsStore) Invalidate(ctx context.Context, clientID uuid.UUID) error {
	err := s.db.WithContext(ctx).Delete(&ReportRecord{}, "client_id = ?", clientID).Error
	if err != nil {
		return fmt.Errorf("invalidate report: %w", err)
	}
	return nil
}
