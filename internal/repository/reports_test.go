package repository

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vetboard/clientvet/internal/models"
)

func setupReportsStore(t *testing.T, ttl time.Duration) *ReportsStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	store := NewReportsStore(db, ttl)
	require.NoError(t, store.Migrate())
	return store
}

func sampleReport(clientID uuid.UUID, generatedAt time.Time) *models.VettingReport {
	return &models.VettingReport{
		ClientID:    clientID,
		GeneratedAt: generatedAt,
		TrustScore:  78,
		TrustScoreBreakdown: []models.FactorScore{
			{FactorName: "account_age", RawScore: 100, Weight: 0.20, WeightedScore: 20},
		},
		Strengths:      []string{"Verified payment method"},
		Concerns:       []string{},
		RedFlags:       []models.RedFlag{},
		CommonThemes:   []string{"great communication"},
		Recommendation: "Excellent client - highly recommended for collaboration",
	}
}

func TestReportsStore_PutAndGet(t *testing.T) {
	store := setupReportsStore(t, 24*time.Hour)
	ctx := context.Background()

	clientID := uuid.New()
	generatedAt := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	report := sampleReport(clientID, generatedAt)

	require.NoError(t, store.Put(ctx, report))

	got, err := store.Get(ctx, clientID, generatedAt.Add(time.Hour))
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, clientID, got.ClientID)
	assert.Equal(t, 78, got.TrustScore)
	assert.Equal(t, report.TrustScoreBreakdown, got.TrustScoreBreakdown)
	assert.Equal(t, report.Recommendation, got.Recommendation)
}

func TestReportsStore_GetMissing(t *testing.T) {
	store := setupReportsStore(t, 24*time.Hour)

	got, err := store.Get(context.Background(), uuid.New(), time.Now())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReportsStore_GetStale(t *testing.T) {
	store := setupReportsStore(t, 24*time.Hour)
	ctx := context.Background()

	clientID := uuid.New()
	generatedAt := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.Put(ctx, sampleReport(clientID, generatedAt)))

	// just inside the TTL
	got, err := store.Get(ctx, clientID, generatedAt.Add(23*time.Hour))
	require.NoError(t, err)
	assert.NotNil(t, got)

	// past the TTL behaves like a miss
	got, err = store.Get(ctx, clientID, generatedAt.Add(25*time.Hour))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReportsStore_PutReplaces(t *testing.T) {
	store := setupReportsStore(t, 24*time.Hour)
	ctx := context.Background()

	clientID := uuid.New()
	first := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.Put(ctx, sampleReport(clientID, first)))

	updated := sampleReport(clientID, first.Add(2*time.Hour))
	updated.TrustScore = 55
	updated.Recommendation = "Fair - proceed with caution and clear contracts"
	require.NoError(t, store.Put(ctx, updated))

	got, err := store.Get(ctx, clientID, first.Add(3*time.Hour))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 55, got.TrustScore)
	assert.Equal(t, updated.Recommendation, got.Recommendation)

	var count int64
	require.NoError(t, store.db.Model(&ReportRecord{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestReportsStore_Invalidate(t *testing.T) {
	store := setupReportsStore(t, 24*time.Hour)
	ctx := context.Background()

	clientID := uuid.New()
	generatedAt := time.Now().UTC()
	require.NoError(t, store.Put(ctx, sampleReport(clientID, generatedAt)))
	require.NoError(t, store.Invalidate(ctx, clientID))

	got, err := store.Get(ctx, clientID, generatedAt)
	require.NoError(t, err)
	assert.Nil(t, got)
}
