package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetboard/clientvet/internal/models"
	"github.com/vetboard/clientvet/internal/publisher"
	"github.com/vetboard/clientvet/internal/vetting"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

type MockClients struct {
	Profiles     map[uuid.UUID]*models.ClientProfile
	UpdatedScore *int
	UpdatedAt    *time.Time
	Err          error
}

func (m *MockClients) GetByID(ctx context.Context, id uuid.UUID) (*models.ClientProfile, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Profiles[id], nil
}

func (m *MockClients) UpdateTrustScore(ctx context.Context, id uuid.UUID, score int, at time.Time) error {
	m.UpdatedScore = &score
	m.UpdatedAt = &at
	return nil
}

type MockReviews struct {
	Reviews []models.ClientReview
	Err     error
}

func (m *MockReviews) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.ClientReview, error) {
	return m.Reviews, m.Err
}

type MockFlags struct {
	Flags       []models.RedFlag
	Deactivated []uuid.UUID
}

func (m *MockFlags) ListActive(ctx context.Context, clientID uuid.UUID) ([]models.RedFlag, error) {
	return m.Flags, nil
}

func (m *MockFlags) Deactivate(ctx context.Context, id uuid.UUID) error {
	m.Deactivated = append(m.Deactivated, id)
	return nil
}

type MockResearch struct {
	Research *models.CompanyResearch
	Err      error
}

func (m *MockResearch) GetByClient(ctx context.Context, clientID uuid.UUID) (*models.CompanyResearch, error) {
	return m.Research, m.Err
}

type MockCache struct {
	Cached      *models.VettingReport
	Stored      *models.VettingReport
	Invalidated []uuid.UUID
	GetErr      error
	PutErr      error
}

func (m *MockCache) Get(ctx context.Context, clientID uuid.UUID, now time.Time) (*models.VettingReport, error) {
	return m.Cached, m.GetErr
}

func (m *MockCache) Put(ctx context.Context, report *models.VettingReport) error {
	m.Stored = report
	return m.PutErr
}

func (m *MockCache) Invalidate(ctx context.Context, clientID uuid.UUID) error {
	m.Invalidated = append(m.Invalidated, clientID)
	return nil
}

type MockEnricher struct {
	EnrichCalls int
	DetectCalls int
	DetectErr   error
}

func (m *MockEnricher) EnrichReviews(ctx context.Context, reviews []models.ClientReview) []models.ClientReview {
	m.EnrichCalls++
	return reviews
}

func (m *MockEnricher) DetectFlags(ctx context.Context, profile *models.ClientProfile, reviews []models.ClientReview) ([]models.RedFlag, error) {
	m.DetectCalls++
	return nil, m.DetectErr
}

type MockEvents struct {
	Published []publisher.VettingCompletedEvent
	Err       error
}

func (m *MockEvents) PublishVettingCompleted(ctx context.Context, event publisher.VettingCompletedEvent) error {
	m.Published = append(m.Published, event)
	return m.Err
}

func strPtr(s string) *string { return &s }

func floatPtr(v float64) *float64 { return &v }

func testProfile(id uuid.UUID) *models.ClientProfile {
	created := testNow.AddDate(-2, 0, 0)
	lastActive := testNow.AddDate(0, -1, 0)
	return &models.ClientProfile{
		ID:                       id,
		ExternalClientID:         "client-1",
		CompanyName:              strPtr("Acme Corp"),
		AccountCreatedDate:       &created,
		VerifiedPayment:          true,
		LastActive:               &lastActive,
		TotalJobsPosted:          20,
		TotalHires:               15,
		TotalSpent:               30000,
		AverageRating:            floatPtr(4.6),
		ReviewCount:              12,
		AverageResponseTimeHours: floatPtr(4),
	}
}

type fixture struct {
	svc      *Service
	clients  *MockClients
	reviews  *MockReviews
	flags    *MockFlags
	research *MockResearch
	cache    *MockCache
	enricher *MockEnricher
	events   *MockEvents
}

func newFixture(t *testing.T, profile *models.ClientProfile) *fixture {
	t.Helper()

	assembler, err := vetting.NewAssembler(vetting.DefaultConfig())
	require.NoError(t, err)

	f := &fixture{
		clients:  &MockClients{Profiles: map[uuid.UUID]*models.ClientProfile{}},
		reviews:  &MockReviews{},
		flags:    &MockFlags{},
		research: &MockResearch{},
		cache:    &MockCache{},
		enricher: &MockEnricher{},
		events:   &MockEvents{},
	}
	if profile != nil {
		f.clients.Profiles[profile.ID] = profile
	}

	logger := zerolog.Nop()
	f.svc = NewService(f.clients, f.reviews, f.flags, f.research, f.cache, f.enricher, f.events, assembler, &logger)
	f.svc.now = func() time.Time { return testNow }
	return f
}

func TestService_Generate(t *testing.T) {
	clientID := uuid.New()
	f := newFixture(t, testProfile(clientID))

	report, err := f.svc.Generate(context.Background(), clientID)
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Equal(t, clientID, report.ClientID)
	assert.Equal(t, testNow, report.GeneratedAt)
	assert.GreaterOrEqual(t, report.TrustScore, 0)
	assert.LessOrEqual(t, report.TrustScore, 100)
	assert.NotEmpty(t, report.Recommendation)

	// trust score persisted on the client
	require.NotNil(t, f.clients.UpdatedScore)
	assert.Equal(t, report.TrustScore, *f.clients.UpdatedScore)
	assert.Equal(t, report.GeneratedAt, *f.clients.UpdatedAt)

	// report cached
	require.NotNil(t, f.cache.Stored)
	assert.Equal(t, report.TrustScore, f.cache.Stored.TrustScore)

	// event published
	require.Len(t, f.events.Published, 1)
	assert.Equal(t, clientID, f.events.Published[0].ClientID)
	assert.Equal(t, report.TrustScore, f.events.Published[0].TrustScore)

	// enrichment ran
	assert.Equal(t, 1, f.enricher.EnrichCalls)
	assert.Equal(t, 1, f.enricher.DetectCalls)
}

func TestService_Generate_ClientNotFound(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.Generate(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrClientNotFound)
	assert.Nil(t, f.clients.UpdatedScore)
	assert.Empty(t, f.events.Published)
}

func TestService_Generate_DetectFlagsFailureIsBestEffort(t *testing.T) {
	clientID := uuid.New()
	f := newFixture(t, testProfile(clientID))
	f.enricher.DetectErr = errors.New("provider down")

	report, err := f.svc.Generate(context.Background(), clientID)
	require.NoError(t, err)
	assert.NotNil(t, report)
	require.Len(t, f.events.Published, 1)
}

func TestService_Generate_ResearchFailureIsBestEffort(t *testing.T) {
	clientID := uuid.New()
	f := newFixture(t, testProfile(clientID))
	f.research.Err = errors.New("db timeout")

	report, err := f.svc.Generate(context.Background(), clientID)
	require.NoError(t, err)
	assert.Nil(t, report.CompanyResearch)
}

func TestService_Generate_PublishFailureDoesNotFail(t *testing.T) {
	clientID := uuid.New()
	f := newFixture(t, testProfile(clientID))
	f.events.Err = errors.New("nats down")

	_, err := f.svc.Generate(context.Background(), clientID)
	require.NoError(t, err)
}

func TestService_Generate_FlagsInReport(t *testing.T) {
	clientID := uuid.New()
	f := newFixture(t, testProfile(clientID))
	f.flags.Flags = []models.RedFlag{
		{ID: uuid.New(), ClientID: clientID, FlagType: "off_platform_payment_request",
			Severity: models.SeverityCritical, Description: "asked for direct bank transfer",
			DetectedAt: testNow.AddDate(0, 0, -3), IsActive: true},
	}

	report, err := f.svc.Generate(context.Background(), clientID)
	require.NoError(t, err)
	require.Len(t, report.RedFlags, 1)
	assert.True(t, report.HasSevereFlags())
	assert.Equal(t, 1, f.events.Published[0].RedFlagCount)
}

func TestService_GetReport_ServesCache(t *testing.T) {
	clientID := uuid.New()
	f := newFixture(t, testProfile(clientID))
	cached := &models.VettingReport{ClientID: clientID, TrustScore: 61, GeneratedAt: testNow.Add(-time.Hour)}
	f.cache.Cached = cached

	report, err := f.svc.GetReport(context.Background(), clientID, false)
	require.NoError(t, err)
	assert.Same(t, cached, report)
	assert.Nil(t, f.clients.UpdatedScore, "cached hit must not regenerate")
}

func TestService_GetReport_RefreshBypassesCache(t *testing.T) {
	clientID := uuid.New()
	f := newFixture(t, testProfile(clientID))
	f.cache.Cached = &models.VettingReport{ClientID: clientID, TrustScore: 61}

	report, err := f.svc.GetReport(context.Background(), clientID, true)
	require.NoError(t, err)
	assert.NotNil(t, f.clients.UpdatedScore)
	assert.Equal(t, testNow, report.GeneratedAt)
}

func TestService_GetReport_CacheErrorFallsThrough(t *testing.T) {
	clientID := uuid.New()
	f := newFixture(t, testProfile(clientID))
	f.cache.GetErr = errors.New("cache down")

	report, err := f.svc.GetReport(context.Background(), clientID, false)
	require.NoError(t, err)
	assert.NotNil(t, report)
}

func TestService_TrustScore(t *testing.T) {
	t.Run("StoredScoreServed", func(t *testing.T) {
		clientID := uuid.New()
		profile := testProfile(clientID)
		score := 72
		profile.TrustScore = &score
		f := newFixture(t, profile)

		got, err := f.svc.TrustScore(context.Background(), clientID, false)
		require.NoError(t, err)
		assert.Equal(t, 72, *got.TrustScore)
		assert.Nil(t, f.clients.UpdatedScore, "stored score must not trigger regeneration")
	})

	t.Run("RefreshRecalculates", func(t *testing.T) {
		clientID := uuid.New()
		profile := testProfile(clientID)
		score := 72
		profile.TrustScore = &score
		f := newFixture(t, profile)

		got, err := f.svc.TrustScore(context.Background(), clientID, true)
		require.NoError(t, err)
		require.NotNil(t, f.clients.UpdatedScore)
		assert.Equal(t, *f.clients.UpdatedScore, *got.TrustScore)
	})

	t.Run("MissingScoreCalculates", func(t *testing.T) {
		clientID := uuid.New()
		f := newFixture(t, testProfile(clientID))

		got, err := f.svc.TrustScore(context.Background(), clientID, false)
		require.NoError(t, err)
		require.NotNil(t, got.TrustScore)
		assert.NotNil(t, f.clients.UpdatedScore)
	})

	t.Run("NotFound", func(t *testing.T) {
		f := newFixture(t, nil)

		_, err := f.svc.TrustScore(context.Background(), uuid.New(), false)
		assert.ErrorIs(t, err, ErrClientNotFound)
	})
}

func TestService_DeactivateFlag(t *testing.T) {
	clientID := uuid.New()
	flagID := uuid.New()
	f := newFixture(t, testProfile(clientID))

	err := f.svc.DeactivateFlag(context.Background(), clientID, flagID)
	require.NoError(t, err)

	require.Len(t, f.flags.Deactivated, 1)
	assert.Equal(t, flagID, f.flags.Deactivated[0])
	require.Len(t, f.cache.Invalidated, 1)
	assert.Equal(t, clientID, f.cache.Invalidated[0])
}

func TestService_NilCollaborators(t *testing.T) {
	clientID := uuid.New()
	assembler, err := vetting.NewAssembler(vetting.DefaultConfig())
	require.NoError(t, err)

	clients := &MockClients{Profiles: map[uuid.UUID]*models.ClientProfile{clientID: testProfile(clientID)}}
	logger := zerolog.Nop()
	svc := NewService(clients, &MockReviews{}, &MockFlags{}, &MockResearch{}, nil, nil, nil, assembler, &logger)
	svc.now = func() time.Time { return testNow }

	report, err := svc.GetReport(context.Background(), clientID, false)
	require.NoError(t, err)
	assert.NotNil(t, report)
}
