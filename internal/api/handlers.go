// Package api provides HTTP handlers for the REST API.
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-fuego/fuego"
	"github.com/google/uuid"

	"github.com/vetboard/clientvet/internal/models"
	"github.com/vetboard/clientvet/internal/report"
	"github.com/vetboard/clientvet/internal/repository"
	"github.com/vetboard/clientvet/internal/vetting"
)

// ============================================================================
// Health
// ============================================================================

func (s *Server) healthCheck(c fuego.ContextNoBody) (HealthResponse, error) {
	return HealthResponse{
		Status:  "ok",
		Version: "dev",
	}, nil
}

// ============================================================================
// Clients Handlers
// ============================================================================

func (s *Server) listClients(c fuego.ContextNoBody) (ClientsListResponse, error) {
	page := parseIntWithDefault(c.QueryParam("page"), 1)
	limit := parseIntWithDefault(c.QueryParam("limit"), 50)
	minScore := parseIntWithDefault(c.QueryParam("min_score"), 0)
	flagged := c.QueryParam("flagged") == "true"
	query := c.QueryParam("q")

	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	filter := repository.ClientFilter{
		MinScore: minScore,
		Flagged:  flagged,
		Query:    query,
		Page:     page,
		Limit:    limit,
	}

	clients, total, err := s.deps.ClientsRepo.List(c.Context(), filter)
	if err != nil {
		return ClientsListResponse{}, fuego.InternalServerError{Detail: err.Error()}
	}

	pages := (total + limit - 1) / limit
	if pages < 1 {
		pages = 1
	}

	return ClientsListResponse{
		Clients: ClientsFromModels(clients),
		Total:   total,
		Page:    page,
		Limit:   limit,
		Pages:   pages,
	}, nil
}

func (s *Server) getClient(c fuego.ContextNoBody) (ClientResponse, error) {
	id, err := uuid.Parse(c.PathParam("id"))
	if err != nil {
		return ClientResponse{}, fuego.BadRequestError{Detail: "Invalid client ID"}
	}

	client, err := s.deps.ClientsRepo.GetByID(c.Context(), id)
	if err != nil {
		return ClientResponse{}, fuego.InternalServerError{Detail: err.Error()}
	}
	if client == nil {
		return ClientResponse{}, fuego.NotFoundError{Detail: "Client not found"}
	}

	return ClientFromModel(client), nil
}

// ============================================================================
// Trust Score Handlers
// ============================================================================

func (s *Server) getTrustScore(c fuego.ContextNoBody) (TrustScoreResponse, error) {
	return s.trustScore(c, false)
}

func (s *Server) refreshTrustScore(c fuego.ContextNoBody) (TrustScoreResponse, error) {
	return s.trustScore(c, true)
}

func (s *Server) trustScore(c fuego.ContextNoBody, refresh bool) (TrustScoreResponse, error) {
	id, err := uuid.Parse(c.PathParam("id"))
	if err != nil {
		return TrustScoreResponse{}, fuego.BadRequestError{Detail: "Invalid client ID"}
	}

	profile, err := s.deps.Reports.TrustScore(c.Context(), id, refresh)
	if err != nil {
		return TrustScoreResponse{}, mapServiceError(err)
	}

	resp := TrustScoreResponse{
		ClientID:  profile.ID,
		Score:     *profile.TrustScore,
		Label:     s.deps.Labeler.Label(*profile.TrustScore),
		UpdatedAt: profile.TrustScoreUpdatedAt,
	}

	if refresh && s.deps.Hub != nil {
		s.deps.Hub.Broadcast(TrustScoreUpdatedEvent(profile.ID, resp.Score, resp.Label))
	}

	return resp, nil
}

// ============================================================================
// Vetting Report Handlers
// ============================================================================

func (s *Server) getVettingReport(c fuego.ContextNoBody) (VettingReportResponse, error) {
	id, err := uuid.Parse(c.PathParam("id"))
	if err != nil {
		return VettingReportResponse{}, fuego.BadRequestError{Detail: "Invalid client ID"}
	}
	refresh := c.QueryParam("refresh") == "true"

	rep, err := s.deps.Reports.GetReport(c.Context(), id, refresh)
	if err != nil {
		return VettingReportResponse{}, mapServiceError(err)
	}

	if refresh && s.deps.Hub != nil {
		s.deps.Hub.Broadcast(VettingCompletedEvent(rep.ClientID, rep.TrustScore, rep.Recommendation))
	}

	return VettingReportResponse{VettingReport: *rep}, nil
}

// ============================================================================
// Red Flags and Reviews Handlers
// ============================================================================

func (s *Server) listRedFlags(c fuego.ContextNoBody) (RedFlagsListResponse, error) {
	id, err := uuid.Parse(c.PathParam("id"))
	if err != nil {
		return RedFlagsListResponse{}, fuego.BadRequestError{Detail: "Invalid client ID"}
	}

	flags, err := s.deps.FlagsRepo.ListActive(c.Context(), id)
	if err != nil {
		return RedFlagsListResponse{}, fuego.InternalServerError{Detail: err.Error()}
	}

	return RedFlagsListResponse{RedFlags: flags, Total: len(flags)}, nil
}

func (s *Server) deactivateRedFlag(c fuego.ContextNoBody) (RedFlagDeactivatedResponse, error) {
	clientID, err := uuid.Parse(c.PathParam("id"))
	if err != nil {
		return RedFlagDeactivatedResponse{}, fuego.BadRequestError{Detail: "Invalid client ID"}
	}
	flagID, err := uuid.Parse(c.PathParam("flagId"))
	if err != nil {
		return RedFlagDeactivatedResponse{}, fuego.BadRequestError{Detail: "Invalid flag ID"}
	}

	if err := s.deps.Reports.DeactivateFlag(c.Context(), clientID, flagID); err != nil {
		return RedFlagDeactivatedResponse{}, mapServiceError(err)
	}

	return RedFlagDeactivatedResponse{
		ClientID: clientID,
		FlagID:   flagID,
		Status:   "deactivated",
	}, nil
}

func (s *Server) listReviews(c fuego.ContextNoBody) (ReviewsListResponse, error) {
	id, err := uuid.Parse(c.PathParam("id"))
	if err != nil {
		return ReviewsListResponse{}, fuego.BadRequestError{Detail: "Invalid client ID"}
	}

	reviews, err := s.deps.ReviewsRepo.ListByClient(c.Context(), id)
	if err != nil {
		return ReviewsListResponse{}, fuego.InternalServerError{Detail: err.Error()}
	}

	return ReviewsListResponse{Reviews: reviews, Total: len(reviews)}, nil
}

// ============================================================================
// Company Research Handlers
// ============================================================================

func (s *Server) upsertResearch(c fuego.ContextWithBody[ResearchUpsertRequest]) (*models.CompanyResearch, error) {
	clientID, err := uuid.Parse(c.PathParam("id"))
	if err != nil {
		return nil, fuego.BadRequestError{Detail: "Invalid client ID"}
	}

	body, err := c.Body()
	if err != nil {
		return nil, fuego.BadRequestError{Detail: "Invalid request body"}
	}
	if body.CompanyName == "" {
		return nil, fuego.BadRequestError{Detail: "company_name is required"}
	}

	research := body.ToModel(clientID)
	research.DeriveScores()
	if err := s.deps.ResearchRepo.Upsert(c.Context(), research); err != nil {
		return nil, fuego.InternalServerError{Detail: err.Error()}
	}

	return research, nil
}

// ============================================================================
// Stats Handlers
// ============================================================================

func (s *Server) getStats(c fuego.ContextNoBody) (*repository.DashboardStats, error) {
	stats, err := s.deps.StatsRepo.GetStats(c.Context())
	if err != nil {
		return nil, fuego.InternalServerError{Detail: err.Error()}
	}
	return stats, nil
}

// ============================================================================
// Helpers
// ============================================================================

// mapServiceError converts report service failures into HTTP errors.
// Data that breaks the hires-vs-postings invariant is the client's data
// being wrong, not ours, hence 422 instead of 500.
func mapServiceError(err error) error {
	var invariant *vetting.InvariantError
	switch {
	case errors.Is(err, report.ErrClientNotFound):
		return fuego.NotFoundError{Detail: "Client not found"}
	case errors.As(err, &invariant):
		return fuego.HTTPError{Status: http.StatusUnprocessableEntity, Detail: invariant.Error()}
	default:
		return fuego.InternalServerError{Detail: err.Error()}
	}
}

func parseIntWithDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
