package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-fuego/fuego"
	"github.com/go-fuego/fuego/option"
)

// Server represents the Fuego API server.
type Server struct {
	fuego *fuego.Server
	deps  *Dependencies
	port  int
}

// Dependencies contains all service dependencies.
type Dependencies struct {
	ClientsRepo  ClientsRepository
	ReviewsRepo  ReviewsRepository
	FlagsRepo    FlagsRepository
	StatsRepo    StatsRepository
	ResearchRepo ResearchRepository
	Reports      ReportService
	Labeler      ScoreLabeler
	Hub          HubBroadcaster
}

// Config holds API server configuration.
type Config struct {
	Port        int
	Title       string
	Description string
	Version     string
}

// NewServer creates a new Fuego API server.
func NewServer(cfg *Config, deps *Dependencies) *Server {
	s := fuego.NewServer(
		fuego.WithAddr(fmt.Sprintf(":%d", cfg.Port)),
		fuego.WithEngineOptions(
			fuego.WithOpenAPIConfig(fuego.OpenAPIConfig{
				PrettyFormatJSON: true,
				JSONFilePath:     "openapi.json",
				SwaggerURL:       "/docs",
				SpecURL:          "/openapi.json",
				UIHandler: func(specURL string) http.Handler {
					return ScalarHandler(specURL, cfg.Title, cfg.Description)
				},
			}),
		),
	)

	// Set OpenAPI info
	s.OpenAPI.Description().Info.Title = cfg.Title
	s.OpenAPI.Description().Info.Description = cfg.Description
	s.OpenAPI.Description().Info.Version = cfg.Version

	// Add Chi middleware (Fuego is net/http compatible)
	fuego.Use(s, middleware.RequestID)
	fuego.Use(s, middleware.RealIP)
	fuego.Use(s, middleware.Logger)
	fuego.Use(s, middleware.Recoverer)

	// basic cors for the dashboard SPA
	fuego.Use(s, cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	srv := &Server{
		fuego: s,
		deps:  deps,
		port:  cfg.Port,
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) registerRoutes() {
	// Health check
	fuego.Get(s.fuego, "/health", s.healthCheck,
		option.Summary("Health Check"),
		option.Description("Returns the health status of the API"),
		option.Tags("System"),
	)

	// Clients API
	clientsGroup := fuego.Group(s.fuego, "/api/v1/clients",
		option.Tags("Clients"),
	)

	fuego.Get(clientsGroup, "/", s.listClients,
		option.Summary("List Clients"),
		option.Description("Returns a paginated list of clients with optional filtering"),
		option.Query("min_score", "Minimum trust score filter (0-100)"),
		option.Query("flagged", "Only clients with active red flags (true/false)"),
		option.Query("q", "Substring search on name and company"),
		option.Query("page", "Page number (1-indexed, default: 1)"),
		option.Query("limit", "Items per page (default: 50, max: 100)"),
	)

	fuego.Get(clientsGroup, "/{id}", s.getClient,
		option.Summary("Get Client"),
		option.Description("Returns a single client profile by ID"),
	)

	fuego.Get(clientsGroup, "/{id}/trust-score", s.getTrustScore,
		option.Summary("Get Trust Score"),
		option.Description("Returns the client's trust score, calculating it if absent"),
	)

	fuego.Post(clientsGroup, "/{id}/trust-score/refresh", s.refreshTrustScore,
		option.Summary("Refresh Trust Score"),
		option.Description("Recalculates the client's trust score from current data"),
	)

	fuego.Get(clientsGroup, "/{id}/vetting", s.getVettingReport,
		option.Summary("Get Vetting Report"),
		option.Description("Returns the full vetting report, served from cache when fresh"),
		option.Query("refresh", "Force regeneration, bypassing the cache (true/false)"),
	)

	fuego.Get(clientsGroup, "/{id}/red-flags", s.listRedFlags,
		option.Summary("List Red Flags"),
		option.Description("Returns the client's active red flags"),
	)

	fuego.Delete(clientsGroup, "/{id}/red-flags/{flagId}", s.deactivateRedFlag,
		option.Summary("Deactivate Red Flag"),
		option.Description("Marks a red flag as resolved and invalidates the cached report"),
	)

	fuego.Put(clientsGroup, "/{id}/research", s.upsertResearch,
		option.Summary("Upsert Company Research"),
		option.Description("Creates or replaces the client's company research record"),
	)

	fuego.Get(clientsGroup, "/{id}/reviews", s.listReviews,
		option.Summary("List Reviews"),
		option.Description("Returns the client's reviews with any AI-derived signals"),
	)

	// Stats API
	fuego.Get(s.fuego, "/api/v1/stats", s.getStats,
		option.Summary("Get Statistics"),
		option.Description("Returns vetting statistics for the dashboard"),
		option.Tags("Analytics"),
	)
}

// MountWebSocket registers the /ws endpoint for dashboard event streaming.
func (s *Server) MountWebSocket(hub *Hub) {
	s.fuego.Mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, w, r)
	})
}

// Start starts the API server.
func (s *Server) Start() error {
	return s.fuego.Run()
}

// Stop gracefully stops the server.
func (s *Server) Stop(ctx context.Context) error {
	// Fuego uses net/http server internally
	return nil
}

// Mux returns the underlying ServeMux for mounting additional routes.
func (s *Server) Mux() *http.ServeMux {
	return s.fuego.Mux
}
