package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vetboard/clientvet/internal/api"
	"github.com/vetboard/clientvet/internal/config"
	"github.com/vetboard/clientvet/internal/database"
	"github.com/vetboard/clientvet/internal/logger"
	"github.com/vetboard/clientvet/internal/migrator"
	"github.com/vetboard/clientvet/internal/nats"
	"github.com/vetboard/clientvet/internal/publisher"
	"github.com/vetboard/clientvet/internal/report"
	"github.com/vetboard/clientvet/internal/repository"
	"github.com/vetboard/clientvet/internal/vetting"
	"github.com/vetboard/clientvet/migrations"
)

func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// 2. Initialize logger
	if err := logger.Init(cfg.LogLevel, cfg.LogFile); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	log := logger.Get()
	log.Info().Msg("starting vetting api service")

	// 3. Setup context with graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("received shutdown signal")
		cancel()
	}()

	// 4. Scoring config: a broken one is a deployment error, refuse to start
	scoringCfg := vetting.DefaultConfig()
	if cfg.ScoringConfigPath != "" {
		scoringCfg, err = vetting.LoadConfig(cfg.ScoringConfigPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.ScoringConfigPath).Msg("invalid scoring config")
		}
	}

	assembler, err := vetting.NewAssembler(scoringCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid scoring config")
	}

	// 5. Database
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()
	log.Info().Msg("connected to database")

	// Run migrations
	mig, err := migrator.NewWithFS(migrations.FS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create migrator")
	}
	if err := mig.Up(ctx, cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}
	log.Info().Msg("migrations applied")

	// 6. NATS (optional for the API: reports still work without events)
	nc, err := nats.New(ctx, cfg.NatsURL)
	if err != nil {
		log.Warn().Err(err).Msg("failed to connect to nats, events disabled")
		nc = nil
	} else {
		defer nc.Close()
		if err := nc.EnsureStream(ctx, nats.StreamVetting, nats.StreamSubjects()); err != nil {
			log.Fatal().Err(err).Msg("failed to ensure stream")
		}
	}

	// 7. Repositories
	clientsRepo := repository.NewClientsRepository(db.Pool)
	reviewsRepo := repository.NewReviewsRepository(db.Pool)
	flagsRepo := repository.NewRedFlagsRepository(db.Pool)
	researchRepo := repository.NewResearchRepository(db.Pool)
	statsRepo := repository.NewStatsRepository(db.Pool)
	reportsStore := repository.NewReportsStore(db.GORM, time.Duration(cfg.ReportTTLHours)*time.Hour)

	var pub report.EventPublisher
	if nc != nil {
		pub = publisher.NewNATSPublisher(nc.Conn)
	}

	zlog := &log.Logger

	// The API path serves reports without inline enrichment; the worker owns
	// LLM calls so a slow provider never blocks a dashboard request.
	reportSvc := report.NewService(clientsRepo, reviewsRepo, flagsRepo, researchRepo, reportsStore, nil, pub, assembler, zlog)

	// 8. WebSocket hub
	hub := api.NewHub()
	go hub.Run()

	// Relay worker-side vetting results to dashboard clients
	if nc != nil {
		err := nc.Subscribe(ctx, nats.StreamVetting, "dashboard_ws", nats.SubjectVettingCompleted, func(data []byte) error {
			var event publisher.VettingCompletedEvent
			if err := json.Unmarshal(data, &event); err != nil {
				log.Error().Err(err).Msg("invalid vetting.completed payload, skipping")
				return nil
			}
			hub.Broadcast(api.VettingCompletedEvent(event.ClientID, event.TrustScore, event.Recommendation))
			return nil
		})
		if err != nil {
			log.Warn().Err(err).Msg("failed to subscribe to vetting events")
		}
	}

	// 9. API server
	apiCfg := &api.Config{
		Port:        cfg.HTTPPort,
		Title:       "ClientVet API",
		Description: "Client trust scoring and vetting reports",
		Version:     "1.0.0",
	}
	deps := &api.Dependencies{
		ClientsRepo:  clientsRepo,
		ReviewsRepo:  reviewsRepo,
		FlagsRepo:    flagsRepo,
		StatsRepo:    statsRepo,
		ResearchRepo: researchRepo,
		Reports:      reportSvc,
		Labeler:      scoringCfg,
		Hub:          hub,
	}
	server := api.NewServer(apiCfg, deps)
	server.MountWebSocket(hub)

	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("api server listening")
		if err := server.Start(); err != nil {
			log.Error().Err(err).Msg("api server stopped")
			cancel()
		}
	}()

	// Wait for shutdown
	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = server.Stop(shutdownCtx)

	log.Info().Msg("shutdown complete")
}
