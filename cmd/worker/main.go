package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/vetboard/clientvet/internal/config"
	"github.com/vetboard/clientvet/internal/database"
	"github.com/vetboard/clientvet/internal/enricher"
	"github.com/vetboard/clientvet/internal/logger"
	"github.com/vetboard/clientvet/internal/nats"
	"github.com/vetboard/clientvet/internal/publisher"
	"github.com/vetboard/clientvet/internal/report"
	"github.com/vetboard/clientvet/internal/repository"
	"github.com/vetboard/clientvet/internal/vetting"
)

func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// 2. Setup Logger
	if err := logger.Init(cfg.LogLevel, cfg.LogFile); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	log := logger.Get()
	log.Info().Msg("starting vetting worker")

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

	// 4. Scoring config
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

	// 6. NATS (required: the worker is driven by clients.updated)
	natsClient, err := nats.New(ctx, cfg.NatsURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to nats")
	}
	defer natsClient.Close()
	log.Info().Msg("connected to nats")

	if err := natsClient.EnsureStream(ctx, nats.StreamVetting, nats.StreamSubjects()); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure stream")
	}

	// 7. LLM Client
	llmClient := enricher.NewClient(enricher.Config{
		BaseURL:     cfg.LLMBaseURL,
		Model:       cfg.LLMModel,
		APIKey:      cfg.LLMAPIKey,
		MaxTokens:   cfg.LLMMaxTokens,
		Temperature: float32(cfg.LLMTemperature),
		Timeout:     time.Duration(cfg.LLMTimeoutSec) * time.Second,
		RateRPS:     cfg.LLMRateRPS,
	})
	log.Info().Str("model", cfg.LLMModel).Msg("llm client initialized")

	// Load Prompts
	signalsPrompt, err := enricher.LoadPrompt(filepath.Join("docs", "prompts", "review-signals.xml"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load review signals prompt")
	}
	flagsPrompt, err := enricher.LoadPrompt(filepath.Join("docs", "prompts", "red-flags.xml"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load red flags prompt")
	}
	log.Info().Msg("prompts loaded")

	// 8. Repositories and services
	clientsRepo := repository.NewClientsRepository(db.Pool)
	reviewsRepo := repository.NewReviewsRepository(db.Pool)
	flagsRepo := repository.NewRedFlagsRepository(db.Pool)
	researchRepo := repository.NewResearchRepository(db.Pool)
	reportsStore := repository.NewReportsStore(db.GORM, time.Duration(cfg.ReportTTLHours)*time.Hour)

	zlog := &log.Logger

	enrichSvc := enricher.NewService(llmClient, reviewsRepo, flagsRepo, signalsPrompt, flagsPrompt, zlog)
	pub := publisher.NewNATSPublisher(natsClient.Conn)

	reportSvc := report.NewService(clientsRepo, reviewsRepo, flagsRepo, researchRepo, reportsStore, enrichSvc, pub, assembler, zlog)

	// 9. Start Consumer
	consumer := report.NewConsumer(natsClient, reportSvc, zlog)
	if err := consumer.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start consumer")
	}
	log.Info().Msg("consumer started")

	// Wait for shutdown
	<-ctx.Done()
	log.Info().Msg("shutting down")

	// Allow some time for nats drain
	time.Sleep(1 * time.Second)
	log.Info().Msg("shutdown complete")
}
