package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/movinv/movinv/internal/config"
	"github.com/movinv/movinv/internal/db"
	"github.com/movinv/movinv/internal/logging"
	"github.com/movinv/movinv/internal/metrics"
	"github.com/movinv/movinv/internal/photostore/local"
	"github.com/movinv/movinv/internal/service"
	"github.com/movinv/movinv/internal/store"
	"github.com/movinv/movinv/internal/vision"
	"github.com/movinv/movinv/internal/vision/claude"
	"github.com/movinv/movinv/internal/vision/ollama"
	"github.com/movinv/movinv/internal/web"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanup()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	photoStg, err := local.NewLocalPhotoStore(cfg.PhotoPath)
	if err != nil {
		return fmt.Errorf("failed to initialize photo storage: %w", err)
	}

	analyzer, err := buildAnalyzer(cfg)
	if err != nil {
		return err
	}
	resilient := vision.NewResilientAnalyzer(analyzer, cfg.VisionRPS, cfg.VisionRetries, logger)

	m := metrics.New()
	svc := service.NewSessionService(
		store.NewSessionStore(database),
		store.NewPhotoStore(database),
		store.NewItemStore(database),
		store.NewTokenStore(database),
		photoStg,
		resilient,
		m,
		logger,
	)

	server := web.NewServer(svc, m, logger)
	logger.Info("configuration loaded", "vision_backend", cfg.VisionBackend, "db_path", cfg.DBPath)
	return server.ListenAndServe(cfg.ListenAddr)
}

func buildAnalyzer(cfg *config.Config) (vision.Analyzer, error) {
	switch cfg.VisionBackend {
	case "claude":
		if cfg.ClaudeAPIKey == "" {
			return nil, fmt.Errorf("CLAUDE_API_KEY is required for the claude vision backend")
		}
		return claude.New(cfg.ClaudeAPIKey, cfg.ClaudeModel), nil
	case "ollama":
		return ollama.New(cfg.OllamaHost, cfg.OllamaModel), nil
	default:
		return nil, fmt.Errorf("unknown vision backend %q", cfg.VisionBackend)
	}
}
