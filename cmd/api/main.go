package main

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"

	"github.com/woai-art/shorts-news-sub001/internal/config"
	"github.com/woai-art/shorts-news-sub001/internal/pkg/logger"
	"github.com/woai-art/shorts-news-sub001/internal/repository/postgres"
	"github.com/woai-art/shorts-news-sub001/internal/service/api"
)

func main() {
	cfg := config.Load()

	if err := cfg.ValidateForAPI(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	log.Info("Starting API service...")

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Error("Failed to ping database", "error", err)
		os.Exit(1)
	}

	if err := postgres.RunMigrations(db, log); err != nil {
		log.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}

	itemRepo := postgres.NewItemRepository(db, log)
	channelRepo := postgres.NewChannelRepository(db, log)

	service := api.New(cfg, log, itemRepo, channelRepo)
	if err := service.Start(); err != nil {
		log.Error("API service failed", "error", err)
		os.Exit(1)
	}

	log.Info("API shutdown complete")
}
