package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"

	"github.com/woai-art/shorts-news-sub001/internal/config"
	"github.com/woai-art/shorts-news-sub001/internal/pkg/logger"
	"github.com/woai-art/shorts-news-sub001/internal/repository/postgres"
	"github.com/woai-art/shorts-news-sub001/internal/repository/redis"
	"github.com/woai-art/shorts-news-sub001/internal/service/monitor"
)

func main() {
	cfg := config.Load()

	if err := cfg.ValidateForMonitor(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	log.Info("Starting monitor service...")

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

	redisClient, err := redis.NewClient(cfg.RedisURL, log)
	if err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	if err := redis.HealthCheck(context.Background(), redisClient); err != nil {
		log.Error("Failed to ping Redis", "error", err)
		os.Exit(1)
	}

	itemRepo := postgres.NewItemRepository(db, log)
	channelRepo := postgres.NewChannelRepository(db, log)
	signalRepo := redis.NewSignalRepository(redisClient, log)
	defer signalRepo.Close()

	service, err := monitor.New(cfg, log, itemRepo, channelRepo, signalRepo)
	if err != nil {
		log.Error("Failed to create monitor service", "error", err)
		os.Exit(1)
	}

	if err := service.Start(); err != nil {
		log.Error("Monitor service failed", "error", err)
		os.Exit(1)
	}

	log.Info("Monitor shutdown complete")
}
