package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	_ "github.com/lib/pq"

	"github.com/woai-art/shorts-news-sub001/internal/config"
	"github.com/woai-art/shorts-news-sub001/internal/engines"
	"github.com/woai-art/shorts-news-sub001/internal/media"
	"github.com/woai-art/shorts-news-sub001/internal/pkg/logger"
	"github.com/woai-art/shorts-news-sub001/internal/repository/postgres"
	redisrepo "github.com/woai-art/shorts-news-sub001/internal/repository/redis"
	"github.com/woai-art/shorts-news-sub001/internal/resolve"
	"github.com/woai-art/shorts-news-sub001/internal/service/resolver"
)

func main() {
	// Single-item mode flags; registered before config.Load parses
	itemID := flag.Int64("id", 0, "Resolve a single item by id and exit")
	offset := flag.Int("offset", 0, "Video trim offset in seconds (single-item mode)")
	forceMedia := flag.Bool("force-media", false, "Re-download media even if artifacts exist")

	cfg := config.Load()

	if err := cfg.ValidateForResolver(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	log.Info("Starting resolver...")

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

	registry, err := engines.NewDefaultRegistry(log, cfg.ExtraDomains)
	if err != nil {
		log.Error("Engine registry configuration invalid", "error", err)
		os.Exit(1)
	}

	fetcher := resolve.NewHTTPFetcher(cfg.Fetch.Timeout(), log)
	renderer := resolve.NewBrowserFetcher(cfg.Fetch.RenderHosts, log)
	defer renderer.Close()
	searcher := resolve.NewSearchClient(cfg.ContentSearch.Endpoint, cfg.ContentSearch.APIKey, cfg.ContentSearch.MaxResults, log)

	articleResolver := resolve.NewResolver(registry, fetcher, renderer, searcher, log)
	mediaManager := media.NewDefaultManager(cfg.Media, log)

	itemRepo := postgres.NewItemRepository(db, log)
	orchestrator := resolver.NewOrchestrator(itemRepo, articleResolver, mediaManager, log)

	// Single-item mode: resolve one item and exit
	if *itemID > 0 {
		if err := orchestrator.ProcessOne(context.Background(), *itemID, *offset, *forceMedia); err != nil {
			log.Error("Single-item resolution failed", "item_id", *itemID, "error", err)
			os.Exit(1)
		}
		log.Info("Item resolved", "item_id", *itemID)
		return
	}

	redisClient, err := redisrepo.NewClient(cfg.RedisURL, log)
	if err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	signalRepo := redisrepo.NewSignalRepository(redisClient, log)
	defer signalRepo.Close()

	service := resolver.New(cfg, orchestrator, signalRepo, log)
	if err := service.Start(); err != nil {
		log.Error("Resolver service failed", "error", err)
		os.Exit(1)
	}

	log.Info("Resolver shutdown complete")
}
