package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	_ "github.com/lib/pq"

	"github.com/woai-art/shorts-news-sub001/internal/domain"
	"github.com/woai-art/shorts-news-sub001/internal/pkg/logger"
	"github.com/woai-art/shorts-news-sub001/internal/pkg/urldetector"
	"github.com/woai-art/shorts-news-sub001/internal/repository/postgres"
	"github.com/woai-art/shorts-news-sub001/internal/repository/redis"
)

// seeder pushes URLs straight into the work queue, bypassing the channel
// monitor. Development and backfill tool.
func main() {
	var (
		dbURL    = flag.String("db", "", "Database URL (defaults to DATABASE_URL env var)")
		redisURL = flag.String("redis", "", "Redis URL for the resolver wake signal (optional)")
		username = flag.String("user", "seeder", "Username recorded on the items")
	)
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: seeder [flags] <url> [<url> ...]")
		os.Exit(1)
	}

	databaseURL := *dbURL
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	log := logger.New("info")

	db, err := sql.Open("postgres", databaseURL)
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

	var signalRepo *redis.SignalRepository
	wakeURL := *redisURL
	if wakeURL == "" {
		wakeURL = os.Getenv("REDIS_URL")
	}
	if wakeURL != "" {
		client, err := redis.NewClient(wakeURL, log)
		if err != nil {
			log.Warn("Redis unavailable, resolver will pick items up on its next poll", "error", err)
		} else {
			defer client.Close()
			signalRepo = redis.NewSignalRepository(client, log)
		}
	}

	itemRepo := postgres.NewItemRepository(db, log)
	ctx := context.Background()

	created := 0
	for _, raw := range flag.Args() {
		url, ok := urldetector.Normalize(raw)
		if !ok {
			log.Error("Skipping unusable URL", "url", raw)
			continue
		}

		item := &domain.Item{URL: url, Username: *username}
		isNew, err := itemRepo.Create(ctx, item)
		if err != nil {
			log.Error("Failed to create item", "url", url, "error", err)
			continue
		}
		if !isNew {
			log.Info("URL already queued", "item_id", item.ID, "url", url, "state", item.State)
			continue
		}

		created++
		log.Info("Item queued", "item_id", item.ID, "url", url)

		if signalRepo != nil {
			if err := signalRepo.NotifyItemReceived(ctx, item.ID); err != nil {
				log.Warn("Failed to wake resolver", "error", err)
			}
		}
	}

	log.Info("Seeding finished", "created", created, "submitted", flag.NArg())
}
