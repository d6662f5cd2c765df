package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/woai-art/shorts-news-sub001/internal/domain"
)

// ArticleResolver resolves a URL into article metadata and media candidates
type ArticleResolver interface {
	Resolve(ctx context.Context, pageURL string) (*domain.ArticleResult, error)
}

// MediaAcquirer downloads local media artifacts for a resolved item
type MediaAcquirer interface {
	Acquire(ctx context.Context, item *domain.Item, result *domain.ArticleResult, force bool) error
}

// Orchestrator drives items through the pipeline: claim, resolve, acquire
// media, persist. It owns no state of its own; every decision is re-read
// from the work queue.
type Orchestrator struct {
	items    domain.ItemRepository
	resolver ArticleResolver
	media    MediaAcquirer
	logger   *slog.Logger
}

// NewOrchestrator creates a pipeline orchestrator
func NewOrchestrator(items domain.ItemRepository, resolver ArticleResolver, media MediaAcquirer, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		items:    items,
		resolver: resolver,
		media:    media,
		logger:   logger,
	}
}

// Drain processes pending items oldest-first until the backlog is empty
// or ctx is cancelled. A failing item is marked failed and the pass moves
// on; only repository errors or cancellation abort the pass. Returns the
// number of items that reached media_resolved.
func (o *Orchestrator) Drain(ctx context.Context, batchLimit int) (int, error) {
	resolved := 0
	for {
		if err := ctx.Err(); err != nil {
			return resolved, err
		}

		pending, err := o.items.ListByState(ctx, domain.StateReceived, batchLimit)
		if err != nil {
			return resolved, fmt.Errorf("failed to list pending items: %w", err)
		}
		if len(pending) == 0 {
			return resolved, nil
		}

		for _, item := range pending {
			if err := ctx.Err(); err != nil {
				return resolved, err
			}

			claimed, err := o.items.Claim(ctx, item.ID)
			if err != nil {
				if errors.Is(err, domain.ErrAlreadyClaimed) || errors.Is(err, domain.ErrNotFound) {
					// Another worker got there first
					continue
				}
				return resolved, fmt.Errorf("failed to claim item %d: %w", item.ID, err)
			}

			if o.processItem(ctx, claimed, false) {
				resolved++
			}
		}
	}
}

// ProcessOne runs the pipeline for a single item on operator request.
// Unlike the drain pass it claims the item whatever its state: the
// canonical use is re-resolving an already media_resolved or processed
// item with a trim offset and forced media re-acquisition.
func (o *Orchestrator) ProcessOne(ctx context.Context, id int64, offsetSec int, forceMedia bool) error {
	if offsetSec > 0 {
		if err := o.items.SetVideoOffset(ctx, id, offsetSec); err != nil {
			return fmt.Errorf("failed to set video offset on item %d: %w", id, err)
		}
	}

	claimed, err := o.items.ForceClaim(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to claim item %d: %w", id, err)
	}

	if !o.processItem(ctx, claimed, forceMedia) {
		return fmt.Errorf("item %d did not resolve", id)
	}
	return nil
}

// processItem takes a claimed item through resolution and media
// acquisition. Returns true when the item reached media_resolved.
func (o *Orchestrator) processItem(ctx context.Context, item *domain.Item, forceMedia bool) bool {
	itemLogger := o.logger.With("item_id", item.ID, "url", item.URL)
	itemLogger.Info("Resolving item")

	result, err := o.resolver.Resolve(ctx, item.URL)
	if err != nil {
		if ctx.Err() != nil {
			// Shutdown, not a resolution verdict; leave the row for recovery
			itemLogger.Warn("Resolution interrupted by shutdown")
			return false
		}
		itemLogger.Warn("Resolution failed", "error", err)
		o.fail(ctx, item.ID, err.Error())
		return false
	}

	item.Title = result.Title
	item.Description = result.Description
	item.Source = result.Source
	item.ContentType = result.ContentType
	if result.Username != "" {
		item.Username = result.Username
	}

	if err := o.media.Acquire(ctx, item, result, forceMedia); err != nil {
		if ctx.Err() != nil {
			itemLogger.Warn("Media acquisition interrupted by shutdown")
			return false
		}
		itemLogger.Warn("Media acquisition failed", "error", err)
		o.fail(ctx, item.ID, fmt.Sprintf("media acquisition: %v", err))
		return false
	}

	if err := o.items.SaveResolution(ctx, item); err != nil {
		itemLogger.Error("Failed to save resolution", "error", err)
		o.fail(ctx, item.ID, fmt.Sprintf("save resolution: %v", err))
		return false
	}

	itemLogger.Info("Item resolved",
		"title", item.Title,
		"source", item.Source,
		"has_video", item.LocalVideoPath != "",
		"has_image", item.LocalImagePath != "",
	)
	return true
}

func (o *Orchestrator) fail(ctx context.Context, id int64, reason string) {
	if err := o.items.MarkFailed(ctx, id, reason); err != nil {
		o.logger.Error("Failed to mark item failed", "item_id", id, "error", err)
	}
}

// RecoverInterrupted fails items stranded in resolving by a crashed or
// killed worker so an operator can requeue them deliberately.
func (o *Orchestrator) RecoverInterrupted(ctx context.Context) error {
	stranded, err := o.items.ListByState(ctx, domain.StateResolving, 0)
	if err != nil {
		return fmt.Errorf("failed to list stranded items: %w", err)
	}

	for _, item := range stranded {
		o.logger.Warn("Recovering item stranded in resolving", "item_id", item.ID, "url", item.URL)
		o.fail(ctx, item.ID, "resolution interrupted by worker restart")
	}
	return nil
}
