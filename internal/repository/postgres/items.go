package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/woai-art/shorts-news-sub001/internal/domain"
	"github.com/woai-art/shorts-news-sub001/internal/pkg/pipelist"
)

// itemColumns is the canonical select list; scanItem must stay in sync
const itemColumns = `
	id, url, channel_id, username,
	title, description, source, content_type,
	images, videos,
	local_image_path, local_video_path, avatar_path,
	state, failure_reason, video_offset_sec,
	received_at, updated_at`

// ItemRepository implements the domain.ItemRepository interface using PostgreSQL
type ItemRepository struct {
	db     *sql.DB
	sb     sq.StatementBuilderType
	logger *slog.Logger
}

// NewItemRepository creates a new PostgreSQL item repository
func NewItemRepository(db *sql.DB, logger *slog.Logger) *ItemRepository {
	return &ItemRepository{
		db:     db,
		sb:     sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		logger: logger,
	}
}

func scanItem(row interface{ Scan(...any) error }) (*domain.Item, error) {
	item := &domain.Item{}
	var channelID, images, videos sql.NullString
	var updatedAt sql.NullTime

	err := row.Scan(
		&item.ID,
		&item.URL,
		&channelID,
		&item.Username,
		&item.Title,
		&item.Description,
		&item.Source,
		&item.ContentType,
		&images,
		&videos,
		&item.LocalImagePath,
		&item.LocalVideoPath,
		&item.AvatarPath,
		&item.State,
		&item.FailureReason,
		&item.VideoOffsetSec,
		&item.ReceivedAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if channelID.Valid {
		item.ChannelID = channelID.String
	}
	if updatedAt.Valid {
		item.UpdatedAt = &updatedAt.Time
	}
	// Materialize the pipe-delimited media lists
	if images.Valid {
		item.Images = pipelist.Split(images.String)
	}
	if videos.Valid {
		item.Videos = pipelist.Split(videos.String)
	}

	return item, nil
}

// GetByID retrieves an item by its numeric id
func (r *ItemRepository) GetByID(ctx context.Context, id int64) (*domain.Item, error) {
	query := `SELECT` + itemColumns + ` FROM items WHERE id = $1`

	item, err := scanItem(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			r.logger.Debug("Item not found", "item_id", id)
			return nil, domain.ErrNotFound
		}
		r.logger.Error("Failed to query item",
			"error", err,
			"item_id", id,
		)
		return nil, fmt.Errorf("failed to query item: %w", err)
	}

	return item, nil
}

// GetByURL finds an item by URL (for duplicate detection)
func (r *ItemRepository) GetByURL(ctx context.Context, url string) (*domain.Item, error) {
	query := `SELECT` + itemColumns + ` FROM items WHERE url = $1`

	item, err := scanItem(r.db.QueryRowContext(ctx, query, url))
	if err != nil {
		if err == sql.ErrNoRows {
			r.logger.Debug("No existing item for URL", "url", url)
			return nil, domain.ErrNotFound
		}
		r.logger.Error("Failed to query item by URL",
			"error", err,
			"url", url,
		)
		return nil, fmt.Errorf("failed to query item by URL: %w", err)
	}

	return item, nil
}

// Create inserts a new item in state received. The url UNIQUE constraint
// makes this idempotent: a duplicate URL returns the existing row with
// created=false and writes nothing.
func (r *ItemRepository) Create(ctx context.Context, item *domain.Item) (bool, error) {
	query := `
		INSERT INTO items (url, channel_id, username, state, received_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (url) DO NOTHING
		RETURNING id`

	if item.State == "" {
		item.State = domain.StateReceived
	}
	if item.ReceivedAt.IsZero() {
		item.ReceivedAt = time.Now()
	}

	var channelID any
	if item.ChannelID != "" {
		channelID = item.ChannelID
	}

	err := r.db.QueryRowContext(ctx, query,
		item.URL,
		channelID,
		item.Username,
		item.State,
		item.ReceivedAt,
	).Scan(&item.ID)

	if err == sql.ErrNoRows {
		// Conflict path: surface the existing row instead
		existing, getErr := r.GetByURL(ctx, item.URL)
		if getErr != nil {
			return false, fmt.Errorf("failed to load existing item after conflict: %w", getErr)
		}
		*item = *existing
		r.logger.Info("Duplicate URL, reusing existing item",
			"item_id", item.ID,
			"url", item.URL,
			"state", item.State,
		)
		return false, nil
	}
	if err != nil {
		r.logger.Error("Failed to create item",
			"error", err,
			"url", item.URL,
		)
		return false, fmt.Errorf("failed to create item: %w", err)
	}

	r.logger.Info("Item created",
		"item_id", item.ID,
		"url", item.URL,
		"channel_id", item.ChannelID,
	)
	return true, nil
}

// ListByState returns items in the given state, oldest first
func (r *ItemRepository) ListByState(ctx context.Context, state domain.State, limit int) ([]*domain.Item, error) {
	builder := r.sb.
		Select("id", "url", "channel_id", "username",
			"title", "description", "source", "content_type",
			"images", "videos",
			"local_image_path", "local_video_path", "avatar_path",
			"state", "failure_reason", "video_offset_sec",
			"received_at", "updated_at").
		From("items").
		Where(sq.Eq{"state": state}).
		OrderBy("id ASC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list items by state",
			"error", err,
			"state", state,
		)
		return nil, fmt.Errorf("failed to list items by state: %w", err)
	}
	defer rows.Close()

	var items []*domain.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate item rows: %w", err)
	}

	return items, nil
}

// Claim moves an item into resolving. The conditional update is the
// at-most-one-in-flight lock: only a row in received or failed matches,
// so a second concurrent claim affects zero rows.
func (r *ItemRepository) Claim(ctx context.Context, id int64) (*domain.Item, error) {
	query := `
		UPDATE items
		SET state = $1, failure_reason = '', updated_at = NOW()
		WHERE id = $2 AND state IN ($3, $4)
		RETURNING` + itemColumns

	item, err := scanItem(r.db.QueryRowContext(ctx, query,
		domain.StateResolving, id, domain.StateReceived, domain.StateFailed))
	if err == sql.ErrNoRows {
		// Distinguish a missing row from a contested one
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		r.logger.Debug("Item not claimable", "item_id", id)
		return nil, domain.ErrAlreadyClaimed
	}
	if err != nil {
		r.logger.Error("Failed to claim item",
			"error", err,
			"item_id", id,
		)
		return nil, fmt.Errorf("failed to claim item: %w", err)
	}

	r.logger.Info("Item claimed for resolution", "item_id", item.ID, "url", item.URL)
	return item, nil
}

// ForceClaim moves an item into resolving regardless of state. This is
// the operator reprocess path; !resolve on a media_resolved or processed
// item is the whole point of the command.
func (r *ItemRepository) ForceClaim(ctx context.Context, id int64) (*domain.Item, error) {
	query := `
		UPDATE items
		SET state = $1, failure_reason = '', updated_at = NOW()
		WHERE id = $2
		RETURNING` + itemColumns

	item, err := scanItem(r.db.QueryRowContext(ctx, query, domain.StateResolving, id))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to force-claim item",
			"error", err,
			"item_id", id,
		)
		return nil, fmt.Errorf("failed to force-claim item: %w", err)
	}

	r.logger.Info("Item force-claimed for resolution", "item_id", item.ID, "url", item.URL)
	return item, nil
}

// SaveResolution persists resolved metadata, media lists and local artifact
// paths, and transitions the item from resolving to media_resolved
func (r *ItemRepository) SaveResolution(ctx context.Context, item *domain.Item) error {
	images, err := pipelist.Join(item.Images)
	if err != nil {
		return fmt.Errorf("failed to encode image list: %w", err)
	}
	videos, err := pipelist.Join(item.Videos)
	if err != nil {
		return fmt.Errorf("failed to encode video list: %w", err)
	}

	query := `
		UPDATE items SET
			title = $2,
			description = $3,
			source = $4,
			content_type = $5,
			username = $6,
			images = $7,
			videos = $8,
			local_image_path = $9,
			local_video_path = $10,
			avatar_path = $11,
			state = $12,
			failure_reason = '',
			processed = 0,
			updated_at = NOW()
		WHERE id = $1 AND state = $13`

	result, err := r.db.ExecContext(ctx, query,
		item.ID,
		item.Title,
		item.Description,
		item.Source,
		item.ContentType,
		item.Username,
		images,
		videos,
		item.LocalImagePath,
		item.LocalVideoPath,
		item.AvatarPath,
		domain.StateMediaResolved,
		domain.StateResolving,
	)
	if err != nil {
		r.logger.Error("Failed to save resolution",
			"error", err,
			"item_id", item.ID,
		)
		return fmt.Errorf("failed to save resolution: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		r.logger.Warn("Resolution save matched no resolving row", "item_id", item.ID)
		return domain.ErrInvalidTransition
	}

	item.State = domain.StateMediaResolved
	r.logger.Info("Resolution saved",
		"item_id", item.ID,
		"title", item.Title,
		"source", item.Source,
		"has_video", item.LocalVideoPath != "",
	)
	return nil
}

// MarkFailed transitions the item to failed with a reason. Terminal rows
// are left untouched.
func (r *ItemRepository) MarkFailed(ctx context.Context, id int64, reason string) error {
	query := `
		UPDATE items
		SET state = $1, failure_reason = $2, updated_at = NOW()
		WHERE id = $3 AND state NOT IN ($4, $5)`

	result, err := r.db.ExecContext(ctx, query,
		domain.StateFailed, reason, id, domain.StateProcessed, domain.StateFailed)
	if err != nil {
		r.logger.Error("Failed to mark item failed",
			"error", err,
			"item_id", id,
		)
		return fmt.Errorf("failed to mark item failed: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		r.logger.Warn("No non-terminal row to fail", "item_id", id)
		return domain.ErrInvalidTransition
	}

	r.logger.Info("Item marked failed", "item_id", id, "reason", reason)
	return nil
}

// MarkProcessed records downstream completion. The legacy processed flag
// is written alongside the state for consumers that predate the enum.
func (r *ItemRepository) MarkProcessed(ctx context.Context, id int64) error {
	query := `
		UPDATE items
		SET state = $1, processed = 1, updated_at = NOW()
		WHERE id = $2 AND state = $3`

	result, err := r.db.ExecContext(ctx, query,
		domain.StateProcessed, id, domain.StateMediaResolved)
	if err != nil {
		r.logger.Error("Failed to mark item processed",
			"error", err,
			"item_id", id,
		)
		return fmt.Errorf("failed to mark item processed: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		r.logger.Warn("No media_resolved row to process", "item_id", id)
		return domain.ErrInvalidTransition
	}

	r.logger.Info("Item marked processed", "item_id", id)
	return nil
}

// SetVideoOffset stores an operator-supplied trim offset
func (r *ItemRepository) SetVideoOffset(ctx context.Context, id int64, offsetSec int) error {
	query := `
		UPDATE items
		SET video_offset_sec = $1, updated_at = NOW()
		WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, offsetSec, id)
	if err != nil {
		r.logger.Error("Failed to set video offset",
			"error", err,
			"item_id", id,
		)
		return fmt.Errorf("failed to set video offset: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}

	r.logger.Info("Video offset set", "item_id", id, "offset_sec", offsetSec)
	return nil
}

// CountByState returns per-state item counts for stats reporting
func (r *ItemRepository) CountByState(ctx context.Context) (map[domain.State]int, error) {
	query, args, err := r.sb.
		Select("state", "COUNT(*)").
		From("items").
		GroupBy("state").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build count query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to count items by state", "error", err)
		return nil, fmt.Errorf("failed to count items by state: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.State]int)
	for rows.Next() {
		var state domain.State
		var count int
		if err := rows.Scan(&state, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count row: %w", err)
		}
		counts[state] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate count rows: %w", err)
	}

	return counts, nil
}
