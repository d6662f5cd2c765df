package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/woai-art/shorts-news-sub001/internal/domain"
)

// ChannelRepository implements the domain.ChannelRepository interface using PostgreSQL
type ChannelRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewChannelRepository creates a new PostgreSQL channel repository
func NewChannelRepository(db *sql.DB, logger *slog.Logger) *ChannelRepository {
	return &ChannelRepository{
		db:     db,
		logger: logger,
	}
}

// GetByID retrieves a watched channel by its messaging-platform ID
func (r *ChannelRepository) GetByID(ctx context.Context, id string) (*domain.Channel, error) {
	query := `
		SELECT id, name, enabled, created_at, updated_at
		FROM channels
		WHERE id = $1`

	channel := &domain.Channel{}
	var updatedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&channel.ID,
		&channel.Name,
		&channel.Enabled,
		&channel.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			r.logger.Debug("Channel not found", "channel_id", id)
			return nil, domain.ErrNotFound
		}
		r.logger.Error("Failed to query channel",
			"error", err,
			"channel_id", id,
		)
		return nil, fmt.Errorf("failed to query channel: %w", err)
	}

	if updatedAt.Valid {
		channel.UpdatedAt = &updatedAt.Time
	}

	return channel, nil
}

// Create registers a channel for monitoring. Re-creating an existing
// channel refreshes its name and re-enables it.
func (r *ChannelRepository) Create(ctx context.Context, channel *domain.Channel) error {
	query := `
		INSERT INTO channels (id, name, enabled)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, enabled = EXCLUDED.enabled, updated_at = NOW()`

	_, err := r.db.ExecContext(ctx, query, channel.ID, channel.Name, channel.Enabled)
	if err != nil {
		r.logger.Error("Failed to create channel",
			"error", err,
			"channel_id", channel.ID,
		)
		return fmt.Errorf("failed to create channel: %w", err)
	}

	r.logger.Info("Channel registered",
		"channel_id", channel.ID,
		"name", channel.Name,
		"enabled", channel.Enabled,
	)
	return nil
}

// List returns all registered channels
func (r *ChannelRepository) List(ctx context.Context) ([]*domain.Channel, error) {
	query := `
		SELECT id, name, enabled, created_at, updated_at
		FROM channels
		ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list channels", "error", err)
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	defer rows.Close()

	var channels []*domain.Channel
	for rows.Next() {
		channel := &domain.Channel{}
		var updatedAt sql.NullTime
		if err := rows.Scan(
			&channel.ID,
			&channel.Name,
			&channel.Enabled,
			&channel.CreatedAt,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan channel row: %w", err)
		}
		if updatedAt.Valid {
			channel.UpdatedAt = &updatedAt.Time
		}
		channels = append(channels, channel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate channel rows: %w", err)
	}

	return channels, nil
}

// SetEnabled toggles monitoring for a channel
func (r *ChannelRepository) SetEnabled(ctx context.Context, id string, enabled bool) error {
	query := `
		UPDATE channels
		SET enabled = $1, updated_at = NOW()
		WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, enabled, id)
	if err != nil {
		r.logger.Error("Failed to toggle channel",
			"error", err,
			"channel_id", id,
		)
		return fmt.Errorf("failed to toggle channel: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}

	r.logger.Info("Channel toggled", "channel_id", id, "enabled", enabled)
	return nil
}
