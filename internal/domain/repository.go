package domain

import (
	"context"
	"time"
)

// ItemRepository defines the persistence contract for pipeline items.
// The work queue store is the single source of truth; all state mutations
// go through it as single-row read-modify-write operations keyed by id.
type ItemRepository interface {
	// GetByID retrieves an item with media lists materialized
	GetByID(ctx context.Context, id int64) (*Item, error)

	// GetByURL finds an existing item for duplicate detection
	GetByURL(ctx context.Context, url string) (*Item, error)

	// Create inserts a new item in state received. If the URL already
	// exists the existing item is returned with created=false and no
	// second row is written.
	Create(ctx context.Context, item *Item) (created bool, err error)

	// ListByState returns items in the given state, oldest first by id
	ListByState(ctx context.Context, state State, limit int) ([]*Item, error)

	// Claim moves an item from received or failed into resolving.
	// The conditional update doubles as the at-most-one-in-flight lock:
	// it returns ErrAlreadyClaimed when the row is not claimable.
	Claim(ctx context.Context, id int64) (*Item, error)

	// ForceClaim moves an item into resolving regardless of its current
	// state. Operator path only: reprocessing an already resolved or
	// processed item is a deliberate command, never a drain decision.
	ForceClaim(ctx context.Context, id int64) (*Item, error)

	// SaveResolution persists the article metadata, raw media lists and
	// local artifact paths, and transitions the item to media_resolved
	SaveResolution(ctx context.Context, item *Item) error

	// MarkFailed transitions the item to failed with a reason
	MarkFailed(ctx context.Context, id int64, reason string) error

	// MarkProcessed records downstream completion (media_resolved -> processed)
	MarkProcessed(ctx context.Context, id int64) error

	// SetVideoOffset stores an operator-supplied trim offset ahead of a
	// forced re-resolution
	SetVideoOffset(ctx context.Context, id int64, offsetSec int) error

	// CountByState returns per-state item counts for stats reporting
	CountByState(ctx context.Context) (map[State]int, error)
}

// Channel is a messaging channel the monitor service watches
type Channel struct {
	ID        string     `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	Enabled   bool       `json:"enabled" db:"enabled"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at" db:"updated_at"`
}

// ChannelRepository defines persistence for watched channels
type ChannelRepository interface {
	GetByID(ctx context.Context, id string) (*Channel, error)
	Create(ctx context.Context, channel *Channel) error
	List(ctx context.Context) ([]*Channel, error)
	SetEnabled(ctx context.Context, id string, enabled bool) error
}

// SignalRepository coordinates the monitor and resolver processes without
// ever holding item state: message dedup on the inbound side and a wake
// nudge on the outbound side.
type SignalRepository interface {
	// MarkMessageSeen records an inbound message id, returning false if
	// it was already recorded (restart-safe channel dedup)
	MarkMessageSeen(ctx context.Context, messageID string) (first bool, err error)

	// NotifyItemReceived wakes any resolver waiting between drain passes
	NotifyItemReceived(ctx context.Context, itemID int64) error

	// WaitForItem blocks until a wake notification arrives, the timeout
	// elapses, or ctx is cancelled
	WaitForItem(ctx context.Context, timeout time.Duration) error

	// RequestResolve hands an operator requeue request to the resolver.
	// Losing a pending request costs a re-issued command, nothing more.
	RequestResolve(ctx context.Context, req ResolveRequest) error

	// NextResolveRequest pops the oldest pending operator request, ok is
	// false when none are queued
	NextResolveRequest(ctx context.Context) (req ResolveRequest, ok bool, err error)
}

// ResolveRequest is an operator's instruction to re-run one item
type ResolveRequest struct {
	ItemID     int64 `json:"item_id"`
	OffsetSec  int   `json:"offset_sec"`
	ForceMedia bool  `json:"force_media"`
}
