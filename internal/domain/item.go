package domain

import (
	"errors"
	"time"
)

// Item represents one submitted URL tracked through the resolution pipeline
type Item struct {
	ID        int64  `json:"id" db:"id"`
	URL       string `json:"url" db:"url"`
	ChannelID string `json:"channel_id" db:"channel_id"`
	Username  string `json:"username" db:"username"`

	// Resolved content
	Title       string `json:"title" db:"title"`
	Description string `json:"description" db:"description"`
	Source      string `json:"source" db:"source"`
	ContentType string `json:"content_type" db:"content_type"`

	// Raw media candidate lists, persisted pipe-delimited
	Images []string `json:"images" db:"images"`
	Videos []string `json:"videos" db:"videos"`

	// Local artifacts promoted by media acquisition
	LocalImagePath string `json:"local_image_path" db:"local_image_path"`
	LocalVideoPath string `json:"local_video_path" db:"local_video_path"`
	AvatarPath     string `json:"avatar_path" db:"avatar_path"`

	// Lifecycle
	State          State  `json:"state" db:"state"`
	FailureReason  string `json:"failure_reason" db:"failure_reason"`
	VideoOffsetSec int    `json:"video_offset_sec" db:"video_offset_sec"`

	ReceivedAt time.Time  `json:"received_at" db:"received_at"`
	UpdatedAt  *time.Time `json:"updated_at" db:"updated_at"`
}

// State is the lifecycle state of an item in the work queue
type State string

// Lifecycle states. Transitions move strictly forward; failed is reachable
// from any non-terminal state. An operator reprocess is the only path out
// of failed.
const (
	StateReceived      State = "received"
	StateResolving     State = "resolving"
	StateMediaResolved State = "media_resolved"
	StateProcessed     State = "processed"
	StateFailed        State = "failed"
)

// Content classification constants
const (
	ContentTypeArticle    = "article"
	ContentTypeSocialPost = "social_post"
)

// Sentinel errors shared across the pipeline
var (
	// ErrNotFound is returned when an item id or url has no row
	ErrNotFound = errors.New("item not found")

	// ErrUnresolved means every resolution strategy was exhausted
	// without producing a title
	ErrUnresolved = errors.New("unresolved: no strategy produced a title")

	// ErrInvalidTransition is returned for a state change the lifecycle
	// does not allow
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrAlreadyClaimed means another worker holds the resolving lock
	// for this item
	ErrAlreadyClaimed = errors.New("item already claimed for resolution")
)

// IsTerminal reports whether the state admits no further pipeline work
func (s State) IsTerminal() bool {
	return s == StateProcessed || s == StateFailed
}

// IsValid reports whether s is one of the known lifecycle states
func (s State) IsValid() bool {
	switch s {
	case StateReceived, StateResolving, StateMediaResolved, StateProcessed, StateFailed:
		return true
	}
	return false
}

// CanTransitionTo validates a forward lifecycle move. Failed is allowed
// from any non-terminal state. The received/failed -> resolving claim is
// the concurrency mutex: it is the only automatic entry into resolving.
// A forced operator reprocess re-enters resolving from any state and
// deliberately bypasses this check.
func (s State) CanTransitionTo(next State) bool {
	if !next.IsValid() {
		return false
	}
	if next == StateFailed {
		return !s.IsTerminal()
	}
	switch s {
	case StateReceived:
		return next == StateResolving
	case StateResolving:
		return next == StateMediaResolved
	case StateMediaResolved:
		return next == StateProcessed
	case StateFailed:
		// Operator reprocess path only.
		return next == StateResolving
	}
	return false
}

// Processed is the legacy boolean projection of the state column,
// retained for external consumers that predate the state enum.
func (i *Item) Processed() bool {
	return i.State == StateProcessed
}

// IsSocialPost reports whether video-over-image priority applies
func (i *Item) IsSocialPost() bool {
	return i.ContentType == ContentTypeSocialPost
}
