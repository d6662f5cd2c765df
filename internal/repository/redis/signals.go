package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/woai-art/shorts-news-sub001/internal/domain"
)

// Redis key patterns
const (
	seenKeyPrefix = "monitor:seen:" // monitor:seen:message_id
	wakeChannel   = "items:wake"
	requeueKey    = "items:requeue"
)

// seenTTL bounds the dedup set; a message older than this re-arriving is
// a platform replay we no longer care about.
const seenTTL = 7 * 24 * time.Hour

// SignalRepository implements the domain.SignalRepository interface using
// Redis. It carries coordination only: inbound message dedup for the
// monitor and a wake nudge for the resolver. Losing every key here costs
// nothing but latency and a few duplicate lookups against Postgres.
type SignalRepository struct {
	client *redis.Client
	logger *slog.Logger

	mu     sync.Mutex
	pubsub *redis.PubSub
	wake   <-chan *redis.Message
}

// NewSignalRepository creates a new Redis signal repository
func NewSignalRepository(client *redis.Client, logger *slog.Logger) *SignalRepository {
	return &SignalRepository{
		client: client,
		logger: logger,
	}
}

// MarkMessageSeen records an inbound message id, returning false when it
// was already recorded. SETNX makes the check-and-set atomic across
// monitor restarts and replicas.
func (r *SignalRepository) MarkMessageSeen(ctx context.Context, messageID string) (bool, error) {
	first, err := r.client.SetNX(ctx, seenKeyPrefix+messageID, "1", seenTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark message seen: %w", err)
	}

	if !first {
		r.logger.Debug("Message already seen", "message_id", messageID)
	}
	return first, nil
}

// NotifyItemReceived wakes any resolver waiting between drain passes
func (r *SignalRepository) NotifyItemReceived(ctx context.Context, itemID int64) error {
	if err := r.client.Publish(ctx, wakeChannel, strconv.FormatInt(itemID, 10)).Err(); err != nil {
		return fmt.Errorf("failed to publish wake signal: %w", err)
	}

	r.logger.Debug("Wake signal published", "item_id", itemID)
	return nil
}

// WaitForItem blocks until a wake notification arrives, the timeout
// elapses, or ctx is cancelled. A timeout is not an error: the resolver
// polls on its own schedule and the signal only shortens the wait.
func (r *SignalRepository) WaitForItem(ctx context.Context, timeout time.Duration) error {
	wake, err := r.wakeChannel(ctx)
	if err != nil {
		return err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case msg, ok := <-wake:
		if !ok {
			return fmt.Errorf("wake subscription closed")
		}
		r.logger.Debug("Wake signal received", "payload", msg.Payload)
		return nil
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RequestResolve queues an operator requeue request for the resolver and
// wakes it
func (r *SignalRepository) RequestResolve(ctx context.Context, req domain.ResolveRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal resolve request: %w", err)
	}

	if err := r.client.LPush(ctx, requeueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to queue resolve request: %w", err)
	}
	if err := r.client.Publish(ctx, wakeChannel, strconv.FormatInt(req.ItemID, 10)).Err(); err != nil {
		r.logger.Warn("Resolve request queued but wake publish failed", "error", err)
	}

	r.logger.Info("Operator resolve request queued",
		"item_id", req.ItemID,
		"offset_sec", req.OffsetSec,
		"force_media", req.ForceMedia,
	)
	return nil
}

// NextResolveRequest pops the oldest pending operator request
func (r *SignalRepository) NextResolveRequest(ctx context.Context) (domain.ResolveRequest, bool, error) {
	var req domain.ResolveRequest

	payload, err := r.client.RPop(ctx, requeueKey).Result()
	if err == redis.Nil {
		return req, false, nil
	}
	if err != nil {
		return req, false, fmt.Errorf("failed to pop resolve request: %w", err)
	}

	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return req, false, fmt.Errorf("failed to parse resolve request %q: %w", payload, err)
	}
	return req, true, nil
}

// wakeChannel lazily establishes the long-lived subscription
func (r *SignalRepository) wakeChannel(ctx context.Context) (<-chan *redis.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.wake != nil {
		return r.wake, nil
	}

	pubsub := r.client.Subscribe(ctx, wakeChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to wake channel: %w", err)
	}

	r.pubsub = pubsub
	r.wake = pubsub.Channel()
	r.logger.Info("Subscribed to wake channel", "channel", wakeChannel)
	return r.wake, nil
}

// Close tears down the wake subscription
func (r *SignalRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pubsub != nil {
		err := r.pubsub.Close()
		r.pubsub = nil
		r.wake = nil
		return err
	}
	return nil
}
