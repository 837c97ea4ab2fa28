// Package notify pushes moderation events onto a Redis list consumed by the
// platform's notification workers. Delivery is best-effort: a failed push is
// logged and never fails the moderation action that triggered it.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pawtrails/backoffice/internal/config"
)

// Event is the payload pushed to the notification queue
type Event struct {
	Type        string    `json:"type"`
	ContentType string    `json:"contentType,omitempty"`
	ContentID   string    `json:"contentId,omitempty"`
	UserID      string    `json:"userId,omitempty"`
	ActorID     string    `json:"actorId,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// Event types emitted by the moderation surface
const (
	EventContentDeleted  = "content.deleted"
	EventContentRestored = "content.restored"
	EventUserRangeBlock  = "user.range_blocked"
)

// Notifier publishes events. The zero notifier from a disabled config is a
// safe no-op so callers never need a nil check.
type Notifier struct {
	client *redis.Client
	queue  string
}

// NewNotifier builds a Notifier from config. Returns a no-op notifier when
// notifications or Redis are disabled.
func NewNotifier(cfg *config.Config) *Notifier {
	if !cfg.Notifications.Enabled || !cfg.Redis.Enabled {
		return &Notifier{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	return &Notifier{
		client: client,
		queue:  cfg.Notifications.Queue,
	}
}

// Publish pushes the event onto the queue. Errors are logged, not returned;
// notification loss never rolls back a committed moderation action.
func (n *Notifier) Publish(ctx context.Context, event *Event) {
	if n.client == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		slog.Warn("failed to marshal notification event", "type", event.Type, "error", err)
		return
	}

	if err := n.client.LPush(ctx, n.queue, payload).Err(); err != nil {
		slog.Warn("failed to publish notification event",
			"type", event.Type,
			"queue", n.queue,
			"error", err)
	}
}

// Close releases the Redis connection
func (n *Notifier) Close() error {
	if n.client == nil {
		return nil
	}
	return n.client.Close()
}
