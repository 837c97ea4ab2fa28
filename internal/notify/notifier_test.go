package notify

import (
	"context"
	"testing"

	"github.com/pawtrails/backoffice/internal/config"
)

func TestNewNotifier_DisabledIsNoOp(t *testing.T) {
	cfg := &config.Config{}
	cfg.Notifications.Enabled = false

	n := NewNotifier(cfg)
	if n == nil {
		t.Fatal("NewNotifier should never return nil")
	}

	// Publishing through a disabled notifier must not panic or block
	n.Publish(context.Background(), &Event{Type: EventContentDeleted})
	if err := n.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestNewNotifier_RequiresRedis(t *testing.T) {
	cfg := &config.Config{}
	cfg.Notifications.Enabled = true
	cfg.Notifications.Queue = "backoffice:notifications"
	cfg.Redis.Enabled = false

	n := NewNotifier(cfg)
	if n.client != nil {
		t.Error("notifier should be no-op when Redis is disabled")
	}
}
