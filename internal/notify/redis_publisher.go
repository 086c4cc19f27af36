package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/toko-storefront/internal/events"
)

// DefaultChannel is the pub/sub channel used when none is configured.
const DefaultChannel = "storefront:notifications"

// RedisPublisher forwards events as JSON onto a Redis pub/sub channel so other
// processes (toast gateways, analytics) can subscribe.
type RedisPublisher struct {
	Client  redis.UniversalClient
	Channel string
	// TopicToggles disables individual topics when set to false.
	TopicToggles map[string]bool
}

// Notify implements events.Notifier.
func (p RedisPublisher) Notify(ctx context.Context, event events.Event) error {
	if p.Client == nil {
		return errors.New("notify: redis client not configured")
	}
	if p.TopicToggles != nil {
		if enabled, ok := p.TopicToggles[event.Topic]; ok && !enabled {
			return nil
		}
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("notify: encode event: %w", err)
	}
	if err := p.Client.Publish(ctx, p.channel(), payload).Err(); err != nil {
		return fmt.Errorf("notify: publish: %w", err)
	}
	return nil
}

func (p RedisPublisher) channel() string {
	if ch := strings.TrimSpace(p.Channel); ch != "" {
		return ch
	}
	return DefaultChannel
}
