package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-storefront/internal/events"
)

// LogNotifier writes every event as a structured log line.
type LogNotifier struct {
	Logger zerolog.Logger
}

// Notify implements events.Notifier.
func (n LogNotifier) Notify(_ context.Context, event events.Event) error {
	evt := n.Logger.Info().
		Str("topic", event.Topic).
		Str("title", event.Title).
		Str("description", event.Description)
	for k, v := range event.Attributes {
		evt = evt.Str(k, v)
	}
	evt.Msg("storefront_notification")
	return nil
}
