package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Event is a shopper-facing notification.
type Event struct {
	Topic       string            `json:"topic"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	OccurredAt  time.Time         `json:"occurredAt"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

// Notifier reacts to emitted events (toast feed, logs, pub/sub, ...).
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, event Event) error

// Notify implements Notifier.
func (f NotifierFunc) Notify(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Emitter is the capability handed to components that publish notifications.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// Bus fans events out to downstream notifiers.
type Bus struct {
	Notifiers []Notifier
	Now       func() time.Time
}

// Emit stamps the event and dispatches it to all configured notifiers. Every
// notifier is invoked even when an earlier one fails; failures are joined.
func (b *Bus) Emit(ctx context.Context, event Event) error {
	if b == nil {
		return nil
	}
	event.Topic = strings.TrimSpace(event.Topic)
	if event.Topic == "" {
		return errors.New("events: topic is required")
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = b.now()
	}
	var joined error
	for _, notifier := range b.Notifiers {
		if notifier == nil {
			continue
		}
		if err := notifier.Notify(ctx, event); err != nil {
			joined = errors.Join(joined, fmt.Errorf("events: notifier: %w", err))
		}
	}
	return joined
}

func (b *Bus) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now().UTC()
}

// Nop discards every event.
type Nop struct{}

// Emit implements Emitter.
func (Nop) Emit(context.Context, Event) error { return nil }
