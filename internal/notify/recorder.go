package notify

import (
	"context"
	"sync"

	"github.com/noah-isme/toko-storefront/internal/events"
)

// Recorder keeps delivered events in memory. Sessions use it as the toast
// feed drained by the UI; tests use it as a capture.
type Recorder struct {
	mu     sync.Mutex
	events []events.Event
	limit  int
}

// NewRecorder returns a recorder keeping at most limit events (0 = unbounded).
func NewRecorder(limit int) *Recorder {
	return &Recorder{limit: limit}
}

// Notify implements events.Notifier.
func (r *Recorder) Notify(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	if r.limit > 0 && len(r.events) > r.limit {
		r.events = append([]events.Event(nil), r.events[len(r.events)-r.limit:]...)
	}
	return nil
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.events...)
}

// Drain returns the recorded events and clears the buffer.
func (r *Recorder) Drain() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.events
	r.events = nil
	return out
}

// Topics lists the topics of the recorded events in delivery order.
func (r *Recorder) Topics() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Topic)
	}
	return out
}
