package orderapi

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Simulated acknowledges every order after a fixed latency.
type Simulated struct {
	Latency time.Duration
	// Fail, when set, can reject an order; a non-nil result is returned as-is.
	Fail  func(Order) error
	NewID func() string
	Now   func() time.Time
}

// Submit waits for the configured latency, honouring ctx, then confirms the order.
func (s Simulated) Submit(ctx context.Context, order Order) (Confirmation, error) {
	if s.Latency > 0 {
		timer := time.NewTimer(s.Latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Confirmation{}, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return Confirmation{}, err
	}
	if s.Fail != nil {
		if err := s.Fail(order); err != nil {
			return Confirmation{}, err
		}
	}
	id := uuid.NewString()
	if s.NewID != nil {
		id = s.NewID()
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return Confirmation{OrderID: id, PlacedAt: now().UTC()}, nil
}
