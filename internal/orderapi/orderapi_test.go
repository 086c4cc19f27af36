package orderapi

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-storefront/internal/resilience"
)

func TestSimulatedConfirms(t *testing.T) {
	placed := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	api := Simulated{Now: func() time.Time { return placed }}

	conf, err := api.Submit(context.Background(), Order{Reference: "ref-1"})
	require.NoError(t, err)
	_, parseErr := uuid.Parse(conf.OrderID)
	require.NoError(t, parseErr)
	require.Equal(t, placed, conf.PlacedAt)
}

func TestSimulatedHonoursContext(t *testing.T) {
	api := Simulated{Latency: time.Hour}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := api.Submit(ctx, Order{})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSimulatedFailureHook(t *testing.T) {
	api := Simulated{Fail: func(Order) error { return ErrRejected }}
	_, err := api.Submit(context.Background(), Order{})
	require.ErrorIs(t, err, ErrRejected)
}

func TestGuardedOpensAfterFailures(t *testing.T) {
	calls := 0
	boom := errors.New("upstream unavailable")
	inner := Func(func(context.Context, Order) (Confirmation, error) {
		calls++
		return Confirmation{}, boom
	})
	api := Guarded{API: inner, Breaker: resilience.NewBreaker(2, 0.5, time.Minute)}
	ctx := context.Background()

	_, err := api.Submit(ctx, Order{})
	require.ErrorIs(t, err, boom)
	_, err = api.Submit(ctx, Order{})
	require.ErrorIs(t, err, boom)

	_, err = api.Submit(ctx, Order{})
	require.ErrorIs(t, err, resilience.ErrOpenCircuit)
	require.Equal(t, 2, calls)
}

func TestGuardedPassesConfirmation(t *testing.T) {
	api := Guarded{
		API:     Simulated{NewID: func() string { return "order-42" }},
		Breaker: resilience.NewBreaker(1, 0.5, time.Minute),
	}
	conf, err := api.Submit(context.Background(), Order{})
	require.NoError(t, err)
	require.Equal(t, "order-42", conf.OrderID)
}
