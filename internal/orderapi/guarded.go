package orderapi

import (
	"context"

	"github.com/noah-isme/toko-storefront/internal/resilience"
)

// Guarded routes calls through a circuit breaker. While the breaker is open
// Submit fails fast with resilience.ErrOpenCircuit.
type Guarded struct {
	API     API
	Breaker *resilience.Breaker
}

// Submit implements API.
func (g Guarded) Submit(ctx context.Context, order Order) (Confirmation, error) {
	if g.Breaker == nil {
		return g.API.Submit(ctx, order)
	}
	var conf Confirmation
	err := g.Breaker.Do(ctx, func(ctx context.Context) error {
		var err error
		conf, err = g.API.Submit(ctx, order)
		return err
	})
	if err != nil {
		return Confirmation{}, err
	}
	return conf, nil
}
