// Package orderapi holds the order placement contract and its in-process
// implementations.
package orderapi

import (
	"context"
	"errors"
	"time"

	"github.com/noah-isme/toko-storefront/internal/cart"
	"github.com/noah-isme/toko-storefront/internal/checkout"
	"github.com/noah-isme/toko-storefront/internal/pricing"
)

// ErrRejected is returned when the order service declines an order.
var ErrRejected = errors.New("order rejected")

// Order is the immutable payload handed to the order service.
type Order struct {
	Reference string          `json:"reference"`
	Items     []cart.LineItem `json:"items"`
	Totals    pricing.Totals  `json:"totals"`
	Form      checkout.Form   `json:"form"`
}

// Confirmation acknowledges a placed order.
type Confirmation struct {
	OrderID  string    `json:"orderId"`
	PlacedAt time.Time `json:"placedAt"`
}

// API places orders.
type API interface {
	Submit(ctx context.Context, order Order) (Confirmation, error)
}

// Func adapts a function to API.
type Func func(ctx context.Context, order Order) (Confirmation, error)

// Submit implements API.
func (f Func) Submit(ctx context.Context, order Order) (Confirmation, error) {
	return f(ctx, order)
}
