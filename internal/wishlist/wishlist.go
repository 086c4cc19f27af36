// Package wishlist keeps the shopper's saved products.
package wishlist

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-storefront/internal/events"
)

// ErrInvalidInput is returned for a blank product id.
var ErrInvalidInput = errors.New("wishlist: product id required")

// Entry is a saved product.
type Entry struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
}

// Wishlist is an insertion-ordered set of products.
type Wishlist struct {
	mu      sync.RWMutex
	entries []Entry
	index   map[string]struct{}
	events  events.Emitter
	logger  zerolog.Logger
}

// New returns an empty wishlist.
func New(emitter events.Emitter, logger *zerolog.Logger) *Wishlist {
	w := &Wishlist{index: map[string]struct{}{}, events: emitter, logger: zerolog.Nop()}
	if w.events == nil {
		w.events = events.Nop{}
	}
	if logger != nil {
		w.logger = logger.With().Str("component", "wishlist").Logger()
	}
	return w
}

// Add saves the product. Adding a product already on the list keeps a single
// entry but the shopper is still notified. It reports whether a new entry was
// created.
func (w *Wishlist) Add(ctx context.Context, entry Entry) (bool, error) {
	entry.ProductID = strings.TrimSpace(entry.ProductID)
	if entry.ProductID == "" {
		return false, ErrInvalidInput
	}
	w.mu.Lock()
	_, exists := w.index[entry.ProductID]
	if !exists {
		w.index[entry.ProductID] = struct{}{}
		w.entries = append(w.entries, entry)
	}
	w.mu.Unlock()

	if err := w.events.Emit(ctx, events.Event{
		Topic:       events.TopicWishlistItemAdded,
		Title:       "Added to Wishlist!",
		Description: "Product has been added to your wishlist.",
		Attributes:  map[string]string{"product_id": entry.ProductID},
	}); err != nil {
		w.logger.Warn().Err(err).Str("product_id", entry.ProductID).Msg("wishlist_notify_failed")
	}
	return !exists, nil
}

// Remove deletes a product; it reports whether it was present.
func (w *Wishlist) Remove(productID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.index[productID]; !ok {
		return false
	}
	delete(w.index, productID)
	for i, e := range w.entries {
		if e.ProductID == productID {
			w.entries = append(w.entries[:i], w.entries[i+1:]...)
			break
		}
	}
	return true
}

// Contains reports whether productID is saved.
func (w *Wishlist) Contains(productID string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.index[productID]
	return ok
}

// Entries returns the saved products in insertion order.
func (w *Wishlist) Entries() []Entry {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]Entry(nil), w.entries...)
}

// Len returns the number of saved products.
func (w *Wishlist) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.entries)
}
