// Package session groups the per-shopper storefront state.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-storefront/internal/cart"
	"github.com/noah-isme/toko-storefront/internal/catalog"
	"github.com/noah-isme/toko-storefront/internal/checkout"
	"github.com/noah-isme/toko-storefront/internal/events"
	"github.com/noah-isme/toko-storefront/internal/notify"
	"github.com/noah-isme/toko-storefront/internal/obs"
	"github.com/noah-isme/toko-storefront/internal/product"
	"github.com/noah-isme/toko-storefront/internal/submission"
	"github.com/noah-isme/toko-storefront/internal/wishlist"
)

// inboxLimit bounds the toast feed of an idle client.
const inboxLimit = 50

// Session is one shopper's storefront state.
type Session struct {
	ID         string
	Cart       *cart.Store
	Checkout   *checkout.Editor
	Wishlist   *wishlist.Wishlist
	Submission *submission.Controller
	Redirects  *RedirectRecorder
	Inbox      *notify.Recorder

	catalog  *catalog.Catalog
	events   events.Emitter
	logger   zerolog.Logger
	mu       sync.Mutex
	pages    map[string]*product.Page
	lastSeen time.Time
}

// Page returns the product page for productID, opening it on first use.
// Selection and quantity persist for the life of the session.
func (s *Session) Page(productID string) (*product.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pg, ok := s.pages[productID]; ok {
		return pg, nil
	}
	p, err := s.catalog.Lookup(productID)
	if err != nil {
		return nil, err
	}
	pg := product.NewPage(p, product.Config{
		Cart:     s.Cart,
		Wishlist: s.Wishlist,
		Events:   s.events,
		Logger:   &s.logger,
	})
	s.pages[p.ID] = pg
	return pg, nil
}

// Submit places the current cart with the current checkout form. A rejected
// form reveals every field error.
func (s *Session) Submit(ctx context.Context) (submission.Status, error) {
	ctx = obs.WithSessionID(ctx, s.ID)
	order := submission.BuildOrder(s.Cart, s.Checkout.Snapshot())
	st, err := s.Submission.Submit(ctx, order)
	if errors.Is(err, submission.ErrInvalidOrder) {
		s.Checkout.Reveal()
	}
	return st, err
}

// Dispose stops pending work owned by the session.
func (s *Session) Dispose() {
	s.Submission.Dispose()
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// tagSession stamps events with the owning session before handing them on.
func tagSession(id string, next events.Notifier) events.Notifier {
	return events.NotifierFunc(func(ctx context.Context, ev events.Event) error {
		attrs := make(map[string]string, len(ev.Attributes)+1)
		for k, v := range ev.Attributes {
			attrs[k] = v
		}
		attrs["session_id"] = id
		ev.Attributes = attrs
		return next.Notify(ctx, ev)
	})
}
