// Package product models the product detail page: variant selection, the
// quantity picker and the add-to-cart and add-to-wishlist actions.
package product

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-storefront/internal/cart"
	"github.com/noah-isme/toko-storefront/internal/catalog"
	"github.com/noah-isme/toko-storefront/internal/events"
	"github.com/noah-isme/toko-storefront/internal/variant"
	"github.com/noah-isme/toko-storefront/internal/wishlist"
)

// ErrSelectionIncomplete is returned when a required variant group has no
// valid selection.
var ErrSelectionIncomplete = errors.New("product: variant selection incomplete")

// Config wires a Page to the shopper's session.
type Config struct {
	Cart     *cart.Store
	Wishlist *wishlist.Wishlist
	Events   events.Emitter
	Logger   *zerolog.Logger
}

// Page is one shopper's view of a product.
type Page struct {
	mu       sync.Mutex
	product  catalog.Product
	resolver *variant.Resolver
	quantity int
	cart     *cart.Store
	wishlist *wishlist.Wishlist
	events   events.Emitter
	logger   zerolog.Logger
}

// View is the renderable page state.
type View struct {
	Product      catalog.Product   `json:"product"`
	Selection    variant.Selection `json:"selection"`
	Quantity     int               `json:"quantity"`
	CanAddToCart bool              `json:"canAddToCart"`
	Descriptor   string            `json:"descriptor,omitempty"`
}

// NewPage opens a page with the first colour and the first available size
// preselected and a quantity of 1.
func NewPage(p catalog.Product, cfg Config) *Page {
	pg := &Page{
		product:  p,
		resolver: variant.NewResolver(),
		quantity: 1,
		cart:     cfg.Cart,
		wishlist: cfg.Wishlist,
		events:   cfg.Events,
		logger:   zerolog.Nop(),
	}
	if pg.events == nil {
		pg.events = events.Nop{}
	}
	if cfg.Logger != nil {
		pg.logger = cfg.Logger.With().Str("component", "product").Str("product_id", p.ID).Logger()
	}
	for _, g := range p.VariantGroups {
		switch g.Kind {
		case variant.KindColor:
			if len(g.Options) > 0 {
				pg.resolver.SelectOption(g, g.Options[0].Name)
			}
		case variant.KindSize:
			if opt, ok := g.FirstAvailable(); ok {
				pg.resolver.SelectOption(g, opt.Name)
			}
		}
	}
	return pg
}

// Product returns the product shown.
func (p *Page) Product() catalog.Product {
	return p.product
}

// Select chooses an option in the group with the given label (case
// insensitive). Unknown groups, unknown options and disabled options are
// ignored; it reports whether the selection changed.
func (p *Page) Select(groupLabel, option string) bool {
	for _, g := range p.product.VariantGroups {
		if strings.EqualFold(g.Label, strings.TrimSpace(groupLabel)) {
			return p.resolver.SelectOption(g, option)
		}
	}
	return false
}

// SetQuantity clamps qty to [1, cart.MaxQuantity] and returns the stored value.
func (p *Page) SetQuantity(qty int) int {
	if qty < 1 {
		qty = 1
	}
	if qty > cart.MaxQuantity {
		qty = cart.MaxQuantity
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.quantity = qty
	return qty
}

// SetQuantityInput applies raw quantity input; non-numeric input becomes 1.
func (p *Page) SetQuantityInput(raw string) int {
	return p.SetQuantity(cart.ParseQuantity(raw))
}

// Quantity returns the picked quantity.
func (p *Page) Quantity() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.quantity
}

// CanAddToCart reports whether every variant group has a valid selection.
func (p *Page) CanAddToCart() bool {
	return p.resolver.IsComplete(p.product.VariantGroups)
}

// View returns the current page state.
func (p *Page) View() View {
	sel := p.resolver.Selection()
	return View{
		Product:      p.product,
		Selection:    sel,
		Quantity:     p.Quantity(),
		CanAddToCart: sel.Complete(p.product.VariantGroups),
		Descriptor:   sel.Describe(p.product.VariantGroups),
	}
}

// AddToCart puts the selected variant into the cart with the picked quantity.
// The id and descriptor are built from a single selection snapshot.
func (p *Page) AddToCart(ctx context.Context) (cart.LineItem, error) {
	if p.cart == nil {
		return cart.LineItem{}, errors.New("product: cart not configured")
	}
	sel := p.resolver.Selection()
	if !sel.Complete(p.product.VariantGroups) {
		return cart.LineItem{}, ErrSelectionIncomplete
	}
	qty := p.Quantity()
	item := cart.LineItem{
		ID:                p.lineItemID(sel),
		Name:              p.product.Name,
		UnitPrice:         p.product.Price,
		Quantity:          qty,
		VariantDescriptor: sel.Describe(p.product.VariantGroups),
	}
	if err := p.cart.AddItem(ctx, item); err != nil {
		return cart.LineItem{}, fmt.Errorf("add to cart: %w", err)
	}
	if err := p.events.Emit(ctx, events.Event{
		Topic:       events.TopicCartItemAdded,
		Title:       "Added to Cart!",
		Description: fmt.Sprintf("Successfully added %d item(s) to your cart.", qty),
		Attributes:  map[string]string{"item_id": item.ID},
	}); err != nil {
		p.logger.Warn().Err(err).Str("item_id", item.ID).Msg("cart_notify_failed")
	}
	return item, nil
}

// AddToWishlist saves the product for later.
func (p *Page) AddToWishlist(ctx context.Context) error {
	if p.wishlist == nil {
		return errors.New("product: wishlist not configured")
	}
	_, err := p.wishlist.Add(ctx, wishlist.Entry{ProductID: p.product.ID, Name: p.product.Name})
	return err
}

// lineItemID identifies a product variant in the cart, e.g.
// "premium-smartwatch-series-x/midnight-black/l".
func (p *Page) lineItemID(sel variant.Selection) string {
	parts := []string{p.product.ID}
	for _, g := range p.product.VariantGroups {
		if name, ok := sel[g.Label]; ok {
			parts = append(parts, slug(name))
		}
	}
	return strings.Join(parts, "/")
}

func slug(v string) string {
	return strings.Join(strings.Fields(strings.ToLower(v)), "-")
}
