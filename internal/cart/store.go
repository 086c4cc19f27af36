package cart

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-storefront/internal/events"
	"github.com/noah-isme/toko-storefront/internal/obs"
	"github.com/noah-isme/toko-storefront/internal/pricing"
)

// ErrNotFound indicates the requested line item could not be located.
var ErrNotFound = errors.New("cart item not found")

// ErrInvalidInput is returned when the provided line item is malformed.
var ErrInvalidInput = errors.New("invalid input")

// LineItem is one product entry in the cart.
type LineItem struct {
	ID                string        `json:"id"`
	Name              string        `json:"name"`
	UnitPrice         pricing.Money `json:"unitPrice"`
	Quantity          int           `json:"quantity"`
	VariantDescriptor string        `json:"variantDescriptor,omitempty"`
}

// Subtotal returns unit price times quantity.
func (li LineItem) Subtotal() pricing.Money {
	return pricing.Money(li.Quantity) * li.UnitPrice
}

// Config wires a Store.
type Config struct {
	Rules  pricing.Rules
	Events events.Emitter
	Logger *zerolog.Logger
}

// Store owns the shopper's line items. Every mutation is atomic and totals are
// derived from the live item set on each read.
type Store struct {
	mu     sync.RWMutex
	items  []LineItem
	rules  pricing.Rules
	events events.Emitter
	logger zerolog.Logger
}

// NewStore constructs an empty cart.
func NewStore(cfg Config) *Store {
	s := &Store{rules: cfg.Rules, events: cfg.Events, logger: zerolog.Nop()}
	if s.rules == (pricing.Rules{}) {
		s.rules = pricing.DefaultRules()
	}
	if s.events == nil {
		s.events = events.Nop{}
	}
	if cfg.Logger != nil {
		s.logger = cfg.Logger.With().Str("component", "cart").Logger()
	}
	return s
}

// AddItem appends the item or, when its id is already present, increments the
// existing quantity by the incoming one, capped at MaxQuantity.
func (s *Store) AddItem(_ context.Context, item LineItem) error {
	item.ID = strings.TrimSpace(item.ID)
	if item.ID == "" {
		return fmt.Errorf("item id required: %w", ErrInvalidInput)
	}
	if item.UnitPrice < 0 || math.IsNaN(item.UnitPrice) || math.IsInf(item.UnitPrice, 0) {
		return fmt.Errorf("unit price must be non-negative: %w", ErrInvalidInput)
	}
	item.Quantity = clamp(item.Quantity)

	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.indexLocked(item.ID); idx >= 0 {
		s.items[idx].Quantity = clamp(s.items[idx].Quantity + item.Quantity)
		s.logger.Debug().Str("item_id", item.ID).Int("qty", s.items[idx].Quantity).Msg("cart_item_incremented")
	} else {
		s.items = append(s.items, item)
		s.logger.Debug().Str("item_id", item.ID).Int("qty", item.Quantity).Msg("cart_item_added")
	}
	recordMutation("add")
	return nil
}

// SetQuantity sets the quantity of a line item, clamping values below 1 to 1.
// Unknown ids are ignored. It reports whether an item was updated.
func (s *Store) SetQuantity(id string, qty int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return false
	}
	s.items[idx].Quantity = clamp(qty)
	recordMutation("set_quantity")
	return true
}

// SetQuantityInput applies raw user input: anything that is not a positive
// integer becomes 1.
func (s *Store) SetQuantityInput(id, raw string) bool {
	return s.SetQuantity(id, ParseQuantity(raw))
}

// RemoveItem deletes the line item and notifies the shopper.
func (s *Store) RemoveItem(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	removed := s.items[idx]
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	s.mu.Unlock()

	recordMutation("remove")
	if err := s.events.Emit(ctx, events.Event{
		Topic:       events.TopicCartItemRemoved,
		Title:       "Item Removed",
		Description: "The item has been removed from your cart.",
		Attributes:  map[string]string{"item_id": removed.ID},
	}); err != nil {
		s.logger.Warn().Err(err).Str("item_id", removed.ID).Msg("cart_notify_failed")
	}
	return nil
}

// Clear empties the cart without notifications.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	recordMutation("clear")
}

// Item returns a copy of the line item with the given id.
func (s *Store) Item(id string) (LineItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return LineItem{}, false
	}
	return s.items[idx], true
}

// Items returns a snapshot of the line items in insertion order.
func (s *Store) Items() []LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]LineItem(nil), s.items...)
}

// Len returns the number of distinct line items.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// IsEmpty reports whether the cart holds no items.
func (s *Store) IsEmpty() bool {
	return s.Len() == 0
}

// Totals derives the order totals from the current line items.
func (s *Store) Totals() pricing.Totals {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return pricing.Compute(toPricingItems(s.items), s.rules)
}

// Snapshot returns the items and the totals computed from exactly those items.
func (s *Store) Snapshot() ([]LineItem, pricing.Totals) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := append([]LineItem(nil), s.items...)
	return items, pricing.Compute(toPricingItems(items), s.rules)
}

func (s *Store) indexLocked(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func toPricingItems(items []LineItem) []pricing.Item {
	out := make([]pricing.Item, 0, len(items))
	for _, it := range items {
		out = append(out, pricing.Item{Qty: it.Quantity, UnitPrice: it.UnitPrice})
	}
	return out
}

// MaxQuantity caps a single line's quantity.
const MaxQuantity = math.MaxInt32

// ParseQuantity converts raw input into a quantity in [1, MaxQuantity].
// Positive integers too large to parse are capped.
func ParseQuantity(raw string) int {
	raw = strings.TrimSpace(raw)
	n, err := strconv.Atoi(raw)
	if errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(raw, "-") {
		return MaxQuantity
	}
	if err != nil {
		return 1
	}
	return clamp(n)
}

// ClampQuantity converts a decoded JSON number into a quantity. Fractional,
// non-finite and non-positive values become 1; larger integers are capped at
// MaxQuantity.
func ClampQuantity(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) || v < 1 {
		return 1
	}
	if v > MaxQuantity {
		return MaxQuantity
	}
	return int(v)
}

func clamp(qty int) int {
	if qty < 1 {
		return 1
	}
	if qty > MaxQuantity {
		return MaxQuantity
	}
	return qty
}

func recordMutation(op string) {
	if obs.CartMutationsTotal == nil {
		return
	}
	obs.CartMutationsTotal.WithLabelValues(op).Inc()
}
