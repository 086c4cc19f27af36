package cart_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-storefront/internal/cart"
	"github.com/noah-isme/toko-storefront/internal/events"
	"github.com/noah-isme/toko-storefront/internal/notify"
)

func newStore(t *testing.T) (*cart.Store, *notify.Recorder) {
	t.Helper()
	rec := notify.NewRecorder(0)
	store := cart.NewStore(cart.Config{Events: &events.Bus{Notifiers: []events.Notifier{rec}}})
	return store, rec
}

func watch() cart.LineItem {
	return cart.LineItem{ID: "1", Name: "Premium Smartwatch Series X", UnitPrice: 299.99, Quantity: 1, VariantDescriptor: "Color: Midnight Black, Size: L"}
}

func TestAddItemMergesById(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddItem(ctx, watch()))
	again := watch()
	again.Quantity = 2
	require.NoError(t, store.AddItem(ctx, again))

	require.Equal(t, 1, store.Len())
	item, ok := store.Item("1")
	require.True(t, ok)
	require.Equal(t, 3, item.Quantity)
}

func TestAddItemValidatesInput(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	require.ErrorIs(t, store.AddItem(ctx, cart.LineItem{ID: " "}), cart.ErrInvalidInput)
	require.ErrorIs(t, store.AddItem(ctx, cart.LineItem{ID: "x", UnitPrice: -1}), cart.ErrInvalidInput)

	require.NoError(t, store.AddItem(ctx, cart.LineItem{ID: "x", UnitPrice: 5, Quantity: 0}))
	item, _ := store.Item("x")
	require.Equal(t, 1, item.Quantity)
}

func TestSetQuantityClamps(t *testing.T) {
	store, _ := newStore(t)
	require.NoError(t, store.AddItem(context.Background(), watch()))

	for _, q := range []int{0, -1, -100, math.MinInt32} {
		require.True(t, store.SetQuantity("1", q))
		item, _ := store.Item("1")
		require.Equal(t, 1, item.Quantity, "qty %d", q)
	}

	require.True(t, store.SetQuantity("1", 4))
	item, _ := store.Item("1")
	require.Equal(t, 4, item.Quantity)

	require.False(t, store.SetQuantity("missing", 3))
	require.Equal(t, 1, store.Len())
}

func TestSetQuantityInputNonInteger(t *testing.T) {
	store, _ := newStore(t)
	require.NoError(t, store.AddItem(context.Background(), watch()))

	for _, raw := range []string{"", "abc", "2.5", "-3", "0", "1e3"} {
		store.SetQuantity("1", 7)
		require.True(t, store.SetQuantityInput("1", raw))
		item, _ := store.Item("1")
		require.Equal(t, 1, item.Quantity, "input %q", raw)
	}
	require.True(t, store.SetQuantityInput("1", " 6 "))
	item, _ := store.Item("1")
	require.Equal(t, 6, item.Quantity)
}

func TestClampQuantity(t *testing.T) {
	require.Equal(t, 1, cart.ClampQuantity(2.5))
	require.Equal(t, 1, cart.ClampQuantity(-2))
	require.Equal(t, 1, cart.ClampQuantity(math.NaN()))
	require.Equal(t, 1, cart.ClampQuantity(math.Inf(1)))
	require.Equal(t, 3, cart.ClampQuantity(3))
	require.Equal(t, cart.MaxQuantity, cart.ClampQuantity(1e12))
}

func TestHugeQuantitiesAreCapped(t *testing.T) {
	require.Equal(t, cart.MaxQuantity, cart.ParseQuantity("99999999999999999999999"))
	require.Equal(t, 1, cart.ParseQuantity("-99999999999999999999999"))
	require.Equal(t, 1, cart.ParseQuantity("abc"))

	store, _ := newStore(t)
	ctx := context.Background()
	require.NoError(t, store.AddItem(ctx, cart.LineItem{ID: "big", Name: "Big", UnitPrice: 1, Quantity: cart.MaxQuantity}))
	require.NoError(t, store.AddItem(ctx, cart.LineItem{ID: "big", Name: "Big", UnitPrice: 1, Quantity: 5}))
	item, ok := store.Item("big")
	require.True(t, ok)
	require.Equal(t, cart.MaxQuantity, item.Quantity)
}

func TestRemoveItemNotifies(t *testing.T) {
	store, rec := newStore(t)
	ctx := context.Background()
	require.NoError(t, store.AddItem(ctx, watch()))

	require.NoError(t, store.RemoveItem(ctx, "1"))
	require.True(t, store.IsEmpty())
	_, ok := store.Item("1")
	require.False(t, ok, "no zero-quantity remnant")

	got := rec.Events()
	require.Len(t, got, 1)
	require.Equal(t, events.TopicCartItemRemoved, got[0].Topic)
	require.Equal(t, "Item Removed", got[0].Title)

	require.ErrorIs(t, store.RemoveItem(ctx, "1"), cart.ErrNotFound)
	require.Len(t, rec.Events(), 1)
}

func TestTotalsFollowMutations(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()
	require.NoError(t, store.AddItem(ctx, watch()))

	first := store.Totals()
	require.Equal(t, first, store.Totals(), "pure without mutation")
	require.InDelta(t, 323.9892, first.Total, 1e-9)

	store.SetQuantity("1", 2)
	second := store.Totals()
	require.InDelta(t, 599.98, second.Subtotal, 1e-9)

	require.NoError(t, store.RemoveItem(ctx, "1"))
	empty := store.Totals()
	require.Zero(t, empty.Subtotal)
	require.Equal(t, 10.0, empty.Shipping)
}

func TestSnapshotIsDetached(t *testing.T) {
	store, _ := newStore(t)
	require.NoError(t, store.AddItem(context.Background(), watch()))

	items, totals := store.Snapshot()
	items[0].Quantity = 99
	store.SetQuantity("1", 3)

	require.Equal(t, 99, items[0].Quantity)
	require.InDelta(t, 299.99, totals.Subtotal, 1e-9)
	item, _ := store.Item("1")
	require.Equal(t, 3, item.Quantity)
}

func TestClear(t *testing.T) {
	store, rec := newStore(t)
	require.NoError(t, store.AddItem(context.Background(), watch()))
	store.Clear()
	require.True(t, store.IsEmpty())
	require.Empty(t, rec.Events())
}
