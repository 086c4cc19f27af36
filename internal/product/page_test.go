package product_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-storefront/internal/cart"
	"github.com/noah-isme/toko-storefront/internal/catalog"
	"github.com/noah-isme/toko-storefront/internal/events"
	"github.com/noah-isme/toko-storefront/internal/notify"
	"github.com/noah-isme/toko-storefront/internal/product"
	"github.com/noah-isme/toko-storefront/internal/variant"
	"github.com/noah-isme/toko-storefront/internal/wishlist"
)

type env struct {
	page  *product.Page
	cart  *cart.Store
	wish  *wishlist.Wishlist
	inbox *notify.Recorder
}

func newEnv(t *testing.T, id string) env {
	t.Helper()
	p, err := catalog.Default().Lookup(id)
	require.NoError(t, err)
	inbox := notify.NewRecorder(0)
	bus := &events.Bus{Notifiers: []events.Notifier{inbox}}
	store := cart.NewStore(cart.Config{Events: bus})
	wish := wishlist.New(bus, nil)
	page := product.NewPage(p, product.Config{Cart: store, Wishlist: wish, Events: bus})
	return env{page: page, cart: store, wish: wish, inbox: inbox}
}

func TestInitialSelection(t *testing.T) {
	e := newEnv(t, "premium-smartwatch-series-x")
	view := e.page.View()
	require.Equal(t, "Midnight Black", view.Selection["Color"])
	require.Equal(t, "S", view.Selection["Size"])
	require.Equal(t, 1, view.Quantity)
	require.True(t, view.CanAddToCart)
	require.Equal(t, "Color: Midnight Black, Size: S", view.Descriptor)
}

func TestSelectIgnoresDisabledOptions(t *testing.T) {
	e := newEnv(t, "premium-smartwatch-series-x")
	require.False(t, e.page.Select("Size", "XL"))
	require.False(t, e.page.Select("Color", "Forest Green"))
	require.False(t, e.page.Select("Material", "Steel"))
	require.True(t, e.page.Select("size", "L"))

	view := e.page.View()
	require.Equal(t, "L", view.Selection["Size"])
	require.Equal(t, "Midnight Black", view.Selection["Color"])
}

func TestQuantityInput(t *testing.T) {
	e := newEnv(t, "ergonomic-office-chair")
	require.Equal(t, 3, e.page.SetQuantityInput("3"))
	require.Equal(t, 1, e.page.SetQuantityInput("abc"))
	require.Equal(t, 1, e.page.SetQuantityInput("-4"))
	require.Equal(t, 1, e.page.SetQuantity(0))
}

func TestAddToCartMergesSameVariant(t *testing.T) {
	e := newEnv(t, "premium-smartwatch-series-x")
	ctx := context.Background()
	require.True(t, e.page.Select("Size", "L"))
	e.page.SetQuantity(2)

	item, err := e.page.AddToCart(ctx)
	require.NoError(t, err)
	require.Equal(t, "premium-smartwatch-series-x/midnight-black/l", item.ID)
	require.Equal(t, "Color: Midnight Black, Size: L", item.VariantDescriptor)

	_, err = e.page.AddToCart(ctx)
	require.NoError(t, err)

	items := e.cart.Items()
	require.Len(t, items, 1)
	require.Equal(t, 4, items[0].Quantity)

	added := e.inbox.Events()
	require.Len(t, added, 2)
	require.Equal(t, "Added to Cart!", added[0].Title)
	require.Equal(t, "Successfully added 2 item(s) to your cart.", added[0].Description)
}

func TestAddToCartRequiresCompleteSelection(t *testing.T) {
	tee := catalog.Product{
		ID:    "tee",
		Name:  "Tee",
		Price: 20,
		VariantGroups: []variant.Group{{
			Label:   "Size",
			Kind:    variant.KindSize,
			Options: []variant.Option{{Name: "M", Disabled: true}},
		}},
	}
	store := cart.NewStore(cart.Config{})
	page := product.NewPage(tee, product.Config{Cart: store})

	require.False(t, page.CanAddToCart())
	_, err := page.AddToCart(context.Background())
	require.ErrorIs(t, err, product.ErrSelectionIncomplete)
	require.True(t, store.IsEmpty())
}

func TestAddToCartIDMatchesDescriptorUnderConcurrentSelect(t *testing.T) {
	e := newEnv(t, "premium-smartwatch-series-x")
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			if i%2 == 0 {
				e.page.Select("Size", "S")
			} else {
				e.page.Select("Size", "L")
			}
		}
	}()
	for i := 0; i < 200; i++ {
		item, err := e.page.AddToCart(ctx)
		require.NoError(t, err)
		size := item.VariantDescriptor[strings.LastIndex(item.VariantDescriptor, "Size: ")+len("Size: "):]
		require.True(t, strings.HasSuffix(item.ID, "/"+strings.ToLower(size)), "id %q vs %q", item.ID, item.VariantDescriptor)
	}
	wg.Wait()
}

func TestAddToWishlist(t *testing.T) {
	e := newEnv(t, "wireless-noise-cancelling-headphones")
	ctx := context.Background()
	require.NoError(t, e.page.AddToWishlist(ctx))
	require.NoError(t, e.page.AddToWishlist(ctx))

	require.Equal(t, 1, e.wish.Len())
	require.Equal(t, []string{events.TopicWishlistItemAdded, events.TopicWishlistItemAdded}, e.inbox.Topics())
}

func TestVariantlessProductAddsPlainID(t *testing.T) {
	e := newEnv(t, "ergonomic-office-chair")
	item, err := e.page.AddToCart(context.Background())
	require.NoError(t, err)
	require.Equal(t, "ergonomic-office-chair", item.ID)
	require.Empty(t, item.VariantDescriptor)
	require.InDelta(t, 220.0, e.cart.Totals().Subtotal, 1e-9)
}
