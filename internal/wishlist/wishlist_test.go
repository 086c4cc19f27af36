package wishlist_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-storefront/internal/events"
	"github.com/noah-isme/toko-storefront/internal/notify"
	"github.com/noah-isme/toko-storefront/internal/wishlist"
)

func TestAddNotifiesEveryTime(t *testing.T) {
	inbox := notify.NewRecorder(0)
	w := wishlist.New(&events.Bus{Notifiers: []events.Notifier{inbox}}, nil)
	ctx := context.Background()

	added, err := w.Add(ctx, wishlist.Entry{ProductID: "watch", Name: "Smartwatch"})
	require.NoError(t, err)
	require.True(t, added)

	added, err = w.Add(ctx, wishlist.Entry{ProductID: "watch", Name: "Smartwatch"})
	require.NoError(t, err)
	require.False(t, added)

	require.Equal(t, 1, w.Len())
	require.Equal(t, []string{events.TopicWishlistItemAdded, events.TopicWishlistItemAdded}, inbox.Topics())
	require.Equal(t, "Added to Wishlist!", inbox.Events()[0].Title)
}

func TestAddRejectsBlankID(t *testing.T) {
	w := wishlist.New(nil, nil)
	_, err := w.Add(context.Background(), wishlist.Entry{ProductID: "  "})
	require.ErrorIs(t, err, wishlist.ErrInvalidInput)
}

func TestRemoveKeepsOrder(t *testing.T) {
	w := wishlist.New(nil, nil)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		_, err := w.Add(ctx, wishlist.Entry{ProductID: id})
		require.NoError(t, err)
	}
	require.True(t, w.Remove("b"))
	require.False(t, w.Remove("b"))
	require.False(t, w.Contains("b"))

	entries := w.Entries()
	require.Len(t, entries, 2)
	require.Equal(t, "a", entries[0].ProductID)
	require.Equal(t, "c", entries[1].ProductID)
}
