package events

// Topic constants for storefront notifications.
const (
	TopicCartItemAdded     = "cart.item_added"
	TopicCartItemRemoved   = "cart.item_removed"
	TopicWishlistItemAdded = "wishlist.item_added"
	TopicOrderPlaced       = "order.placed"
)

// DefaultTopics returns the canonical list of topics that reach the shopper.
func DefaultTopics() []string {
	return []string{
		TopicCartItemAdded,
		TopicCartItemRemoved,
		TopicWishlistItemAdded,
		TopicOrderPlaced,
	}
}
