package notify_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-storefront/internal/events"
	"github.com/noah-isme/toko-storefront/internal/notify"
)

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisPublisherPublishesJSON(t *testing.T) {
	client := newRedis(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	sub := client.Subscribe(ctx, "shop:toasts")
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	publisher := notify.RedisPublisher{Client: client, Channel: "shop:toasts"}
	err = publisher.Notify(ctx, events.Event{
		Topic:       events.TopicOrderPlaced,
		Title:       "Order Placed!",
		Description: "Thank you for your purchase. Your order is being processed.",
	})
	require.NoError(t, err)

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	require.Equal(t, "shop:toasts", msg.Channel)

	var decoded events.Event
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &decoded))
	require.Equal(t, events.TopicOrderPlaced, decoded.Topic)
	require.Equal(t, "Order Placed!", decoded.Title)
}

func TestRedisPublisherTopicToggle(t *testing.T) {
	client := newRedis(t)
	publisher := notify.RedisPublisher{
		Client:       client,
		TopicToggles: map[string]bool{events.TopicCartItemAdded: false},
	}
	require.NoError(t, publisher.Notify(context.Background(), events.Event{Topic: events.TopicCartItemAdded}))
}

func TestRedisPublisherRequiresClient(t *testing.T) {
	err := notify.RedisPublisher{}.Notify(context.Background(), events.Event{Topic: events.TopicOrderPlaced})
	require.Error(t, err)
}

func TestRecorderDrainAndLimit(t *testing.T) {
	rec := notify.NewRecorder(2)
	ctx := context.Background()
	for _, topic := range []string{events.TopicCartItemAdded, events.TopicWishlistItemAdded, events.TopicOrderPlaced} {
		require.NoError(t, rec.Notify(ctx, events.Event{Topic: topic}))
	}
	require.Equal(t, []string{events.TopicWishlistItemAdded, events.TopicOrderPlaced}, rec.Topics())

	drained := rec.Drain()
	require.Len(t, drained, 2)
	require.Empty(t, rec.Events())
}
