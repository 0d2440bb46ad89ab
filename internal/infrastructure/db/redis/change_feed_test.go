package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/providex/supplier-registry/internal/core/domain"
	"github.com/providex/supplier-registry/internal/core/ports"
)

func newTestFeed(t *testing.T) (*ChangeFeed, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewChangeFeed(client), mr
}

func receive(t *testing.T, ch <-chan ports.ChangeEvent) ports.ChangeEvent {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "channel closed unexpectedly")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no change event received")
		return ports.ChangeEvent{}
	}
}

func TestChangeFeed_PublishReachesListener(t *testing.T) {
	feed, _ := newTestFeed(t)
	ns := domain.Namespace{AppID: "app", UserID: "alice"}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := feed.Listen(ctx, ns)
	require.NoError(t, err)

	require.NoError(t, feed.Publish(ctx, ns, "12345678000195"))

	ev := receive(t, events)
	assert.NoError(t, ev.Err)
	assert.Equal(t, "12345678000195", ev.Identifier)
}

func TestChangeFeed_NamespacesDoNotCross(t *testing.T) {
	feed, _ := newTestFeed(t)
	alice := domain.Namespace{AppID: "app", UserID: "alice"}
	bob := domain.Namespace{AppID: "app", UserID: "bob"}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := feed.Listen(ctx, alice)
	require.NoError(t, err)

	require.NoError(t, feed.Publish(ctx, bob, "1"))
	require.NoError(t, feed.Publish(ctx, alice, "2"))

	ev := receive(t, events)
	assert.Equal(t, "2", ev.Identifier, "bob's write must not reach alice")
}

func TestChangeFeed_PreservesPublishOrder(t *testing.T) {
	feed, _ := newTestFeed(t)
	ns := domain.Namespace{AppID: "app", UserID: "alice"}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := feed.Listen(ctx, ns)
	require.NoError(t, err)

	for _, id := range []string{"1", "2", "3"} {
		require.NoError(t, feed.Publish(ctx, ns, id))
	}
	for _, want := range []string{"1", "2", "3"} {
		assert.Equal(t, want, receive(t, events).Identifier)
	}
}

func TestChangeFeed_ChannelClosesOnCancel(t *testing.T) {
	feed, _ := newTestFeed(t)
	ctx, cancel := context.WithCancel(context.Background())

	events, err := feed.Listen(ctx, domain.Namespace{AppID: "app", UserID: "alice"})
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestChangeFeed_ListenFailsWhenServerDown(t *testing.T) {
	feed, mr := newTestFeed(t)
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := feed.Listen(ctx, domain.Namespace{AppID: "app", UserID: "alice"})
	assert.Error(t, err)
}

func TestChangeFeed_PublishFailsWhenServerDown(t *testing.T) {
	feed, mr := newTestFeed(t)
	mr.Close()

	err := feed.Publish(context.Background(), domain.Namespace{AppID: "app", UserID: "alice"}, "1")
	assert.Error(t, err)
}
