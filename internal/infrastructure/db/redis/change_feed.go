package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/providex/supplier-registry/internal/core/domain"
	"github.com/providex/supplier-registry/internal/core/ports"
)

const channelPrefix = "suppliers:changed:"

var errChannelClosed = errors.New("redis subscription closed")

// ChangeFeed implements ports.ChangeFeed over Redis pub/sub.
// Channel format: suppliers:changed:<appId>/users/<userId>/suppliers
// Payload: the identifier that was written.
type ChangeFeed struct {
	client *redis.Client
}

// NewChangeFeed creates a ChangeFeed wrapping the given Redis client.
func NewChangeFeed(client *redis.Client) *ChangeFeed {
	return &ChangeFeed{client: client}
}

// Publish notifies every listener of ns that identifier was written.
func (f *ChangeFeed) Publish(ctx context.Context, ns domain.Namespace, identifier string) error {
	if err := f.client.Publish(ctx, f.channel(ns), identifier).Err(); err != nil {
		return fmt.Errorf("publish change: %w", err)
	}
	return nil
}

// Listen subscribes to ns and waits for the server to confirm before
// returning. Losing the subscription yields one error event.
func (f *ChangeFeed) Listen(ctx context.Context, ns domain.Namespace) (<-chan ports.ChangeEvent, error) {
	pubsub := f.client.Subscribe(ctx, f.channel(ns))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe changes: %w", err)
	}

	out := make(chan ports.ChangeEvent)
	go func() {
		defer close(out)
		defer func() { _ = pubsub.Close() }()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				ev := ports.ChangeEvent{Err: errChannelClosed}
				if ok {
					ev = ports.ChangeEvent{Identifier: msg.Payload}
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
				if !ok {
					return
				}
			}
		}
	}()
	return out, nil
}

func (f *ChangeFeed) channel(ns domain.Namespace) string {
	return channelPrefix + ns.CollectionPath()
}
