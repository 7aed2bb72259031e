// Package redis implements the message bus on top of redis pub/sub so nodes
// on different machines can share blocks and transactions.
package redis

import (
	"context"
	"fmt"

	"github.com/ebchain/blockchain/foundation/pubsub"
	goredis "github.com/redis/go-redis/v9"
)

// Config represents the settings needed to reach the redis server.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// Broker publishes and subscribes through a redis server.
type Broker struct {
	client *goredis.Client
}

// New connects to the redis server and checks it is reachable.
func New(ctx context.Context, cfg Config) (*Broker, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}

	return &Broker{client: client}, nil
}

// Publish sends the payload to the channel.
func (b *Broker) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := b.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", channel, err)
	}

	return nil
}

// Subscribe registers for the messages published on the channels. The call
// returns once redis has confirmed the subscription.
func (b *Broker) Subscribe(ctx context.Context, channels ...string) (<-chan pubsub.Message, error) {
	ps := b.client.Subscribe(ctx, channels...)

	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, fmt.Errorf("subscribe %v: %w", channels, err)
	}

	out := make(chan pubsub.Message)

	go func() {
		defer close(out)
		defer ps.Close()

		ch := ps.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}

				select {
				case out <- pubsub.Message{Channel: msg.Channel, Payload: []byte(msg.Payload)}:
				case <-ctx.Done():
					return
				}

			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

// Close releases the connection to the redis server.
func (b *Broker) Close() error {
	return b.client.Close()
}
