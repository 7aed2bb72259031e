// Package memory implements an in process message bus. It is used when a
// node runs on its own and for testing nodes against each other.
package memory

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/ebchain/blockchain/foundation/pubsub"
)

// ErrClosed is returned when the broker is used after Close.
var ErrClosed = errors.New("broker is closed")

// subscriberBuffer is the number of messages a subscriber can fall behind
// before publishers have to wait on it.
const subscriberBuffer = 64

// subscriber represents a single call to Subscribe.
type subscriber struct {
	channels []string
	ch       chan pubsub.Message
	done     chan struct{}
	once     sync.Once
}

func (s *subscriber) stop() {
	s.once.Do(func() { close(s.done) })
}

// Broker fans every published message out to the subscribers of the channel.
type Broker struct {
	mu     sync.RWMutex
	subs   map[*subscriber]struct{}
	closed bool
}

// New constructs an empty broker.
func New() *Broker {
	return &Broker{
		subs: make(map[*subscriber]struct{}),
	}
}

// Publish delivers the payload to every subscriber of the channel. It waits
// for slow subscribers until the context is cancelled.
func (b *Broker) Publish(ctx context.Context, channel string, payload []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrClosed
	}

	for sub := range b.subs {
		if !slices.Contains(sub.channels, channel) {
			continue
		}

		msg := pubsub.Message{
			Channel: channel,
			Payload: slices.Clone(payload),
		}

		select {
		case sub.ch <- msg:
		case <-sub.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}

// Subscribe registers for the messages published on the channels.
func (b *Broker) Subscribe(ctx context.Context, channels ...string) (<-chan pubsub.Message, error) {
	sub := subscriber{
		channels: channels,
		ch:       make(chan pubsub.Message, subscriberBuffer),
		done:     make(chan struct{}),
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrClosed
	}
	b.subs[&sub] = struct{}{}

	go func() {
		select {
		case <-ctx.Done():
		case <-sub.done:
		}

		// Release any publisher blocked on this subscriber before taking
		// the write lock.
		sub.stop()

		b.mu.Lock()
		defer b.mu.Unlock()

		if _, exists := b.subs[&sub]; exists {
			delete(b.subs, &sub)
			close(sub.ch)
		}
	}()

	return sub.ch, nil
}

// Close stops every subscription. The broker can't be used afterwards.
func (b *Broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	for sub := range b.subs {
		sub.stop()
		delete(b.subs, sub)
		close(sub.ch)
	}

	return nil
}
