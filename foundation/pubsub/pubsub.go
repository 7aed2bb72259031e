// Package pubsub defines the message bus the nodes use to share blocks and
// transactions. The bus only offers publish and subscribe on named channels,
// delivery is at least once and unordered.
package pubsub

import "context"

// Set of channels the nodes talk on.
const (
	ChannelBlock       = "BLOCK"
	ChannelTransaction = "TRANSACTION"
)

// Message is a payload received on a channel.
type Message struct {
	Channel string
	Payload []byte
}

// Broker interface represents the behavior required to be implemented by any
// package providing a message bus for the nodes.
type Broker interface {
	Publish(ctx context.Context, channel string, payload []byte) error

	// Subscribe returns the messages published on the channels. The returned
	// channel is closed when the context is cancelled or the broker is closed.
	Subscribe(ctx context.Context, channels ...string) (<-chan Message, error)

	Close() error
}
