package messaging

import (
	"context"
)

// Broker defines the interface for message brokers
type Broker interface {
	// Publish JSON-encodes message onto channel.
	Publish(ctx context.Context, channel string, message interface{}) error
	// Subscribe delivers raw payloads from channel. The returned channel is
	// closed once ctx is done.
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}
