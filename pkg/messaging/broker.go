package messaging

import (
	"context"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// ChangeNotice is published after every write to a collection
type ChangeNotice struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
	Op         string `json:"op"`
}

// ChangesChannel is the channel carrying ChangeNotice messages for a collection
func ChangesChannel(collection string) string {
	return "store.changes." + collection
}
