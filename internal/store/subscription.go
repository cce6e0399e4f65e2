package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-api/pkg/messaging"
)

// Subscription delivers snapshots of a live query. Only the newest snapshot
// is buffered; a slow consumer skips intermediate ones.
type Subscription struct {
	snapshots chan []Document
	done      chan struct{}
	cancel    context.CancelFunc
	once      sync.Once
}

// Snapshots is closed after Cancel or when the parent context ends
func (s *Subscription) Snapshots() <-chan []Document {
	return s.snapshots
}

// Done is closed once the subscription has fully stopped
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Cancel stops the subscription. It is safe to call more than once.
func (s *Subscription) Cancel() {
	s.once.Do(s.cancel)
}

// Loader runs the subscribed query
type Loader func(ctx context.Context) ([]Document, error)

// Watch subscribes to the change feed of collection and re-runs load after
// every notice. The broker subscription is established before the initial
// load so no change is missed in between.
func Watch(ctx context.Context, broker messaging.Broker, collection string, load Loader) (*Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)

	notices, err := broker.Subscribe(ctx, messaging.ChangesChannel(collection))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to subscribe to %s changes: %w", collection, err)
	}

	sub := &Subscription{
		snapshots: make(chan []Document, 1),
		done:      make(chan struct{}),
		cancel:    cancel,
	}

	go sub.run(ctx, collection, notices, load)

	return sub, nil
}

func (s *Subscription) run(ctx context.Context, collection string, notices <-chan []byte, load Loader) {
	defer func() {
		close(s.snapshots)
		close(s.done)
	}()

	s.refresh(ctx, collection, load)

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-notices:
			if !ok {
				return
			}
			drain(notices)
			s.refresh(ctx, collection, load)
		}
	}
}

func (s *Subscription) refresh(ctx context.Context, collection string, load Loader) {
	docs, err := load(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Warn().Err(err).Str("collection", collection).Msg("subscription reload failed, keeping last snapshot")
		}
		return
	}
	s.publish(docs)
}

// publish replaces any unread snapshot with docs
func (s *Subscription) publish(docs []Document) {
	select {
	case s.snapshots <- docs:
		return
	default:
	}
	select {
	case <-s.snapshots:
	default:
	}
	s.snapshots <- docs
}

func drain(ch <-chan []byte) {
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		default:
			return
		}
	}
}
