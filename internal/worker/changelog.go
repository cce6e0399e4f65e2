package worker

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-api/pkg/messaging"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
)

// ChangeLogger records every change notice published for the given
// collections. With the redis broker it sees writes from all instances.
type ChangeLogger struct {
	broker      messaging.Broker
	metrics     *metrics.Metrics
	collections []string
}

func NewChangeLogger(broker messaging.Broker, m *metrics.Metrics, collections ...string) *ChangeLogger {
	return &ChangeLogger{
		broker:      broker,
		metrics:     m,
		collections: collections,
	}
}

// Start subscribes to every collection and returns once all subscriptions
// are live. Recording stops when ctx is done.
func (w *ChangeLogger) Start(ctx context.Context) error {
	for _, collection := range w.collections {
		if err := messaging.Handle(ctx, w.broker, messaging.ChangesChannel(collection), w.record); err != nil {
			return fmt.Errorf("failed to watch %s changes: %w", collection, err)
		}
	}
	return nil
}

func (w *ChangeLogger) record(notice messaging.ChangeNotice) error {
	w.metrics.DocumentChanges.WithLabelValues(notice.Collection, notice.Op).Inc()
	log.Debug().
		Str("collection", notice.Collection).
		Str("id", notice.ID).
		Str("op", notice.Op).
		Msg("document changed")
	return nil
}
