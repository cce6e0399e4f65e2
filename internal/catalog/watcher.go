package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/repository/document"
	"github.com/jwalitptl/clinic-api/internal/store"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
)

// Watcher keeps the newest snapshot of the medicine catalog for one
// authoring view. Close must be called when the view goes away.
type Watcher struct {
	sub     *store.Subscription
	metrics *metrics.Metrics

	mu       sync.RWMutex
	catalog  []model.Medicine
	loaded   chan struct{}
	loadOnce sync.Once

	closeOnce sync.Once
	stopped   chan struct{}
}

func NewWatcher(ctx context.Context, medicines repository.MedicineRepository, m *metrics.Metrics) (*Watcher, error) {
	sub, err := medicines.Subscribe(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to watch catalog: %w", err)
	}

	w := &Watcher{
		sub:     sub,
		metrics: m,
		loaded:  make(chan struct{}),
		stopped: make(chan struct{}),
	}
	m.CatalogSubscriptions.Inc()

	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	defer close(w.stopped)

	for docs := range w.sub.Snapshots() {
		medicines, err := document.DecodeMedicines(docs)
		if err != nil {
			log.Warn().Err(err).Msg("skipping undecodable catalog snapshot")
			continue
		}

		w.mu.Lock()
		w.catalog = medicines
		w.mu.Unlock()

		w.loadOnce.Do(func() { close(w.loaded) })
	}
}

// Loaded is closed once the first snapshot has arrived
func (w *Watcher) Loaded() <-chan struct{} {
	return w.loaded
}

// Catalog returns the newest snapshot ordered by name
func (w *Watcher) Catalog() []model.Medicine {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]model.Medicine, len(w.catalog))
	copy(out, w.catalog)
	return out
}

// Search filters the newest snapshot by query
func (w *Watcher) Search(query string) []model.Medicine {
	return Filter(w.Catalog(), query)
}

// Lookup finds a medicine in the newest snapshot by id
func (w *Watcher) Lookup(id string) (model.Medicine, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, m := range w.catalog {
		if m.ID == id {
			return m, true
		}
	}
	return model.Medicine{}, false
}

// Close cancels the subscription. It is safe to call more than once.
func (w *Watcher) Close() {
	w.closeOnce.Do(func() {
		w.sub.Cancel()
		<-w.stopped
		w.metrics.CatalogSubscriptions.Dec()
	})
}

// Stopped is closed once the watcher no longer receives updates
func (w *Watcher) Stopped() <-chan struct{} {
	return w.stopped
}
