package prescription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-api/internal/catalog"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
)

var ErrDraftNotFound = errors.New("draft not found")

// Draft is one open authoring view: the form and the live catalog it
// searches.
type Draft struct {
	ID       string
	DoctorID string
	Form     *Form
	Catalog  *catalog.Watcher
	OpenedAt time.Time
}

// Registry holds the open drafts. A draft leaves the registry when it is
// discarded, submitted or idle for longer than the TTL, and its catalog
// subscription is closed at that point.
type Registry struct {
	drafts        *cache.Cache
	medicines     repository.MedicineRepository
	prescriptions repository.PrescriptionRepository
	metrics       *metrics.Metrics
}

func NewRegistry(medicines repository.MedicineRepository, prescriptions repository.PrescriptionRepository,
	m *metrics.Metrics, ttl time.Duration) *Registry {
	if ttl == 0 {
		ttl = 2 * time.Hour
	}

	r := &Registry{
		drafts:        cache.New(ttl, time.Minute),
		medicines:     medicines,
		prescriptions: prescriptions,
		metrics:       m,
	}
	r.drafts.OnEvicted(func(id string, v interface{}) {
		draft := v.(*Draft)
		draft.Catalog.Close()
		m.OpenDrafts.Dec()
		log.Debug().Str("draft_id", id).Str("doctor_id", draft.DoctorID).Msg("draft closed")
	})
	return r
}

// Open starts a new draft for doctorID
func (r *Registry) Open(ctx context.Context, doctorID string) (*Draft, error) {
	// The subscription outlives the request that opened it
	watcher, err := catalog.NewWatcher(context.Background(), r.medicines, r.metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to open draft: %w", err)
	}

	draft := &Draft{
		ID:       uuid.New().String(),
		DoctorID: doctorID,
		Form:     NewForm(r.prescriptions, r.metrics),
		Catalog:  watcher,
		OpenedAt: time.Now(),
	}
	r.drafts.SetDefault(draft.ID, draft)
	r.metrics.OpenDrafts.Inc()

	return draft, nil
}

// Get returns a draft owned by doctorID and extends its lifetime
func (r *Registry) Get(doctorID, id string) (*Draft, error) {
	v, ok := r.drafts.Get(id)
	if !ok {
		return nil, ErrDraftNotFound
	}
	draft := v.(*Draft)
	if draft.DoctorID != doctorID {
		return nil, ErrDraftNotFound
	}
	r.drafts.SetDefault(id, draft)
	return draft, nil
}

// Discard closes a draft without submitting it
func (r *Registry) Discard(doctorID, id string) error {
	if _, err := r.Get(doctorID, id); err != nil {
		return err
	}
	r.drafts.Delete(id)
	return nil
}

func (r *Registry) remove(id string) {
	r.drafts.Delete(id)
}

func (r *Registry) Len() int {
	return r.drafts.ItemCount()
}

// Close discards every open draft
func (r *Registry) Close() {
	r.drafts.DeleteExpired()
	for id := range r.drafts.Items() {
		r.drafts.Delete(id)
	}
}
