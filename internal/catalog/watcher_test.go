package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository/document"
	memoryStore "github.com/jwalitptl/clinic-api/internal/store/memory"
	"github.com/jwalitptl/clinic-api/pkg/messaging/memory"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
)

func TestWatcher(t *testing.T) {
	ctx := context.Background()
	broker := memory.NewBroker()
	defer broker.Close()
	medicines := document.NewMedicineRepository(memoryStore.NewGateway(broker))
	m := metrics.New("test", nil)

	require.NoError(t, medicines.Put(ctx, &model.Medicine{ID: "m2", Name: "Paracetamol", Category: "Analgesic"}))
	require.NoError(t, medicines.Put(ctx, &model.Medicine{ID: "m1", Name: "Amoxicillin", Category: "Antibiotic"}))

	w, err := NewWatcher(ctx, medicines, m)
	require.NoError(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CatalogSubscriptions))

	select {
	case <-w.Loaded():
	case <-time.After(time.Second):
		t.Fatal("catalog never loaded")
	}

	catalog := w.Catalog()
	require.Len(t, catalog, 2)
	assert.Equal(t, "Amoxicillin", catalog[0].Name, "ordered by name")

	// callers get their own copy of the snapshot
	catalog[0].Name = "Tampered"
	w.Search("")[1].Name = "Tampered"
	assert.Equal(t, "Amoxicillin", w.Catalog()[0].Name)
	assert.Equal(t, "Paracetamol", w.Catalog()[1].Name)

	found, ok := w.Lookup("m2")
	assert.True(t, ok)
	assert.Equal(t, "Paracetamol", found.Name)

	require.NoError(t, medicines.Put(ctx, &model.Medicine{ID: "m3", Name: "Ibuprofen", Category: "Analgesic"}))
	assert.Eventually(t, func() bool {
		return len(w.Search("analg")) == 2
	}, time.Second, 10*time.Millisecond)

	w.Close()
	w.Close()
	assert.Equal(t, float64(0), testutil.ToFloat64(m.CatalogSubscriptions))

	select {
	case <-w.Stopped():
	default:
		t.Fatal("watcher still running after Close")
	}

	require.NoError(t, medicines.Put(ctx, &model.Medicine{ID: "m4", Name: "Zinc", Category: "Supplement"}))
	time.Sleep(20 * time.Millisecond)
	_, ok = w.Lookup("m4")
	assert.False(t, ok, "no updates after Close")
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	broker := memory.NewBroker()
	defer broker.Close()
	medicines := document.NewMedicineRepository(memoryStore.NewGateway(broker))

	n, err := Seed(ctx, medicines)
	require.NoError(t, err)
	_, err = Seed(ctx, medicines)
	require.NoError(t, err)

	list, err := medicines.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, n, "reseeding does not duplicate")
}
