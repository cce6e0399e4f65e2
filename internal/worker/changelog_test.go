package worker

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/store"
	memoryStore "github.com/jwalitptl/clinic-api/internal/store/memory"
	"github.com/jwalitptl/clinic-api/pkg/messaging/memory"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
)

func TestChangeLogger(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker := memory.NewBroker()
	defer broker.Close()
	gw := memoryStore.NewGateway(broker)
	m := metrics.New("test", nil)

	w := NewChangeLogger(broker, m, store.CollectionMedicines, store.CollectionStaff)
	require.NoError(t, w.Start(ctx))

	require.NoError(t, gw.Put(ctx, store.CollectionMedicines, "m1", map[string]string{"name": "Zinc"}))
	require.NoError(t, gw.Put(ctx, store.CollectionMedicines, "m2", map[string]string{"name": "Iron"}))
	require.NoError(t, gw.Update(ctx, store.CollectionMedicines, "m1", map[string]interface{}{"name": "Zinc Sulfate"}))
	require.NoError(t, gw.Put(ctx, store.CollectionPrescriptions, "p1", map[string]string{}))

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(m.DocumentChanges.WithLabelValues(store.CollectionMedicines, "put")) == 2 &&
			testutil.ToFloat64(m.DocumentChanges.WithLabelValues(store.CollectionMedicines, "update")) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, float64(0), testutil.ToFloat64(m.DocumentChanges.WithLabelValues(store.CollectionPrescriptions, "put")),
		"unwatched collections are ignored")
}
