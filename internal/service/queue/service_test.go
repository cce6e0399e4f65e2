package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository/document"
	memoryStore "github.com/jwalitptl/clinic-api/internal/store/memory"
	"github.com/jwalitptl/clinic-api/pkg/messaging/memory"
)

func TestForDate(t *testing.T) {
	ctx := context.Background()
	broker := memory.NewBroker()
	defer broker.Close()
	appointments := document.NewAppointmentRepository(memoryStore.NewGateway(broker))

	base := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	book := func(name, date string, offset time.Duration, status model.AppointmentStatus) {
		require.NoError(t, appointments.Create(ctx, &model.Appointment{
			PatientName:     name,
			AppointmentDate: date,
			Status:          status,
			CreatedAt:       model.NewTimestamp(base.Add(offset)),
		}))
	}
	book("Second", "2026-10-15", 2*time.Minute, model.AppointmentStatusScheduled)
	book("First", "2026-10-15", time.Minute, model.AppointmentStatusCancelled)
	book("Tomorrow", "2026-10-16", 0, model.AppointmentStatusScheduled)
	book("Third", "2026-10-15", 3*time.Minute, model.AppointmentStatusScheduled)

	entries, err := NewService(appointments).ForDate(ctx, "2026-10-15")
	require.NoError(t, err)

	require.Len(t, entries, 3)
	assert.Equal(t, 1, entries[0].Token)
	assert.Equal(t, "First", entries[0].PatientName)
	assert.Equal(t, model.AppointmentStatusCancelled, entries[0].Status)
	assert.Equal(t, "Second", entries[1].PatientName)
	assert.Equal(t, 3, entries[2].Token)
	assert.Equal(t, "Third", entries[2].PatientName)

	empty, err := NewService(appointments).ForDate(ctx, "2026-01-01")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestNumber(t *testing.T) {
	entries := Number([]model.Appointment{{ID: "a"}, {ID: "b"}})
	require.Len(t, entries, 2)
	assert.Equal(t, model.QueueEntry{Token: 1, AppointmentID: "a"}, entries[0])
	assert.Equal(t, 2, entries[1].Token)
}
