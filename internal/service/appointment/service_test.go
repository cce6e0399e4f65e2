package appointment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository/document"
	memoryStore "github.com/jwalitptl/clinic-api/internal/store/memory"
	"github.com/jwalitptl/clinic-api/pkg/messaging/memory"
)

func TestBook(t *testing.T) {
	ctx := context.Background()
	broker := memory.NewBroker()
	defer broker.Close()
	svc := NewService(document.NewAppointmentRepository(memoryStore.NewGateway(broker)))

	apt, err := svc.Book(ctx, &model.CreateAppointmentRequest{
		PatientName:     "  Asha Rao ",
		PatientAge:      "35",
		PatientGender:   "Female",
		PatientPhone:    " 9000000001",
		AppointmentDate: "2026-10-15",
		Reason:          "fever",
	}, "reception-1")
	require.NoError(t, err)

	assert.NotEmpty(t, apt.ID)
	assert.Equal(t, "Asha Rao", apt.PatientName)
	assert.Equal(t, "9000000001", apt.PatientPhone)
	assert.Equal(t, model.AppointmentStatusScheduled, apt.Status)
	assert.Equal(t, "reception-1", apt.CreatedBy)
	assert.False(t, apt.CreatedAt.IsZero())

	recent, err := svc.ListRecent(ctx)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, apt.ID, recent[0].ID)
}
