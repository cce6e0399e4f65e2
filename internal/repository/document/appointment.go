package document

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/store"
)

type appointmentRepository struct {
	gw store.Gateway
}

func NewAppointmentRepository(gw store.Gateway) repository.AppointmentRepository {
	return &appointmentRepository{gw: gw}
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	if appointment.ID == "" {
		appointment.ID = uuid.New().String()
	}
	if appointment.CreatedAt.IsZero() {
		appointment.CreatedAt = model.Now()
	}

	if err := r.gw.Put(ctx, store.CollectionAppointments, appointment.ID, appointment); err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) ListNewestFirst(ctx context.Context) ([]model.Appointment, error) {
	docs, err := r.gw.Query(ctx, store.CollectionAppointments, store.Query{
		OrderBy: "createdAt",
		Desc:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return decodeAppointments(docs)
}

func (r *appointmentRepository) ListForDate(ctx context.Context, date string) ([]model.Appointment, error) {
	docs, err := r.gw.Query(ctx, store.CollectionAppointments, store.Query{
		OrderBy: "createdAt",
		Filter:  map[string]interface{}{"appointmentDate": date},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments for %s: %w", date, err)
	}
	return decodeAppointments(docs)
}

func decodeAppointments(docs []store.Document) ([]model.Appointment, error) {
	appointments := make([]model.Appointment, 0, len(docs))
	for _, doc := range docs {
		var a model.Appointment
		if err := doc.Decode(&a); err != nil {
			return nil, err
		}
		a.ID = doc.ID
		appointments = append(appointments, a)
	}
	return appointments, nil
}
