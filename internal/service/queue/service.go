// Package queue numbers the day's appointments for the token display.
package queue

import (
	"context"
	"fmt"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

type Service struct {
	appointments repository.AppointmentRepository
}

func NewService(appointments repository.AppointmentRepository) *Service {
	return &Service{appointments: appointments}
}

// ForDate returns the queue of date with tokens numbered from 1 in booking
// order. Cancelled appointments keep their token so numbers stay stable.
func (s *Service) ForDate(ctx context.Context, date string) ([]model.QueueEntry, error) {
	appointments, err := s.appointments.ListForDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load queue for %s: %w", date, err)
	}
	return Number(appointments), nil
}

func (s *Service) Today(ctx context.Context) ([]model.QueueEntry, error) {
	return s.ForDate(ctx, model.Today())
}

// Number assigns tokens to appointments already in booking order
func Number(appointments []model.Appointment) []model.QueueEntry {
	entries := make([]model.QueueEntry, 0, len(appointments))
	for i, a := range appointments {
		entries = append(entries, model.QueueEntry{
			Token:           i + 1,
			AppointmentID:   a.ID,
			PatientName:     a.PatientName,
			AppointmentTime: a.AppointmentTime,
			Status:          a.Status,
		})
	}
	return entries
}
