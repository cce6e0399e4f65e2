package appointment

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

type Service struct {
	repo repository.AppointmentRepository
}

func NewService(repo repository.AppointmentRepository) *Service {
	return &Service{repo: repo}
}

// Book records an appointment made at the front desk by createdBy
func (s *Service) Book(ctx context.Context, req *model.CreateAppointmentRequest, createdBy string) (*model.Appointment, error) {
	apt := &model.Appointment{
		PatientName:     strings.TrimSpace(req.PatientName),
		PatientAge:      strings.TrimSpace(req.PatientAge),
		PatientGender:   req.PatientGender,
		PatientPhone:    strings.TrimSpace(req.PatientPhone),
		PatientEmail:    strings.TrimSpace(req.PatientEmail),
		AppointmentDate: req.AppointmentDate,
		AppointmentTime: req.AppointmentTime,
		Reason:          req.Reason,
		Status:          model.AppointmentStatusScheduled,
		CreatedBy:       createdBy,
		CreatedAt:       model.Now(),
	}

	if err := s.repo.Create(ctx, apt); err != nil {
		return nil, fmt.Errorf("failed to book appointment: %w", err)
	}

	log.Info().
		Str("appointment_id", apt.ID).
		Str("date", apt.AppointmentDate).
		Str("created_by", createdBy).
		Msg("appointment booked")

	return apt, nil
}

// ListRecent returns every appointment, newest booking first
func (s *Service) ListRecent(ctx context.Context) ([]model.Appointment, error) {
	return s.repo.ListNewestFirst(ctx)
}
