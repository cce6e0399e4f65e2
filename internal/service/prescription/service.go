package prescription

import (
	"context"
	"errors"
	"fmt"

	"github.com/jwalitptl/clinic-api/internal/directory"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
)

var (
	ErrPatientNotFound      = errors.New("patient not found")
	ErrMedicineNotFound     = errors.New("medicine not in catalog")
	ErrPrescriptionNotFound = errors.New("prescription not found")
)

// ListPath is where a client goes after a successful submit
const ListPath = "/doctor/prescriptions"

type Service struct {
	drafts        *Registry
	appointments  repository.AppointmentRepository
	prescriptions repository.PrescriptionRepository
}

func NewService(drafts *Registry, appointments repository.AppointmentRepository,
	prescriptions repository.PrescriptionRepository) *Service {
	return &Service{
		drafts:        drafts,
		appointments:  appointments,
		prescriptions: prescriptions,
	}
}

func (s *Service) Drafts() *Registry {
	return s.drafts
}

// Patients builds the patient directory from appointment history
func (s *Service) Patients(ctx context.Context) ([]model.Patient, error) {
	appointments, err := s.appointments.ListNewestFirst(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load patient directory: %w", err)
	}
	return directory.Build(appointments), nil
}

func (s *Service) SelectPatient(ctx context.Context, draft *Draft, patientID string) (*model.Patient, error) {
	patients, err := s.Patients(ctx)
	if err != nil {
		return nil, err
	}

	patient, ok := directory.Find(patients, patientID)
	if !ok {
		return nil, ErrPatientNotFound
	}
	if err := draft.Form.SelectPatient(patient); err != nil {
		return nil, err
	}
	return &patient, nil
}

// AddMedicine adds a catalog medicine to the draft by id. It waits for the
// first catalog snapshot if the draft was just opened.
func (s *Service) AddMedicine(ctx context.Context, draft *Draft, medicineID string) error {
	select {
	case <-draft.Catalog.Loaded():
	case <-ctx.Done():
		return ctx.Err()
	}

	medicine, ok := draft.Catalog.Lookup(medicineID)
	if !ok {
		return ErrMedicineNotFound
	}
	return draft.Form.AddMedicine(medicine)
}

// Submit persists the draft. A submitted draft is removed from the registry.
func (s *Service) Submit(ctx context.Context, draft *Draft, doctor *model.Identity) (*model.Prescription, error) {
	record, err := draft.Form.Submit(ctx, doctor)
	if err != nil {
		return nil, err
	}
	s.drafts.remove(draft.ID)
	return record, nil
}

func (s *Service) List(ctx context.Context, doctorID string) ([]model.Prescription, error) {
	return s.prescriptions.ListByDoctor(ctx, doctorID)
}

// Get returns a prescription written by doctorID
func (s *Service) Get(ctx context.Context, doctorID, id string) (*model.Prescription, error) {
	p, err := s.prescriptions.Get(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, ErrPrescriptionNotFound
		}
		return nil, err
	}
	if p.DoctorID != doctorID {
		return nil, ErrPrescriptionNotFound
	}
	return p, nil
}
