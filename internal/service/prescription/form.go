package prescription

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
)

var (
	ErrMedicineAlreadyAdded = errors.New("medicine already added")
	ErrUnknownField         = errors.New("unknown field")
	ErrInvalidTiming        = errors.New("invalid timing")
	ErrInvalidStatus        = errors.New("invalid prescription status")
	ErrFormClosed           = errors.New("prescription already submitted")
	ErrSubmitInProgress     = errors.New("prescription is being submitted")
)

type State int

const (
	Editing State = iota
	Validating
	Submitting
	Submitted
	EditingWithErrors
)

func (s State) String() string {
	switch s {
	case Editing:
		return "editing"
	case Validating:
		return "validating"
	case Submitting:
		return "submitting"
	case Submitted:
		return "submitted"
	case EditingWithErrors:
		return "editing_with_errors"
	}
	return "unknown"
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Form accumulates one prescription draft and submits it once
type Form struct {
	prescriptions repository.PrescriptionRepository
	metrics       *metrics.Metrics

	mu        sync.Mutex
	state     State
	draft     model.PrescriptionDraft
	lastErr   error
	submitted *model.Prescription
}

// NewForm starts an empty draft dated today with status active
func NewForm(prescriptions repository.PrescriptionRepository, m *metrics.Metrics) *Form {
	return &Form{
		prescriptions: prescriptions,
		metrics:       m,
		state:         Editing,
		draft: model.PrescriptionDraft{
			PrescriptionDate: model.Today(),
			Medicines:        []model.LineItem{},
			Status:           model.PrescriptionStatusActive,
		},
	}
}

func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Draft returns a copy of the current draft
func (f *Form) Draft() model.PrescriptionDraft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft.Clone()
}

// LastError is the validation or write error of the last submit, if any
func (f *Form) LastError() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// Submitted returns the persisted prescription once the form is submitted
func (f *Form) Submitted() *model.Prescription {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitted
}

// SelectPatient copies the patient into the draft, replacing typed values
func (f *Form) SelectPatient(p model.Patient) error {
	return f.edit(func(d *model.PrescriptionDraft) error {
		d.PatientID = p.ID
		d.PatientName = p.Name
		d.PatientAge = p.Age
		d.PatientGender = p.Gender
		d.PatientPhone = p.Phone
		d.PatientEmail = p.Email
		return nil
	})
}

func (f *Form) SetField(field, value string) error {
	return f.edit(func(d *model.PrescriptionDraft) error {
		return setDraftField(d, field, value)
	})
}

// AddMedicine appends a blank line item for m. A medicine already on the
// draft is rejected with ErrMedicineAlreadyAdded and the draft is unchanged.
func (f *Form) AddMedicine(m model.Medicine) error {
	return f.edit(func(d *model.PrescriptionDraft) error {
		for _, item := range d.Medicines {
			if item.MedicineID == m.ID {
				return ErrMedicineAlreadyAdded
			}
		}
		d.Medicines = append(d.Medicines, model.LineItem{
			MedicineID: m.ID,
			Name:       m.Name,
			Category:   m.Category,
			Timing:     model.DefaultTiming,
		})
		return nil
	})
}

// UpdateLineItem sets one field of the line item for medicineID. It does
// nothing when the medicine is not on the draft.
func (f *Form) UpdateLineItem(medicineID, field, value string) error {
	var probe model.LineItem
	if err := setLineItemField(&probe, field, value); err != nil {
		return err
	}

	return f.edit(func(d *model.PrescriptionDraft) error {
		for i := range d.Medicines {
			if d.Medicines[i].MedicineID == medicineID {
				return setLineItemField(&d.Medicines[i], field, value)
			}
		}
		return nil
	})
}

// RemoveLineItem drops the line item for medicineID if present
func (f *Form) RemoveLineItem(medicineID string) error {
	return f.edit(func(d *model.PrescriptionDraft) error {
		kept := d.Medicines[:0]
		for _, item := range d.Medicines {
			if item.MedicineID != medicineID {
				kept = append(kept, item)
			}
		}
		d.Medicines = kept
		return nil
	})
}

// edit applies fn to a copy of the draft and keeps the copy only if fn
// succeeds. A successful edit clears the errors of a failed submit.
func (f *Form) edit(fn func(d *model.PrescriptionDraft) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.state {
	case Submitted:
		return ErrFormClosed
	case Validating, Submitting:
		return ErrSubmitInProgress
	}

	next := f.draft.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	f.draft = next

	if f.state == EditingWithErrors {
		f.state = Editing
		f.lastErr = nil
	}
	return nil
}

// Submit validates the draft and writes it as a new prescription by doctor.
// On a validation error the form moves to EditingWithErrors; on a write
// error it returns to Editing. The draft is kept in both cases.
func (f *Form) Submit(ctx context.Context, doctor *model.Identity) (*model.Prescription, error) {
	f.mu.Lock()
	switch f.state {
	case Submitted:
		f.mu.Unlock()
		return nil, ErrFormClosed
	case Validating, Submitting:
		f.mu.Unlock()
		return nil, ErrSubmitInProgress
	}

	f.state = Validating
	if verr := Validate(f.draft); verr != nil {
		f.state = EditingWithErrors
		f.lastErr = verr
		f.mu.Unlock()
		f.metrics.PrescriptionFailures.WithLabelValues("validation").Inc()
		return nil, verr
	}

	f.state = Submitting
	now := model.Now()
	record := &model.Prescription{
		PrescriptionDraft: f.draft.Clone(),
		DoctorName:        doctorName(doctor),
		DoctorID:          doctor.UID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	f.mu.Unlock()

	err := f.prescriptions.Create(ctx, record)

	f.mu.Lock()
	defer f.mu.Unlock()

	if err != nil {
		f.state = Editing
		f.lastErr = err
		f.metrics.PrescriptionFailures.WithLabelValues("write").Inc()
		log.Error().Err(err).Str("doctor_id", doctor.UID).Msg("failed to persist prescription")
		return nil, err
	}

	f.state = Submitted
	f.lastErr = nil
	f.submitted = record
	f.metrics.PrescriptionsCreated.Inc()
	log.Info().
		Str("prescription_id", record.ID).
		Str("doctor_id", record.DoctorID).
		Int("medicines", len(record.Medicines)).
		Msg("prescription created")

	return record, nil
}

func doctorName(doctor *model.Identity) string {
	if doctor.DisplayName == "" {
		return model.UnknownDoctorName
	}
	return doctor.DisplayName
}
