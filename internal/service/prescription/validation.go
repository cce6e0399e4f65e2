package prescription

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jwalitptl/clinic-api/internal/model"
)

type ValidationKind string

const (
	MissingPatient     ValidationKind = "missing_patient"
	MissingDiagnosis   ValidationKind = "missing_diagnosis"
	NoMedicines        ValidationKind = "no_medicines"
	IncompleteLineItem ValidationKind = "incomplete_line_item"
)

// ValidationError reports the first rule a draft violates. Field and
// MedicineName are set for IncompleteLineItem only.
type ValidationError struct {
	Kind         ValidationKind `json:"kind"`
	Field        string         `json:"field,omitempty"`
	MedicineName string         `json:"medicineName,omitempty"`
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case MissingPatient:
		return "please select a patient"
	case MissingDiagnosis:
		return "please enter diagnosis"
	case NoMedicines:
		return "please add at least one medicine"
	case IncompleteLineItem:
		return fmt.Sprintf("please enter %s for %s", e.Field, e.MedicineName)
	}
	return string(e.Kind)
}

func (e *ValidationError) StatusCode() int {
	return http.StatusUnprocessableEntity
}

// Validate checks patient, diagnosis, medicine presence and then each line
// item in order, stopping at the first failure.
func Validate(draft model.PrescriptionDraft) *ValidationError {
	if blank(draft.PatientName) {
		return &ValidationError{Kind: MissingPatient}
	}
	if blank(draft.Diagnosis) {
		return &ValidationError{Kind: MissingDiagnosis}
	}
	if len(draft.Medicines) == 0 {
		return &ValidationError{Kind: NoMedicines}
	}

	for _, item := range draft.Medicines {
		required := []struct {
			field string
			value string
		}{
			{FieldDosage, item.Dosage},
			{FieldFrequency, item.Frequency},
			{FieldDuration, item.Duration},
		}
		for _, r := range required {
			if blank(r.value) {
				return &ValidationError{Kind: IncompleteLineItem, Field: r.field, MedicineName: item.Name}
			}
		}
	}

	return nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
