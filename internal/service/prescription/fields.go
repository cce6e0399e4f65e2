package prescription

import (
	"github.com/jwalitptl/clinic-api/internal/model"
)

// Line item fields
const (
	FieldDosage              = "dosage"
	FieldFrequency           = "frequency"
	FieldDuration            = "duration"
	FieldTiming              = "timing"
	FieldSpecialInstructions = "specialInstructions"
)

func setDraftField(d *model.PrescriptionDraft, field, value string) error {
	switch field {
	case "patientId":
		d.PatientID = value
	case "patientName":
		d.PatientName = value
	case "patientAge":
		d.PatientAge = value
	case "patientGender":
		d.PatientGender = value
	case "patientPhone":
		d.PatientPhone = value
	case "patientEmail":
		d.PatientEmail = value
	case "prescriptionDate":
		d.PrescriptionDate = value
	case "diagnosis":
		d.Diagnosis = value
	case "symptoms":
		d.Symptoms = value
	case "instructions":
		d.Instructions = value
	case "followUpDate":
		d.FollowUpDate = value
	case "notes":
		d.Notes = value
	case "status":
		status := model.PrescriptionStatus(value)
		if !status.Valid() {
			return ErrInvalidStatus
		}
		d.Status = status
	default:
		return ErrUnknownField
	}
	return nil
}

func setLineItemField(item *model.LineItem, field, value string) error {
	switch field {
	case FieldDosage:
		item.Dosage = value
	case FieldFrequency:
		item.Frequency = value
	case FieldDuration:
		item.Duration = value
	case FieldSpecialInstructions:
		item.SpecialInstructions = value
	case FieldTiming:
		timing := model.Timing(value)
		if !timing.Valid() {
			return ErrInvalidTiming
		}
		item.Timing = timing
	default:
		return ErrUnknownField
	}
	return nil
}
