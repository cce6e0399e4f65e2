package model

type PrescriptionStatus string

const (
	PrescriptionStatusActive       PrescriptionStatus = "active"
	PrescriptionStatusCompleted    PrescriptionStatus = "completed"
	PrescriptionStatusDiscontinued PrescriptionStatus = "discontinued"
	PrescriptionStatusPending      PrescriptionStatus = "pending"
)

func (s PrescriptionStatus) Valid() bool {
	switch s {
	case PrescriptionStatusActive, PrescriptionStatusCompleted,
		PrescriptionStatusDiscontinued, PrescriptionStatusPending:
		return true
	}
	return false
}

type Timing string

const (
	TimingBeforeMeal   Timing = "before_meal"
	TimingAfterMeal    Timing = "after_meal"
	TimingEmptyStomach Timing = "empty_stomach"
	TimingBedtime      Timing = "bedtime"
	TimingAsNeeded     Timing = "as_needed"

	DefaultTiming = TimingAfterMeal
)

// UnknownDoctorName is stamped when the submitting identity has no display name
const UnknownDoctorName = "Unknown Doctor"

func (t Timing) Valid() bool {
	switch t {
	case TimingBeforeMeal, TimingAfterMeal, TimingEmptyStomach, TimingBedtime, TimingAsNeeded:
		return true
	}
	return false
}

// LineItem is one medicine entry of a prescription
type LineItem struct {
	MedicineID          string `json:"id"`
	Name                string `json:"name"`
	Category            string `json:"category"`
	Dosage              string `json:"dosage"`
	Frequency           string `json:"frequency"`
	Duration            string `json:"duration"`
	Timing              Timing `json:"timing"`
	SpecialInstructions string `json:"specialInstructions"`
}

// PrescriptionDraft is the in-progress prescription owned by an authoring form
type PrescriptionDraft struct {
	PatientID        string             `json:"patientId"`
	PatientName      string             `json:"patientName"`
	PatientAge       string             `json:"patientAge"`
	PatientGender    string             `json:"patientGender"`
	PatientPhone     string             `json:"patientPhone"`
	PatientEmail     string             `json:"patientEmail"`
	PrescriptionDate string             `json:"prescriptionDate"`
	Diagnosis        string             `json:"diagnosis"`
	Symptoms         string             `json:"symptoms"`
	Medicines        []LineItem         `json:"medicines"`
	Instructions     string             `json:"instructions"`
	FollowUpDate     string             `json:"followUpDate"`
	Status           PrescriptionStatus `json:"status"`
	Notes            string             `json:"notes"`
}

// Clone returns a deep copy so callers cannot alias the line item slice
func (d PrescriptionDraft) Clone() PrescriptionDraft {
	out := d
	out.Medicines = make([]LineItem, len(d.Medicines))
	copy(out.Medicines, d.Medicines)
	return out
}

// Prescription is the persisted, immutable prescriptions document
type Prescription struct {
	ID string `json:"id"`
	PrescriptionDraft
	DoctorName string    `json:"doctorName"`
	DoctorID   string    `json:"doctorId"`
	CreatedAt  Timestamp `json:"createdAt"`
	UpdatedAt  Timestamp `json:"updatedAt"`
}

type SelectPatientRequest struct {
	PatientID string `json:"patientId" binding:"required"`
}

type AddMedicineRequest struct {
	MedicineID string `json:"medicineId" binding:"required"`
}

// FieldUpdateRequest sets one draft or line item field
type FieldUpdateRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}
