// Package directory derives the patient list from appointment history.
package directory

import (
	"github.com/jwalitptl/clinic-api/internal/model"
)

// Key identifies a patient by name and phone
func Key(name, phone string) string {
	return name + "-" + phone
}

// Build collapses appointments, ordered newest first, to one patient per
// name and phone. The first appointment seen for a key wins, so each patient
// carries their most recent details. Output keeps first-seen order.
func Build(appointments []model.Appointment) []model.Patient {
	seen := make(map[string]struct{}, len(appointments))
	patients := make([]model.Patient, 0, len(appointments))

	for _, a := range appointments {
		key := Key(a.PatientName, a.PatientPhone)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		patients = append(patients, model.Patient{
			ID:        key,
			Name:      a.PatientName,
			Age:       a.PatientAge,
			Gender:    a.PatientGender,
			Phone:     a.PatientPhone,
			Email:     a.PatientEmail,
			LastVisit: a.AppointmentDate,
		})
	}

	return patients
}

// Find returns the patient with the given key
func Find(patients []model.Patient, id string) (model.Patient, bool) {
	for _, p := range patients {
		if p.ID == id {
			return p, true
		}
	}
	return model.Patient{}, false
}
