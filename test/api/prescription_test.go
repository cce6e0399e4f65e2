package api_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type draftView struct {
	ID    string `json:"id"`
	State string `json:"state"`
	Draft struct {
		PatientID   string `json:"patientId"`
		PatientName string `json:"patientName"`
		Medicines   []struct {
			ID     string `json:"id"`
			Name   string `json:"name"`
			Timing string `json:"timing"`
			Dosage string `json:"dosage"`
		} `json:"medicines"`
	} `json:"draft"`
	Warning string `json:"warning"`
}

func decodeDraft(t *testing.T, resp TestResponse) draftView {
	t.Helper()
	var view draftView
	require.NoError(t, resp.Decode(&view))
	return view
}

func TestPrescriptionFlow(t *testing.T) {
	_, receptionist := signUp(t, "receptionist", "Front Desk")
	_, doctor := signUp(t, "doctor", "Dr. Kapoor")

	phone := fmt.Sprintf("9%09d", emailSeq)
	bookAppointment(t, receptionist, "Meera Nair", phone)
	bookAppointment(t, receptionist, "Meera Nair", phone)

	// Repeat visits collapse to one patient
	patientsResp := makeRequest("GET", "/doctor/patients", nil, doctor)
	require.True(t, patientsResp.IsSuccess())
	var patients []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, patientsResp.Decode(&patients))
	patientID := "Meera Nair-" + phone
	count := 0
	for _, p := range patients {
		if p.ID == patientID {
			count++
		}
	}
	assert.Equal(t, 1, count)

	// Open a draft
	opened := makeRequest("POST", "/doctor/prescriptions/drafts", nil, doctor)
	require.Equal(t, 201, opened.StatusCode)
	draft := decodeDraft(t, opened)
	assert.Equal(t, "editing", draft.State)
	base := "/doctor/prescriptions/drafts/" + draft.ID

	// Submitting an empty draft fails validation
	empty := makeRequest("POST", base+"/submit", nil, doctor)
	assert.Equal(t, 422, empty.StatusCode)
	assert.Equal(t, "please select a patient", empty.Error.Message)

	// Search the catalog and add a medicine
	search := makeRequest("GET", base+"/catalog?q=para", nil, doctor)
	require.True(t, search.IsSuccess())
	var medicines []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, search.Decode(&medicines))
	require.Len(t, medicines, 1)
	assert.Equal(t, "Paracetamol", medicines[0].Name)
	medicineID := medicines[0].ID

	added := makeRequest("POST", base+"/medicines", map[string]string{"medicineId": medicineID}, doctor)
	require.True(t, added.IsSuccess())
	view := decodeDraft(t, added)
	require.Len(t, view.Draft.Medicines, 1)
	assert.Equal(t, "after_meal", view.Draft.Medicines[0].Timing)
	assert.Equal(t, "editing", view.State, "editing clears the failed submit")

	dup := makeRequest("POST", base+"/medicines", map[string]string{"medicineId": medicineID}, doctor)
	assert.Equal(t, 200, dup.StatusCode)
	assert.NotEmpty(t, decodeDraft(t, dup).Warning)
	assert.Len(t, decodeDraft(t, dup).Draft.Medicines, 1)

	missing := makeRequest("POST", base+"/medicines", map[string]string{"medicineId": "nope"}, doctor)
	assert.Equal(t, 404, missing.StatusCode)

	// Fill in the rest
	selected := makeRequest("PUT", base+"/patient", map[string]string{"patientId": patientID}, doctor)
	require.True(t, selected.IsSuccess())
	assert.Equal(t, "Meera Nair", decodeDraft(t, selected).Draft.PatientName)

	require.True(t, makeRequest("PATCH", base+"/fields", map[string]string{"field": "diagnosis", "value": "Viral fever"}, doctor).IsSuccess())
	assert.Equal(t, 400, makeRequest("PATCH", base+"/fields", map[string]string{"field": "doctorName", "value": "x"}, doctor).StatusCode)

	item := base + "/medicines/" + medicineID
	require.True(t, makeRequest("PATCH", item, map[string]string{"field": "dosage", "value": "500mg"}, doctor).IsSuccess())
	require.True(t, makeRequest("PATCH", item, map[string]string{"field": "frequency", "value": "TID"}, doctor).IsSuccess())
	assert.Equal(t, 400, makeRequest("PATCH", item, map[string]string{"field": "timing", "value": "whenever"}, doctor).StatusCode)

	incomplete := makeRequest("POST", base+"/submit", nil, doctor)
	assert.Equal(t, 422, incomplete.StatusCode)
	assert.Equal(t, "please enter duration for Paracetamol", incomplete.Error.Message)

	require.True(t, makeRequest("PATCH", item, map[string]string{"field": "duration", "value": "5 days"}, doctor).IsSuccess())

	// Submit
	submitted := makeRequest("POST", base+"/submit", nil, doctor)
	require.Equal(t, 201, submitted.StatusCode)
	assert.Equal(t, "/doctor/prescriptions", submitted.Redirect)
	prescriptionID := submitted.GetString("id")
	require.NotEmpty(t, prescriptionID)
	assert.Equal(t, "Dr. Kapoor", submitted.GetString("doctorName"))

	// The draft is gone
	assert.Equal(t, 404, makeRequest("GET", base, nil, doctor).StatusCode)

	// and the prescription is listed for its author only
	got := makeRequest("GET", "/doctor/prescriptions/"+prescriptionID, nil, doctor)
	require.True(t, got.IsSuccess())
	assert.Equal(t, "Viral fever", got.GetString("diagnosis"))

	_, otherDoctor := signUp(t, "doctor", "Dr. Other")
	assert.Equal(t, 404, makeRequest("GET", "/doctor/prescriptions/"+prescriptionID, nil, otherDoctor).StatusCode)
}

func TestDraftsArePrivate(t *testing.T) {
	_, owner := signUp(t, "doctor", "Dr. Owner")
	_, other := signUp(t, "doctor", "Dr. Other")

	opened := makeRequest("POST", "/doctor/prescriptions/drafts", nil, owner)
	require.Equal(t, 201, opened.StatusCode)
	id := decodeDraft(t, opened).ID

	assert.Equal(t, 404, makeRequest("GET", "/doctor/prescriptions/drafts/"+id, nil, other).StatusCode)
	assert.Equal(t, 404, makeRequest("DELETE", "/doctor/prescriptions/drafts/"+id, nil, other).StatusCode)

	discarded := makeRequest("DELETE", "/doctor/prescriptions/drafts/"+id, nil, owner)
	assert.True(t, discarded.IsSuccess())
	assert.Equal(t, 404, makeRequest("GET", "/doctor/prescriptions/drafts/"+id, nil, owner).StatusCode)
}

func TestMedicineSearch(t *testing.T) {
	_, doctor := signUp(t, "doctor", "Dr. Search")

	resp := makeRequest("GET", "/doctor/medicines?q=ANALGESIC", nil, doctor)
	require.True(t, resp.IsSuccess())
	var medicines []struct {
		Category string `json:"category"`
	}
	require.NoError(t, resp.Decode(&medicines))
	require.NotEmpty(t, medicines)
	for _, m := range medicines {
		assert.Equal(t, "Analgesic", m.Category)
	}
}
