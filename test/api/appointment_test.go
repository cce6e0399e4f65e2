package api_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppointmentBooking(t *testing.T) {
	_, receptionist := signUp(t, "receptionist", "Front Desk")
	_, doctor := signUp(t, "doctor", "Dr. Queue")

	id := bookAppointment(t, receptionist, "Queue Patient", "9876500000")

	invalid := makeRequest("POST", "/receptionist/appointments", map[string]string{
		"patientName":     "No Date",
		"patientPhone":    "1",
		"appointmentDate": "15/10/2026",
	}, receptionist)
	assert.Equal(t, 400, invalid.StatusCode)

	// Doctors can see appointments but not book them
	assert.Equal(t, 404, makeRequest("POST", "/doctor/appointments", map[string]string{}, doctor).StatusCode)

	list := makeRequest("GET", "/doctor/appointments", nil, doctor)
	require.True(t, list.IsSuccess())
	var appointments []struct {
		ID string `json:"id"`
	}
	require.NoError(t, list.Decode(&appointments))
	assert.Contains(t, appointments, struct {
		ID string `json:"id"`
	}{ID: id})

	// Today's queue numbers tokens from 1
	queue := makeRequest("GET", "/receptionist/token", nil, receptionist)
	require.True(t, queue.IsSuccess())
	var entries []struct {
		Token         int    `json:"token"`
		AppointmentID string `json:"appointmentId"`
	}
	require.NoError(t, queue.Decode(&entries))
	require.NotEmpty(t, entries)
	assert.Equal(t, 1, entries[0].Token)
	for i, e := range entries {
		assert.Equal(t, i+1, e.Token)
	}
}
