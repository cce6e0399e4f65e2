package api_test

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var emailSeq int64

// uniqueEmail returns an address no other test has signed up with
func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s_%d_%d@example.com", prefix, time.Now().UnixNano(), atomic.AddInt64(&emailSeq, 1))
}

// signUp creates a staff member of role and returns the address and a session token
func signUp(t *testing.T, role, fullName string) (string, string) {
	t.Helper()
	email := uniqueEmail(role)

	resp := makeRequest("POST", "/auth/signup/"+role, map[string]string{
		"email":    email,
		"password": "secret123",
		"fullName": fullName,
	}, "")
	require.Equal(t, 201, resp.StatusCode, "signup failed: %+v", resp.Error)

	token := resp.GetString("token")
	require.NotEmpty(t, token)
	return email, token
}

func login(t *testing.T, email, password string) TestResponse {
	t.Helper()
	return makeRequest("POST", "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, "")
}

// bookAppointment books a visit for today through a receptionist session
func bookAppointment(t *testing.T, token, name, phone string) string {
	t.Helper()
	resp := makeRequest("POST", "/receptionist/appointments", map[string]string{
		"patientName":     name,
		"patientAge":      "35",
		"patientGender":   "Female",
		"patientPhone":    phone,
		"appointmentDate": time.Now().Format("2006-01-02"),
		"reason":          "fever",
	}, token)
	require.Equal(t, 201, resp.StatusCode, "booking failed: %+v", resp.Error)
	return resp.GetString("id")
}
