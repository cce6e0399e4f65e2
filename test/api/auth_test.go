package api_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthFlow(t *testing.T) {
	email, signupToken := signUp(t, "doctor", "Dr. Mehta")

	// Signed up sessions are usable right away
	me := makeRequest("GET", "/auth/me", nil, signupToken)
	require.True(t, me.IsSuccess())
	assert.Equal(t, "/doctor/dashboard", me.GetString("redirect"))

	// Login
	loginResp := login(t, email, "secret123")
	require.True(t, loginResp.IsSuccess())
	assert.Equal(t, "/doctor/dashboard", loginResp.Redirect)
	assert.Equal(t, "doctor", loginResp.GetString("role"))
	token := loginResp.GetString("token")
	require.NotEmpty(t, token)

	// Dashboard carries the staff profile
	dash := makeRequest("GET", "/doctor/dashboard", nil, token)
	require.True(t, dash.IsSuccess())
	var dashboard struct {
		Profile struct {
			FullName  string  `json:"fullName"`
			Role      string  `json:"role"`
			LastLogin *string `json:"lastLogin"`
		} `json:"profile"`
	}
	require.NoError(t, dash.Decode(&dashboard))
	assert.Equal(t, "Dr. Mehta", dashboard.Profile.FullName)
	assert.NotNil(t, dashboard.Profile.LastLogin)

	// Logout ends the session
	out := makeRequest("POST", "/auth/logout", nil, token)
	require.True(t, out.IsSuccess())
	assert.Equal(t, "/login", out.Redirect)

	after := makeRequest("GET", "/doctor/dashboard", nil, token)
	assert.Equal(t, 401, after.StatusCode)
	assert.Equal(t, "/login", after.Location)
	assert.Equal(t, 401, makeRequest("GET", "/auth/me", nil, token).StatusCode)
	assert.Equal(t, 401, makeRequest("POST", "/doctor/prescriptions/drafts", nil, token).StatusCode)

	// The sign-up session was not the one signed out
	assert.True(t, makeRequest("GET", "/auth/me", nil, signupToken).IsSuccess())
}

func TestSignUpErrors(t *testing.T) {
	email, _ := signUp(t, "receptionist", "Front Desk")

	dup := makeRequest("POST", "/auth/signup/receptionist", map[string]string{
		"email": email, "password": "secret123", "fullName": "Again",
	}, "")
	assert.Equal(t, 409, dup.StatusCode)

	weak := makeRequest("POST", "/auth/signup/doctor", map[string]string{
		"email": uniqueEmail("weak"), "password": "123", "fullName": "Weak",
	}, "")
	assert.Equal(t, 400, weak.StatusCode)

	long := makeRequest("POST", "/auth/signup/doctor", map[string]string{
		"email": uniqueEmail("long"), "password": strings.Repeat("x", 80), "fullName": "Long",
	}, "")
	assert.Equal(t, 400, long.StatusCode)

	badRole := makeRequest("POST", "/auth/signup/janitor", map[string]string{
		"email": uniqueEmail("role"), "password": "secret123", "fullName": "Nope",
	}, "")
	assert.Equal(t, 400, badRole.StatusCode)

	missing := makeRequest("POST", "/auth/signup/doctor", map[string]string{"email": "not-an-email"}, "")
	assert.Equal(t, 400, missing.StatusCode)
	assert.False(t, missing.IsSuccess())
}

func TestLoginFailure(t *testing.T) {
	email, _ := signUp(t, "doctor", "Dr. Rao")

	resp := login(t, email, "wrong-password")
	assert.Equal(t, 401, resp.StatusCode)

	resp = login(t, uniqueEmail("ghost"), "secret123")
	assert.Equal(t, 401, resp.StatusCode)
}

func TestVerifyEmail(t *testing.T) {
	email, token := signUp(t, "doctor", "Dr. Iyer")

	verifyToken := mailbox.token("verify", email)
	require.NotEmpty(t, verifyToken)

	resp := makeRequest("GET", "/auth/verify-email?token="+verifyToken, nil, "")
	require.True(t, resp.IsSuccess())
	assert.Equal(t, "http://clinic.test/login", resp.Redirect)

	dash := makeRequest("GET", "/doctor/dashboard", nil, token)
	var dashboard struct {
		Profile struct {
			EmailVerified bool `json:"emailVerified"`
		} `json:"profile"`
	}
	require.NoError(t, dash.Decode(&dashboard))
	assert.True(t, dashboard.Profile.EmailVerified)

	bad := makeRequest("GET", "/auth/verify-email?token=nope", nil, "")
	assert.Equal(t, 400, bad.StatusCode)

	resend := makeRequest("POST", "/auth/resend-verification", nil, token)
	assert.True(t, resend.IsSuccess())
}

func TestPasswordReset(t *testing.T) {
	email, _ := signUp(t, "receptionist", "Front Desk")

	resp := makeRequest("POST", "/auth/forgot-password", map[string]string{"email": email}, "")
	require.True(t, resp.IsSuccess())

	unknown := makeRequest("POST", "/auth/forgot-password", map[string]string{"email": uniqueEmail("ghost")}, "")
	assert.True(t, unknown.IsSuccess(), "unknown addresses are not revealed")

	resetToken := mailbox.token("reset", email)
	require.NotEmpty(t, resetToken)

	reset := makeRequest("POST", "/auth/reset-password", map[string]string{
		"token": resetToken, "newPassword": "changed123",
	}, "")
	require.True(t, reset.IsSuccess())

	assert.Equal(t, 401, login(t, email, "secret123").StatusCode)
	assert.True(t, login(t, email, "changed123").IsSuccess())
}
