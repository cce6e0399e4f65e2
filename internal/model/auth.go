package model

type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"fullName" binding:"required"`
	Role     Role   `json:"role" binding:"omitempty,role"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type EmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// SessionResponse is returned by sign-up and sign-in
type SessionResponse struct {
	Token    string        `json:"token"`
	Identity *Identity     `json:"identity"`
	Role     *Role         `json:"role"`
	Profile  *StaffProfile `json:"profile,omitempty"`
	Redirect string        `json:"redirect,omitempty"`
}
