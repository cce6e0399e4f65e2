package model

// Role is the authorization category of a staff member
type Role string

const (
	RoleDoctor       Role = "doctor"
	RoleReceptionist Role = "receptionist"
)

func (r Role) Valid() bool {
	return r == RoleDoctor || r == RoleReceptionist
}

// StaffProfile is the staffData document keyed by the identity id
type StaffProfile struct {
	ID                    string     `json:"uid"`
	Email                 string     `json:"email"`
	FullName              string     `json:"fullName"`
	Role                  Role       `json:"role"`
	EmailVerified         bool       `json:"emailVerified"`
	CreatedAt             Timestamp  `json:"createdAt"`
	LastLogin             *Timestamp `json:"lastLogin"`
	VerificationEmailSent *Timestamp `json:"verificationEmailSent,omitempty"`
}
