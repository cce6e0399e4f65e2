package model

import "time"

// Identity is an authenticated account as seen by the rest of the system
type Identity struct {
	UID           string `json:"uid"`
	Email         string `json:"email"`
	DisplayName   string `json:"displayName"`
	EmailVerified bool   `json:"emailVerified"`
}

// Account is the credential record behind an Identity
type Account struct {
	ID            string    `db:"id" json:"id"`
	Email         string    `db:"email" json:"email"`
	PasswordHash  string    `db:"password_hash" json:"-"`
	DisplayName   string    `db:"display_name" json:"displayName"`
	EmailVerified bool      `db:"email_verified" json:"emailVerified"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

func (a *Account) Identity() *Identity {
	return &Identity{
		UID:           a.ID,
		Email:         a.Email,
		DisplayName:   a.DisplayName,
		EmailVerified: a.EmailVerified,
	}
}
