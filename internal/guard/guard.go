// Package guard decides whether a session may reach a role-gated view.
package guard

import (
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/session"
)

type Decision int

const (
	// Pending means the session is still loading and no decision can be made yet
	Pending Decision = iota
	Allow
	RedirectToLogin
	RedirectHome
)

func (d Decision) String() string {
	switch d {
	case Pending:
		return "pending"
	case Allow:
		return "allow"
	case RedirectToLogin:
		return "redirect_to_login"
	case RedirectHome:
		return "redirect_home"
	}
	return "unknown"
}

const (
	LoginPath = "/login"
	HomePath  = "/"
)

func Authorize(required model.Role, state session.State) Decision {
	if state.Loading {
		return Pending
	}
	if state.Identity == nil {
		return RedirectToLogin
	}
	if state.Role == nil || *state.Role != required {
		return RedirectHome
	}
	return Allow
}

// Location returns the path a redirect decision points to
func (d Decision) Location() string {
	switch d {
	case RedirectToLogin:
		return LoginPath
	case RedirectHome:
		return HomePath
	}
	return ""
}
