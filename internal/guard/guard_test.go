package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/session"
)

func role(r model.Role) *model.Role {
	return &r
}

func TestAuthorize(t *testing.T) {
	signedIn := &model.Identity{UID: "u1", Email: "doc@example.com"}

	tests := []struct {
		name     string
		required model.Role
		state    session.State
		want     Decision
	}{
		{
			name:     "loading",
			required: model.RoleDoctor,
			state:    session.State{Loading: true},
			want:     Pending,
		},
		{
			name:     "loading with identity",
			required: model.RoleDoctor,
			state:    session.State{Loading: true, Identity: signedIn, Role: role(model.RoleDoctor)},
			want:     Pending,
		},
		{
			name:     "signed out",
			required: model.RoleDoctor,
			state:    session.State{},
			want:     RedirectToLogin,
		},
		{
			name:     "role unknown",
			required: model.RoleDoctor,
			state:    session.State{Identity: signedIn},
			want:     RedirectHome,
		},
		{
			name:     "wrong role",
			required: model.RoleDoctor,
			state:    session.State{Identity: signedIn, Role: role(model.RoleReceptionist)},
			want:     RedirectHome,
		},
		{
			name:     "matching role",
			required: model.RoleReceptionist,
			state:    session.State{Identity: signedIn, Role: role(model.RoleReceptionist)},
			want:     Allow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Authorize(tt.required, tt.state))
		})
	}
}

func TestDecisionLocation(t *testing.T) {
	assert.Equal(t, LoginPath, RedirectToLogin.Location())
	assert.Equal(t, HomePath, RedirectHome.Location())
	assert.Empty(t, Allow.Location())
	assert.Empty(t, Pending.Location())
	assert.Equal(t, "redirect_to_login", RedirectToLogin.String())
}
