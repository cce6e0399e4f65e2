package identity

import (
	"context"

	"github.com/jwalitptl/clinic-api/internal/model"
)

// Listener receives the current identity, or nil when signed out
type Listener func(identity *model.Identity)

// Provider is the authentication capability a session is built on.
// Errors are *errors.AuthError.
type Provider interface {
	CreateAccount(ctx context.Context, email, password string) (*model.Identity, error)
	SetDisplayName(ctx context.Context, identity *model.Identity, name string) error
	SendVerification(ctx context.Context, identity *model.Identity, callbackURL string) error
	Authenticate(ctx context.Context, email, password string) (*model.Identity, error)
	SignOut(ctx context.Context) error
	SendPasswordReset(ctx context.Context, email string) error
	// OnIdentityChange registers fn and returns a function that removes it.
	// fn is called once with the current identity shortly after registering.
	OnIdentityChange(fn Listener) (unsubscribe func())
}
