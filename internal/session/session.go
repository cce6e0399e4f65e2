package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-api/internal/identity"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
)

var ErrNotSignedIn = errors.New("not signed in")

const roleLookupTimeout = 10 * time.Second

// State is a snapshot of a session. Role is nil when the identity has no
// staff profile or the lookup failed.
type State struct {
	Loading  bool
	Identity *model.Identity
	Role     *model.Role
}

// Session is the identity and role of one client
type Session struct {
	ID string

	provider    identity.Provider
	staff       repository.StaffRepository
	metrics     *metrics.Metrics
	callbackURL string

	mu        sync.RWMutex
	state     State
	ready     chan struct{}
	readyOnce sync.Once

	unsubscribe func()
	closeOnce   sync.Once
}

// New starts a session over provider. The session stays loading until the
// provider delivers its first identity notification.
func New(id string, provider identity.Provider, staff repository.StaffRepository,
	callbackURL string, m *metrics.Metrics) *Session {
	s := &Session{
		ID:          id,
		provider:    provider,
		staff:       staff,
		metrics:     m,
		callbackURL: callbackURL,
		state:       State{Loading: true},
		ready:       make(chan struct{}),
	}
	s.unsubscribe = provider.OnIdentityChange(s.identityChanged)
	return s
}

func (s *Session) identityChanged(current *model.Identity) {
	var role *model.Role
	if current != nil {
		ctx, cancel := context.WithTimeout(context.Background(), roleLookupTimeout)
		role = s.FetchRole(ctx, current.UID)
		cancel()
	}

	s.mu.Lock()
	s.state = State{Identity: current, Role: role}
	s.mu.Unlock()

	s.readyOnce.Do(func() { close(s.ready) })
}

// FetchRole reads the role from the staff profile. Missing profiles and
// failed lookups both resolve to nil; failures are logged and counted.
func (s *Session) FetchRole(ctx context.Context, uid string) *model.Role {
	profile, err := s.staff.Get(ctx, uid)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			s.metrics.RoleLookupFailures.Inc()
			log.Warn().Err(err).Str("uid", uid).Msg("role lookup failed, treating as no role")
		}
		return nil
	}
	if !profile.Role.Valid() {
		return nil
	}
	role := profile.Role
	return &role
}

// SignUp creates the account and its staff profile. Provider errors are
// returned unchanged.
func (s *Session) SignUp(ctx context.Context, email, password, fullName string, role model.Role) (*model.Identity, error) {
	created, err := s.provider.CreateAccount(ctx, email, password)
	if err != nil {
		return nil, err
	}

	if err := s.provider.SetDisplayName(ctx, created, fullName); err != nil {
		return nil, err
	}

	if err := s.provider.SendVerification(ctx, created, s.callbackURL); err != nil {
		return nil, err
	}

	now := model.Now()
	profile := &model.StaffProfile{
		ID:                    created.UID,
		Email:                 created.Email,
		FullName:              fullName,
		Role:                  role,
		EmailVerified:         false,
		CreatedAt:             now,
		LastLogin:             nil,
		VerificationEmailSent: &now,
	}
	if err := s.staff.Create(ctx, profile); err != nil {
		return nil, err
	}

	// The identity change fired before the profile existed
	s.refreshRole(ctx, created.UID)

	return created, nil
}

// SignIn authenticates and records the login time. A failed lastLogin write
// is logged and does not undo the sign-in.
func (s *Session) SignIn(ctx context.Context, email, password string) (*model.Identity, error) {
	signedIn, err := s.provider.Authenticate(ctx, email, password)
	if err != nil {
		s.metrics.SignIns.WithLabelValues("failure").Inc()
		return nil, err
	}
	s.metrics.SignIns.WithLabelValues("success").Inc()

	if err := s.staff.UpdateLastLogin(ctx, signedIn.UID, time.Now()); err != nil {
		log.Warn().Err(err).Str("uid", signedIn.UID).Msg("failed to record last login")
	}

	return signedIn, nil
}

func (s *Session) SignOut(ctx context.Context) error {
	return s.provider.SignOut(ctx)
}

func (s *Session) RequestPasswordReset(ctx context.Context, email string) error {
	return s.provider.SendPasswordReset(ctx, email)
}

// ResendVerification sends a new verification email to the signed-in identity
func (s *Session) ResendVerification(ctx context.Context) error {
	current := s.State().Identity
	if current == nil {
		return ErrNotSignedIn
	}
	return s.provider.SendVerification(ctx, current, s.callbackURL)
}

func (s *Session) CurrentRole() *model.Role {
	return s.State().Role
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Ready is closed once the first identity notification has been handled
func (s *Session) Ready() <-chan struct{} {
	return s.ready
}

// Close stops listening for identity changes
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if s.unsubscribe != nil {
			s.unsubscribe()
		}
	})
}

func (s *Session) refreshRole(ctx context.Context, uid string) {
	role := s.FetchRole(ctx, uid)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Identity != nil && s.state.Identity.UID == uid {
		s.state.Role = role
	}
}
