package identity

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-api/internal/email"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/security"
)

type Config struct {
	Secret          string
	PublicURL       string
	VerificationTTL time.Duration
	ResetTTL        time.Duration
}

// Service is the account backend shared by every client
type Service struct {
	accounts repository.AccountRepository
	hasher   security.PasswordHasher
	mailer   email.Service
	secret   []byte
	cfg      Config
}

func NewService(accounts repository.AccountRepository, hasher security.PasswordHasher,
	mailer email.Service, cfg Config) *Service {
	if cfg.VerificationTTL == 0 {
		cfg.VerificationTTL = 48 * time.Hour
	}
	if cfg.ResetTTL == 0 {
		cfg.ResetTTL = time.Hour
	}
	return &Service{
		accounts: accounts,
		hasher:   hasher,
		mailer:   mailer,
		secret:   []byte(cfg.Secret),
		cfg:      cfg,
	}
}

func (s *Service) CreateAccount(ctx context.Context, email, password string) (*model.Identity, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		if isWeakPassword(err) {
			return nil, errors.NewAuthError(errors.WeakPassword, err)
		}
		return nil, errors.NewAuthError(errors.NetworkError, err)
	}

	account := &model.Account{
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if stderrors.Is(err, repository.ErrEmailTaken) {
			return nil, errors.NewAuthError(errors.EmailInUse, err)
		}
		return nil, errors.NewAuthError(errors.NetworkError, err)
	}

	log.Info().Str("uid", account.ID).Msg("account created")
	return account.Identity(), nil
}

func (s *Service) SetDisplayName(ctx context.Context, uid, name string) error {
	if err := s.accounts.UpdateDisplayName(ctx, uid, name); err != nil {
		return s.accountError(err)
	}
	return nil
}

// SendVerification emails a verification link. callbackURL is where the
// client continues after verifying.
func (s *Service) SendVerification(ctx context.Context, uid, callbackURL string) error {
	account, err := s.accounts.Get(ctx, uid)
	if err != nil {
		return s.accountError(err)
	}

	token, err := s.issueToken(account.ID, PurposeVerifyEmail, callbackURL, s.cfg.VerificationTTL)
	if err != nil {
		return errors.NewAuthError(errors.NetworkError, err)
	}

	params := url.Values{"token": {token}}
	if callbackURL != "" {
		params.Set("continue", callbackURL)
	}
	if err := s.mailer.SendVerification(ctx, account.Email, s.link("/verify-email", params)); err != nil {
		return errors.NewAuthError(errors.NetworkError, err)
	}
	return nil
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (*model.Identity, error) {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if stderrors.Is(err, repository.ErrAccountNotFound) {
			return nil, errors.NewAuthError(errors.InvalidCredentials, nil)
		}
		return nil, errors.NewAuthError(errors.NetworkError, err)
	}

	if err := s.hasher.Compare(account.PasswordHash, password); err != nil {
		return nil, errors.NewAuthError(errors.InvalidCredentials, nil)
	}

	return account.Identity(), nil
}

// SendPasswordReset emails a reset link. Unknown addresses are not reported
// so the endpoint cannot be used to probe for accounts.
func (s *Service) SendPasswordReset(ctx context.Context, email string) error {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if stderrors.Is(err, repository.ErrAccountNotFound) {
			log.Debug().Msg("password reset requested for unknown email")
			return nil
		}
		return errors.NewAuthError(errors.NetworkError, err)
	}

	token, err := s.issueToken(account.ID, PurposeResetPassword, "", s.cfg.ResetTTL)
	if err != nil {
		return errors.NewAuthError(errors.NetworkError, err)
	}

	link := s.link("/reset-password", url.Values{"token": {token}})
	if err := s.mailer.SendPasswordReset(ctx, account.Email, link); err != nil {
		return errors.NewAuthError(errors.NetworkError, err)
	}
	return nil
}

// VerifyEmail confirms a verification token and returns the verified
// identity along with the continue URL it was issued for.
func (s *Service) VerifyEmail(ctx context.Context, token string) (*model.Identity, string, error) {
	claims, err := s.parseToken(token, PurposeVerifyEmail)
	if err != nil {
		return nil, "", errors.NewAuthError(errors.InvalidToken, err)
	}

	if err := s.accounts.MarkEmailVerified(ctx, claims.Subject); err != nil {
		return nil, "", s.accountError(err)
	}

	identity, err := s.Lookup(ctx, claims.Subject)
	if err != nil {
		return nil, "", err
	}
	return identity, claims.Continue, nil
}

func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	claims, err := s.parseToken(token, PurposeResetPassword)
	if err != nil {
		return errors.NewAuthError(errors.InvalidToken, err)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		if isWeakPassword(err) {
			return errors.NewAuthError(errors.WeakPassword, err)
		}
		return errors.NewAuthError(errors.NetworkError, err)
	}

	if err := s.accounts.UpdatePassword(ctx, claims.Subject, hash); err != nil {
		return s.accountError(err)
	}

	log.Info().Str("uid", claims.Subject).Msg("password reset")
	return nil
}

// Lookup returns the identity of an existing account
func (s *Service) Lookup(ctx context.Context, uid string) (*model.Identity, error) {
	account, err := s.accounts.Get(ctx, uid)
	if err != nil {
		return nil, s.accountError(err)
	}
	return account.Identity(), nil
}

func (s *Service) accountError(err error) error {
	if stderrors.Is(err, repository.ErrAccountNotFound) {
		return errors.NewAuthError(errors.InvalidToken, err)
	}
	return errors.NewAuthError(errors.NetworkError, fmt.Errorf("account store: %w", err))
}

func (s *Service) link(path string, params url.Values) string {
	return strings.TrimRight(s.cfg.PublicURL, "/") + path + "?" + params.Encode()
}

func isWeakPassword(err error) bool {
	return stderrors.Is(err, security.ErrWeakPassword) || stderrors.Is(err, security.ErrPasswordTooLong)
}
