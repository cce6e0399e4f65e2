package session

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-api/internal/identity"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
)

const tokenIssuer = "clinic-api/session"

type StoreConfig struct {
	Secret      string
	SessionTTL  time.Duration
	TokenTTL    time.Duration
	CallbackURL string
}

// Claims identify a session and the identity signed in to it
type Claims struct {
	SessionID string `json:"sid"`
	UID       string `json:"uid"`
	jwt.RegisteredClaims
}

// Store keeps live sessions in memory and hands out bearer tokens for them.
// A valid token whose session has expired gets a rebuilt session, unless the
// session was revoked by signing out.
type Store struct {
	sessions *cache.Cache
	// revoked session ids, kept until any token naming them has expired
	revoked  *cache.Cache
	accounts *identity.Service
	staff    repository.StaffRepository
	metrics  *metrics.Metrics
	secret   []byte
	cfg      StoreConfig
}

func NewStore(accounts *identity.Service, staff repository.StaffRepository, m *metrics.Metrics, cfg StoreConfig) *Store {
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 12 * time.Hour
	}
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = 7 * 24 * time.Hour
	}

	s := &Store{
		sessions: cache.New(cfg.SessionTTL, cfg.SessionTTL/2),
		revoked:  cache.New(cfg.TokenTTL, cfg.TokenTTL/2),
		accounts: accounts,
		staff:    staff,
		metrics:  m,
		secret:   []byte(cfg.Secret),
		cfg:      cfg,
	}
	s.sessions.OnEvicted(func(id string, v interface{}) {
		if sess, ok := v.(*Session); ok {
			sess.Close()
		}
		m.ActiveSessions.Dec()
	})
	return s
}

// New starts a signed-out session
func (s *Store) New() *Session {
	return s.start(uuid.New().String(), nil)
}

func (s *Store) start(id string, current *model.Identity) *Session {
	client := identity.NewClient(s.accounts, current)
	sess := New(id, client, s.staff, s.cfg.CallbackURL, s.metrics)
	s.sessions.SetDefault(id, sess)
	s.metrics.ActiveSessions.Inc()
	return sess
}

// Issue returns a bearer token for the identity signed in to sess
func (s *Store) Issue(sess *Session, signedIn *model.Identity) (string, error) {
	now := time.Now()
	claims := Claims{
		SessionID: sess.ID,
		UID:       signedIn.UID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   signedIn.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, nil
}

// Resolve returns the session a bearer token refers to
func (s *Store) Resolve(ctx context.Context, token string) (*Session, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, errors.NewAuthError(errors.InvalidToken, err)
	}
	if claims.SessionID == "" || claims.UID == "" {
		return nil, errors.NewAuthError(errors.InvalidToken, fmt.Errorf("token is missing session claims"))
	}

	if _, revoked := s.revoked.Get(claims.SessionID); revoked {
		return nil, errors.NewAuthError(errors.InvalidToken, fmt.Errorf("session has been signed out"))
	}

	if v, ok := s.sessions.Get(claims.SessionID); ok {
		sess := v.(*Session)
		// Sliding expiry
		s.sessions.SetDefault(claims.SessionID, sess)
		return sess, nil
	}

	return s.rebuild(ctx, claims)
}

func (s *Store) rebuild(ctx context.Context, claims *Claims) (*Session, error) {
	current, err := s.accounts.Lookup(ctx, claims.UID)
	if err != nil {
		return nil, err
	}

	client := identity.NewClient(s.accounts, current)
	sess := New(claims.SessionID, client, s.staff, s.cfg.CallbackURL, s.metrics)
	if err := s.sessions.Add(claims.SessionID, sess, cache.DefaultExpiration); err != nil {
		// Another request rebuilt it first
		sess.Close()
		if v, ok := s.sessions.Get(claims.SessionID); ok {
			return v.(*Session), nil
		}
		return nil, errors.NewAuthError(errors.InvalidToken, err)
	}
	s.metrics.ActiveSessions.Inc()

	log.Debug().Str("session_id", claims.SessionID).Str("uid", claims.UID).Msg("session rebuilt from token")
	return sess, nil
}

// Remove drops a session and stops it. Tokens issued for it stay valid and
// get a rebuilt session.
func (s *Store) Remove(id string) {
	s.sessions.Delete(id)
}

// Revoke drops a session and rejects every token issued for it
func (s *Store) Revoke(id string) {
	s.revoked.SetDefault(id, struct{}{})
	s.sessions.Delete(id)
}

func (s *Store) Count() int {
	return s.sessions.ItemCount()
}
