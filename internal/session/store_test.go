package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/identity"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository/memory"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
	"github.com/jwalitptl/clinic-api/pkg/security"
)

type nopMailer struct{}

func (nopMailer) SendVerification(ctx context.Context, to, link string) error { return nil }
func (nopMailer) SendPasswordReset(ctx context.Context, to, link string) error { return nil }

func newTestStore(t *testing.T) (*Store, *fakeStaff, *metrics.Metrics) {
	t.Helper()
	accounts := identity.NewService(memory.NewAccountRepository(), security.NewBcryptHasher(4), nopMailer{}, identity.Config{
		Secret: "identity-secret",
	})
	staff := newFakeStaff()
	m := metrics.New("test", nil)
	store := NewStore(accounts, staff, m, StoreConfig{Secret: "session-secret", CallbackURL: "http://clinic.test/login"})
	return store, staff, m
}

func waitReady(t *testing.T, sess *Session) {
	t.Helper()
	select {
	case <-sess.Ready():
	case <-time.After(time.Second):
		t.Fatal("session never became ready")
	}
}

func TestStoreIssueAndResolve(t *testing.T) {
	ctx := context.Background()
	store, _, m := newTestStore(t)

	sess := store.New()
	waitReady(t, sess)
	assert.Equal(t, 1, store.Count())
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ActiveSessions))

	created, err := sess.SignUp(ctx, "doc@example.com", "secret1", "Dr. Mehta", model.RoleDoctor)
	require.NoError(t, err)

	token, err := store.Issue(sess, created)
	require.NoError(t, err)

	resolved, err := store.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Same(t, sess, resolved)

	store.Remove(sess.ID)
	assert.Equal(t, 0, store.Count())
	assert.Equal(t, float64(0), testutil.ToFloat64(m.ActiveSessions))
}

func TestStoreRebuildsEvictedSession(t *testing.T) {
	ctx := context.Background()
	store, staff, _ := newTestStore(t)

	sess := store.New()
	waitReady(t, sess)
	created, err := sess.SignUp(ctx, "doc@example.com", "secret1", "Dr. Mehta", model.RoleDoctor)
	require.NoError(t, err)
	require.Contains(t, staff.profiles, created.UID)

	token, err := store.Issue(sess, created)
	require.NoError(t, err)
	store.Remove(sess.ID)

	rebuilt, err := store.Resolve(ctx, token)
	require.NoError(t, err)
	assert.NotSame(t, sess, rebuilt)
	assert.Equal(t, sess.ID, rebuilt.ID)

	waitReady(t, rebuilt)
	state := rebuilt.State()
	assert.Equal(t, created.UID, state.Identity.UID)
	require.NotNil(t, state.Role)
	assert.Equal(t, model.RoleDoctor, *state.Role)
}

func TestStoreRejectsBadTokens(t *testing.T) {
	ctx := context.Background()
	store, _, _ := newTestStore(t)

	_, err := store.Resolve(ctx, "not-a-token")
	assert.True(t, apperrors.IsAuthKind(err, apperrors.InvalidToken))

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		SessionID: "s", UID: "u",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("someone-elses-secret"))
	require.NoError(t, err)
	_, err = store.Resolve(ctx, forged)
	assert.True(t, apperrors.IsAuthKind(err, apperrors.InvalidToken))

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		SessionID: "s", UID: "u",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}).SignedString([]byte("session-secret"))
	require.NoError(t, err)
	_, err = store.Resolve(ctx, expired)
	assert.True(t, apperrors.IsAuthKind(err, apperrors.InvalidToken))

	// valid signature but the account is gone
	unknown, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		SessionID: "s", UID: "u",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("session-secret"))
	require.NoError(t, err)
	_, err = store.Resolve(ctx, unknown)
	assert.True(t, apperrors.IsAuthKind(err, apperrors.InvalidToken))
	assert.Equal(t, 0, store.Count())
}

func TestStoreRevokedSessionIsNotRebuilt(t *testing.T) {
	ctx := context.Background()
	store, _, m := newTestStore(t)

	sess := store.New()
	waitReady(t, sess)
	created, err := sess.SignUp(ctx, "doc@example.com", "secret1", "Dr. Mehta", model.RoleDoctor)
	require.NoError(t, err)
	token, err := store.Issue(sess, created)
	require.NoError(t, err)

	require.NoError(t, sess.SignOut(ctx))
	store.Revoke(sess.ID)
	assert.Equal(t, 0, store.Count())
	assert.Equal(t, float64(0), testutil.ToFloat64(m.ActiveSessions))

	_, err = store.Resolve(ctx, token)
	assert.True(t, apperrors.IsAuthKind(err, apperrors.InvalidToken))
	assert.Equal(t, 0, store.Count())

	// other sessions of the same account are unaffected
	other := store.New()
	waitReady(t, other)
	signedIn, err := other.SignIn(ctx, "doc@example.com", "secret1")
	require.NoError(t, err)
	otherToken, err := store.Issue(other, signedIn)
	require.NoError(t, err)
	resolved, err := store.Resolve(ctx, otherToken)
	require.NoError(t, err)
	assert.Same(t, other, resolved)
}
