package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

func TestAccountRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository()

	account := &model.Account{Email: "  Dr.Who@Clinic.test ", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, account))
	assert.NotEmpty(t, account.ID)
	assert.Equal(t, "dr.who@clinic.test", account.Email)

	err := repo.Create(ctx, &model.Account{Email: "DR.WHO@clinic.test"})
	assert.ErrorIs(t, err, repository.ErrEmailTaken)

	byEmail, err := repo.GetByEmail(ctx, "dr.who@CLINIC.test")
	require.NoError(t, err)
	assert.Equal(t, account.ID, byEmail.ID)

	require.NoError(t, repo.UpdateDisplayName(ctx, account.ID, "Dr Who"))
	require.NoError(t, repo.MarkEmailVerified(ctx, account.ID))
	require.NoError(t, repo.UpdatePassword(ctx, account.ID, "new-hash"))

	got, err := repo.Get(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dr Who", got.DisplayName)
	assert.True(t, got.EmailVerified)
	assert.Equal(t, "new-hash", got.PasswordHash)

	// returned values are copies
	got.DisplayName = "changed"
	again, err := repo.Get(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dr Who", again.DisplayName)
}

func TestAccountRepositoryNotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository()

	_, err := repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrAccountNotFound)
	_, err = repo.GetByEmail(ctx, "nobody@clinic.test")
	assert.ErrorIs(t, err, repository.ErrAccountNotFound)
	assert.ErrorIs(t, repo.MarkEmailVerified(ctx, "missing"), repository.ErrAccountNotFound)
}
