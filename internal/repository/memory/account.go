package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

type accountRepository struct {
	mu      sync.RWMutex
	byID    map[string]*model.Account
	byEmail map[string]string
}

func NewAccountRepository() repository.AccountRepository {
	return &accountRepository{
		byID:    make(map[string]*model.Account),
		byEmail: make(map[string]string),
	}
}

func (r *accountRepository) Create(ctx context.Context, account *model.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := normalize(account.Email)
	if _, ok := r.byEmail[email]; ok {
		return repository.ErrEmailTaken
	}

	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	account.Email = email
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt

	stored := *account
	r.byID[account.ID] = &stored
	r.byEmail[email] = account.ID
	return nil
}

func (r *accountRepository) Get(ctx context.Context, id string) (*model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}
	out := *account
	return &out, nil
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	r.mu.RLock()
	id, ok := r.byEmail[normalize(email)]
	r.mu.RUnlock()
	if !ok {
		return nil, repository.ErrAccountNotFound
	}
	return r.Get(ctx, id)
}

func (r *accountRepository) UpdateDisplayName(ctx context.Context, id, name string) error {
	return r.mutate(id, func(a *model.Account) { a.DisplayName = name })
}

func (r *accountRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.mutate(id, func(a *model.Account) { a.PasswordHash = passwordHash })
}

func (r *accountRepository) MarkEmailVerified(ctx context.Context, id string) error {
	return r.mutate(id, func(a *model.Account) { a.EmailVerified = true })
}

func (r *accountRepository) mutate(id string, fn func(*model.Account)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.byID[id]
	if !ok {
		return repository.ErrAccountNotFound
	}
	fn(account)
	account.UpdatedAt = time.Now()
	return nil
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
