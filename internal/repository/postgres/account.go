package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

const uniqueViolation = "23505"

type accountRepository struct {
	db *sqlx.DB
}

func NewAccountRepository(db *sqlx.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, account *model.Account) error {
	query := `
		INSERT INTO accounts (
			id, email, password_hash, display_name,
			email_verified, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	account.Email = strings.ToLower(strings.TrimSpace(account.Email))
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		account.ID,
		account.Email,
		account.PasswordHash,
		account.DisplayName,
		account.EmailVerified,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return repository.ErrEmailTaken
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *accountRepository) Get(ctx context.Context, id string) (*model.Account, error) {
	query := `
		SELECT id, email, password_hash, display_name,
			   email_verified, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`
	var account model.Account
	if err := r.db.GetContext(ctx, &account, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	query := `
		SELECT id, email, password_hash, display_name,
			   email_verified, created_at, updated_at
		FROM accounts
		WHERE lower(email) = lower($1)
	`
	var account model.Account
	if err := r.db.GetContext(ctx, &account, query, strings.TrimSpace(email)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account by email: %w", err)
	}
	return &account, nil
}

func (r *accountRepository) UpdateDisplayName(ctx context.Context, id, name string) error {
	return r.exec(ctx, "update display name", `
		UPDATE accounts SET display_name = $2, updated_at = now() WHERE id = $1
	`, id, name)
}

func (r *accountRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.exec(ctx, "update password", `
		UPDATE accounts SET password_hash = $2, updated_at = now() WHERE id = $1
	`, id, passwordHash)
}

func (r *accountRepository) MarkEmailVerified(ctx context.Context, id string) error {
	return r.exec(ctx, "mark email verified", `
		UPDATE accounts SET email_verified = TRUE, updated_at = now() WHERE id = $1
	`, id)
}

func (r *accountRepository) exec(ctx context.Context, op, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrAccountNotFound
	}
	return nil
}
