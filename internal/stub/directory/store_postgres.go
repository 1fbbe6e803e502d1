// Copyright (c) 2026 Univera. All rights reserved.
// Author: dev@univera.app

package directory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/univera/portal/internal/platform/apperr"
	"github.com/univera/portal/internal/platform/dberr"
)

// PostgresAccountRepository implements AccountRepository using pgx.
//
// # Error Mapping
//
// pgx.ErrNoRows becomes apperr.NotFound and unique-constraint violations
// become apperr.Conflict, so the service layer never sees pgx types.
type PostgresAccountRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresAccountRepository creates a PostgreSQL-backed repository.
func NewPostgresAccountRepository(pool *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

const accountColumns = `
	id, email, first_name, last_name, password_hash, role,
	department, student_id, enrollment_year, major, gpa,
	credits_completed, avatar_url, created_at, updated_at`

/*
Create persists a new account into directory.account.

Parameters:
  - ctx: context.Context
  - account: *Account (Entity to persist)

Returns:
  - error: apperr.Conflict on a duplicate email, or connectivity errors
*/
func (repository *PostgresAccountRepository) Create(ctx context.Context, account *Account) error {
	const query = `
		INSERT INTO directory.account (
			id, email, first_name, last_name, password_hash, role,
			department, student_id, enrollment_year, major, gpa,
			credits_completed, avatar_url, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	now := time.Now()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	_, err := repository.pool.Exec(ctx, query,
		account.ID,
		normalizeEmail(account.Email),
		account.FirstName,
		account.LastName,
		account.PasswordHash,
		account.Role,
		account.Department,
		account.StudentID,
		account.EnrollmentYear,
		account.Major,
		account.GPA,
		account.CreditsCompleted,
		account.AvatarURL,
		account.CreatedAt,
		account.UpdatedAt,
	)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("Email is already registered")
		}
		return fmt.Errorf("postgres_account_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindByEmail retrieves an account by its unique email address.

Parameters:
  - ctx: context.Context
  - email: string

Returns:
  - *Account: Hydrated directory entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresAccountRepository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	query := `SELECT ` + accountColumns + ` FROM directory.account WHERE email = $1`
	return repository.scanOne(repository.pool.QueryRow(ctx, query, normalizeEmail(email)))
}

/*
FindByID retrieves an account by its identifier.

Parameters:
  - ctx: context.Context
  - id: string

Returns:
  - *Account: Hydrated directory entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresAccountRepository) FindByID(ctx context.Context, id string) (*Account, error) {
	query := `SELECT ` + accountColumns + ` FROM directory.account WHERE id = $1`
	return repository.scanOne(repository.pool.QueryRow(ctx, query, id))
}

/*
SetPassword stores a password hash for an existing account.

Parameters:
  - ctx: context.Context
  - id: string
  - passwordHash: string

Returns:
  - error: apperr.NotFound when no row matches, or database errors
*/
func (repository *PostgresAccountRepository) SetPassword(ctx context.Context, id string, passwordHash string) error {
	const query = `
		UPDATE directory.account
		SET password_hash = $2, updated_at = $3
		WHERE id = $1`

	tag, err := repository.pool.Exec(ctx, query, id, passwordHash, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_account_repo_set_password_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Account")
	}

	return nil
}

// scanOne hydrates a single account row.
func (repository *PostgresAccountRepository) scanOne(row pgx.Row) (*Account, error) {
	account := &Account{}
	err := row.Scan(
		&account.ID,
		&account.Email,
		&account.FirstName,
		&account.LastName,
		&account.PasswordHash,
		&account.Role,
		&account.Department,
		&account.StudentID,
		&account.EnrollmentYear,
		&account.Major,
		&account.GPA,
		&account.CreditsCompleted,
		&account.AvatarURL,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Account")
		}
		return nil, fmt.Errorf("postgres_account_repo_scan_failed: %w", err)
	}

	return account, nil
}
