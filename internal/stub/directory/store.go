// Copyright (c) 2026 Univera. All rights reserved.
// Author: dev@univera.app

package directory

import (
	"context"
	"strings"
	"sync"

	"github.com/univera/portal/internal/platform/apperr"
)

// AccountRepository is the storage contract for directory accounts.
//
// # Error Mapping
//
// Lookups return apperr.NotFound when no account matches; every other
// error is a storage fault.
type AccountRepository interface {
	Create(ctx context.Context, account *Account) error
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id string) (*Account, error)
	SetPassword(ctx context.Context, id string, passwordHash string) error
}

// MemoryAccountRepository keeps accounts in process memory.
//
// The stub API falls back to this when no DATABASE_URL is configured, so
// the portal can be developed with zero infrastructure.
type MemoryAccountRepository struct {
	mu       sync.RWMutex
	byID     map[string]*Account
	idByMail map[string]string
}

// NewMemoryAccountRepository creates an empty in-memory repository.
func NewMemoryAccountRepository() *MemoryAccountRepository {
	return &MemoryAccountRepository{
		byID:     make(map[string]*Account),
		idByMail: make(map[string]string),
	}
}

// Create persists a new account. Emails are unique, case-insensitive.
func (repository *MemoryAccountRepository) Create(_ context.Context, account *Account) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	key := normalizeEmail(account.Email)
	if _, exists := repository.idByMail[key]; exists {
		return apperr.Conflict("Email is already registered")
	}

	stored := *account
	repository.byID[account.ID] = &stored
	repository.idByMail[key] = account.ID
	return nil
}

// FindByEmail retrieves an account by email.
func (repository *MemoryAccountRepository) FindByEmail(_ context.Context, email string) (*Account, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	id, ok := repository.idByMail[normalizeEmail(email)]
	if !ok {
		return nil, apperr.NotFound("Account")
	}
	account := *repository.byID[id]
	return &account, nil
}

// FindByID retrieves an account by its identifier.
func (repository *MemoryAccountRepository) FindByID(_ context.Context, id string) (*Account, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	account, ok := repository.byID[id]
	if !ok {
		return nil, apperr.NotFound("Account")
	}
	copied := *account
	return &copied, nil
}

// SetPassword stores the first (or a replacement) password hash.
func (repository *MemoryAccountRepository) SetPassword(_ context.Context, id string, passwordHash string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	account, ok := repository.byID[id]
	if !ok {
		return apperr.NotFound("Account")
	}
	account.PasswordHash = passwordHash
	return nil
}

// normalizeEmail lower-cases and trims an email for use as a lookup key.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
