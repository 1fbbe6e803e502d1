// Copyright (c) 2026 Univera. All rights reserved.
// Author: dev@univera.app

package directory

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/univera/portal/internal/platform/apperr"
	"github.com/univera/portal/internal/platform/sec"
	"github.com/univera/portal/pkg/uuidv7"
)

// demoPassword is the shared password for the seeded demo accounts.
const demoPassword = "univera123"

// seedAccount describes one demo directory entry.
type seedAccount struct {
	account     Account
	provisioned bool // no password yet; must go through first-time setup
}

// Seed populates the repository with the demo accounts used during portal
// development.
//
// # Idempotency
//
// Existing accounts are left alone, so seeding a persistent database twice
// is harmless. One account is deliberately provisioned without a password
// to exercise the first-time-setup flow end to end.
func Seed(ctx context.Context, accounts AccountRepository, log *slog.Logger) error {
	seeds := []seedAccount{
		{account: Account{
			Email:     "admin@univera.app",
			FirstName: "Avery",
			LastName:  "Admin",
			Role:      RoleAdmin,
		}},
		{account: Account{
			Email:            "sam.student@univera.app",
			FirstName:        "Sam",
			LastName:         "Student",
			Role:             RoleStudent,
			StudentID:        "S-2024-0117",
			EnrollmentYear:   2024,
			Major:            "Computer Science",
			GPA:              3.6,
			CreditsCompleted: 42,
		}},
		{account: Account{
			Email:      "pat.prof@univera.app",
			FirstName:  "Pat",
			LastName:   "Prof",
			Role:       RoleFaculty,
			Department: "Computer Science",
		}},
		{account: Account{
			Email:      "dana.dean@univera.app",
			FirstName:  "Dana",
			LastName:   "Dean",
			Role:       RoleDepartmentHead,
			Department: "Computer Science",
		}},
		{account: Account{
			Email:      "new.hire@univera.app",
			FirstName:  "Noor",
			LastName:   "Newhire",
			Role:       RoleFaculty,
			Department: "Mathematics",
		}, provisioned: true},
	}

	hash, err := sec.HashPassword(demoPassword)
	if err != nil {
		return fmt.Errorf("directory_seed_hash_failed: %w", err)
	}

	created := 0
	for _, seed := range seeds {
		if _, err := accounts.FindByEmail(ctx, seed.account.Email); err == nil {
			continue
		}

		account := seed.account
		account.ID = uuidv7.New()
		if !seed.provisioned {
			account.PasswordHash = hash
		}

		if err := accounts.Create(ctx, &account); err != nil {
			if apperr.IsAppError(err) {
				continue
			}
			return fmt.Errorf("directory_seed_create_failed: %w", err)
		}
		created++
	}

	log.Info("directory_seeded", slog.Int("created", created))
	return nil
}
