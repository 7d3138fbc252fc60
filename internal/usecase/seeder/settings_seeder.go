package seeder

import (
	"context"
	"errors"
	"fmt"

	"github.com/simaogato/estateledger-backend/internal/domain"
)

// Defaults are the ledger settings written on first start.
type Defaults struct {
	Deed  domain.DeedSettings
	Token domain.TokenSettings
}

// SettingsSeeder handles seeding of the operator-settable ledger settings
type SettingsSeeder struct {
	repo domain.SettingsRepository
}

// NewSettingsSeeder creates a new SettingsSeeder instance
func NewSettingsSeeder(repo domain.SettingsRepository) *SettingsSeeder {
	return &SettingsSeeder{
		repo: repo,
	}
}

// Seed stores the defaults for every settings record that does not exist yet.
// Records that already exist are left alone so operator changes survive restarts.
// Returns whether each record was written.
func (s *SettingsSeeder) Seed(ctx context.Context, defaults Defaults) (deedSeeded, tokenSeeded bool, err error) {
	_, err = s.repo.GetDeedSettings(ctx)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		deed := defaults.Deed
		if err := deed.Validate(); err != nil {
			return false, false, err
		}
		if err := s.repo.SaveDeedSettings(ctx, &deed); err != nil {
			return false, false, fmt.Errorf("failed to seed deed settings: %w", err)
		}
		deedSeeded = true
	case err != nil:
		return false, false, fmt.Errorf("failed to get deed settings: %w", err)
	}

	_, err = s.repo.GetTokenSettings(ctx)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		token := defaults.Token
		if err := s.repo.SaveTokenSettings(ctx, &token); err != nil {
			return deedSeeded, false, fmt.Errorf("failed to seed token settings: %w", err)
		}
		tokenSeeded = true
	case err != nil:
		return deedSeeded, false, fmt.Errorf("failed to get token settings: %w", err)
	}

	return deedSeeded, tokenSeeded, nil
}
