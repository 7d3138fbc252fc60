package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/simaogato/estateledger-backend/internal/domain"
)

// SettingsRepository implements domain.SettingsRepository in process memory.
type SettingsRepository struct {
	mu    sync.RWMutex
	deed  *domain.DeedSettings
	token *domain.TokenSettings
}

// NewSettingsRepository creates a SettingsRepository with nothing stored
func NewSettingsRepository() *SettingsRepository {
	return &SettingsRepository{}
}

func (r *SettingsRepository) GetDeedSettings(ctx context.Context) (*domain.DeedSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.deed == nil {
		return nil, fmt.Errorf("deed settings: %w", domain.ErrNotFound)
	}
	copied := *r.deed
	return &copied, nil
}

func (r *SettingsRepository) SaveDeedSettings(ctx context.Context, settings *domain.DeedSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *settings
	r.deed = &copied
	return nil
}

func (r *SettingsRepository) GetTokenSettings(ctx context.Context) (*domain.TokenSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.token == nil {
		return nil, fmt.Errorf("token settings: %w", domain.ErrNotFound)
	}
	copied := *r.token
	return &copied, nil
}

func (r *SettingsRepository) SaveTokenSettings(ctx context.Context, settings *domain.TokenSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *settings
	r.token = &copied
	return nil
}
