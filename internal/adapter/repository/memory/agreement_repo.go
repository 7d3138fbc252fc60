package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/simaogato/estateledger-backend/internal/domain"
)

// AgreementRepository implements domain.AgreementRepository in process memory.
// Agreements are copied on the way in and out.
type AgreementRepository struct {
	mu         sync.RWMutex
	agreements []*domain.Agreement
}

// NewAgreementRepository creates a new empty AgreementRepository
func NewAgreementRepository() *AgreementRepository {
	return &AgreementRepository{}
}

// Create assigns the next sequential ID, starting at 0
func (r *AgreementRepository) Create(ctx context.Context, agreement *domain.Agreement) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uint64(len(r.agreements))
	stored := agreement.Clone()
	stored.ID = id
	r.agreements = append(r.agreements, stored)
	agreement.ID = id
	return id, nil
}

func (r *AgreementRepository) GetByID(ctx context.Context, id uint64) (*domain.Agreement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if id >= uint64(len(r.agreements)) {
		return nil, fmt.Errorf("agreement %d: %w", id, domain.ErrNotFound)
	}
	return r.agreements[id].Clone(), nil
}

func (r *AgreementRepository) Update(ctx context.Context, agreement *domain.Agreement) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if agreement.ID >= uint64(len(r.agreements)) {
		return fmt.Errorf("agreement %d: %w", agreement.ID, domain.ErrNotFound)
	}
	r.agreements[agreement.ID] = agreement.Clone()
	return nil
}
