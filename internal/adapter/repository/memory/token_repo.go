package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/simaogato/estateledger-backend/internal/domain"
)

type holding struct {
	holder  common.Address
	tokenID uint64
}

type approval struct {
	holder   common.Address
	operator common.Address
}

// TokenRepository implements domain.TokenRepository in process memory.
type TokenRepository struct {
	mu        sync.RWMutex
	tokens    map[uint64]*domain.EstateToken
	balances  map[holding]uint64
	approvals map[approval]bool
}

// NewTokenRepository creates a new empty TokenRepository
func NewTokenRepository() *TokenRepository {
	return &TokenRepository{
		tokens:    make(map[uint64]*domain.EstateToken),
		balances:  make(map[holding]uint64),
		approvals: make(map[approval]bool),
	}
}

func (r *TokenRepository) GetByID(ctx context.Context, id uint64) (*domain.EstateToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	token, ok := r.tokens[id]
	if !ok {
		return nil, fmt.Errorf("token %d: %w", id, domain.ErrNotFound)
	}
	return token.Clone(), nil
}

// List returns every token ordered by ID
func (r *TokenRepository) List(ctx context.Context) ([]*domain.EstateToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tokens := make([]*domain.EstateToken, 0, len(r.tokens))
	for _, token := range r.tokens {
		tokens = append(tokens, token.Clone())
	}
	sort.Slice(tokens, func(i, j int) bool { return tokens[i].ID < tokens[j].ID })
	return tokens, nil
}

func (r *TokenRepository) BalanceOf(ctx context.Context, holder common.Address, tokenID uint64) (uint64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.balances[holding{holder: holder, tokenID: tokenID}], nil
}

func (r *TokenRepository) IsApprovedForAll(ctx context.Context, holder, operator common.Address) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.approvals[approval{holder: holder, operator: operator}], nil
}

func (r *TokenRepository) SetApprovalForAll(ctx context.Context, holder, operator common.Address, approved bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := approval{holder: holder, operator: operator}
	if approved {
		r.approvals[key] = true
	} else {
		delete(r.approvals, key)
	}
	return nil
}

// Apply writes the whole change under one lock, so readers never see half of it
func (r *TokenRepository) Apply(ctx context.Context, change domain.TokenChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, token := range change.Tokens {
		r.tokens[token.ID] = token.Clone()
	}
	for _, balance := range change.Balances {
		key := holding{holder: balance.Holder, tokenID: balance.TokenID}
		if balance.Amount == 0 {
			delete(r.balances, key)
			continue
		}
		r.balances[key] = balance.Amount
	}
	return nil
}
