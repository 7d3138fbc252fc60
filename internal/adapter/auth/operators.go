package auth

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/simaogato/estateledger-backend/internal/domain"
)

// OperatorSet grants domain.RoleOperator to a fixed set of addresses.
type OperatorSet struct {
	mu        sync.RWMutex
	operators map[common.Address]struct{}
}

// NewOperatorSet creates an OperatorSet from the given addresses
func NewOperatorSet(operators ...common.Address) *OperatorSet {
	set := &OperatorSet{operators: make(map[common.Address]struct{}, len(operators))}
	for _, op := range operators {
		set.operators[op] = struct{}{}
	}
	return set
}

// Authorize implements domain.Authorizer
func (s *OperatorSet) Authorize(ctx context.Context, caller common.Address, role domain.Role) bool {
	if role != domain.RoleOperator {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.operators[caller]
	return ok
}

func (s *OperatorSet) Add(operator common.Address) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.operators[operator] = struct{}{}
}

func (s *OperatorSet) Remove(operator common.Address) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.operators, operator)
}
