package domain

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// AgreementRepository defines the interface for agreement persistence.
type AgreementRepository interface {
	// Create stores a new agreement and assigns the next sequential ID, starting at 0.
	Create(ctx context.Context, agreement *Agreement) (uint64, error)
	GetByID(ctx context.Context, id uint64) (*Agreement, error)
	Update(ctx context.Context, agreement *Agreement) error
}

// TokenRepository defines the interface for token records, balances and approvals.
type TokenRepository interface {
	GetByID(ctx context.Context, id uint64) (*EstateToken, error)
	List(ctx context.Context) ([]*EstateToken, error)
	BalanceOf(ctx context.Context, holder common.Address, tokenID uint64) (uint64, error)
	IsApprovedForAll(ctx context.Context, holder, operator common.Address) (bool, error)
	SetApprovalForAll(ctx context.Context, holder, operator common.Address, approved bool) error
	// Apply writes every token record and balance in change, or none of them.
	Apply(ctx context.Context, change TokenChange) error
}

// SettingsRepository persists the operator-settable configuration of both ledgers.
type SettingsRepository interface {
	GetDeedSettings(ctx context.Context) (*DeedSettings, error)
	SaveDeedSettings(ctx context.Context, settings *DeedSettings) error
	GetTokenSettings(ctx context.Context) (*TokenSettings, error)
	SaveTokenSettings(ctx context.Context, settings *TokenSettings) error
}

// Role is a capability an Authorizer can grant.
type Role string

const RoleOperator Role = "OPERATOR"

// Authorizer answers whether a caller holds a role.
type Authorizer interface {
	Authorize(ctx context.Context, caller common.Address, role Role) bool
}

// FundsTransferer moves the platform fee on an external fungible-value ledger.
type FundsTransferer interface {
	Allowance(ctx context.Context, asset, owner, spender common.Address) (decimal.Decimal, error)
	TransferFrom(ctx context.Context, asset, spender, from, to common.Address, amount decimal.Decimal) error
}

// EventPublisher receives committed ledger events. Implementations handle
// their own delivery failures.
type EventPublisher interface {
	Publish(ctx context.Context, event Event)
}
