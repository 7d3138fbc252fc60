package funds

import (
	"context"
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

var (
	ErrInsufficientFunds     = errors.New("transfer amount exceeds balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrNegativeAmount        = errors.New("amount must not be negative")
)

type account struct {
	asset  common.Address
	holder common.Address
}

type allowanceKey struct {
	asset   common.Address
	owner   common.Address
	spender common.Address
}

// MemoryLedger is an in-process ERC-20 style ledger for any number of assets.
type MemoryLedger struct {
	mu         sync.Mutex
	balances   map[account]decimal.Decimal
	allowances map[allowanceKey]decimal.Decimal
}

// NewMemoryLedger creates an empty MemoryLedger
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		balances:   make(map[account]decimal.Decimal),
		allowances: make(map[allowanceKey]decimal.Decimal),
	}
}

// Mint credits amount of asset to holder.
func (l *MemoryLedger) Mint(asset, holder common.Address, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrNegativeAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	key := account{asset: asset, holder: holder}
	l.balances[key] = l.balances[key].Add(amount)
	return nil
}

// Approve sets the amount spender may move out of owner's balance.
func (l *MemoryLedger) Approve(asset, owner, spender common.Address, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrNegativeAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.allowances[allowanceKey{asset: asset, owner: owner, spender: spender}] = amount
	return nil
}

func (l *MemoryLedger) BalanceOf(asset, holder common.Address) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.balances[account{asset: asset, holder: holder}]
}

// Allowance implements domain.FundsTransferer
func (l *MemoryLedger) Allowance(ctx context.Context, asset, owner, spender common.Address) (decimal.Decimal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.allowances[allowanceKey{asset: asset, owner: owner, spender: spender}], nil
}

// TransferFrom implements domain.FundsTransferer. It spends spender's
// allowance and fails without side effects when balance or allowance is short.
func (l *MemoryLedger) TransferFrom(ctx context.Context, asset, spender, from, to common.Address, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrNegativeAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	allowKey := allowanceKey{asset: asset, owner: from, spender: spender}
	allowance := l.allowances[allowKey]
	if allowance.LessThan(amount) {
		return ErrInsufficientAllowance
	}

	fromKey := account{asset: asset, holder: from}
	balance := l.balances[fromKey]
	if balance.LessThan(amount) {
		return ErrInsufficientFunds
	}

	toKey := account{asset: asset, holder: to}
	l.allowances[allowKey] = allowance.Sub(amount)
	l.balances[fromKey] = balance.Sub(amount)
	l.balances[toKey] = l.balances[toKey].Add(amount)
	return nil
}
