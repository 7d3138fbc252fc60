package estatetoken

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"

	"github.com/simaogato/estateledger-backend/internal/domain"
)

type balanceKey struct {
	holder  common.Address
	tokenID uint64
}

// balanceSheet stages balance changes for one call so that every check runs
// before anything is written.
type balanceSheet struct {
	repo     domain.TokenRepository
	balances map[balanceKey]uint64
}

func newBalanceSheet(repo domain.TokenRepository) *balanceSheet {
	return &balanceSheet{
		repo:     repo,
		balances: make(map[balanceKey]uint64),
	}
}

func (b *balanceSheet) get(ctx context.Context, holder common.Address, tokenID uint64) (uint64, error) {
	key := balanceKey{holder: holder, tokenID: tokenID}
	if amount, ok := b.balances[key]; ok {
		return amount, nil
	}

	amount, err := b.repo.BalanceOf(ctx, holder, tokenID)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	b.balances[key] = amount
	return amount, nil
}

func (b *balanceSheet) credit(ctx context.Context, holder common.Address, tokenID, amount uint64) error {
	current, err := b.get(ctx, holder, tokenID)
	if err != nil {
		return err
	}
	next, err := domain.AddSupply(current, amount)
	if err != nil {
		return err
	}
	b.balances[balanceKey{holder: holder, tokenID: tokenID}] = next
	return nil
}

// debit fails with insufficient when amount exceeds the staged balance.
func (b *balanceSheet) debit(ctx context.Context, holder common.Address, tokenID, amount uint64, insufficient error) error {
	current, err := b.get(ctx, holder, tokenID)
	if err != nil {
		return err
	}
	if amount > current {
		return insufficient
	}
	b.balances[balanceKey{holder: holder, tokenID: tokenID}] = current - amount
	return nil
}

// changes returns the staged balances in a stable order.
func (b *balanceSheet) changes() []domain.Balance {
	out := make([]domain.Balance, 0, len(b.balances))
	for key, amount := range b.balances {
		out = append(out, domain.Balance{Holder: key.holder, TokenID: key.tokenID, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TokenID != out[j].TokenID {
			return out[i].TokenID < out[j].TokenID
		}
		return bytes.Compare(out[i].Holder.Bytes(), out[j].Holder.Bytes()) < 0
	})
	return out
}
