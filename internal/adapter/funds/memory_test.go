package funds

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	asset   = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	payer   = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	spender = common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512")
	payee   = common.HexToAddress("0x90F79bf6EB2c4f870365E785982E1f101E93b906")
)

func TestMemoryLedger_TransferFrom(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()

	require.NoError(t, ledger.Mint(asset, payer, decimal.NewFromInt(1000)))
	require.NoError(t, ledger.Approve(asset, payer, spender, decimal.NewFromInt(600)))

	allowance, err := ledger.Allowance(ctx, asset, payer, spender)
	require.NoError(t, err)
	assert.True(t, allowance.Equal(decimal.NewFromInt(600)))

	require.NoError(t, ledger.TransferFrom(ctx, asset, spender, payer, payee, decimal.NewFromInt(400)))

	assert.True(t, ledger.BalanceOf(asset, payer).Equal(decimal.NewFromInt(600)))
	assert.True(t, ledger.BalanceOf(asset, payee).Equal(decimal.NewFromInt(400)))
	allowance, err = ledger.Allowance(ctx, asset, payer, spender)
	require.NoError(t, err)
	assert.True(t, allowance.Equal(decimal.NewFromInt(200)), "Allowance is spent by the transfer")
}

func TestMemoryLedger_TransferFromRejections(t *testing.T) {
	tests := []struct {
		name      string
		balance   int64
		allowance int64
		amount    decimal.Decimal
		expectErr error
	}{
		{name: "Allowance too low", balance: 1000, allowance: 99, amount: decimal.NewFromInt(100), expectErr: ErrInsufficientAllowance},
		{name: "Balance too low", balance: 99, allowance: 1000, amount: decimal.NewFromInt(100), expectErr: ErrInsufficientFunds},
		{name: "Negative amount", balance: 1000, allowance: 1000, amount: decimal.NewFromInt(-1), expectErr: ErrNegativeAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			ledger := NewMemoryLedger()
			require.NoError(t, ledger.Mint(asset, payer, decimal.NewFromInt(tt.balance)))
			require.NoError(t, ledger.Approve(asset, payer, spender, decimal.NewFromInt(tt.allowance)))

			err := ledger.TransferFrom(ctx, asset, spender, payer, payee, tt.amount)

			assert.ErrorIs(t, err, tt.expectErr)
			assert.True(t, ledger.BalanceOf(asset, payer).Equal(decimal.NewFromInt(tt.balance)))
			assert.True(t, ledger.BalanceOf(asset, payee).IsZero())
		})
	}
}

func TestMemoryLedger_AssetsAreSeparate(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()
	otherAsset := common.HexToAddress("0x9fE46736679d2D9a65F0992F2272dE9f3c7fa6e0")

	require.NoError(t, ledger.Mint(otherAsset, payer, decimal.NewFromInt(500)))
	require.NoError(t, ledger.Approve(otherAsset, payer, spender, decimal.NewFromInt(500)))

	err := ledger.TransferFrom(ctx, asset, spender, payer, payee, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, ErrInsufficientAllowance)
	assert.ErrorIs(t, ledger.Mint(asset, payer, decimal.NewFromInt(-5)), ErrNegativeAmount)
}
