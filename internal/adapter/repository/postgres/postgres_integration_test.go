//go:build integration

package postgres

import (
	"context"
	"fmt"
	"math"
	"os"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/estateledger-backend/internal/domain"
)

var testDB *DB

// TestMain connects to the database named by TEST_DB_CONN_STR and applies
// migrations. Every test starts from empty tables.
func TestMain(m *testing.M) {
	connStr := os.Getenv("TEST_DB_CONN_STR")
	if connStr == "" {
		connStr = "host=localhost port=5432 user=postgres password=postgres dbname=estateledger_test sslmode=disable"
	}

	var err error
	testDB, err = NewDB(connStr)
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to database: %v", err))
	}
	if _, err := testDB.Migrate(); err != nil {
		panic(fmt.Sprintf("Failed to migrate database: %v", err))
	}

	code := m.Run()
	testDB.Close()
	os.Exit(code)
}

func resetTables(t *testing.T) {
	t.Helper()
	_, err := testDB.Exec(`TRUNCATE agreements, token_balances, token_approvals, estate_tokens, deed_settings, token_settings`)
	require.NoError(t, err)
}

var (
	ownerAddr  = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	holderAddr = common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC")
)

func TestAgreementRepository(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	repo := NewAgreementRepository(testDB)

	first, err := repo.Create(ctx, domain.NewAgreement(ownerAddr, math.MaxUint64, "ipfs://legal"))
	require.NoError(t, err)
	second, err := repo.Create(ctx, domain.NewAgreement(ownerAddr, 10, "ipfs://other"))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), first)
	assert.Equal(t, uint64(1), second)

	stored, err := repo.GetByID(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), stored.MaxSupply, "NUMERIC(20,0) keeps the full uint64 range")
	assert.Equal(t, ownerAddr, stored.PropertyOwner)
	assert.True(t, stored.IsInitiated)

	stored.PropertyPrice = 5000000
	stored.OwnerRetainsBasisPoints = 2000
	stored.SignedByOwner = true
	require.NoError(t, repo.Update(ctx, stored))

	reloaded, err := repo.GetByID(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, stored.Projection(), reloaded.Projection())

	_, err = repo.GetByID(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	missing := domain.NewAgreement(ownerAddr, 1, "")
	missing.ID = 99
	assert.ErrorIs(t, repo.Update(ctx, missing), domain.ErrNotFound)
}

func TestTokenRepository(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	repo := NewTokenRepository(testDB)
	deadline := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	token := &domain.EstateToken{
		ID:               7,
		URI:              "ipfs://token",
		IsListed:         true,
		IsActivelyListed: true,
		TotalSupply:      1000,
	}
	require.NoError(t, repo.Apply(ctx, domain.TokenChange{
		Tokens:   []*domain.EstateToken{token},
		Balances: []domain.Balance{{Holder: holderAddr, TokenID: 7, Amount: 1000}},
	}))

	balance, err := repo.BalanceOf(ctx, holderAddr, 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), balance)

	balance, err = repo.BalanceOf(ctx, ownerAddr, 7)
	require.NoError(t, err)
	assert.Zero(t, balance)

	token.IsActivelyListed = false
	token.BurnDeadline = deadline
	token.DelistedAt = deadline.Add(-7 * 24 * time.Hour)
	token.PenaltyPercentPerWeek = 10
	require.NoError(t, repo.Apply(ctx, domain.TokenChange{Tokens: []*domain.EstateToken{token}}))

	stored, err := repo.GetByID(ctx, 7)
	require.NoError(t, err)
	assert.False(t, stored.IsActivelyListed)
	assert.True(t, deadline.Equal(stored.BurnDeadline))
	assert.Equal(t, uint64(10), stored.PenaltyPercentPerWeek)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	_, err = repo.GetByID(ctx, 8)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTokenRepository_ApplyIsAtomic(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	repo := NewTokenRepository(testDB)

	// The balance references a token id that is never written, so the whole change fails.
	err := repo.Apply(ctx, domain.TokenChange{
		Tokens:   []*domain.EstateToken{{ID: 1, URI: "ipfs://a", IsListed: true, IsActivelyListed: true, TotalSupply: 5}},
		Balances: []domain.Balance{{Holder: holderAddr, TokenID: 2, Amount: 5}},
	})
	require.Error(t, err)

	_, err = repo.GetByID(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTokenRepository_Approvals(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	repo := NewTokenRepository(testDB)

	require.NoError(t, repo.SetApprovalForAll(ctx, holderAddr, ownerAddr, true))
	require.NoError(t, repo.SetApprovalForAll(ctx, holderAddr, ownerAddr, true))

	approved, err := repo.IsApprovedForAll(ctx, holderAddr, ownerAddr)
	require.NoError(t, err)
	assert.True(t, approved)

	approved, err = repo.IsApprovedForAll(ctx, ownerAddr, holderAddr)
	require.NoError(t, err)
	assert.False(t, approved)

	require.NoError(t, repo.SetApprovalForAll(ctx, holderAddr, ownerAddr, false))
	approved, err = repo.IsApprovedForAll(ctx, holderAddr, ownerAddr)
	require.NoError(t, err)
	assert.False(t, approved)
}

func TestSettingsRepository(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	repo := NewSettingsRepository(testDB)

	_, err := repo.GetDeedSettings(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = repo.GetTokenSettings(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	deed := &domain.DeedSettings{
		FundsAsset:    common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"),
		PlatformFee:   decimal.RequireFromString("100000.5"),
		PayoutAddress: ownerAddr,
	}
	require.NoError(t, repo.SaveDeedSettings(ctx, deed))
	deed.PlatformFee = decimal.NewFromInt(250000)
	require.NoError(t, repo.SaveDeedSettings(ctx, deed))

	storedDeed, err := repo.GetDeedSettings(ctx)
	require.NoError(t, err)
	assert.True(t, storedDeed.PlatformFee.Equal(decimal.NewFromInt(250000)))
	assert.Equal(t, deed.FundsAsset, storedDeed.FundsAsset)

	require.NoError(t, repo.SaveTokenSettings(ctx, &domain.TokenSettings{
		VestingPool:   holderAddr,
		CrowdsalePool: ownerAddr,
		Paused:        true,
	}))
	storedToken, err := repo.GetTokenSettings(ctx)
	require.NoError(t, err)
	assert.True(t, storedToken.Paused)
	assert.Equal(t, holderAddr, storedToken.VestingPool)
}
