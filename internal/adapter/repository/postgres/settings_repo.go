package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/simaogato/estateledger-backend/internal/domain"
)

// settingsRepository implements domain.SettingsRepository with one row per ledger
type settingsRepository struct {
	db *DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *DB) domain.SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) GetDeedSettings(ctx context.Context) (*domain.DeedSettings, error) {
	var row struct {
		FundsAsset    string `db:"funds_asset"`
		PlatformFee   string `db:"platform_fee"`
		PayoutAddress string `db:"payout_address"`
	}
	err := r.db.GetContext(ctx, &row, `SELECT funds_asset, platform_fee::TEXT AS platform_fee, payout_address FROM deed_settings WHERE id = 1`)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("deed settings: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get deed settings: %w", err)
	}

	fee, err := decimal.NewFromString(row.PlatformFee)
	if err != nil {
		return nil, fmt.Errorf("failed to parse platform_fee: %w", err)
	}

	return &domain.DeedSettings{
		FundsAsset:    common.HexToAddress(row.FundsAsset),
		PlatformFee:   fee,
		PayoutAddress: common.HexToAddress(row.PayoutAddress),
	}, nil
}

func (r *settingsRepository) SaveDeedSettings(ctx context.Context, settings *domain.DeedSettings) error {
	query := `
		INSERT INTO deed_settings (id, funds_asset, platform_fee, payout_address)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			funds_asset = EXCLUDED.funds_asset,
			platform_fee = EXCLUDED.platform_fee,
			payout_address = EXCLUDED.payout_address
	`
	_, err := r.db.ExecContext(ctx, query, settings.FundsAsset.Hex(), settings.PlatformFee.String(), settings.PayoutAddress.Hex())
	if err != nil {
		return fmt.Errorf("failed to save deed settings: %w", err)
	}
	return nil
}

func (r *settingsRepository) GetTokenSettings(ctx context.Context) (*domain.TokenSettings, error) {
	var row struct {
		VestingPool   string `db:"vesting_pool"`
		CrowdsalePool string `db:"crowdsale_pool"`
		Paused        bool   `db:"paused"`
	}
	err := r.db.GetContext(ctx, &row, `SELECT vesting_pool, crowdsale_pool, paused FROM token_settings WHERE id = 1`)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("token settings: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get token settings: %w", err)
	}

	return &domain.TokenSettings{
		VestingPool:   common.HexToAddress(row.VestingPool),
		CrowdsalePool: common.HexToAddress(row.CrowdsalePool),
		Paused:        row.Paused,
	}, nil
}

func (r *settingsRepository) SaveTokenSettings(ctx context.Context, settings *domain.TokenSettings) error {
	query := `
		INSERT INTO token_settings (id, vesting_pool, crowdsale_pool, paused)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			vesting_pool = EXCLUDED.vesting_pool,
			crowdsale_pool = EXCLUDED.crowdsale_pool,
			paused = EXCLUDED.paused
	`
	_, err := r.db.ExecContext(ctx, query, settings.VestingPool.Hex(), settings.CrowdsalePool.Hex(), settings.Paused)
	if err != nil {
		return fmt.Errorf("failed to save token settings: %w", err)
	}
	return nil
}
