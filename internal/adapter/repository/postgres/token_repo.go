package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/simaogato/estateledger-backend/internal/domain"
)

const tokenColumns = `id, uri, is_listed, is_actively_listed, burn_deadline, delisted_at, penalty_percent_per_week, total_supply`

type tokenRow struct {
	ID                    string       `db:"id"`
	URI                   string       `db:"uri"`
	IsListed              bool         `db:"is_listed"`
	IsActivelyListed      bool         `db:"is_actively_listed"`
	BurnDeadline          sql.NullTime `db:"burn_deadline"`
	DelistedAt            sql.NullTime `db:"delisted_at"`
	PenaltyPercentPerWeek string       `db:"penalty_percent_per_week"`
	TotalSupply           string       `db:"total_supply"`
}

func (row tokenRow) toDomain() (*domain.EstateToken, error) {
	id, err := parseNumeric("id", row.ID)
	if err != nil {
		return nil, err
	}
	penalty, err := parseNumeric("penalty_percent_per_week", row.PenaltyPercentPerWeek)
	if err != nil {
		return nil, err
	}
	supply, err := parseNumeric("total_supply", row.TotalSupply)
	if err != nil {
		return nil, err
	}

	return &domain.EstateToken{
		ID:                    id,
		URI:                   row.URI,
		IsListed:              row.IsListed,
		IsActivelyListed:      row.IsActivelyListed,
		BurnDeadline:          timeOrZero(row.BurnDeadline),
		DelistedAt:            timeOrZero(row.DelistedAt),
		PenaltyPercentPerWeek: penalty,
		TotalSupply:           supply,
	}, nil
}

// tokenRepository implements domain.TokenRepository
type tokenRepository struct {
	db *DB
}

// NewTokenRepository creates a new token repository
func NewTokenRepository(db *DB) domain.TokenRepository {
	return &tokenRepository{db: db}
}

// GetByID retrieves a token record by its ID
func (r *tokenRepository) GetByID(ctx context.Context, id uint64) (*domain.EstateToken, error) {
	var row tokenRow
	err := r.db.GetContext(ctx, &row, `SELECT `+tokenColumns+` FROM estate_tokens WHERE id = $1`, numeric(id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("token %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get token by ID: %w", err)
	}
	return row.toDomain()
}

// List retrieves every token record ordered by ID
func (r *tokenRepository) List(ctx context.Context) ([]*domain.EstateToken, error) {
	var rows []tokenRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+tokenColumns+` FROM estate_tokens ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}

	tokens := make([]*domain.EstateToken, 0, len(rows))
	for _, row := range rows {
		token, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, nil
}

// BalanceOf returns 0 when the holder has never held the token
func (r *tokenRepository) BalanceOf(ctx context.Context, holder common.Address, tokenID uint64) (uint64, error) {
	var amount string
	err := r.db.GetContext(ctx, &amount,
		`SELECT amount::TEXT FROM token_balances WHERE holder = $1 AND token_id = $2`,
		holder.Hex(), numeric(tokenID),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return parseNumeric("amount", amount)
}

func (r *tokenRepository) IsApprovedForAll(ctx context.Context, holder, operator common.Address) (bool, error) {
	var approved bool
	err := r.db.GetContext(ctx, &approved,
		`SELECT EXISTS (SELECT 1 FROM token_approvals WHERE holder = $1 AND operator = $2)`,
		holder.Hex(), operator.Hex(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to check approval: %w", err)
	}
	return approved, nil
}

func (r *tokenRepository) SetApprovalForAll(ctx context.Context, holder, operator common.Address, approved bool) error {
	query := `DELETE FROM token_approvals WHERE holder = $1 AND operator = $2`
	if approved {
		query = `INSERT INTO token_approvals (holder, operator) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	}

	if _, err := r.db.ExecContext(ctx, query, holder.Hex(), operator.Hex()); err != nil {
		return fmt.Errorf("failed to set approval: %w", err)
	}
	return nil
}

// Apply upserts token records before balances inside one transaction
func (r *tokenRepository) Apply(ctx context.Context, change domain.TokenChange) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	tokenQuery := `
		INSERT INTO estate_tokens (` + tokenColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			uri = EXCLUDED.uri,
			is_listed = EXCLUDED.is_listed,
			is_actively_listed = EXCLUDED.is_actively_listed,
			burn_deadline = EXCLUDED.burn_deadline,
			delisted_at = EXCLUDED.delisted_at,
			penalty_percent_per_week = EXCLUDED.penalty_percent_per_week,
			total_supply = EXCLUDED.total_supply
	`
	for _, token := range change.Tokens {
		_, err := tx.ExecContext(ctx, tokenQuery,
			numeric(token.ID),
			token.URI,
			token.IsListed,
			token.IsActivelyListed,
			nullTime(token.BurnDeadline),
			nullTime(token.DelistedAt),
			numeric(token.PenaltyPercentPerWeek),
			numeric(token.TotalSupply),
		)
		if err != nil {
			return fmt.Errorf("failed to save token %d: %w", token.ID, err)
		}
	}

	balanceQuery := `
		INSERT INTO token_balances (holder, token_id, amount)
		VALUES ($1, $2, $3)
		ON CONFLICT (holder, token_id) DO UPDATE SET amount = EXCLUDED.amount
	`
	for _, balance := range change.Balances {
		if _, err := tx.ExecContext(ctx, balanceQuery, balance.Holder.Hex(), numeric(balance.TokenID), numeric(balance.Amount)); err != nil {
			return fmt.Errorf("failed to save balance: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
