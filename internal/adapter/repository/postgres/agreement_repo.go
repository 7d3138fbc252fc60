package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/simaogato/estateledger-backend/internal/domain"
)

const agreementColumns = `
	id, sale_deed_text, legal_doc_text, property_doc_text, property_price,
	mogul_share_basis_points, mogul_share_units,
	crowdsale_share_basis_points, crowdsale_share_units,
	owner_retains_basis_points, owner_retains_units, max_supply,
	property_owner, signed_by_owner, signed_by_mogul, is_initiated, fee_paid, is_completed`

type agreementRow struct {
	ID                        string `db:"id"`
	SaleDeedText              string `db:"sale_deed_text"`
	LegalDocText              string `db:"legal_doc_text"`
	PropertyDocText           string `db:"property_doc_text"`
	PropertyPrice             string `db:"property_price"`
	MogulShareBasisPoints     string `db:"mogul_share_basis_points"`
	MogulShareUnits           string `db:"mogul_share_units"`
	CrowdsaleShareBasisPoints string `db:"crowdsale_share_basis_points"`
	CrowdsaleShareUnits       string `db:"crowdsale_share_units"`
	OwnerRetainsBasisPoints   string `db:"owner_retains_basis_points"`
	OwnerRetainsUnits         string `db:"owner_retains_units"`
	MaxSupply                 string `db:"max_supply"`
	PropertyOwner             string `db:"property_owner"`
	SignedByOwner             bool   `db:"signed_by_owner"`
	SignedByMogul             bool   `db:"signed_by_mogul"`
	IsInitiated               bool   `db:"is_initiated"`
	FeePaid                   bool   `db:"fee_paid"`
	IsCompleted               bool   `db:"is_completed"`
}

func (row agreementRow) toDomain() (*domain.Agreement, error) {
	agreement := &domain.Agreement{
		SaleDeedText:    row.SaleDeedText,
		LegalDocText:    row.LegalDocText,
		PropertyDocText: row.PropertyDocText,
		PropertyOwner:   common.HexToAddress(row.PropertyOwner),
		SignedByOwner:   row.SignedByOwner,
		SignedByMogul:   row.SignedByMogul,
		IsInitiated:     row.IsInitiated,
		FeePaid:         row.FeePaid,
		IsCompleted:     row.IsCompleted,
	}

	fields := []struct {
		name string
		raw  string
		dst  *uint64
	}{
		{"id", row.ID, &agreement.ID},
		{"property_price", row.PropertyPrice, &agreement.PropertyPrice},
		{"mogul_share_basis_points", row.MogulShareBasisPoints, &agreement.MogulShareBasisPoints},
		{"mogul_share_units", row.MogulShareUnits, &agreement.MogulShareUnits},
		{"crowdsale_share_basis_points", row.CrowdsaleShareBasisPoints, &agreement.CrowdsaleShareBasisPoints},
		{"crowdsale_share_units", row.CrowdsaleShareUnits, &agreement.CrowdsaleShareUnits},
		{"owner_retains_basis_points", row.OwnerRetainsBasisPoints, &agreement.OwnerRetainsBasisPoints},
		{"owner_retains_units", row.OwnerRetainsUnits, &agreement.OwnerRetainsUnits},
		{"max_supply", row.MaxSupply, &agreement.MaxSupply},
	}
	for _, f := range fields {
		v, err := parseNumeric(f.name, f.raw)
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}

	return agreement, nil
}

// agreementRepository implements domain.AgreementRepository
type agreementRepository struct {
	db *DB
}

// NewAgreementRepository creates a new agreement repository
func NewAgreementRepository(db *DB) domain.AgreementRepository {
	return &agreementRepository{db: db}
}

// Create inserts the agreement with the next sequential ID.
// The table lock keeps IDs gap-free when several writers share the database.
func (r *agreementRepository) Create(ctx context.Context, agreement *domain.Agreement) (uint64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `LOCK TABLE agreements IN EXCLUSIVE MODE`); err != nil {
		return 0, fmt.Errorf("failed to lock agreements: %w", err)
	}

	var nextID string
	if err := tx.GetContext(ctx, &nextID, `SELECT COALESCE(MAX(id) + 1, 0)::TEXT FROM agreements`); err != nil {
		return 0, fmt.Errorf("failed to allocate agreement ID: %w", err)
	}
	id, err := parseNumeric("id", nextID)
	if err != nil {
		return 0, err
	}

	query := `INSERT INTO agreements (` + agreementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	stored := agreement.Clone()
	stored.ID = id
	if _, err := tx.ExecContext(ctx, query, agreementArgs(stored)...); err != nil {
		return 0, fmt.Errorf("failed to insert agreement: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	agreement.ID = id
	return id, nil
}

// GetByID retrieves an agreement by its ID
func (r *agreementRepository) GetByID(ctx context.Context, id uint64) (*domain.Agreement, error) {
	var row agreementRow
	err := r.db.GetContext(ctx, &row, `SELECT `+agreementColumns+` FROM agreements WHERE id = $1`, numeric(id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("agreement %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get agreement by ID: %w", err)
	}
	return row.toDomain()
}

// Update overwrites every column of an existing agreement
func (r *agreementRepository) Update(ctx context.Context, agreement *domain.Agreement) error {
	query := `
		UPDATE agreements SET
			sale_deed_text = $2, legal_doc_text = $3, property_doc_text = $4, property_price = $5,
			mogul_share_basis_points = $6, mogul_share_units = $7,
			crowdsale_share_basis_points = $8, crowdsale_share_units = $9,
			owner_retains_basis_points = $10, owner_retains_units = $11, max_supply = $12,
			property_owner = $13, signed_by_owner = $14, signed_by_mogul = $15,
			is_initiated = $16, fee_paid = $17, is_completed = $18
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, agreementArgs(agreement)...)
	if err != nil {
		return fmt.Errorf("failed to update agreement: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("agreement %d: %w", agreement.ID, domain.ErrNotFound)
	}
	return nil
}

func agreementArgs(a *domain.Agreement) []any {
	return []any{
		numeric(a.ID),
		a.SaleDeedText,
		a.LegalDocText,
		a.PropertyDocText,
		numeric(a.PropertyPrice),
		numeric(a.MogulShareBasisPoints),
		numeric(a.MogulShareUnits),
		numeric(a.CrowdsaleShareBasisPoints),
		numeric(a.CrowdsaleShareUnits),
		numeric(a.OwnerRetainsBasisPoints),
		numeric(a.OwnerRetainsUnits),
		numeric(a.MaxSupply),
		a.PropertyOwner.Hex(),
		a.SignedByOwner,
		a.SignedByMogul,
		a.IsInitiated,
		a.FeePaid,
		a.IsCompleted,
	}
}
