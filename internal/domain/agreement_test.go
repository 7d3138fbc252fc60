package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAgreement(t *testing.T) {
	owner := common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")

	agreement := NewAgreement(owner, 200000, "ipfs://legal")

	assert.True(t, agreement.IsInitiated)
	assert.Equal(t, owner, agreement.PropertyOwner)
	assert.Equal(t, uint64(200000), agreement.MaxSupply)
	assert.Equal(t, "ipfs://legal", agreement.LegalDocText)
	assert.False(t, agreement.SignedByOwner)
	assert.False(t, agreement.SignedByMogul)
	assert.False(t, agreement.FeePaid)
	assert.False(t, agreement.IsCompleted)
}

func TestAgreement_Clone(t *testing.T) {
	original := NewAgreement(common.Address{}, 10, "doc")
	clone := original.Clone()

	clone.SignedByOwner = true
	clone.MaxSupply = 99

	assert.False(t, original.SignedByOwner)
	assert.Equal(t, uint64(10), original.MaxSupply)
}

func TestAgreement_Projection(t *testing.T) {
	owner := common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	agreement := &Agreement{
		SaleDeedText:              "sale",
		LegalDocText:              "legal",
		PropertyDocText:           "property",
		PropertyPrice:             500,
		MogulShareBasisPoints:     4000,
		MogulShareUnits:           80000,
		CrowdsaleShareBasisPoints: 4000,
		CrowdsaleShareUnits:       80000,
		OwnerRetainsBasisPoints:   2000,
		OwnerRetainsUnits:         40000,
		MaxSupply:                 200000,
		PropertyOwner:             owner,
		SignedByOwner:             true,
		SignedByMogul:             false,
		IsInitiated:               true,
		FeePaid:                   false,
		IsCompleted:               false,
	}

	fields := agreement.Projection()

	require.Len(t, fields, AgreementFieldCount)
	assert.Equal(t, []any{
		"sale", "legal", "property", uint64(500),
		uint64(4000), uint64(80000), uint64(4000), uint64(80000),
		uint64(2000), uint64(40000), uint64(200000),
		owner, true, false, true, false, false,
	}, fields)
}

func TestValidateRetains(t *testing.T) {
	assert.NoError(t, ValidateRetains(0))
	assert.NoError(t, ValidateRetains(9999))
	assert.ErrorIs(t, ValidateRetains(10000), ErrRetainsTooHigh)
}

func TestValidateShares(t *testing.T) {
	tests := []struct {
		name         string
		ownerRetains uint64
		mogul        uint64
		crowdsale    uint64
		expectErr    error
	}{
		{name: "Whole split", ownerRetains: 2000, mogul: 4000, crowdsale: 4000},
		{name: "Owner keeps nothing", ownerRetains: 0, mogul: 5000, crowdsale: 5000},
		{name: "Mogul share too high", ownerRetains: 0, mogul: 10000, crowdsale: 0, expectErr: ErrMogulShareTooHigh},
		{name: "Crowdsale share too high", ownerRetains: 0, mogul: 0, crowdsale: 10000, expectErr: ErrCrowdsaleShareTooHigh},
		{name: "Under one hundred percent", ownerRetains: 2000, mogul: 4000, crowdsale: 3999, expectErr: ErrSharesNotWhole},
		{name: "Over one hundred percent", ownerRetains: 2000, mogul: 4000, crowdsale: 4001, expectErr: ErrSharesNotWhole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateShares(tt.ownerRetains, tt.mogul, tt.crowdsale)
			if tt.expectErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.expectErr)
		})
	}
}

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorCategory
		ok       bool
	}{
		{name: "Authorization", err: ErrCallerNotPropertyOwner, expected: CategoryAuthorization, ok: true},
		{name: "State precondition", err: ErrDeedCompleted, expected: CategoryStatePrecondition, ok: true},
		{name: "Numeric bound", err: ErrSharesNotWhole, expected: CategoryNumericBound, ok: true},
		{name: "Missing resource", err: ErrTokenNotListed, expected: CategoryMissingResource, ok: true},
		{name: "Wrapped", err: fmt.Errorf("%w: upstream rejected", ErrFeeTransferFailed), expected: CategoryStatePrecondition, ok: true},
		{name: "Plain error", err: errors.New("boom"), ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			category, ok := CategoryOf(tt.err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, category)
		})
	}
}
