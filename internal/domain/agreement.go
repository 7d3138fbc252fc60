package domain

import (
	"github.com/ethereum/go-ethereum/common"
)

// Agreement is a property sale negotiated between a property owner and the platform (the mogul).
type Agreement struct {
	ID                        uint64
	SaleDeedText              string
	LegalDocText              string
	PropertyDocText           string
	PropertyPrice             uint64
	MogulShareBasisPoints     uint64
	MogulShareUnits           uint64
	CrowdsaleShareBasisPoints uint64
	CrowdsaleShareUnits       uint64
	OwnerRetainsBasisPoints   uint64
	OwnerRetainsUnits         uint64
	MaxSupply                 uint64
	PropertyOwner             common.Address
	SignedByOwner             bool
	SignedByMogul             bool
	IsInitiated               bool
	FeePaid                   bool
	IsCompleted               bool
}

// AgreementFieldCount is the length of the positional agreement projection.
const AgreementFieldCount = 17

// NewAgreement builds a freshly initiated agreement. The ID is assigned by the repository.
func NewAgreement(owner common.Address, maxSupply uint64, legalDoc string) *Agreement {
	return &Agreement{
		LegalDocText:  legalDoc,
		MaxSupply:     maxSupply,
		PropertyOwner: owner,
		IsInitiated:   true,
	}
}

// Clone returns a copy that can be mutated without touching the receiver.
func (a *Agreement) Clone() *Agreement {
	c := *a
	return &c
}

// Projection returns the agreement as the fixed 17-field positional tuple:
// saleDeedText, legalDocText, propertyDocText, propertyPrice,
// mogulShareBasisPoints, mogulShareUnits, crowdsaleShareBasisPoints,
// crowdsaleShareUnits, ownerRetainsBasisPoints, ownerRetainsUnits, maxSupply,
// propertyOwnerAddress, signedByOwner, signedByMogul, isInitiated, feePaid,
// isCompleted.
func (a *Agreement) Projection() []any {
	return []any{
		a.SaleDeedText,
		a.LegalDocText,
		a.PropertyDocText,
		a.PropertyPrice,
		a.MogulShareBasisPoints,
		a.MogulShareUnits,
		a.CrowdsaleShareBasisPoints,
		a.CrowdsaleShareUnits,
		a.OwnerRetainsBasisPoints,
		a.OwnerRetainsUnits,
		a.MaxSupply,
		a.PropertyOwner,
		a.SignedByOwner,
		a.SignedByMogul,
		a.IsInitiated,
		a.FeePaid,
		a.IsCompleted,
	}
}

// ValidateRetains checks an owner-retained share.
func ValidateRetains(basisPoints uint64) error {
	if basisPoints >= MaxBasisPoints {
		return ErrRetainsTooHigh
	}
	return nil
}

// ValidateShares checks a mogul/crowdsale split against the recorded owner share.
// The three shares must add up to exactly 100%.
func ValidateShares(ownerRetains, mogul, crowdsale uint64) error {
	if mogul >= MaxBasisPoints {
		return ErrMogulShareTooHigh
	}
	if crowdsale >= MaxBasisPoints {
		return ErrCrowdsaleShareTooHigh
	}
	if ownerRetains+mogul+crowdsale != MaxBasisPoints {
		return ErrSharesNotWhole
	}
	return nil
}
