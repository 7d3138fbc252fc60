package allocator

import (
	"github.com/simaogato/estateledger-backend/internal/domain"
)

// Shares is a three-way split of a property's supply, in basis points.
type Shares struct {
	OwnerRetains uint64
	Mogul        uint64
	Crowdsale    uint64
}

// Allocation is the number of units each share receives out of a max supply.
// Remainder holds the units lost to flooring, so the four fields always add up
// to the max supply when the shares add up to 100%.
type Allocation struct {
	OwnerRetains uint64
	Mogul        uint64
	Crowdsale    uint64
	Remainder    uint64
}

// CalculateAllocation converts basis-point shares into units of maxSupply.
// Each share is floor(basisPoints * maxSupply / 10000).
func CalculateAllocation(maxSupply uint64, shares Shares) (Allocation, error) {
	var alloc Allocation
	var err error

	if alloc.OwnerRetains, err = domain.ShareUnits(shares.OwnerRetains, maxSupply); err != nil {
		return Allocation{}, err
	}
	if alloc.Mogul, err = domain.ShareUnits(shares.Mogul, maxSupply); err != nil {
		return Allocation{}, err
	}
	if alloc.Crowdsale, err = domain.ShareUnits(shares.Crowdsale, maxSupply); err != nil {
		return Allocation{}, err
	}

	allocated, err := domain.AddSupply(alloc.OwnerRetains, alloc.Mogul)
	if err != nil {
		return Allocation{}, err
	}
	if allocated, err = domain.AddSupply(allocated, alloc.Crowdsale); err != nil {
		return Allocation{}, err
	}

	// Shares that do not add up to 100% (e.g. before percentages are set)
	// leave the unassigned units in the remainder as well.
	if allocated <= maxSupply {
		alloc.Remainder = maxSupply - allocated
	}

	return alloc, nil
}

// ApplyToAgreement recomputes every *Units field of the agreement from its
// basis points and max supply. The agreement is left untouched on error.
func ApplyToAgreement(agreement *domain.Agreement) error {
	alloc, err := CalculateAllocation(agreement.MaxSupply, Shares{
		OwnerRetains: agreement.OwnerRetainsBasisPoints,
		Mogul:        agreement.MogulShareBasisPoints,
		Crowdsale:    agreement.CrowdsaleShareBasisPoints,
	})
	if err != nil {
		return err
	}

	agreement.OwnerRetainsUnits = alloc.OwnerRetains
	agreement.MogulShareUnits = alloc.Mogul
	agreement.CrowdsaleShareUnits = alloc.Crowdsale
	return nil
}
