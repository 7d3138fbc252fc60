package domain

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// DeedSettings configures how the platform fee is collected.
type DeedSettings struct {
	FundsAsset    common.Address
	PlatformFee   decimal.Decimal
	PayoutAddress common.Address
}

// Validate checks that the fee can be charged with these settings.
func (s *DeedSettings) Validate() error {
	if s.PlatformFee.IsNegative() {
		return ErrNegativeFee
	}
	return nil
}

// TokenSettings configures minting destinations and the global pause switch.
type TokenSettings struct {
	VestingPool   common.Address
	CrowdsalePool common.Address
	Paused        bool
}

// ValidateForMint checks that both mint destinations are configured.
func (s *TokenSettings) ValidateForMint() error {
	if s.VestingPool == (common.Address{}) {
		return ErrVestingPoolNotSet
	}
	if s.CrowdsalePool == (common.Address{}) {
		return ErrCrowdsalePoolNotSet
	}
	return nil
}
