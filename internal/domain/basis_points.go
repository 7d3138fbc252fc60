package domain

import (
	"github.com/shopspring/decimal"
)

const (
	// MaxBasisPoints is 100% expressed in basis points.
	MaxBasisPoints uint64 = 10000
	// SecondsPerWeek is the period of the burn penalty schedule.
	SecondsPerWeek uint64 = 604800
)

// ShareUnits returns floor(basisPoints * maxSupply / 10000).
// The product is computed without overflow; a result that does not fit
// in uint64 is rejected.
func ShareUnits(basisPoints, maxSupply uint64) (uint64, error) {
	return mulDivFloor(basisPoints, maxSupply, MaxBasisPoints)
}

// PenaltyPercentage returns floor(ratePerWeek * elapsedSeconds / 604800).
func PenaltyPercentage(ratePerWeek, elapsedSeconds uint64) (uint64, error) {
	return mulDivFloor(ratePerWeek, elapsedSeconds, SecondsPerWeek)
}

func mulDivFloor(a, b, divisor uint64) (uint64, error) {
	product := decimal.NewFromUint64(a).Mul(decimal.NewFromUint64(b))
	quotient, _ := product.QuoRem(decimal.NewFromUint64(divisor), 0)

	result := quotient.BigInt()
	if !result.IsUint64() {
		return 0, ErrUnitsOverflow
	}
	return result.Uint64(), nil
}

// AddSupply adds two unit amounts, rejecting uint64 overflow.
func AddSupply(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, ErrSupplyOverflow
	}
	return sum, nil
}
