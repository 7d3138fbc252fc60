package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShareUnits(t *testing.T) {
	tests := []struct {
		name        string
		basisPoints uint64
		maxSupply   uint64
		expected    uint64
	}{
		{name: "Forty percent", basisPoints: 4000, maxSupply: 200000, expected: 80000},
		{name: "Floors fractional units", basisPoints: 3333, maxSupply: 10, expected: 3},
		{name: "Zero supply", basisPoints: 4000, maxSupply: 0, expected: 0},
		{name: "Whole supply at max uint64", basisPoints: 10000, maxSupply: math.MaxUint64, expected: math.MaxUint64},
		{name: "Product beyond uint64", basisPoints: 9999, maxSupply: math.MaxUint64, expected: 18444899399302180659},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			units, err := ShareUnits(tt.basisPoints, tt.maxSupply)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, units)
		})
	}
}

func TestShareUnits_Overflow(t *testing.T) {
	_, err := ShareUnits(10001, math.MaxUint64)

	assert.ErrorIs(t, err, ErrUnitsOverflow)
	category, ok := CategoryOf(err)
	assert.True(t, ok)
	assert.Equal(t, CategoryNumericBound, category)
}

func TestPenaltyPercentage(t *testing.T) {
	tests := []struct {
		name     string
		rate     uint64
		elapsed  uint64
		expected uint64
	}{
		{name: "One week", rate: 10, elapsed: SecondsPerWeek, expected: 10},
		{name: "Half a week", rate: 10, elapsed: SecondsPerWeek / 2, expected: 5},
		{name: "Just delisted", rate: 10, elapsed: 0, expected: 0},
		{name: "Floors partial percent", rate: 1, elapsed: SecondsPerWeek - 1, expected: 0},
		{name: "Three weeks", rate: 7, elapsed: 3 * SecondsPerWeek, expected: 21},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			penalty, err := PenaltyPercentage(tt.rate, tt.elapsed)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, penalty)
		})
	}
}

func TestAddSupply(t *testing.T) {
	sum, err := AddSupply(120000, 80000)
	require.NoError(t, err)
	assert.Equal(t, uint64(200000), sum)

	_, err = AddSupply(math.MaxUint64, 1)
	assert.ErrorIs(t, err, ErrSupplyOverflow)
}
