package allocator

import (
	"math"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/estateledger-backend/internal/domain"
)

func TestCalculateAllocation_StandardDeal(t *testing.T) {
	// 200000 units split 20% owner, 40% mogul, 40% crowdsale
	allocation, err := CalculateAllocation(200000, Shares{
		OwnerRetains: 2000,
		Mogul:        4000,
		Crowdsale:    4000,
	})

	require.NoError(t, err)
	assert.Equal(t, uint64(40000), allocation.OwnerRetains)
	assert.Equal(t, uint64(80000), allocation.Mogul)
	assert.Equal(t, uint64(80000), allocation.Crowdsale)
	assert.Equal(t, uint64(0), allocation.Remainder)
}

func TestCalculateAllocation_Flooring(t *testing.T) {
	// 33.33% + 33.33% + 33.34% of 10 units floors to 3 + 3 + 3
	allocation, err := CalculateAllocation(10, Shares{
		OwnerRetains: 3333,
		Mogul:        3333,
		Crowdsale:    3334,
	})

	require.NoError(t, err)
	assert.Equal(t, uint64(3), allocation.OwnerRetains)
	assert.Equal(t, uint64(3), allocation.Mogul)
	assert.Equal(t, uint64(3), allocation.Crowdsale)
	assert.Equal(t, uint64(1), allocation.Remainder, "Units lost to flooring go to the remainder")

	total := allocation.OwnerRetains + allocation.Mogul + allocation.Crowdsale + allocation.Remainder
	assert.Equal(t, uint64(10), total)
}

func TestCalculateAllocation_EdgeCases(t *testing.T) {
	tests := []struct {
		name      string
		maxSupply uint64
		shares    Shares
		expected  Allocation
		expectErr error
	}{
		{
			name:      "Zero supply",
			maxSupply: 0,
			shares:    Shares{OwnerRetains: 2000, Mogul: 4000, Crowdsale: 4000},
			expected:  Allocation{},
		},
		{
			name:      "Shares not set yet",
			maxSupply: 5000,
			shares:    Shares{OwnerRetains: 2500},
			expected:  Allocation{OwnerRetains: 1250, Remainder: 3750},
		},
		{
			name:      "Max supply without overflow",
			maxSupply: math.MaxUint64,
			shares:    Shares{Mogul: 10000},
			expected:  Allocation{Mogul: math.MaxUint64},
		},
		{
			name:      "Units overflow",
			maxSupply: math.MaxUint64,
			shares:    Shares{Mogul: 10001},
			expectErr: domain.ErrUnitsOverflow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allocation, err := CalculateAllocation(tt.maxSupply, tt.shares)

			if tt.expectErr != nil {
				assert.ErrorIs(t, err, tt.expectErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, allocation)
		})
	}
}

func TestApplyToAgreement(t *testing.T) {
	agreement := domain.NewAgreement(common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8"), 200000, "legal")
	agreement.OwnerRetainsBasisPoints = 2000
	agreement.MogulShareBasisPoints = 4000
	agreement.CrowdsaleShareBasisPoints = 4000

	require.NoError(t, ApplyToAgreement(agreement))

	assert.Equal(t, uint64(40000), agreement.OwnerRetainsUnits)
	assert.Equal(t, uint64(80000), agreement.MogulShareUnits)
	assert.Equal(t, uint64(80000), agreement.CrowdsaleShareUnits)

	// Changing the supply changes every unit field
	agreement.MaxSupply = 1000
	require.NoError(t, ApplyToAgreement(agreement))
	assert.Equal(t, uint64(200), agreement.OwnerRetainsUnits)
	assert.Equal(t, uint64(400), agreement.MogulShareUnits)
	assert.Equal(t, uint64(400), agreement.CrowdsaleShareUnits)
}

func TestApplyToAgreement_ErrorLeavesAgreementUntouched(t *testing.T) {
	agreement := domain.NewAgreement(common.Address{}, math.MaxUint64, "legal")
	agreement.OwnerRetainsUnits = 7
	agreement.MogulShareBasisPoints = 20000

	err := ApplyToAgreement(agreement)

	assert.ErrorIs(t, err, domain.ErrUnitsOverflow)
	assert.Equal(t, uint64(7), agreement.OwnerRetainsUnits)
}
