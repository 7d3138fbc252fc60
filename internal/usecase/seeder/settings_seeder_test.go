package seeder

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/simaogato/estateledger-backend/internal/domain"
)

// MockSettingsRepository is a mock implementation of SettingsRepository
type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) GetDeedSettings(ctx context.Context) (*domain.DeedSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DeedSettings), args.Error(1)
}

func (m *MockSettingsRepository) SaveDeedSettings(ctx context.Context, settings *domain.DeedSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

func (m *MockSettingsRepository) GetTokenSettings(ctx context.Context) (*domain.TokenSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TokenSettings), args.Error(1)
}

func (m *MockSettingsRepository) SaveTokenSettings(ctx context.Context, settings *domain.TokenSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

var (
	asset     = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	payout    = common.HexToAddress("0x90F79bf6EB2c4f870365E785982E1f101E93b906")
	vesting   = common.HexToAddress("0x15d34AAf54267DB7D7c367839AAf71A00a2C6A65")
	crowdsale = common.HexToAddress("0x9965507D1a55bcC2695C58ba16FB37d819B0A4dc")
)

func testDefaults() Defaults {
	return Defaults{
		Deed: domain.DeedSettings{
			FundsAsset:    asset,
			PlatformFee:   decimal.NewFromInt(100000),
			PayoutAddress: payout,
		},
		Token: domain.TokenSettings{
			VestingPool:   vesting,
			CrowdsalePool: crowdsale,
		},
	}
}

func TestSettingsSeeder_Seed_SettingsMissing(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockSettingsRepository)
	seeder := NewSettingsSeeder(mockRepo)

	notFound := fmt.Errorf("deed settings: %w", domain.ErrNotFound)
	mockRepo.On("GetDeedSettings", ctx).Return(nil, notFound)
	mockRepo.On("GetTokenSettings", ctx).Return(nil, notFound)

	mockRepo.On("SaveDeedSettings", ctx, mock.MatchedBy(func(s *domain.DeedSettings) bool {
		return s.FundsAsset == asset &&
			s.PayoutAddress == payout &&
			s.PlatformFee.Equal(decimal.NewFromInt(100000))
	})).Return(nil)
	mockRepo.On("SaveTokenSettings", ctx, mock.MatchedBy(func(s *domain.TokenSettings) bool {
		return s.VestingPool == vesting && s.CrowdsalePool == crowdsale && !s.Paused
	})).Return(nil)

	deedSeeded, tokenSeeded, err := seeder.Seed(ctx, testDefaults())

	assert.NoError(t, err)
	assert.True(t, deedSeeded)
	assert.True(t, tokenSeeded)
	mockRepo.AssertExpectations(t)
}

func TestSettingsSeeder_Seed_SettingsExist(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockSettingsRepository)
	seeder := NewSettingsSeeder(mockRepo)

	// Operator already changed the fee; seeding must not overwrite it
	mockRepo.On("GetDeedSettings", ctx).Return(&domain.DeedSettings{PlatformFee: decimal.NewFromInt(5)}, nil)
	mockRepo.On("GetTokenSettings", ctx).Return(&domain.TokenSettings{Paused: true}, nil)

	deedSeeded, tokenSeeded, err := seeder.Seed(ctx, testDefaults())

	assert.NoError(t, err)
	assert.False(t, deedSeeded)
	assert.False(t, tokenSeeded)
	mockRepo.AssertNotCalled(t, "SaveDeedSettings", mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "SaveTokenSettings", mock.Anything, mock.Anything)
}

func TestSettingsSeeder_Seed_Errors(t *testing.T) {
	tests := []struct {
		name           string
		setup          func(m *MockSettingsRepository, ctx context.Context)
		defaults       func() Defaults
		expectedErrMsg string
	}{
		{
			name: "Repository Failure",
			setup: func(m *MockSettingsRepository, ctx context.Context) {
				m.On("GetDeedSettings", ctx).Return(nil, errors.New("connection refused"))
			},
			defaults:       testDefaults,
			expectedErrMsg: "failed to get deed settings",
		},
		{
			name: "Negative Fee",
			setup: func(m *MockSettingsRepository, ctx context.Context) {
				m.On("GetDeedSettings", ctx).Return(nil, domain.ErrNotFound)
			},
			defaults: func() Defaults {
				d := testDefaults()
				d.Deed.PlatformFee = decimal.NewFromInt(-1)
				return d
			},
			expectedErrMsg: "must not be negative",
		},
		{
			name: "Token Save Failure",
			setup: func(m *MockSettingsRepository, ctx context.Context) {
				m.On("GetDeedSettings", ctx).Return(&domain.DeedSettings{}, nil)
				m.On("GetTokenSettings", ctx).Return(nil, domain.ErrNotFound)
				m.On("SaveTokenSettings", ctx, mock.Anything).Return(errors.New("disk full"))
			},
			defaults:       testDefaults,
			expectedErrMsg: "failed to seed token settings",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			mockRepo := new(MockSettingsRepository)
			tt.setup(mockRepo, ctx)

			_, _, err := NewSettingsSeeder(mockRepo).Seed(ctx, tt.defaults())

			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedErrMsg)
		})
	}
}
