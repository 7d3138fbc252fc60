package deed

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/simaogato/estateledger-backend/internal/domain"
	"github.com/simaogato/estateledger-backend/internal/usecase/allocator"
)

// EnterPropertyDetailsInput represents the owner's description of the property
type EnterPropertyDetailsInput struct {
	AgreementID             uint64
	PropertyDoc             string
	PropertyPrice           uint64
	OwnerRetainsBasisPoints uint64
}

// DeedService is the agreement ledger. Every mutating call is serialized and
// either commits fully or returns an error without writing anything.
type DeedService struct {
	AgreementRepo domain.AgreementRepository
	SettingsRepo  domain.SettingsRepository
	Authorizer    domain.Authorizer
	Funds         domain.FundsTransferer
	Publisher     domain.EventPublisher
	// LedgerAddress is the spender identity the payer approves on the funds ledger.
	LedgerAddress common.Address
	Clock         func() time.Time

	mu sync.Mutex
}

// NewDeedService creates a new DeedService instance
func NewDeedService(
	agreementRepo domain.AgreementRepository,
	settingsRepo domain.SettingsRepository,
	authorizer domain.Authorizer,
	funds domain.FundsTransferer,
	publisher domain.EventPublisher,
	ledgerAddress common.Address,
) *DeedService {
	return &DeedService{
		AgreementRepo: agreementRepo,
		SettingsRepo:  settingsRepo,
		Authorizer:    authorizer,
		Funds:         funds,
		Publisher:     publisher,
		LedgerAddress: ledgerAddress,
		Clock:         time.Now,
	}
}

// Initiate creates a new agreement for the property owner and returns its ID.
func (s *DeedService) Initiate(ctx context.Context, caller, owner common.Address, maxSupply uint64, legalDoc string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireOperator(ctx, caller); err != nil {
		return 0, err
	}

	agreement := domain.NewAgreement(owner, maxSupply, legalDoc)
	id, err := s.AgreementRepo.Create(ctx, agreement)
	if err != nil {
		return 0, fmt.Errorf("failed to create agreement: %w", err)
	}

	s.publish(ctx, domain.EventAgreementInitiated, caller, id, map[string]string{
		"property_owner": owner.Hex(),
		"max_supply":     strconv.FormatUint(maxSupply, 10),
	})
	return id, nil
}

// EnterPropertyDetails stores the property document, price and retained share.
// Re-entering details withdraws the mogul's signature.
func (s *DeedService) EnterPropertyDetails(ctx context.Context, caller common.Address, input EnterPropertyDetailsInput) error {
	return s.ownerUpdate(ctx, caller, input.AgreementID, domain.EventPropertyDetailsEntered, func(a *domain.Agreement) error {
		if err := domain.ValidateRetains(input.OwnerRetainsBasisPoints); err != nil {
			return err
		}
		a.PropertyDocText = input.PropertyDoc
		a.PropertyPrice = input.PropertyPrice
		a.OwnerRetainsBasisPoints = input.OwnerRetainsBasisPoints
		a.SignedByMogul = false
		return allocator.ApplyToAgreement(a)
	})
}

// SetPercentage records the mogul and crowdsale shares.
// Logic:
//  1. Each share must be below 100%
//  2. Owner retains + mogul + crowdsale must be exactly 100%
//  3. Recompute all three unit amounts
//  4. Both parties must sign again
func (s *DeedService) SetPercentage(ctx context.Context, caller common.Address, id, mogulBasisPoints, crowdsaleBasisPoints uint64) error {
	return s.operatorUpdate(ctx, caller, id, domain.EventPercentagesSet, func(a *domain.Agreement) error {
		if err := domain.ValidateShares(a.OwnerRetainsBasisPoints, mogulBasisPoints, crowdsaleBasisPoints); err != nil {
			return err
		}
		a.MogulShareBasisPoints = mogulBasisPoints
		a.CrowdsaleShareBasisPoints = crowdsaleBasisPoints
		a.SignedByOwner = false
		a.SignedByMogul = false
		return allocator.ApplyToAgreement(a)
	})
}

// SignByPropertyOwner records the owner's signature.
func (s *DeedService) SignByPropertyOwner(ctx context.Context, caller common.Address, id uint64) error {
	return s.ownerUpdate(ctx, caller, id, domain.EventSignedByOwner, func(a *domain.Agreement) error {
		a.SignedByOwner = true
		return nil
	})
}

// SignByMogul records the platform's signature.
func (s *DeedService) SignByMogul(ctx context.Context, caller common.Address, id uint64) error {
	return s.operatorUpdate(ctx, caller, id, domain.EventSignedByMogul, func(a *domain.Agreement) error {
		a.SignedByMogul = true
		return nil
	})
}

func (s *DeedService) UpdatePriceByPropertyOwner(ctx context.Context, caller common.Address, id, price uint64) error {
	return s.ownerUpdate(ctx, caller, id, domain.EventAgreementUpdated, func(a *domain.Agreement) error {
		a.PropertyPrice = price
		a.SignedByMogul = false
		return nil
	})
}

func (s *DeedService) UpdatePropertyDocByPropertyOwner(ctx context.Context, caller common.Address, id uint64, doc string) error {
	return s.ownerUpdate(ctx, caller, id, domain.EventAgreementUpdated, func(a *domain.Agreement) error {
		a.PropertyDocText = doc
		a.SignedByMogul = false
		return nil
	})
}

// UpdatePropertyOwnerRetainsByPropertyOwner changes the retained share without
// re-checking the three-way sum; SetPercentage enforces it again.
func (s *DeedService) UpdatePropertyOwnerRetainsByPropertyOwner(ctx context.Context, caller common.Address, id, basisPoints uint64) error {
	return s.ownerUpdate(ctx, caller, id, domain.EventAgreementUpdated, func(a *domain.Agreement) error {
		if err := domain.ValidateRetains(basisPoints); err != nil {
			return err
		}
		a.OwnerRetainsBasisPoints = basisPoints
		a.SignedByMogul = false
		return allocator.ApplyToAgreement(a)
	})
}

// UpdatePropertyOwnerByMogul hands the agreement to a new owner identity.
func (s *DeedService) UpdatePropertyOwnerByMogul(ctx context.Context, caller common.Address, id uint64, owner common.Address) error {
	return s.operatorUpdate(ctx, caller, id, domain.EventAgreementUpdated, func(a *domain.Agreement) error {
		a.PropertyOwner = owner
		a.SignedByMogul = false
		return nil
	})
}

func (s *DeedService) UpdateMaxSupplyByMogul(ctx context.Context, caller common.Address, id, maxSupply uint64) error {
	return s.operatorUpdate(ctx, caller, id, domain.EventAgreementUpdated, func(a *domain.Agreement) error {
		a.MaxSupply = maxSupply
		return allocator.ApplyToAgreement(a)
	})
}

// TransferPlatformFee collects the configured platform fee from the caller.
// Logic:
//  1. Agreement must be open and the fee not yet paid
//  2. Owner signature, then mogul signature
//  3. Caller's allowance to the ledger must cover the fee
//  4. Move the fee from the caller to the payout address, then mark it paid
func (s *DeedService) TransferPlatformFee(ctx context.Context, caller common.Address, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	agreement, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if agreement.IsCompleted {
		return domain.ErrDeedCompleted
	}
	if agreement.FeePaid {
		return domain.ErrFeeAlreadyPaid
	}
	if !agreement.SignedByOwner {
		return domain.ErrOwnerNotSigned
	}
	if !agreement.SignedByMogul {
		return domain.ErrMogulNotSigned
	}

	settings, err := s.deedSettings(ctx)
	if err != nil {
		return err
	}
	if settings.FundsAsset == (common.Address{}) {
		return domain.ErrFundsAssetNotSet
	}
	if settings.PayoutAddress == (common.Address{}) {
		return domain.ErrPayoutAddressNotSet
	}

	allowance, err := s.Funds.Allowance(ctx, settings.FundsAsset, caller, s.LedgerAddress)
	if err != nil {
		return fmt.Errorf("failed to read allowance: %w", err)
	}
	if allowance.LessThan(settings.PlatformFee) {
		return domain.ErrAllowanceTooLow
	}

	if err := s.Funds.TransferFrom(ctx, settings.FundsAsset, s.LedgerAddress, caller, settings.PayoutAddress, settings.PlatformFee); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrFeeTransferFailed, err)
	}

	agreement.FeePaid = true
	if err := s.AgreementRepo.Update(ctx, agreement); err != nil {
		return fmt.Errorf("platform fee collected but agreement %d not updated: %w", id, err)
	}

	s.publish(ctx, domain.EventPlatformFeePaid, caller, id, map[string]string{
		"amount": settings.PlatformFee.String(),
		"payee":  settings.PayoutAddress.Hex(),
	})
	return nil
}

// ConfirmDeedCompletion locks the agreement. Only the sale deed can change afterwards.
func (s *DeedService) ConfirmDeedCompletion(ctx context.Context, caller common.Address, id uint64) error {
	return s.operatorUpdate(ctx, caller, id, domain.EventDeedCompleted, func(a *domain.Agreement) error {
		if !a.SignedByOwner {
			return domain.ErrOwnerNotSigned
		}
		if !a.SignedByMogul {
			return domain.ErrMogulNotSigned
		}
		if !a.FeePaid {
			return domain.ErrFeeNotPaid
		}
		a.IsCompleted = true
		return nil
	})
}

// UploadSaleDeedByOwner stores the sale deed of a completed agreement.
// Despite the name it is an operator call.
func (s *DeedService) UploadSaleDeedByOwner(ctx context.Context, caller common.Address, id uint64, saleDeed string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireOperator(ctx, caller); err != nil {
		return err
	}
	agreement, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !agreement.IsCompleted {
		return domain.ErrDealNotComplete
	}

	agreement.SaleDeedText = saleDeed
	return s.commit(ctx, caller, agreement, domain.EventSaleDeedUploaded)
}

// GetAgreement returns a snapshot of the agreement.
func (s *DeedService) GetAgreement(ctx context.Context, id uint64) (*domain.Agreement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx, id)
}

// Settings returns the fee configuration currently in effect.
func (s *DeedService) Settings(ctx context.Context) (*domain.DeedSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.deedSettings(ctx)
}

// SetFundsAsset changes the asset the platform fee is paid in.
func (s *DeedService) SetFundsAsset(ctx context.Context, caller, asset common.Address) error {
	return s.updateSettings(ctx, caller, "funds_asset", asset.Hex(), func(settings *domain.DeedSettings) {
		settings.FundsAsset = asset
	})
}

// SetPlatformFee changes the fee charged by TransferPlatformFee.
func (s *DeedService) SetPlatformFee(ctx context.Context, caller common.Address, fee decimal.Decimal) error {
	return s.updateSettings(ctx, caller, "platform_fee", fee.String(), func(settings *domain.DeedSettings) {
		settings.PlatformFee = fee
	})
}

// SetPayoutAddress changes where the platform fee is sent.
func (s *DeedService) SetPayoutAddress(ctx context.Context, caller, payout common.Address) error {
	return s.updateSettings(ctx, caller, "payout_address", payout.Hex(), func(settings *domain.DeedSettings) {
		settings.PayoutAddress = payout
	})
}

func (s *DeedService) updateSettings(ctx context.Context, caller common.Address, key, value string, apply func(*domain.DeedSettings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireOperator(ctx, caller); err != nil {
		return err
	}
	settings, err := s.deedSettings(ctx)
	if err != nil {
		return err
	}

	apply(settings)
	if err := settings.Validate(); err != nil {
		return err
	}
	if err := s.SettingsRepo.SaveDeedSettings(ctx, settings); err != nil {
		return fmt.Errorf("failed to save deed settings: %w", err)
	}

	s.publish(ctx, domain.EventDeedSettingsChanged, caller, 0, map[string]string{key: value})
	return nil
}

// ownerUpdate runs apply on an open agreement on behalf of its property owner.
func (s *DeedService) ownerUpdate(ctx context.Context, caller common.Address, id uint64, eventType domain.EventType, apply func(*domain.Agreement) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	agreement, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if agreement.PropertyOwner != caller {
		return domain.ErrCallerNotPropertyOwner
	}
	if agreement.IsCompleted {
		return domain.ErrDeedCompleted
	}

	if err := apply(agreement); err != nil {
		return err
	}
	return s.commit(ctx, caller, agreement, eventType)
}

// operatorUpdate runs apply on an open agreement on behalf of the platform.
func (s *DeedService) operatorUpdate(ctx context.Context, caller common.Address, id uint64, eventType domain.EventType, apply func(*domain.Agreement) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireOperator(ctx, caller); err != nil {
		return err
	}
	agreement, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if agreement.IsCompleted {
		return domain.ErrDeedCompleted
	}

	if err := apply(agreement); err != nil {
		return err
	}
	return s.commit(ctx, caller, agreement, eventType)
}

func (s *DeedService) commit(ctx context.Context, caller common.Address, agreement *domain.Agreement, eventType domain.EventType) error {
	if err := s.AgreementRepo.Update(ctx, agreement); err != nil {
		return fmt.Errorf("failed to update agreement %d: %w", agreement.ID, err)
	}
	s.publish(ctx, eventType, caller, agreement.ID, nil)
	return nil
}

// load returns a copy of the agreement that the caller may modify.
func (s *DeedService) load(ctx context.Context, id uint64) (*domain.Agreement, error) {
	agreement, err := s.AgreementRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrAgreementNotFound
		}
		return nil, fmt.Errorf("failed to get agreement %d: %w", id, err)
	}
	return agreement.Clone(), nil
}

// deedSettings treats missing settings as an unconfigured (zero) record.
func (s *DeedService) deedSettings(ctx context.Context) (*domain.DeedSettings, error) {
	settings, err := s.SettingsRepo.GetDeedSettings(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.DeedSettings{PlatformFee: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("failed to get deed settings: %w", err)
	}
	return settings, nil
}

func (s *DeedService) requireOperator(ctx context.Context, caller common.Address) error {
	if !s.Authorizer.Authorize(ctx, caller, domain.RoleOperator) {
		return domain.ErrCallerNotOperator
	}
	return nil
}

func (s *DeedService) publish(ctx context.Context, eventType domain.EventType, actor common.Address, id uint64, attrs map[string]string) {
	s.Publisher.Publish(ctx, domain.NewEvent(eventType, actor, id, s.Clock(), attrs))
}
