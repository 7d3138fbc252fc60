package estatetoken

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/simaogato/estateledger-backend/internal/domain"
)

// MintInput represents a new property token and its two initial allocations
type MintInput struct {
	TokenID         uint64
	VestingAmount   uint64
	CrowdsaleAmount uint64
	URI             string
}

// TokenService is the estate token ledger. Every mutating call is serialized
// and validated in full before anything is written.
type TokenService struct {
	TokenRepo    domain.TokenRepository
	SettingsRepo domain.SettingsRepository
	Authorizer   domain.Authorizer
	Publisher    domain.EventPublisher
	Clock        func() time.Time

	mu sync.Mutex
}

// NewTokenService creates a new TokenService instance
func NewTokenService(
	tokenRepo domain.TokenRepository,
	settingsRepo domain.SettingsRepository,
	authorizer domain.Authorizer,
	publisher domain.EventPublisher,
) *TokenService {
	return &TokenService{
		TokenRepo:    tokenRepo,
		SettingsRepo: settingsRepo,
		Authorizer:   authorizer,
		Publisher:    publisher,
		Clock:        time.Now,
	}
}

// MintNewPropertyToken lists a new token id and credits the vesting and
// crowdsale pools in one step.
func (s *TokenService) MintNewPropertyToken(ctx context.Context, caller common.Address, input MintInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireOperator(ctx, caller); err != nil {
		return err
	}
	settings, err := s.requireNotPaused(ctx)
	if err != nil {
		return err
	}
	if input.URI == "" {
		return domain.ErrURIEmpty
	}

	existing, err := s.findToken(ctx, input.TokenID)
	if err != nil {
		return err
	}
	if existing != nil {
		return domain.ErrTokenAlreadyMinted
	}
	if err := settings.ValidateForMint(); err != nil {
		return err
	}

	totalSupply, err := domain.AddSupply(input.VestingAmount, input.CrowdsaleAmount)
	if err != nil {
		return err
	}

	sheet := newBalanceSheet(s.TokenRepo)
	if err := sheet.credit(ctx, settings.VestingPool, input.TokenID, input.VestingAmount); err != nil {
		return err
	}
	if err := sheet.credit(ctx, settings.CrowdsalePool, input.TokenID, input.CrowdsaleAmount); err != nil {
		return err
	}

	token := &domain.EstateToken{
		ID:               input.TokenID,
		URI:              input.URI,
		IsListed:         true,
		IsActivelyListed: true,
		TotalSupply:      totalSupply,
	}
	if err := s.apply(ctx, []*domain.EstateToken{token}, sheet); err != nil {
		return err
	}

	s.publish(ctx, domain.EventTokensMinted, caller, input.TokenID, map[string]string{
		"uri":              input.URI,
		"vesting_pool":     settings.VestingPool.Hex(),
		"vesting_amount":   strconv.FormatUint(input.VestingAmount, 10),
		"crowdsale_pool":   settings.CrowdsalePool.Hex(),
		"crowdsale_amount": strconv.FormatUint(input.CrowdsaleAmount, 10),
	})
	return nil
}

// UpdateVestingContractAddress changes the vesting pool used by later mints.
func (s *TokenService) UpdateVestingContractAddress(ctx context.Context, caller, pool common.Address) error {
	return s.updateSettings(ctx, caller, domain.EventTokenSettingsChanged, "vesting_pool", pool.Hex(), func(settings *domain.TokenSettings) error {
		settings.VestingPool = pool
		return nil
	})
}

// UpdateCrowdsaleAddress changes the crowdsale pool used by later mints.
func (s *TokenService) UpdateCrowdsaleAddress(ctx context.Context, caller, pool common.Address) error {
	return s.updateSettings(ctx, caller, domain.EventTokenSettingsChanged, "crowdsale_pool", pool.Hex(), func(settings *domain.TokenSettings) error {
		settings.CrowdsalePool = pool
		return nil
	})
}

// Pause blocks mint, transfer, burn and burn batch until Unpause.
func (s *TokenService) Pause(ctx context.Context, caller common.Address) error {
	return s.updateSettings(ctx, caller, domain.EventPaused, "account", caller.Hex(), func(settings *domain.TokenSettings) error {
		if settings.Paused {
			return domain.ErrPaused
		}
		settings.Paused = true
		return nil
	})
}

func (s *TokenService) Unpause(ctx context.Context, caller common.Address) error {
	return s.updateSettings(ctx, caller, domain.EventUnpaused, "account", caller.Hex(), func(settings *domain.TokenSettings) error {
		if !settings.Paused {
			return domain.ErrNotPaused
		}
		settings.Paused = false
		return nil
	})
}

// DelistToken ends active listing and opens the burn window until burnDeadline.
// now is recorded as the start of the penalty schedule.
func (s *TokenService) DelistToken(ctx context.Context, caller common.Address, id uint64, burnDeadline time.Time, penaltyPercentPerWeek uint64, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireOperator(ctx, caller); err != nil {
		return err
	}
	token, err := s.getToken(ctx, id)
	if err != nil {
		return err
	}
	if !token.IsActivelyListed {
		return domain.ErrTokenNotActive
	}

	token.IsActivelyListed = false
	token.BurnDeadline = burnDeadline
	token.PenaltyPercentPerWeek = penaltyPercentPerWeek
	token.DelistedAt = now
	if err := s.apply(ctx, []*domain.EstateToken{token}, nil); err != nil {
		return err
	}

	s.publish(ctx, domain.EventTokenDelisted, caller, id, map[string]string{
		"burn_deadline":            strconv.FormatInt(burnDeadline.Unix(), 10),
		"penalty_percent_per_week": strconv.FormatUint(penaltyPercentPerWeek, 10),
	})
	return nil
}

// ExtendBurnDeadline overwrites the burn deadline of a delisted token.
func (s *TokenService) ExtendBurnDeadline(ctx context.Context, caller common.Address, id uint64, burnDeadline time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireOperator(ctx, caller); err != nil {
		return err
	}
	token, err := s.getToken(ctx, id)
	if err != nil {
		return err
	}
	if token.IsActivelyListed {
		return domain.ErrTokenStillActive
	}

	token.BurnDeadline = burnDeadline
	if err := s.apply(ctx, []*domain.EstateToken{token}, nil); err != nil {
		return err
	}

	s.publish(ctx, domain.EventBurnDeadlineExtended, caller, id, map[string]string{
		"burn_deadline": strconv.FormatInt(burnDeadline.Unix(), 10),
	})
	return nil
}

// Transfer moves amount of token id from one holder to another while the
// token is actively listed. The caller must be from or approved by from.
func (s *TokenService) Transfer(ctx context.Context, caller, from, to common.Address, id, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.requireNotPaused(ctx); err != nil {
		return err
	}
	token, err := s.getToken(ctx, id)
	if err != nil {
		return err
	}
	if !token.IsActivelyListed {
		return domain.ErrTokenNotActive
	}
	if err := s.requireOwnerOrApproved(ctx, caller, from); err != nil {
		return err
	}

	sheet := newBalanceSheet(s.TokenRepo)
	if err := sheet.debit(ctx, from, id, amount, domain.ErrInsufficientBalance); err != nil {
		return err
	}
	if err := sheet.credit(ctx, to, id, amount); err != nil {
		return err
	}
	if err := s.apply(ctx, nil, sheet); err != nil {
		return err
	}

	s.publish(ctx, domain.EventTokensTransferred, caller, id, map[string]string{
		"from":   from.Hex(),
		"to":     to.Hex(),
		"amount": strconv.FormatUint(amount, 10),
	})
	return nil
}

// Burn destroys amount of the holder's units of a delisted token inside its burn window.
// Logic:
//  1. Token must be delisted and now must not be past the burn deadline
//  2. Caller must be the holder or approved by the holder
//  3. Amount must not exceed the holder's balance
//  4. Decrement the balance and the total supply
func (s *TokenService) Burn(ctx context.Context, caller, holder common.Address, id, amount uint64, now time.Time) error {
	return s.burn(ctx, caller, holder, []uint64{id}, []uint64{amount}, now, domain.ErrBurnNotAllowed)
}

// BurnBatch burns several token ids for one holder. Either every pair is
// burned or none is.
func (s *TokenService) BurnBatch(ctx context.Context, caller, holder common.Address, ids, amounts []uint64, now time.Time) error {
	return s.burn(ctx, caller, holder, ids, amounts, now, domain.ErrBatchBurnNotAllowed)
}

// burn runs Burn and BurnBatch. activeErr is returned for actively listed ids.
func (s *TokenService) burn(ctx context.Context, caller, holder common.Address, ids, amounts []uint64, now time.Time, activeErr error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.requireNotPaused(ctx); err != nil {
		return err
	}
	if len(ids) != len(amounts) {
		return domain.ErrLengthMismatch
	}

	tokens := make(map[uint64]*domain.EstateToken, len(ids))
	for _, id := range ids {
		if _, seen := tokens[id]; seen {
			continue
		}
		token, err := s.getToken(ctx, id)
		if err != nil {
			return err
		}
		if token.IsActivelyListed {
			return activeErr
		}
		tokens[id] = token
	}
	for _, id := range ids {
		if err := tokens[id].CanBurnAt(now); err != nil {
			return err
		}
	}
	if err := s.requireOwnerOrApproved(ctx, caller, holder); err != nil {
		return err
	}

	sheet := newBalanceSheet(s.TokenRepo)
	for i, id := range ids {
		if err := sheet.debit(ctx, holder, id, amounts[i], domain.ErrBurnExceedsBalance); err != nil {
			return err
		}
		tokens[id].TotalSupply -= amounts[i]
	}

	changed := make([]*domain.EstateToken, 0, len(tokens))
	for _, token := range tokens {
		changed = append(changed, token)
	}
	sort.Slice(changed, func(i, j int) bool { return changed[i].ID < changed[j].ID })

	if err := s.apply(ctx, changed, sheet); err != nil {
		return err
	}

	for i, id := range ids {
		s.publish(ctx, domain.EventTokensBurned, caller, id, map[string]string{
			"holder": holder.Hex(),
			"amount": strconv.FormatUint(amounts[i], 10),
		})
	}
	return nil
}

// SetApprovalForAll lets operator transfer and burn every token the caller holds.
func (s *TokenService) SetApprovalForAll(ctx context.Context, caller, operator common.Address, approved bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if caller == operator {
		return domain.ErrSelfApproval
	}
	if err := s.TokenRepo.SetApprovalForAll(ctx, caller, operator, approved); err != nil {
		return fmt.Errorf("failed to set approval: %w", err)
	}

	s.publish(ctx, domain.EventApprovalForAll, caller, 0, map[string]string{
		"operator": operator.Hex(),
		"approved": strconv.FormatBool(approved),
	})
	return nil
}

// PenaltyPercentageCalculator returns floor(rate * (at - delistedAt) / 1 week)
// for a delisted token.
func (s *TokenService) PenaltyPercentageCalculator(ctx context.Context, penaltyPercentPerWeek, id uint64, at time.Time) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.getToken(ctx, id)
	if err != nil {
		return 0, err
	}
	if token.IsActivelyListed {
		return 0, domain.ErrTokenStillActive
	}
	if at.Before(token.DelistedAt) {
		return 0, domain.ErrReferenceBeforeDelist
	}

	elapsed := uint64(at.Unix() - token.DelistedAt.Unix())
	return domain.PenaltyPercentage(penaltyPercentPerWeek, elapsed)
}

// TokenInfo returns a snapshot of the token record.
func (s *TokenService) TokenInfo(ctx context.Context, id uint64) (*domain.EstateToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.getToken(ctx, id)
}

func (s *TokenService) BalanceOf(ctx context.Context, holder common.Address, id uint64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	amount, err := s.TokenRepo.BalanceOf(ctx, holder, id)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return amount, nil
}

// TotalSupply returns 0 for ids that were never minted.
func (s *TokenService) TotalSupply(ctx context.Context, id uint64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.findToken(ctx, id)
	if err != nil || token == nil {
		return 0, err
	}
	return token.TotalSupply, nil
}

func (s *TokenService) IsApprovedForAll(ctx context.Context, holder, operator common.Address) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.TokenRepo.IsApprovedForAll(ctx, holder, operator)
}

// Settings returns the pool addresses and pause state currently in effect.
func (s *TokenService) Settings(ctx context.Context) (*domain.TokenSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tokenSettings(ctx)
}

// ExpiredBurnWindows lists delisted tokens whose burn deadline is before now.
func (s *TokenService) ExpiredBurnWindows(ctx context.Context, now time.Time) ([]*domain.EstateToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens, err := s.TokenRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}

	expired := make([]*domain.EstateToken, 0)
	for _, token := range tokens {
		if token.State(now) == domain.TokenStateBurnWindowExpired {
			expired = append(expired, token)
		}
	}
	return expired, nil
}

func (s *TokenService) updateSettings(ctx context.Context, caller common.Address, eventType domain.EventType, key, value string, apply func(*domain.TokenSettings) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireOperator(ctx, caller); err != nil {
		return err
	}
	settings, err := s.tokenSettings(ctx)
	if err != nil {
		return err
	}
	if err := apply(settings); err != nil {
		return err
	}
	if err := s.SettingsRepo.SaveTokenSettings(ctx, settings); err != nil {
		return fmt.Errorf("failed to save token settings: %w", err)
	}

	s.publish(ctx, eventType, caller, 0, map[string]string{key: value})
	return nil
}

func (s *TokenService) apply(ctx context.Context, tokens []*domain.EstateToken, sheet *balanceSheet) error {
	change := domain.TokenChange{Tokens: tokens}
	if sheet != nil {
		change.Balances = sheet.changes()
	}
	if err := s.TokenRepo.Apply(ctx, change); err != nil {
		return fmt.Errorf("failed to apply token change: %w", err)
	}
	return nil
}

// getToken returns a copy of a minted token or ErrTokenNotListed.
func (s *TokenService) getToken(ctx context.Context, id uint64) (*domain.EstateToken, error) {
	token, err := s.findToken(ctx, id)
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, domain.ErrTokenNotListed
	}
	return token, nil
}

// findToken returns nil without error when the id was never minted.
func (s *TokenService) findToken(ctx context.Context, id uint64) (*domain.EstateToken, error) {
	token, err := s.TokenRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get token %d: %w", id, err)
	}
	return token.Clone(), nil
}

func (s *TokenService) tokenSettings(ctx context.Context) (*domain.TokenSettings, error) {
	settings, err := s.SettingsRepo.GetTokenSettings(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.TokenSettings{}, nil
		}
		return nil, fmt.Errorf("failed to get token settings: %w", err)
	}
	return settings, nil
}

func (s *TokenService) requireNotPaused(ctx context.Context) (*domain.TokenSettings, error) {
	settings, err := s.tokenSettings(ctx)
	if err != nil {
		return nil, err
	}
	if settings.Paused {
		return nil, domain.ErrPaused
	}
	return settings, nil
}

func (s *TokenService) requireOperator(ctx context.Context, caller common.Address) error {
	if !s.Authorizer.Authorize(ctx, caller, domain.RoleOperator) {
		return domain.ErrCallerNotOperator
	}
	return nil
}

func (s *TokenService) requireOwnerOrApproved(ctx context.Context, caller, holder common.Address) error {
	if caller == holder {
		return nil
	}
	approved, err := s.TokenRepo.IsApprovedForAll(ctx, holder, caller)
	if err != nil {
		return fmt.Errorf("failed to check approval: %w", err)
	}
	if !approved {
		return domain.ErrNotOwnerNorApproved
	}
	return nil
}

func (s *TokenService) publish(ctx context.Context, eventType domain.EventType, actor common.Address, id uint64, attrs map[string]string) {
	s.Publisher.Publish(ctx, domain.NewEvent(eventType, actor, id, s.Clock(), attrs))
}
