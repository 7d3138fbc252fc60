package domain

import "errors"

// ErrorCategory classifies why a ledger operation was rejected.
type ErrorCategory string

const (
	CategoryAuthorization     ErrorCategory = "AUTHORIZATION"
	CategoryStatePrecondition ErrorCategory = "STATE_PRECONDITION"
	CategoryNumericBound      ErrorCategory = "NUMERIC_BOUND"
	CategoryMissingResource   ErrorCategory = "MISSING_RESOURCE"
)

// LedgerError is a synchronous rejection of a ledger operation.
// A call that returns a LedgerError has not changed any state.
type LedgerError struct {
	Category ErrorCategory
	Message  string
}

func (e *LedgerError) Error() string {
	return e.Message
}

func newLedgerError(category ErrorCategory, message string) *LedgerError {
	return &LedgerError{Category: category, Message: message}
}

// CategoryOf returns the category of the first LedgerError in err's chain.
func CategoryOf(err error) (ErrorCategory, bool) {
	var ledgerErr *LedgerError
	if errors.As(err, &ledgerErr) {
		return ledgerErr.Category, true
	}
	return "", false
}

// ErrNotFound is returned (wrapped) by repositories when a record does not exist.
var ErrNotFound = errors.New("not found")

// Authorization
var (
	ErrCallerNotOperator      = newLedgerError(CategoryAuthorization, "Ownable: caller is not the owner")
	ErrCallerNotPropertyOwner = newLedgerError(CategoryAuthorization, "Message sender / agreement signer should be property owner")
	ErrNotOwnerNorApproved    = newLedgerError(CategoryAuthorization, "caller is not owner nor approved")
	ErrSelfApproval           = newLedgerError(CategoryAuthorization, "setting approval status for self")
)

// State preconditions
var (
	ErrDeedCompleted       = newLedgerError(CategoryStatePrecondition, "Deed is already completed")
	ErrOwnerNotSigned      = newLedgerError(CategoryStatePrecondition, "Property owner should sign the agreement")
	ErrMogulNotSigned      = newLedgerError(CategoryStatePrecondition, "Mogul should sign the agreement")
	ErrFeeNotPaid          = newLedgerError(CategoryStatePrecondition, "Platform fee not paid")
	ErrFeeAlreadyPaid      = newLedgerError(CategoryStatePrecondition, "Platform fee already paid")
	ErrAllowanceTooLow     = newLedgerError(CategoryStatePrecondition, "Contract is not approved to transfer the funds, please increase the allowance.")
	ErrFeeTransferFailed   = newLedgerError(CategoryStatePrecondition, "Platform fee transfer failed")
	ErrDealNotComplete     = newLedgerError(CategoryStatePrecondition, "deal is not complete yet !!")
	ErrTokenAlreadyMinted  = newLedgerError(CategoryStatePrecondition, "Token already minted")
	ErrTokenNotActive      = newLedgerError(CategoryStatePrecondition, "Token is not actively listed")
	ErrTokenStillActive    = newLedgerError(CategoryStatePrecondition, "Token is still actively listed")
	ErrBurnNotAllowed      = newLedgerError(CategoryStatePrecondition, "Burning is not allowed at the moment")
	ErrBatchBurnNotAllowed = newLedgerError(CategoryStatePrecondition, "Burning is not allowed at the moment for token-id")
	ErrBurnWindowClosed    = newLedgerError(CategoryStatePrecondition, "Burn time is over")
	ErrPaused              = newLedgerError(CategoryStatePrecondition, "Pausable: paused")
	ErrNotPaused           = newLedgerError(CategoryStatePrecondition, "Pausable: not paused")
	ErrVestingPoolNotSet   = newLedgerError(CategoryStatePrecondition, "Vesting contract address not set")
	ErrCrowdsalePoolNotSet = newLedgerError(CategoryStatePrecondition, "Crowdsale contract address not set")
	ErrPayoutAddressNotSet = newLedgerError(CategoryStatePrecondition, "Mogul payout address not set")
	ErrFundsAssetNotSet    = newLedgerError(CategoryStatePrecondition, "ERC20 address not set")
)

// Numeric bounds
var (
	ErrRetainsTooHigh        = newLedgerError(CategoryNumericBound, "Property owner retains should be less than 100 %")
	ErrMogulShareTooHigh     = newLedgerError(CategoryNumericBound, "Mogul percentage should be less than 100")
	ErrCrowdsaleShareTooHigh = newLedgerError(CategoryNumericBound, "Crowdsale percentage should be less than 100")
	ErrSharesNotWhole        = newLedgerError(CategoryNumericBound, "Percentage should be equal to 100")
	ErrLengthMismatch        = newLedgerError(CategoryNumericBound, "Length of ids and values should be same")
	ErrBurnExceedsBalance    = newLedgerError(CategoryNumericBound, "Amount exceeds the available balance to burn with this token-id in this account")
	ErrInsufficientBalance   = newLedgerError(CategoryNumericBound, "insufficient balance for transfer")
	ErrSupplyOverflow        = newLedgerError(CategoryNumericBound, "Token supply overflow")
	ErrUnitsOverflow         = newLedgerError(CategoryNumericBound, "Share units overflow")
	ErrNegativeFee           = newLedgerError(CategoryNumericBound, "Platform fee must not be negative")
	ErrReferenceBeforeDelist = newLedgerError(CategoryNumericBound, "Reference time is before delisting")
)

// Missing resources
var (
	ErrAgreementNotFound = newLedgerError(CategoryMissingResource, "Agreement does not exist")
	ErrURIEmpty          = newLedgerError(CategoryMissingResource, "URI not found")
	ErrTokenNotListed    = newLedgerError(CategoryMissingResource, "Token is not listed")
)
