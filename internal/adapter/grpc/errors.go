package grpc

import (
	"errors"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/simaogato/estateledger-backend/internal/domain"
)

// statusError is a gRPC status that still unwraps to the ledger error behind it.
type statusError struct {
	st  *status.Status
	err error
}

func (e *statusError) Error() string              { return e.st.Err().Error() }
func (e *statusError) GRPCStatus() *status.Status { return e.st }
func (e *statusError) Unwrap() error              { return e.err }

// mapError converts service errors to gRPC status errors.
// Ledger rejections map by category; anything else is Internal.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var ledgerErr *domain.LedgerError
	if errors.As(err, &ledgerErr) {
		return &statusError{st: status.New(codeForCategory(ledgerErr.Category), err.Error()), err: err}
	}

	if errors.Is(err, domain.ErrNotFound) || strings.Contains(err.Error(), "not found") {
		return &statusError{st: status.New(codes.NotFound, err.Error()), err: err}
	}

	return &statusError{st: status.New(codes.Internal, err.Error()), err: err}
}

func codeForCategory(category domain.ErrorCategory) codes.Code {
	switch category {
	case domain.CategoryAuthorization:
		return codes.PermissionDenied
	case domain.CategoryStatePrecondition:
		return codes.FailedPrecondition
	case domain.CategoryNumericBound:
		return codes.InvalidArgument
	case domain.CategoryMissingResource:
		return codes.NotFound
	default:
		return codes.Internal
	}
}
