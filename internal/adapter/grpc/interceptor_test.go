package grpc

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/simaogato/estateledger-backend/internal/domain"
)

func TestAuthInterceptor(t *testing.T) {
	validToken := "test-token-123"
	interceptor := AuthInterceptor(validToken)

	tests := []struct {
		name           string
		ctx            context.Context
		handlerCalled  bool
		expectedCode   codes.Code
		expectedErrMsg string
	}{
		{
			name: "Valid Token",
			ctx: metadata.NewIncomingContext(
				context.Background(),
				metadata.Pairs("authorization", validToken),
			),
			handlerCalled:  true,
			expectedCode:   codes.OK,
			expectedErrMsg: "",
		},
		{
			name: "Invalid Token",
			ctx: metadata.NewIncomingContext(
				context.Background(),
				metadata.Pairs("authorization", "wrong-token"),
			),
			handlerCalled:  false,
			expectedCode:   codes.Unauthenticated,
			expectedErrMsg: "invalid token",
		},
		{
			name:           "Missing Token",
			ctx:            context.Background(),
			handlerCalled:  false,
			expectedCode:   codes.Unauthenticated,
			expectedErrMsg: "missing metadata",
		},
		{
			name: "Missing Authorization Header",
			ctx: metadata.NewIncomingContext(
				context.Background(),
				metadata.Pairs("other-header", "value"),
			),
			handlerCalled:  false,
			expectedCode:   codes.Unauthenticated,
			expectedErrMsg: "missing authorization header",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled := false
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				handlerCalled = true
				return "success", nil
			}

			info := &grpc.UnaryServerInfo{
				FullMethod: "/test.Service/Method",
			}

			resp, err := interceptor(tt.ctx, "test-request", info, handler)

			assert.Equal(t, tt.handlerCalled, handlerCalled, "handler called status mismatch")

			if tt.expectedCode == codes.OK {
				assert.NoError(t, err)
				assert.Equal(t, "success", resp)
			} else {
				assert.Error(t, err)
				st, ok := status.FromError(err)
				assert.True(t, ok, "error should be a gRPC status")
				assert.Equal(t, tt.expectedCode, st.Code())
				assert.Contains(t, st.Message(), tt.expectedErrMsg)
			}
		})
	}
}

func TestCallerInterceptor(t *testing.T) {
	interceptor := CallerInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: "/test.Service/Method"}
	caller := common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")

	tests := []struct {
		name           string
		ctx            context.Context
		expectedCaller common.Address
		expectedCode   codes.Code
	}{
		{
			name: "Caller Present",
			ctx: metadata.NewIncomingContext(
				context.Background(),
				metadata.Pairs(CallerMetadataKey, "0x70997970c51812dc3a010c7d01b50e0d17dc79c8"),
			),
			expectedCaller: caller,
			expectedCode:   codes.OK,
		},
		{
			name:           "No Metadata",
			ctx:            context.Background(),
			expectedCaller: common.Address{},
			expectedCode:   codes.OK,
		},
		{
			name: "Invalid Address",
			ctx: metadata.NewIncomingContext(
				context.Background(),
				metadata.Pairs(CallerMetadataKey, "alice"),
			),
			expectedCode: codes.InvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen common.Address
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				seen = CallerFromContext(ctx)
				return "success", nil
			}

			_, err := interceptor(tt.ctx, "test-request", info, handler)

			assert.Equal(t, tt.expectedCode, status.Code(err))
			if tt.expectedCode == codes.OK {
				assert.Equal(t, tt.expectedCaller, seen)
			}
		})
	}
}

func TestObservabilityInterceptor(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	interceptor := ObservabilityInterceptor(zap.New(core))
	info := &grpc.UnaryServerInfo{FullMethod: FullMethod("SignByMogul")}

	rejected := func(ctx context.Context, req interface{}) (interface{}, error) {
		return nil, mapError(domain.ErrMogulNotSigned)
	}
	_, err := interceptor(context.Background(), "req", info, rejected)
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	failed := func(ctx context.Context, req interface{}) (interface{}, error) {
		return nil, mapError(errors.New("connection reset"))
	}
	_, err = interceptor(context.Background(), "req", info, failed)
	assert.Equal(t, codes.Internal, status.Code(err))

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, zap.DebugLevel, logs.All()[0].Level)
	assert.Equal(t, "grpc call failed", logs.All()[1].Message)
	assert.Equal(t, "/estateledger.v1.LedgerService/SignByMogul", logs.All()[1].ContextMap()["method"])
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode codes.Code
	}{
		{name: "Authorization", err: domain.ErrCallerNotOperator, expectedCode: codes.PermissionDenied},
		{name: "State Precondition", err: domain.ErrDeedCompleted, expectedCode: codes.FailedPrecondition},
		{name: "Numeric Bound", err: domain.ErrSharesNotWhole, expectedCode: codes.InvalidArgument},
		{name: "Missing Resource", err: domain.ErrAgreementNotFound, expectedCode: codes.NotFound},
		{name: "Wrapped Ledger Error", err: fmt.Errorf("%w: reverted", domain.ErrFeeTransferFailed), expectedCode: codes.FailedPrecondition},
		{name: "Storage Failure", err: errors.New("connection reset"), expectedCode: codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := mapError(tt.err)

			st, ok := status.FromError(mapped)
			assert.True(t, ok)
			assert.Equal(t, tt.expectedCode, st.Code())
			assert.Equal(t, tt.err.Error(), st.Message())
			assert.ErrorIs(t, mapped, tt.err, "mapped error still unwraps to the original")
		})
	}

	assert.NoError(t, mapError(nil))
}
