package grpc

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/simaogato/estateledger-backend/internal/domain"
	"github.com/simaogato/estateledger-backend/internal/observability"
)

// CallerMetadataKey carries the address the request acts on behalf of.
const CallerMetadataKey = "x-caller-address"

type callerKey struct{}

// AuthInterceptor returns a gRPC unary server interceptor that validates
// the authorization token from request metadata.
// If the token is missing or invalid, it returns status.Unauthenticated.
// If valid, it calls the handler with the original context.
func AuthInterceptor(validToken string) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}

		authHeaders := md.Get("authorization")
		if len(authHeaders) == 0 {
			return nil, status.Error(codes.Unauthenticated, "missing authorization header")
		}

		if authHeaders[0] != validToken {
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}

		return handler(ctx, req)
	}
}

// CallerInterceptor reads the caller address from metadata and stores it in
// the context. Requests without one run as the zero address, which holds no
// role and owns nothing.
func CallerInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		var caller common.Address

		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if values := md.Get(CallerMetadataKey); len(values) > 0 {
				if !common.IsHexAddress(values[0]) {
					return nil, status.Errorf(codes.InvalidArgument, "invalid %s: %q", CallerMetadataKey, values[0])
				}
				caller = common.HexToAddress(values[0])
			}
		}

		return handler(WithCaller(ctx, caller), req)
	}
}

// WithCaller returns a context acting on behalf of caller.
func WithCaller(ctx context.Context, caller common.Address) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// CallerFromContext returns the caller stored by CallerInterceptor.
func CallerFromContext(ctx context.Context) common.Address {
	caller, _ := ctx.Value(callerKey{}).(common.Address)
	return caller
}

// ObservabilityInterceptor logs each call and records its duration and status code.
func ObservabilityInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		elapsed := time.Since(start)

		code := status.Code(err)
		observability.RecordGRPCRequest(info.FullMethod, code.String(), elapsed)
		if category, ok := domain.CategoryOf(err); ok {
			observability.RecordLedgerRejection(info.FullMethod, string(category))
		}

		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", code.String()),
			zap.Duration("duration", elapsed),
			zap.String("caller", CallerFromContext(ctx).Hex()),
		}
		if err != nil && code == codes.Internal {
			logger.Error("grpc call failed", append(fields, zap.Error(err))...)
		} else {
			logger.Debug("grpc call", fields...)
		}

		return resp, err
	}
}
