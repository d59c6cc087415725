package grpc

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// UserIDHeader is the metadata key carrying the calling user's id
const UserIDHeader = "x-user-id"

type userIDKey struct{}

// UserIDFromContext returns the user id stored by AuthInterceptor
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey{}).(uuid.UUID)
	return id, ok
}

// ContextWithUserID stores a user id the way AuthInterceptor does
func ContextWithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// AuthInterceptor returns a gRPC unary server interceptor that validates
// the authorization token and the user id from request metadata.
// A missing or invalid token returns status.Unauthenticated, a malformed
// user id returns status.InvalidArgument.
// If valid, it calls the handler with the user id attached to the context.
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

		userHeaders := md.Get(UserIDHeader)
		if len(userHeaders) == 0 {
			return nil, status.Error(codes.Unauthenticated, "missing user id")
		}

		userID, err := uuid.Parse(userHeaders[0])
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid user id: %v", err)
		}

		return handler(ContextWithUserID(ctx, userID), req)
	}
}

// LoggingInterceptor logs every unary call with its status code and duration.
// Internal errors are logged at error level, everything else at debug.
func LoggingInterceptor(log zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		code := status.Code(err)
		event := log.Debug()
		if code == codes.Internal || code == codes.Unknown {
			event = log.Error().Err(err)
		}
		event.
			Str("method", info.FullMethod).
			Str("code", code.String()).
			Dur("duration", time.Since(start)).
			Msg("grpc call")

		return resp, err
	}
}
