package server

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// RequestIDKey is the metadata key carrying the request id in both
// directions.
const RequestIDKey = "x-request-id"

type requestIDCtxKey struct{}

// RequestID returns the id assigned by LoggingInterceptor. Without the
// interceptor it falls back to the x-request-id incoming metadata, or "".
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDCtxKey{}).(string); ok {
		return id
	}
	return incomingRequestID(ctx)
}

// WithRequestID marks ctx as an incoming call carrying id, for in-process
// callers that skip the gRPC transport.
func WithRequestID(ctx context.Context, id string) context.Context {
	md, _ := metadata.FromIncomingContext(ctx)
	md = md.Copy()
	md.Set(RequestIDKey, id)
	return metadata.NewIncomingContext(ctx, md)
}

func incomingRequestID(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if vals := md.Get(RequestIDKey); len(vals) > 0 && vals[0] != "" {
		return vals[0]
	}
	return ""
}

// LoggingInterceptor creates a gRPC unary interceptor for request/response logging.
// A caller-supplied x-request-id is kept, otherwise a new one is generated and
// echoed back in the response header.
func LoggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()

		requestID := incomingRequestID(ctx)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx = context.WithValue(ctx, requestIDCtxKey{}, requestID)
		// Fails only outside a real transport stream, e.g. direct calls in tests.
		_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDKey, requestID))

		clientAddr := "unknown"
		if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
			clientAddr = p.Addr.String()
		}

		logger.Info("gRPC request started",
			zap.String("request_id", requestID),
			zap.String("method", info.FullMethod),
			zap.String("client_addr", clientAddr))

		resp, err := handler(ctx, req)
		duration := time.Since(start)

		if err != nil {
			st, _ := status.FromError(err)
			logger.Error("gRPC request failed",
				zap.String("request_id", requestID),
				zap.String("method", info.FullMethod),
				zap.Duration("duration", duration),
				zap.String("status_code", st.Code().String()),
				zap.String("status_message", st.Message()),
				zap.Error(err))
		} else {
			logger.Info("gRPC request completed",
				zap.String("request_id", requestID),
				zap.String("method", info.FullMethod),
				zap.Duration("duration", duration),
				zap.String("status_code", codes.OK.String()))
		}

		return resp, err
	}
}
