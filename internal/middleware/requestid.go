package middleware

import (
	"context"

	"connectrpc.com/connect"
	"github.com/google/uuid"
)

// RequestIDHeader carries a caller-chosen request id. One is generated when
// the header is absent.
const RequestIDHeader = "X-Request-Id"

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// RequestIDKey is the context key for storing the request id.
const RequestIDKey contextKey = "request_id"

// GetRequestID extracts the request id from the context.
// Returns empty string if not found.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// WithRequestID returns a copy of ctx carrying id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

func requestID(h interface{ Get(string) string }) string {
	if id := h.Get(RequestIDHeader); id != "" && len(id) <= 128 {
		return id
	}
	return uuid.NewString()
}

// RequestIDInterceptor stores the request id in the handler context and
// echoes it back in the response headers.
type RequestIDInterceptor struct{}

var _ connect.Interceptor = RequestIDInterceptor{}

func (RequestIDInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		if req.Spec().IsClient {
			return next(ctx, req)
		}
		id := requestID(req.Header())
		resp, err := next(WithRequestID(ctx, id), req)
		if resp != nil {
			resp.Header().Set(RequestIDHeader, id)
		}
		return resp, err
	}
}

func (RequestIDInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

func (RequestIDInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return func(ctx context.Context, conn connect.StreamingHandlerConn) error {
		id := requestID(conn.RequestHeader())
		conn.ResponseHeader().Set(RequestIDHeader, id)
		return next(WithRequestID(ctx, id), conn)
	}
}
