// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// Middleware sets the values; services and handlers read them:
//
//	caller := requestcontext.Caller(ctx)
//	requestID := requestcontext.RequestID(ctx)
//
// Tests inject them directly:
//
//	ctx = requestcontext.WithCaller(ctx, alice)
package requestcontext

import (
	"context"
	"time"

	"regionx/pkg/domain"
)

type (
	callerKey      struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

var (
	ContextKeyCaller      = callerKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// Caller retrieves the signed caller account. The second result is false when
// the request is unsigned.
func Caller(ctx context.Context) (domain.AccountID, bool) {
	a, ok := ctx.Value(ContextKeyCaller).(domain.AccountID)
	return a, ok
}

// WithCaller injects the signed caller account into the context.
func WithCaller(ctx context.Context, caller domain.AccountID) context.Context {
	return context.WithValue(ctx, ContextKeyCaller, caller)
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set (workers, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
