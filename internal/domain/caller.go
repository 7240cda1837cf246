package domain

import "context"

// Caller is the authenticated principal a service call acts for
type Caller struct {
	UserID string
	Email  string
}

type callerKey struct{}

// WithCaller attaches the authenticated caller to ctx
func WithCaller(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// CallerFromContext returns the caller set by the session middleware
func CallerFromContext(ctx context.Context) (Caller, bool) {
	caller, ok := ctx.Value(callerKey{}).(Caller)
	if !ok || caller.UserID == "" {
		return Caller{}, false
	}
	return caller, true
}
