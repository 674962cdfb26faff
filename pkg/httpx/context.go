package httpx

import "context"

type ctxKey string

const (
	CtxKeyUserID ctxKey = "user_id"
	CtxKeyScopes ctxKey = "scopes"
)

// ContextWithIdentity records the authenticated caller on the context.
// Authentication middlewares call this; handlers and the scope middleware
// read it back.
func ContextWithIdentity(ctx context.Context, userID string, scopes []string) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, userID)
	return context.WithValue(ctx, CtxKeyScopes, scopes)
}

// UserIDFromContext returns the authenticated caller's subject, or "".
func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyUserID).(string); ok {
		return v
	}
	return ""
}

// ScopesFromContext returns the authenticated caller's granted scopes.
func ScopesFromContext(ctx context.Context) []string {
	if v, ok := ctx.Value(CtxKeyScopes).([]string); ok {
		return v
	}
	return nil
}
