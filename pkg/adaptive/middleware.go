package adaptive

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/bluele/gcache"

	"github.com/cumulusid/adaptive/pkg/httpx"
)

// MiddlewareConfig tunes IntrospectMiddleware.
type MiddlewareConfig struct {
	// CacheSize is the LRU cache capacity in tokens. Zero means 100.
	CacheSize int

	// CacheTTL bounds how long a successful introspection is reused.
	// Zero caches each token until its own expiry.
	CacheTTL time.Duration

	// AllowMFAChallenge accepts tokens scoped mfa_challenge, the
	// intermediate grant held by an unfinished transaction. Leave it
	// false unless the route manages in-flight enrollments.
	AllowMFAChallenge bool
}

const defaultCacheSize = 100

type introspectionCtxKey struct{}

// IntrospectionFromContext returns the introspection recorded by
// IntrospectMiddleware for the current request.
func IntrospectionFromContext(ctx context.Context) (*Introspection, bool) {
	intr, ok := ctx.Value(introspectionCtxKey{}).(*Introspection)
	return intr, ok
}

// IntrospectMiddleware authenticates requests by introspecting their bearer
// token on the tenant. Successful introspections are cached in an LRU so a
// burst of requests with one token costs one remote call. The caller's
// subject and scopes are placed on the request context via httpx, alongside
// the full introspection.
func (a *Adaptive) IntrospectMiddleware(cfg MiddlewareConfig) httpx.Middleware {
	size := cfg.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}
	cache := gcache.New(size).LRU().Build()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, ok := bearerToken(r)
			if !ok {
				writeBearerError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			intr, err := a.cachedIntrospect(ctx, cache, cfg.CacheTTL, token)
			if err != nil {
				a.logger.Warn("introspection failed", "err", err)
				writeBearerError(w, http.StatusUnauthorized, (&TokenError{Message: "token introspection failed"}).Error())
				return
			}

			if !intr.Active {
				writeBearerError(w, http.StatusUnauthorized, "token is not active")
				return
			}
			if hasScope(intr.Scope, "mfa_challenge") && !cfg.AllowMFAChallenge {
				writeBearerError(w, http.StatusUnauthorized, "authentication flow is not complete")
				return
			}

			ctx = httpx.ContextWithIdentity(ctx, intr.Sub, httpx.ParseSpaceDelimitedFields(intr.Scope))
			ctx = context.WithValue(ctx, introspectionCtxKey{}, intr)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (a *Adaptive) cachedIntrospect(ctx context.Context, cache gcache.Cache, ttl time.Duration, token string) (*Introspection, error) {
	if v, err := cache.Get(token); err == nil {
		if intr, ok := v.(*Introspection); ok {
			return intr, nil
		}
	}

	intr, err := a.Introspect(ctx, token, "access_token")
	if err != nil {
		return nil, err
	}

	if intr.Active {
		expiry := ttl
		if expiry == 0 && intr.Exp > 0 {
			expiry = time.Until(time.Unix(intr.Exp, 0))
		}
		if expiry > 0 {
			_ = cache.SetWithExpire(token, intr, expiry)
		}
	}
	return intr, nil
}

func bearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	if !strings.HasPrefix(authz, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))
	return token, token != ""
}

// RFC 6750 error response for bearer auth.
func writeBearerError(w http.ResponseWriter, code int, desc string) {
	w.Header().Set("WWW-Authenticate",
		`Bearer error="invalid_token", error_description="`+desc+`"`)
	httpx.WriteError(w, code, "invalid_token", desc)
}
