// Package httpx holds the HTTP plumbing shared by the demo server:
// JSON response helpers, middleware composition, bearer identity
// propagation and per-key rate limiting.
package httpx

import "net/http"

// Middleware wraps an http.Handler with extra behaviour.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares to a handler so the first listed middleware is
// the outermost one.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
