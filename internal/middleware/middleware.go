// Package middleware provides the HTTP cross-cutting layers: request
// ids, structured request logging, panic recovery, and session
// authentication.
package middleware

import "net/http"

// Middleware wraps a handler with one cross-cutting concern
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares to h in the order given: the first listed
// middleware is the outermost.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	userIDKey    contextKey = "user_id"
	userNameKey  contextKey = "user_name"
)
