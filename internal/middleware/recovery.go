package middleware

import (
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"pedium/internal/response"
)

// Recovery converts handler panics into 500 responses
func Recovery(logger *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("handler panicked",
						zap.String("request_id", GetRequestID(r.Context())),
						zap.String("path", r.URL.Path),
						zap.Any("panic", rec),
						zap.ByteString("stack", debug.Stack()),
					)
					response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "something went wrong")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
