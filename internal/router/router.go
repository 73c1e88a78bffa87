// Package router wires the route table and the middleware chain
package router

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"pedium/internal/config"
	"pedium/internal/handlers/web"
	"pedium/internal/middleware"
	"pedium/internal/services"
)

// New builds the HTTP handler: routes, authentication gates, and the
// shared middleware chain.
func New(sc *services.ServiceCollection, cfg *config.Config, logger *zap.Logger) http.Handler {
	h := web.New(sc, cfg, logger)
	mux := http.NewServeMux()

	authed := func(fn http.HandlerFunc) http.Handler {
		return middleware.RequireAuth()(fn)
	}

	// Public routes
	mux.HandleFunc("GET /{$}", h.Feed)
	mux.HandleFunc("GET /article/{id}", h.Article)
	mux.HandleFunc("GET /article/{id}/comments", h.ListComments)
	mux.HandleFunc("GET /user/{id}", h.AuthorPage)
	mux.HandleFunc("GET /inspire", h.Inspire)
	mux.HandleFunc("GET /health", h.Health)

	// Authentication
	mux.HandleFunc("POST /signup", h.Signup)
	mux.HandleFunc("POST /login", h.Login)
	mux.HandleFunc("POST /logout", h.Logout)
	mux.HandleFunc("GET /auth/google", h.GoogleLogin)
	mux.HandleFunc("GET /auth/google/callback", h.GoogleCallback)

	// Routes that need a session
	mux.Handle("POST /write", authed(h.Publish))
	mux.Handle("POST /article/{id}/like", authed(h.ToggleLike))
	mux.Handle("POST /article/{id}/comments", authed(h.AddComment))
	mux.Handle("POST /user/{id}/follow", authed(h.ToggleFollow))
	mux.Handle("GET /me", authed(h.Me))

	// API documentation
	mux.HandleFunc("GET /swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "docs/swagger.json")
	})
	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return middleware.Chain(mux,
		middleware.RequestID(),
		middleware.Recovery(logger),
		middleware.Logger(logger),
		middleware.Auth(cfg.Auth, logger),
	)
}
