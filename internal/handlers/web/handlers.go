// Package web implements the HTTP handlers. Handlers are thin: they
// decode the request, call the matching service, and write the shared
// response envelope. Optimistic interaction endpoints always answer 200
// with wherever the mutation landed; only snapshot failures become
// error responses.
package web

import (
	"net/http"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"

	"pedium/internal/config"
	"pedium/internal/response"
	"pedium/internal/services"
)

// deviceCookie identifies a browser for view counting. It is not an
// identity; it only keeps reloads from inflating view totals.
const deviceCookie = "pedium_device"

// Handlers holds the handler dependencies
type Handlers struct {
	services *services.ServiceCollection
	cfg      *config.Config
	logger   *zap.Logger
}

// New creates the handler set
func New(sc *services.ServiceCollection, cfg *config.Config, logger *zap.Logger) *Handlers {
	return &Handlers{
		services: sc,
		cfg:      cfg,
		logger:   logger,
	}
}

// writeServiceError maps a service failure onto the response envelope
func (h *Handlers) writeServiceError(w http.ResponseWriter, err error) {
	se := services.GetServiceError(err)
	if se.StatusCode >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.Error(err))
	}
	response.ErrorWithCode(w, se.GetStatusCode(), se.Type, se.Message, se.Code)
}

// deviceID returns the device cookie value, assigning one when absent
func (h *Handlers) deviceID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(deviceCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	generated, err := uuid.NewV4()
	if err != nil {
		return ""
	}
	id := generated.String()
	http.SetCookie(w, &http.Cookie{
		Name:     deviceCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int((365 * 24 * 60 * 60)),
		HttpOnly: true,
		Secure:   h.cfg.Auth.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// setSessionCookie attaches the signed session token
func (h *Handlers) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.Auth.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cfg.Auth.JWTExpiry.Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.Auth.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie removes the session
func (h *Handlers) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.Auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.Auth.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
